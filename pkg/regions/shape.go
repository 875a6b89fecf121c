package regions

import (
	"fmt"
	"math"
	"strings"

	"github.com/astroshed/srcmask/pkg/sgeom"
)

// The four shape kinds we know how to do geometry on. Anything else
// found in a region file gets dropped before it ever reaches the
// filter.
type ShapeKind int

const (
	Circle ShapeKind = iota
	Ellipse
	Box
	Polygon
)

func (k ShapeKind)String() string {
	switch k {
	case Circle:  return "circle"
	case Ellipse: return "ellipse"
	case Box:     return "box"
	case Polygon: return "polygon"
	}
	return "unknown"
}

type Point struct {
	X, Y float64
}

// A Shape is a tagged variant over the four kinds; only the fields for
// its own Kind are meaningful. All values are image pixel coordinates,
// origin top-left. Angles are degrees, counter-clockwise.
type Shape struct {
	Kind     ShapeKind

	CX, CY   float64 // center, for circle/ellipse/box
	R        float64 // circle radius
	RX, RY   float64 // ellipse semi-axes
	W, H     float64 // box full width/height
	AngleDeg float64 // rotation, for ellipse/box

	Vertices []Point // polygon only
}

func (sh Shape)String() string {
	switch sh.Kind {
	case Circle:
		return fmt.Sprintf("circle(%.1f,%.1f,%.1f)", sh.CX, sh.CY, sh.R)
	case Ellipse:
		return fmt.Sprintf("ellipse(%.1f,%.1f,%.1f,%.1f,%.1f)", sh.CX, sh.CY, sh.RX, sh.RY, sh.AngleDeg)
	case Box:
		return fmt.Sprintf("box(%.1f,%.1f,%.1f,%.1f,%.1f)", sh.CX, sh.CY, sh.W, sh.H, sh.AngleDeg)
	case Polygon:
		strs := []string{}
		for _, v := range sh.Vertices {
			strs = append(strs, fmt.Sprintf("%.1f,%.1f", v.X, v.Y))
		}
		return "polygon(" + strings.Join(strs, ",") + ")"
	}
	return "shape(?)"
}

// An InvalidRegionError means a region had geometry we can't evaluate
// (non-finite numbers, zero/negative dimensions, degenerate polygon).
// The whole filter call aborts - we never produce a half-filtered
// catalog from a broken region file.
type InvalidRegionError struct {
	Line   int    // 1-based line in the region file, 0 if unknown
	Shape  string
	Reason string
}

func (e *InvalidRegionError)Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid region %s (line %d): %s", e.Shape, e.Line, e.Reason)
	}
	return fmt.Sprintf("invalid region %s: %s", e.Shape, e.Reason)
}

// Validate checks the shape geometry is evaluable. Degenerate geometry
// is an error, not a silent skip; a zero-radius circle in a region
// file means someone fat-fingered it, and they'd rather hear about it.
func (sh Shape)Validate() error {
	bad := func(reason string) error {
		return &InvalidRegionError{Shape: sh.String(), Reason: reason}
	}

	switch sh.Kind {
	case Circle:
		if !finite(sh.CX, sh.CY, sh.R) {
			return bad("non-finite parameter")
		}
		if sh.R <= 0 {
			return bad(fmt.Sprintf("radius %g must be > 0", sh.R))
		}

	case Ellipse:
		if !finite(sh.CX, sh.CY, sh.RX, sh.RY, sh.AngleDeg) {
			return bad("non-finite parameter")
		}
		if sh.RX <= 0 || sh.RY <= 0 {
			return bad(fmt.Sprintf("semi-axes (%g,%g) must be > 0", sh.RX, sh.RY))
		}

	case Box:
		if !finite(sh.CX, sh.CY, sh.W, sh.H, sh.AngleDeg) {
			return bad("non-finite parameter")
		}
		if sh.W <= 0 || sh.H <= 0 {
			return bad(fmt.Sprintf("dimensions (%g,%g) must be > 0", sh.W, sh.H))
		}

	case Polygon:
		if len(sh.Vertices) < 3 {
			return bad(fmt.Sprintf("only %d vertices", len(sh.Vertices)))
		}
		for _, v := range sh.Vertices {
			if !finite(v.X, v.Y) {
				return bad("non-finite vertex")
			}
		}

	default:
		return bad("unknown shape kind")
	}

	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Contains is the point-in-shape test. The boundary counts as inside
// for every kind: a source sitting exactly on a mask's edge is masked.
func (sh Shape)Contains(x, y float64) bool {
	switch sh.Kind {

	case Circle:
		dx, dy := x-sh.CX, y-sh.CY
		return dx*dx + dy*dy <= sh.R*sh.R

	case Ellipse:
		// Rotate the point back into the ellipse's own frame, then it's
		// the standard axis-aligned test.
		px, py := sh.toShapeFrame(x, y)
		dx, dy := (px-sh.CX)/sh.RX, (py-sh.CY)/sh.RY
		return dx*dx + dy*dy <= 1.0

	case Box:
		px, py := sh.toShapeFrame(x, y)
		return math.Abs(px-sh.CX) <= sh.W/2.0 && math.Abs(py-sh.CY) <= sh.H/2.0

	case Polygon:
		return polygonContains(sh.Vertices, x, y)
	}

	return false
}

// toShapeFrame undoes the shape's rotation about its center, so the
// caller can test against the unrotated geometry.
func (sh Shape)toShapeFrame(x, y float64) (float64, float64) {
	if sh.AngleDeg == 0 {
		return x, y
	}
	return sgeom.RotateAbout(-sh.AngleDeg, sh.CX, sh.CY).Apply(x, y)
}

// polygonContains does even-odd ray casting, with an explicit
// edge-proximity check first so that points sitting on an edge or
// vertex count as inside (ray casting alone is fickle about those).
func polygonContains(verts []Point, x, y float64) bool {
	const eps = 1e-9

	j := len(verts) - 1
	for i := 0; i < len(verts); i++ {
		if pointNearSegment(x, y, verts[j], verts[i], eps) {
			return true
		}
		j = i
	}

	inside := false
	j = len(verts) - 1
	for i := 0; i < len(verts); i++ {
		vi, vj := verts[i], verts[j]
		if (vi.Y > y) != (vj.Y > y) {
			xCross := (vj.X-vi.X)*(y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// pointNearSegment reports whether (x,y) lies within eps of segment ab.
func pointNearSegment(x, y float64, a, b Point, eps float64) bool {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := x-a.X, y-a.Y

	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return math.Hypot(apx, apy) <= eps
	}

	t := (apx*abx + apy*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	dx := a.X + t*abx - x
	dy := a.Y + t*aby - y
	return math.Hypot(dx, dy) <= eps
}
