package srcmask

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/astroshed/srcmask/pkg/catalog"
	"github.com/astroshed/srcmask/pkg/regions"
)

// Renders the diagnostic overlay: regions stroked over a backdrop
// (solid for inclusion, dashed for exclusion), kept sources marked per
// the configured strategy, dropped sources as dim crosses. It's the
// first thing you look at when a filter pass keeps the wrong stars.

// A MarkerFunc paints one kept source. The flux stats are for the
// whole input catalog, so marker scaling is stable across passes.
type MarkerFunc func(dc *gg.Context, s catalog.Source, fs catalog.FluxStats)

var(
	rampCold = colorful.Color{R: 0.25, G: 0.35, B: 1.00}
	rampHot  = colorful.Color{R: 1.00, G: 0.85, B: 0.20}
)

func MarkByFluxRamp(dc *gg.Context, s catalog.Source, fs catalog.FluxStats) {
	c := rampCold.BlendHcl(rampHot, fluxFraction(s.Flux, fs)).Clamped()
	dc.SetRGB(c.R, c.G, c.B)
	dc.DrawCircle(s.X, s.Y, 4)
	dc.Stroke()
}

func MarkByFluxRings(dc *gg.Context, s catalog.Source, fs catalog.FluxStats) {
	dc.SetRGB(0.3, 1.0, 0.6)
	dc.DrawCircle(s.X, s.Y, 2+6*fluxFraction(s.Flux, fs))
	dc.Stroke()
}

func MarkByPlainDot(dc *gg.Context, s catalog.Source, fs catalog.FluxStats) {
	dc.SetRGB(0.3, 1.0, 0.6)
	dc.DrawCircle(s.X, s.Y, 2)
	dc.Fill()
}

// fluxFraction maps a flux into [0,1] on a log scale across the
// catalog's flux range. Stars span decades of flux; a linear ramp
// would leave everything but the brightest star at the cold end.
func fluxFraction(flux float64, fs catalog.FluxStats) float64 {
	if flux <= 0 || fs.Min <= 0 || fs.Max <= fs.Min {
		return 0
	}
	f := (math.Log2(flux) - math.Log2(fs.Min)) / (math.Log2(fs.Max) - math.Log2(fs.Min))
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return f
}

func RenderOverlay(m *Masker) image.Image {
	var dc *gg.Context

	if m.BaseImage != nil {
		dc = gg.NewContextForImage(m.BaseImage)
	} else {
		bounds := overlayBounds(m)
		dc = gg.NewContext(bounds.Dx(), bounds.Dy())
		dc.SetRGB(0.06, 0.06, 0.10)
		dc.Clear()
	}

	drawRegions(dc, m.Regions)

	fs := m.Catalog.FluxStats()
	marker := m.Config.GetMarker()

	dc.SetLineWidth(1)
	for _, s := range m.Dropped {
		dc.SetRGB(0.45, 0.45, 0.45)
		dc.DrawLine(s.X-3, s.Y-3, s.X+3, s.Y+3)
		dc.DrawLine(s.X-3, s.Y+3, s.X+3, s.Y-3)
		dc.Stroke()
	}
	for _, s := range m.Kept {
		marker(dc, s, fs)
	}

	return dc.Image()
}

func drawRegions(dc *gg.Context, regs []regions.Region) {
	dc.SetLineWidth(1.5)

	for _, r := range regs {
		if r.Exclude {
			dc.SetRGB(0.9, 0.25, 0.25)
			dc.SetDash(6, 4)
		} else {
			dc.SetRGB(0.25, 0.9, 0.35)
			dc.SetDash()
		}

		switch r.Kind {

		case regions.Circle:
			dc.DrawCircle(r.CX, r.CY, r.R)

		case regions.Ellipse:
			dc.Push()
			dc.RotateAbout(gg.Radians(r.AngleDeg), r.CX, r.CY)
			dc.DrawEllipse(r.CX, r.CY, r.RX, r.RY)
			dc.Pop()

		case regions.Box:
			dc.Push()
			dc.RotateAbout(gg.Radians(r.AngleDeg), r.CX, r.CY)
			dc.DrawRectangle(r.CX-r.W/2, r.CY-r.H/2, r.W, r.H)
			dc.Pop()

		case regions.Polygon:
			dc.MoveTo(r.Vertices[0].X, r.Vertices[0].Y)
			for _, v := range r.Vertices[1:] {
				dc.LineTo(v.X, v.Y)
			}
			dc.ClosePath()
		}

		dc.Stroke()
	}

	dc.SetDash()
}

// overlayBounds picks a canvas big enough for everything when there's
// no backdrop image to size against.
func overlayBounds(m *Masker) image.Rectangle {
	bounds := image.Rectangle{}

	grow := func(x, y float64) {
		p := image.Point{int(math.Ceil(x)), int(math.Ceil(y))}
		if bounds.Max.X == 0 && bounds.Max.Y == 0 {
			bounds.Min = p
			bounds.Max = p
		} else {
			bounds = GrowRectangle(bounds, p)
		}
	}

	for _, s := range m.Catalog.Sources {
		grow(s.X, s.Y)
	}
	for _, r := range m.Regions {
		switch r.Kind {
		case regions.Circle:
			grow(r.CX+r.R, r.CY+r.R)
		case regions.Ellipse:
			rMax := math.Max(r.RX, r.RY)
			grow(r.CX+rMax, r.CY+rMax)
		case regions.Box:
			rMax := math.Hypot(r.W, r.H) / 2
			grow(r.CX+rMax, r.CY+rMax)
		case regions.Polygon:
			for _, v := range r.Vertices {
				grow(v.X, v.Y)
			}
		}
	}

	// Pad, and anchor at the origin so pixel coords land where expected
	bounds.Min = image.Point{}
	bounds.Max.X += 16
	bounds.Max.Y += 16
	return bounds
}
