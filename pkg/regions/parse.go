package regions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parses DS9-style region files, in image pixel coordinates:
//
//   # Region file format: DS9 version 4.1
//   global color=green dashlist=8 3 width=1
//   image
//   circle(3170,198,20)
//   ellipse(3269,428,30,10,45)
//   box(3241.2,219.5,42,42,0)
//   polygon(100,100,200,100,200,200,100,200)
//   -circle(3276,198,20)
//
// A '-' prefix marks an exclusion region. Comment lines, 'global'
// property lines and coordinate-system declarations are skipped. Any
// shape kind we don't do geometry on (point, line, annulus, text, ...)
// is skipped too, and counted so callers can report it - it is not an
// error, region files in the wild are full of annotation shapes.

// Coordinate-system declaration lines, per the DS9 manual. We only do
// pixel-plane geometry, so they're all just skipped.
var coordSystems = map[string]bool{
	"image": true, "physical": true, "fk4": true, "fk5": true,
	"icrs": true, "galactic": true, "ecliptic": true, "wcs": true,
	"linear": true, "amplifier": true, "detector": true,
}

func ParseFile(filename string) ([]Region, int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("regions open+r '%s': %v", filename, err)
	}
	defer f.Close()

	regs, skipped, err := Parse(f)
	if err != nil {
		return regs, skipped, fmt.Errorf("regions parse '%s': %v", filename, err)
	}
	return regs, skipped, nil
}

// Parse reads a region file. Returns the regions in file order (with
// OrderIndex assigned), plus a count of unsupported shapes skipped.
func Parse(r io.Reader) ([]Region, int, error) {
	regs := []Region{}
	skipped := 0
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()

		// Strip trailing comments/properties, e.g. "circle(1,2,3) # color=red"
		if idx := strings.Index(text, "#"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, "global") || coordSystems[lower] {
			continue
		}

		exclude := false
		switch {
		case strings.HasPrefix(text, "-"):
			exclude = true
			text = strings.TrimSpace(text[1:])
		case strings.HasPrefix(text, "+"):
			text = strings.TrimSpace(text[1:])
		}

		name, params := splitShapeLine(text)

		sh, supported, err := buildShape(name, params)
		if err != nil {
			return regs, skipped, &InvalidRegionError{Line: line, Shape: name, Reason: err.Error()}
		}
		if !supported {
			skipped++
			continue
		}

		reg := Region{
			Shape:      sh,
			Exclude:    exclude,
			OrderIndex: len(regs),
			SrcLine:    line,
		}
		if err := reg.Validate(); err != nil {
			return regs, skipped, err
		}

		regs = append(regs, reg)
	}

	return regs, skipped, scanner.Err()
}

// splitShapeLine splits "circle(1,2,3)" or "circle 1 2 3" into a shape
// name and its numeric parameters.
func splitShapeLine(text string) (string, []string) {
	name := text
	rest := ""

	if idx := strings.IndexAny(text, "( \t"); idx >= 0 {
		name = text[:idx]
		rest = text[idx:]
	}

	rest = strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', ',':
			return ' '
		}
		return r
	}, rest)

	return strings.ToLower(strings.TrimSpace(name)), strings.Fields(rest)
}

// buildShape constructs a Shape from a parsed line. The bool is false
// when the shape kind isn't one of ours (caller skips it); an error
// means a supported shape with unusable parameters.
func buildShape(name string, params []string) (Shape, bool, error) {
	vals, err := parseFloats(params)
	if err != nil {
		// Only complain about bad numbers on shapes we support
		if isSupportedShapeName(name) {
			return Shape{}, true, err
		}
		return Shape{}, false, nil
	}

	switch name {

	case "circle":
		if len(vals) != 3 {
			return Shape{}, true, fmt.Errorf("circle wants 3 params, got %d", len(vals))
		}
		return Shape{Kind: Circle, CX: vals[0], CY: vals[1], R: vals[2]}, true, nil

	case "ellipse":
		if len(vals) != 4 && len(vals) != 5 {
			return Shape{}, true, fmt.Errorf("ellipse wants 4 or 5 params, got %d", len(vals))
		}
		sh := Shape{Kind: Ellipse, CX: vals[0], CY: vals[1], RX: vals[2], RY: vals[3]}
		if len(vals) == 5 {
			sh.AngleDeg = vals[4]
		}
		return sh, true, nil

	case "box":
		if len(vals) != 4 && len(vals) != 5 {
			return Shape{}, true, fmt.Errorf("box wants 4 or 5 params, got %d", len(vals))
		}
		sh := Shape{Kind: Box, CX: vals[0], CY: vals[1], W: vals[2], H: vals[3]}
		if len(vals) == 5 {
			sh.AngleDeg = vals[4]
		}
		return sh, true, nil

	case "polygon":
		if len(vals) < 6 || len(vals)%2 != 0 {
			return Shape{}, true, fmt.Errorf("polygon wants an even number (>=6) of params, got %d", len(vals))
		}
		sh := Shape{Kind: Polygon}
		for i := 0; i < len(vals); i += 2 {
			sh.Vertices = append(sh.Vertices, Point{vals[i], vals[i+1]})
		}
		return sh, true, nil
	}

	return Shape{}, false, nil
}

func isSupportedShapeName(name string) bool {
	switch name {
	case "circle", "ellipse", "box", "polygon":
		return true
	}
	return false
}

func parseFloats(strs []string) ([]float64, error) {
	vals := make([]float64, len(strs))
	for i, s := range strs {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number '%s'", s)
		}
		vals[i] = v
	}
	return vals, nil
}
