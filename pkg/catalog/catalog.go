package catalog

import (
	"fmt"
	"math"
)

// A Source is a point-like detection in an astronomical image: a
// position in image pixel coordinates, plus the flux and id assigned
// by whatever upstream detection step produced the catalog. We never
// modify a source, we only decide whether to keep it.
type Source struct {
	X    float64
	Y    float64
	Flux float64
	ID   int
}

func (s Source)String() string {
	return fmt.Sprintf("src[#%d (%.2f,%.2f) flux %.1f]", s.ID, s.X, s.Y, s.Flux)
}

// An InvalidSourceError means a source had coordinates we can't do
// geometry with (NaN / Inf). The whole filtering pass aborts; the
// catalog needs fixing upstream, not us papering over it.
type InvalidSourceError struct {
	ID     int
	Line   int    // 1-based line in the catalog file, 0 if unknown
	Reason string
}

func (e *InvalidSourceError)Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid source #%d (line %d): %s", e.ID, e.Line, e.Reason)
	}
	return fmt.Sprintf("invalid source #%d: %s", e.ID, e.Reason)
}

// Validate checks the source coordinates are usable.
func (s Source)Validate() error {
	if !isFinite(s.X) || !isFinite(s.Y) {
		return &InvalidSourceError{ID: s.ID, Reason: fmt.Sprintf("non-finite coords (%v,%v)", s.X, s.Y)}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// A Catalog is an ordered list of sources, as read from a catalog
// file. Order is the file's row order, and survives filtering.
type Catalog struct {
	LoadFilename string
	Sources      []Source
}

func (c Catalog)String() string {
	return fmt.Sprintf("catalog[%s, %d sources]", c.LoadFilename, len(c.Sources))
}

// Validate runs Source.Validate over the whole catalog, failing on the
// first bad row.
func (c Catalog)Validate() error {
	for _, s := range c.Sources {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
