package regions

import (
	"fmt"
)

// A Region is a shape plus the two bits of bookkeeping that make the
// filter work: its polarity, and its position in the originating file.
//
// Order is load-bearing. The filter applies regions in ascending
// OrderIndex, and a later region's verdict for a point overrides an
// earlier one's - so a region list must stay an ordered slice, never
// get shoved into a map.
type Region struct {
	Shape

	Exclude    bool // true if the file line was prefixed with '-'
	OrderIndex int  // position in the originating region file
	SrcLine    int  // 1-based file line, for error messages
}

func (r Region)String() string {
	sign := "+"
	if r.Exclude {
		sign = "-"
	}
	return fmt.Sprintf("%s%s @%d", sign, r.Shape, r.OrderIndex)
}

// Validate checks the region's geometry, decorating any error with the
// source line.
func (r Region)Validate() error {
	if err := r.Shape.Validate(); err != nil {
		if ire, ok := err.(*InvalidRegionError); ok {
			ire.Line = r.SrcLine
		}
		return err
	}
	return nil
}
