package catalog

import (
	"fmt"
	"math"
	"sort"

	"github.com/skypies/util/histogram"
	"gonum.org/v1/gonum/stat"
)

// FluxStats summarizes the flux column of a catalog. Median/MAD rather
// than mean/stddev, since detection catalogs always have a few
// cosmic-ray hits or saturated stars way out in the tail.
type FluxStats struct {
	N      int
	Min    float64
	Max    float64
	Median float64
	MAD    float64
}

func (fs FluxStats)String() string {
	return fmt.Sprintf("flux[n=%d, %.1f->%.1f, median %.1f +/- %.1f MAD]",
		fs.N, fs.Min, fs.Max, fs.Median, fs.MAD)
}

func (c Catalog)FluxStats() FluxStats {
	fs := FluxStats{N: len(c.Sources)}
	if fs.N == 0 {
		return fs
	}

	vals := make([]float64, fs.N)
	for i, s := range c.Sources {
		vals[i] = s.Flux
	}
	sort.Float64s(vals)

	fs.Min = vals[0]
	fs.Max = vals[fs.N-1]
	fs.Median = stat.Quantile(0.5, stat.Empirical, vals, nil)

	devs := make([]float64, fs.N)
	for i, v := range vals {
		devs[i] = math.Abs(v - fs.Median)
	}
	sort.Float64s(devs)
	fs.MAD = stat.Quantile(0.5, stat.Empirical, devs, nil)

	return fs
}

// FluxHistogram builds a histogram over log2(flux), one bucket per
// half-stop. Fluxes <= 0 (sky-subtraction artifacts) are skipped.
func (c Catalog)FluxHistogram() histogram.Histogram {
	h := histogram.Histogram{NumBuckets: 64, ValMin: 0, ValMax: 64}

	for _, s := range c.Sources {
		if s.Flux <= 0 {
			continue
		}
		h.Add(histogram.ScalarVal(int(math.Log2(s.Flux) * 2.0)))
	}

	return h
}
