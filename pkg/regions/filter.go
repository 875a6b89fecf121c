package regions

import (
	"sort"
	"sync"

	"github.com/astroshed/srcmask/pkg/catalog"
)

// Membership is a source's current verdict while walking the region
// list: kept or dropped. The walk is a two-state machine; each region
// that contains the point overwrites the state with its own polarity,
// so the last applicable region always wins.
type Membership int

const (
	Excluded Membership = iota
	Included
)

func (m Membership)String() string {
	if m == Included {
		return "included"
	}
	return "excluded"
}

// DefaultMembership is the state a point starts in, before any region
// has been applied. If the list has at least one inclusion region,
// nothing is kept unless a region brings it in; if the list is
// exclusion-only, everything is kept unless a region throws it out.
// Computed once per list, then passed around as plain data.
func DefaultMembership(regs []Region) Membership {
	for _, r := range regs {
		if !r.Exclude {
			return Excluded
		}
	}
	return Included
}

// Verdict walks the regions in ascending OrderIndex for a single
// point. Callers must pass regions already sorted (Filter does).
func Verdict(x, y float64, regs []Region, baseline Membership) Membership {
	state := baseline
	for _, r := range regs {
		if r.Contains(x, y) {
			if r.Exclude {
				state = Excluded
			} else {
				state = Included
			}
		}
	}
	return state
}

// Filter returns the sub-sequence of sources whose final verdict is
// Included, in their original order. With no regions at all, every
// source passes through untouched.
//
// All regions and sources are validated up front; any malformed
// geometry aborts the whole call with no partial result.
func Filter(srcs []catalog.Source, regs []Region) ([]catalog.Source, error) {
	regs, err := prepare(srcs, regs)
	if err != nil {
		return nil, err
	}

	out := make([]catalog.Source, 0, len(srcs))
	if len(regs) == 0 {
		return append(out, srcs...), nil
	}

	baseline := DefaultMembership(regs)
	for _, s := range srcs {
		if Verdict(s.X, s.Y, regs, baseline) == Included {
			out = append(out, s)
		}
	}
	return out, nil
}

type verdictJob struct {
	Idx  int
	Keep bool
}

// FilterConcurrently is Filter with the per-source verdicts computed
// by a pool of goroutines. Each source's verdict is independent of
// every other's, so they can be scored in any order across workers;
// the region walk within one verdict stays strictly ordered. Output
// order is still the sources' original order.
func FilterConcurrently(srcs []catalog.Source, regs []Region, nWorkers int) ([]catalog.Source, error) {
	regs, err := prepare(srcs, regs)
	if err != nil {
		return nil, err
	}

	out := make([]catalog.Source, 0, len(srcs))
	if len(regs) == 0 {
		return append(out, srcs...), nil
	}
	if nWorkers < 1 {
		nWorkers = 1
	}

	baseline := DefaultMembership(regs)

	var wg sync.WaitGroup
	jobsChan    := make(chan int, len(srcs))
	resultsChan := make(chan verdictJob, len(srcs))

	// Kick off worker pool
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			for idx := range jobsChan {
				keep := Verdict(srcs[idx].X, srcs[idx].Y, regs, baseline) == Included
				resultsChan<- verdictJob{idx, keep}
			}
		}()
	}

	// Feed in jobs
	for i := range srcs {
		jobsChan<- i
	}

	close(jobsChan)
	wg.Wait()
	close(resultsChan)

	// Reassemble in catalog order
	keep := make([]bool, len(srcs))
	for result := range resultsChan {
		keep[result.Idx] = result.Keep
	}
	for i, s := range srcs {
		if keep[i] {
			out = append(out, s)
		}
	}

	return out, nil
}

// prepare validates everything up front (fail-fast, no partial
// output), and returns a private copy of the regions sorted by
// OrderIndex - the declared order is the semantics, not the slice
// position a caller happened to build.
func prepare(srcs []catalog.Source, regs []Region) ([]Region, error) {
	for _, r := range regs {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	for _, s := range srcs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	sorted := append([]Region(nil), regs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })
	return sorted, nil
}
