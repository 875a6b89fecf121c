package regions

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroshed/srcmask/pkg/catalog"
)

func srcs(pts ...[2]float64) []catalog.Source {
	out := make([]catalog.Source, len(pts))
	for i, p := range pts {
		out[i] = catalog.Source{ID: i + 1, X: p[0], Y: p[1], Flux: 100}
	}
	return out
}

func circleAt(cx, cy, r float64, exclude bool, order int) Region {
	return Region{
		Shape:      Shape{Kind: Circle, CX: cx, CY: cy, R: r},
		Exclude:    exclude,
		OrderIndex: order,
	}
}

func boxAt(cx, cy, w, h float64, exclude bool, order int) Region {
	return Region{
		Shape:      Shape{Kind: Box, CX: cx, CY: cy, W: w, H: h},
		Exclude:    exclude,
		OrderIndex: order,
	}
}

func TestNoRegionsPassesThrough(t *testing.T) {
	in := srcs([2]float64{10, 10}, [2]float64{50, 50}, [2]float64{3, 99})

	out, err := Filter(in, nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(in, out), "no regions means output == input, order preserved")

	out, err = Filter(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExclusionOnlyBaseline(t *testing.T) {
	// Only exclusion regions present: everything outside them is kept
	regs := []Region{
		circleAt(10, 10, 5, true, 0),
		circleAt(90, 90, 5, true, 1),
	}
	assert.Equal(t, Included, DefaultMembership(regs))

	in := srcs([2]float64{10, 10}, [2]float64{50, 50}, [2]float64{90, 90})
	out, err := Filter(in, regs)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, 50.0, out[0].X)
}

func TestInclusionOnlyBaseline(t *testing.T) {
	// Only inclusion regions present: only sources inside one are kept
	regs := []Region{
		circleAt(10, 10, 5, false, 0),
	}
	assert.Equal(t, Excluded, DefaultMembership(regs))

	in := srcs([2]float64{10, 10}, [2]float64{50, 50})
	out, err := Filter(in, regs)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0].X)
}

// The defining behavior: swapping the order of two overlapping
// opposite-polarity regions flips the verdict for points in the
// overlap, and only for those points.
func TestLastApplicableRegionWins(t *testing.T) {
	in := srcs([2]float64{5, 5}, [2]float64{-8, -8}, [2]float64{100, 100})

	include := boxAt(0, 0, 20, 20, false, 0)
	exclude := circleAt(5, 5, 3, true, 1)

	// Exclusion last: (5,5) is dropped
	out, err := Filter(in, []Region{include, exclude})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, -8.0, out[0].X, "only the box-not-circle point survives")

	// Swap the order: inclusion last, (5,5) is kept
	include.OrderIndex, exclude.OrderIndex = 1, 0
	out, err = Filter(in, []Region{include, exclude})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 5.0, out[0].X)
	assert.Equal(t, -8.0, out[1].X)
}

// OrderIndex is the precedence, not slice position.
func TestOrderIndexBeatsSlicePosition(t *testing.T) {
	in := srcs([2]float64{5, 5})

	include := boxAt(0, 0, 20, 20, false, 1) // applies second
	exclude := circleAt(5, 5, 3, true, 0)    // applies first

	// Slice order has the exclusion last, but OrderIndex says it runs
	// first, so the inclusion wins.
	out, err := Filter(in, []Region{include, exclude})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestBoundaryPointsAreInside(t *testing.T) {
	in := srcs([2]float64{15, 10}) // exactly on the circle's radius

	out, err := Filter(in, []Region{circleAt(10, 10, 5, false, 0)})
	require.NoError(t, err)
	assert.Len(t, out, 1, "boundary counts as contained")

	out, err = Filter(in, []Region{circleAt(10, 10, 5, true, 0)})
	require.NoError(t, err)
	assert.Empty(t, out, "boundary counts as contained for exclusions too")
}

func TestFilterIsIdempotent(t *testing.T) {
	regs := []Region{
		boxAt(50, 50, 100, 100, false, 0),
		circleAt(20, 20, 10, true, 1),
	}
	in := srcs([2]float64{20, 20}, [2]float64{80, 80}, [2]float64{500, 500}, [2]float64{60, 40})

	once, err := Filter(in, regs)
	require.NoError(t, err)
	twice, err := Filter(once, regs)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(once, twice))
}

func TestScenarioExcludeCircle(t *testing.T) {
	in := srcs([2]float64{10, 10}, [2]float64{50, 50})
	out, err := Filter(in, []Region{circleAt(10, 10, 5, true, 0)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 50.0, out[0].X)
}

func TestScenarioIncludeCircle(t *testing.T) {
	in := srcs([2]float64{10, 10}, [2]float64{50, 50})
	out, err := Filter(in, []Region{circleAt(10, 10, 5, false, 0)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0].X)
}

func TestInvalidRegionAbortsWholeCall(t *testing.T) {
	in := srcs([2]float64{10, 10}, [2]float64{50, 50})
	regs := []Region{
		circleAt(10, 10, 5, false, 0),
		circleAt(20, 20, -1, true, 1), // malformed
	}

	out, err := Filter(in, regs)
	require.Error(t, err)
	ire := &InvalidRegionError{}
	assert.ErrorAs(t, err, &ire)
	assert.Nil(t, out, "no partial results")
}

func TestInvalidSourceAbortsWholeCall(t *testing.T) {
	in := []catalog.Source{
		{ID: 1, X: 10, Y: 10},
		{ID: 2, X: math.NaN(), Y: 10},
	}

	out, err := Filter(in, []Region{circleAt(10, 10, 5, true, 0)})
	require.Error(t, err)
	ise := &catalog.InvalidSourceError{}
	assert.ErrorAs(t, err, &ise)
	assert.Nil(t, out)
}

func TestSamePolarityOverlapsAreHarmless(t *testing.T) {
	// Duplicate exclusion shapes don't change anything
	regs := []Region{
		circleAt(10, 10, 5, true, 0),
		circleAt(10, 10, 5, true, 1),
		circleAt(12, 10, 5, true, 2),
	}
	in := srcs([2]float64{10, 10}, [2]float64{50, 50})
	out, err := Filter(in, regs)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 50.0, out[0].X)
}

func TestFilterConcurrentlyMatchesSequential(t *testing.T) {
	// A pile of sources on a grid, against a mixed region list
	in := []catalog.Source{}
	id := 0
	for x := 0.0; x < 100; x += 3 {
		for y := 0.0; y < 100; y += 3 {
			id++
			in = append(in, catalog.Source{ID: id, X: x, Y: y, Flux: x + y})
		}
	}

	regs := []Region{
		boxAt(30, 30, 40, 40, false, 0),
		circleAt(30, 30, 8, true, 1),
		{Shape: Shape{Kind: Polygon, Vertices: []Point{{60, 60}, {95, 60}, {95, 95}, {60, 95}}}, OrderIndex: 2},
		{Shape: Shape{Kind: Ellipse, CX: 70, CY: 70, RX: 10, RY: 4, AngleDeg: 30}, Exclude: true, OrderIndex: 3},
	}

	seq, err := Filter(in, regs)
	require.NoError(t, err)

	for _, nWorkers := range []int{1, 4, 32} {
		conc, err := FilterConcurrently(in, regs, nWorkers)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(seq, conc), "workers=%d", nWorkers)
	}
}

func TestVerdictStateMachine(t *testing.T) {
	// in include, then out of exclude, then back in include:
	// state walks Excluded -> Included -> Excluded -> Included
	regs := []Region{
		circleAt(0, 0, 10, false, 0),
		circleAt(0, 0, 5, true, 1),
		circleAt(0, 0, 2, false, 2),
	}

	assert.Equal(t, Included, Verdict(0, 0, regs, Excluded), "innermost include wins")
	assert.Equal(t, Excluded, Verdict(0, 4, regs, Excluded), "mid ring excluded")
	assert.Equal(t, Included, Verdict(0, 8, regs, Excluded), "outer ring included")
	assert.Equal(t, Excluded, Verdict(0, 20, regs, Excluded), "outside everything stays at baseline")
}
