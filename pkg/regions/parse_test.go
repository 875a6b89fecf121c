package regions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypicalFile(t *testing.T) {
	input := `# Region file format: DS9 version 4.1
global color=green dashlist=8 3 width=1 font="helvetica 10 normal"
image
circle(3170,198,20)
ellipse(3269,428,30,10,45) # color=red
box(3241.2,219.5,42,42,0)
-circle(3276,198,20)
polygon(100,100,200,100,200,200,100,200)
point(3300,500)
annulus(3170,198,20,30)
`

	regs, skipped, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, skipped, "point and annulus get dropped")
	require.Len(t, regs, 5)

	// Order and order indices follow file order
	for i, r := range regs {
		assert.Equal(t, i, r.OrderIndex)
	}

	assert.Equal(t, Circle, regs[0].Kind)
	assert.False(t, regs[0].Exclude)
	assert.Equal(t, 20.0, regs[0].R)

	assert.Equal(t, Ellipse, regs[1].Kind)
	assert.Equal(t, 45.0, regs[1].AngleDeg)

	assert.Equal(t, Box, regs[2].Kind)
	assert.Equal(t, 42.0, regs[2].W)

	assert.Equal(t, Circle, regs[3].Kind)
	assert.True(t, regs[3].Exclude, "'-' prefix marks exclusion")

	assert.Equal(t, Polygon, regs[4].Kind)
	assert.Len(t, regs[4].Vertices, 4)
}

func TestParseWhitespaceForm(t *testing.T) {
	regs, skipped, err := Parse(strings.NewReader("circle 50 60 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, regs, 1)
	assert.Equal(t, Shape{Kind: Circle, CX: 50, CY: 60, R: 7}, regs[0].Shape)
}

func TestParsePlusPrefix(t *testing.T) {
	regs, _, err := Parse(strings.NewReader("+circle(1,2,3)\n"))
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.False(t, regs[0].Exclude)
}

func TestParseEmptyAndCommentsOnly(t *testing.T) {
	regs, skipped, err := Parse(strings.NewReader("# nothing here\n\nimage\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Empty(t, regs)
}

func TestParseMalformedGeometry(t *testing.T) {
	cases := []string{
		"circle(10,10,0)\n",       // zero radius
		"circle(10,10,-5)\n",      // negative radius
		"box(10,10,0,5,0)\n",      // zero width
		"circle(10,10)\n",         // wrong arity
		"circle(10,ten,5)\n",      // junk number
		"polygon(0,0,1,1)\n",      // too few vertices
	}

	for _, input := range cases {
		_, _, err := Parse(strings.NewReader(input))
		require.Error(t, err, input)
		ire := &InvalidRegionError{}
		assert.ErrorAs(t, err, &ire, input)
		assert.Equal(t, 1, ire.Line, input)
	}
}

func TestParseErrorReportsLine(t *testing.T) {
	input := "circle(1,1,5)\ncircle(2,2,5)\ncircle(3,3,-1)\n"
	_, _, err := Parse(strings.NewReader(input))
	require.Error(t, err)

	ire := &InvalidRegionError{}
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, 3, ire.Line)
}

func TestParseUnsupportedShapesAreNotErrors(t *testing.T) {
	input := `line(0,0,100,100)
text(50,50) text={hello}
vector(10,10,20,30)
circle(5,5,5)
`
	regs, skipped, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	assert.Len(t, regs, 1)
}
