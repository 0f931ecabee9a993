package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/duskmantle/delve/internal/game/grid"
)

// TestDist_Chebyshev: diagonal steps cost 1.
func TestDist_Chebyshev(t *testing.T) {
	assert.Equal(t, 0, grid.Dist(grid.Point{1, 1}, grid.Point{1, 1}))
	assert.Equal(t, 3, grid.Dist(grid.Point{0, 0}, grid.Point{3, 3}))
	assert.Equal(t, 5, grid.Dist(grid.Point{0, 0}, grid.Point{5, 2}))
	assert.Equal(t, 4, grid.Dist(grid.Point{2, 6}, grid.Point{0, 2}))
}

// TestDist_Symmetric_Property verifies symmetry and non-negativity.
func TestDist_Symmetric_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := grid.Point{rapid.IntRange(-50, 50).Draw(rt, "ax"), rapid.IntRange(-50, 50).Draw(rt, "ay")}
		b := grid.Point{rapid.IntRange(-50, 50).Draw(rt, "bx"), rapid.IntRange(-50, 50).Draw(rt, "by")}
		assert.Equal(rt, grid.Dist(a, b), grid.Dist(b, a))
		assert.GreaterOrEqual(rt, grid.Dist(a, b), 0)
	})
}

// TestStepToward_TieBreakOrder pins the movement tie-break: diagonal first,
// then horizontal, then vertical, then perpendicular detours.
func TestStepToward_TieBreakOrder(t *testing.T) {
	steps := grid.StepToward(grid.Point{0, 0}, grid.Point{5, 3})
	require.NotEmpty(t, steps)
	assert.Equal(t, grid.Point{1, 1}, steps[0], "diagonal first")
	assert.Equal(t, grid.Point{1, 0}, steps[1], "then horizontal")
	assert.Equal(t, grid.Point{0, 1}, steps[2], "then vertical")
	// Detours keep progress on one axis while deviating on the other.
	assert.Contains(t, steps[3:], grid.Point{1, -1})
	assert.Contains(t, steps[3:], grid.Point{-1, 1})
}

// TestStepToward_StraightLine: no diagonal candidate when aligned on an axis.
func TestStepToward_StraightLine(t *testing.T) {
	steps := grid.StepToward(grid.Point{4, 4}, grid.Point{8, 4})
	require.NotEmpty(t, steps)
	assert.Equal(t, grid.Point{5, 4}, steps[0], "horizontal progress first")
	assert.Contains(t, steps, grid.Point{5, 3}, "detour above")
	assert.Contains(t, steps, grid.Point{5, 5}, "detour below")
}

// TestStepToward_AtTarget returns no candidates.
func TestStepToward_AtTarget(t *testing.T) {
	assert.Empty(t, grid.StepToward(grid.Point{2, 2}, grid.Point{2, 2}))
}

// TestStepAway mirrors pursuit: first candidate increases distance to threat.
func TestStepAway(t *testing.T) {
	from := grid.Point{3, 3}
	threat := grid.Point{1, 2}
	steps := grid.StepAway(from, threat)
	require.NotEmpty(t, steps)
	assert.Greater(t, grid.Dist(steps[0], threat), grid.Dist(from, threat))
}

// TestNeighbors_FixedOrder pins the surround-heuristic cell order.
func TestNeighbors_FixedOrder(t *testing.T) {
	n := grid.Neighbors(grid.Point{5, 5})
	assert.Equal(t, grid.Point{5, 4}, n[0], "north first")
	assert.Equal(t, grid.Point{6, 4}, n[1])
	assert.Equal(t, grid.Point{6, 5}, n[2])
	assert.Equal(t, grid.Point{4, 4}, n[7], "northwest last")
	seen := map[grid.Point]bool{}
	for _, p := range n {
		assert.Equal(t, 1, grid.Dist(grid.Point{5, 5}, p))
		seen[p] = true
	}
	assert.Len(t, seen, 8)
}

// TestConeCells_East: a range-3 cone pointing east holds the cells a breath
// weapon should cover and nothing behind the breather.
func TestConeCells_East(t *testing.T) {
	origin := grid.Point{0, 0}
	cells := grid.ConeCells(origin, grid.Point{3, 0}, 3)
	require.NotEmpty(t, cells)

	assert.Contains(t, cells, grid.Point{1, 0})
	assert.Contains(t, cells, grid.Point{3, 0})
	assert.Contains(t, cells, grid.Point{2, 2}, "45° edge is inside the cone")
	assert.Contains(t, cells, grid.Point{2, -2})

	assert.NotContains(t, cells, origin, "origin excluded")
	assert.NotContains(t, cells, grid.Point{-1, 0}, "nothing behind the breather")
	assert.NotContains(t, cells, grid.Point{0, 2}, "nothing perpendicular")
	assert.NotContains(t, cells, grid.Point{4, 0}, "range respected")

	for _, c := range cells {
		assert.LessOrEqual(t, grid.Dist(origin, c), 3)
	}
}

// TestConeCells_Diagonal covers a non-axis-aligned cone.
func TestConeCells_Diagonal(t *testing.T) {
	origin := grid.Point{10, 10}
	cells := grid.ConeCells(origin, grid.Point{12, 12}, 2)
	assert.Contains(t, cells, grid.Point{11, 11})
	assert.Contains(t, cells, grid.Point{12, 12})
	assert.Contains(t, cells, grid.Point{11, 10}, "45° off-axis included")
	assert.Contains(t, cells, grid.Point{10, 11})
	assert.NotContains(t, cells, grid.Point{9, 9}, "behind excluded")
}

// TestConeCells_DegenerateInputs resolve to nil, never panic.
func TestConeCells_DegenerateInputs(t *testing.T) {
	assert.Nil(t, grid.ConeCells(grid.Point{1, 1}, grid.Point{1, 1}, 3))
	assert.Nil(t, grid.ConeCells(grid.Point{1, 1}, grid.Point{2, 1}, 0))
}
