// Package grid provides integer-grid geometry for the creature engine and the
// spatial query facade supplied by the dungeon collaborator. The engine never
// owns or mutates the map; it only asks questions through SpatialQuery.
package grid

import "math"

// Point is a position on the integer dungeon grid.
type Point struct {
	X int
	Y int
}

// Dist returns the Chebyshev distance between a and b. Diagonal steps cost 1,
// matching the engine's 8-direction movement.
//
// Postcondition: return value >= 0.
func Dist(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// SpatialQuery is the dungeon collaborator's interface. Implementations must
// answer conservatively for coordinates they cannot resolve: not passable,
// a wall, no occupant, no line of sight. They must never panic on
// out-of-bounds input.
type SpatialQuery interface {
	// IsPassable reports whether a creature may occupy (x, y).
	IsPassable(x, y int) bool
	// IsWall reports whether (x, y) is opaque terrain.
	IsWall(x, y int) bool
	// OccupantAt returns the ID of the entity at (x, y), or "" when vacant.
	OccupantAt(x, y int) string
	// OccupantsInRadius returns the IDs of all entities within Chebyshev
	// distance r of (x, y), excluding vacancy but including (x, y) itself.
	OccupantsInRadius(x, y, r int) []string
	// LineOfSight reports whether an unobstructed sight line exists between
	// the two points.
	LineOfSight(from, to Point) bool
}

// Neighbors returns the 8 cells adjacent to p in a fixed clockwise order
// starting north. The ordering is the tie-break for the pack-hunter surround
// heuristic and must stay stable.
func Neighbors(p Point) [8]Point {
	return [8]Point{
		{p.X, p.Y - 1},
		{p.X + 1, p.Y - 1},
		{p.X + 1, p.Y},
		{p.X + 1, p.Y + 1},
		{p.X, p.Y + 1},
		{p.X - 1, p.Y + 1},
		{p.X - 1, p.Y},
		{p.X - 1, p.Y - 1},
	}
}

// StepToward returns candidate next cells from `from` moving toward `to`, in
// the engine's movement tie-break order: the diagonal first, then the
// horizontal, then the vertical, then the perpendicular detours. Callers take
// the first candidate that is passable and unoccupied; none passing is a
// valid "accomplished nothing" outcome.
//
// Postcondition: returns an empty slice iff from == to.
func StepToward(from, to Point) []Point {
	dx := sign(to.X - from.X)
	dy := sign(to.Y - from.Y)
	if dx == 0 && dy == 0 {
		return nil
	}

	var steps []Point
	if dx != 0 && dy != 0 {
		steps = append(steps, Point{from.X + dx, from.Y + dy})
	}
	if dx != 0 {
		steps = append(steps, Point{from.X + dx, from.Y})
	}
	if dy != 0 {
		steps = append(steps, Point{from.X, from.Y + dy})
	}

	// Perpendicular detours: keep whatever axis progress is available while
	// deviating on the other axis.
	if dx != 0 {
		for _, perp := range []int{-1, 1} {
			if perp != dy {
				steps = append(steps, Point{from.X + dx, from.Y + perp})
			}
		}
	}
	if dy != 0 {
		for _, perp := range []int{-1, 1} {
			if perp != dx {
				steps = append(steps, Point{from.X + perp, from.Y + dy})
			}
		}
	}
	return dedupe(steps, from)
}

// StepAway returns candidate next cells moving away from threat, using the
// same tie-break order as StepToward.
func StepAway(from, threat Point) []Point {
	// Fleeing toward the mirrored point reuses the pursuit ordering.
	mirrored := Point{from.X + (from.X - threat.X), from.Y + (from.Y - threat.Y)}
	if mirrored == from {
		// Standing on the threat: any direction is away.
		n := Neighbors(from)
		return n[:]
	}
	return StepToward(from, mirrored)
}

// ConeCells returns every cell within an angular cone (±45° about the
// origin→toward direction) out to Chebyshev range rng, excluding origin.
// Enumeration order is deterministic (row-major over the bounding box), so
// breath-weapon victim ordering is reproducible.
//
// Precondition: rng >= 1; toward != origin.
func ConeCells(origin, toward Point, rng int) []Point {
	if rng < 1 || origin == toward {
		return nil
	}
	axisX := float64(toward.X - origin.X)
	axisY := float64(toward.Y - origin.Y)
	axisLen := math.Hypot(axisX, axisY)

	const cosHalfAngle = 0.70710678 // cos 45°

	var cells []Point
	for y := origin.Y - rng; y <= origin.Y+rng; y++ {
		for x := origin.X - rng; x <= origin.X+rng; x++ {
			p := Point{x, y}
			if p == origin || Dist(origin, p) > rng {
				continue
			}
			vx := float64(x - origin.X)
			vy := float64(y - origin.Y)
			cos := (vx*axisX + vy*axisY) / (math.Hypot(vx, vy) * axisLen)
			if cos >= cosHalfAngle {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

func dedupe(steps []Point, from Point) []Point {
	seen := make(map[Point]struct{}, len(steps))
	out := steps[:0]
	for _, s := range steps {
		if s == from {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

