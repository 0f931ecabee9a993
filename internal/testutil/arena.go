// Package testutil provides an in-memory dungeon arena implementing the
// spatial query facade, plus deterministic dice sources, for engine tests.
package testutil

import (
	"github.com/duskmantle/delve/internal/game/grid"
)

// Arena is a rectangular in-memory map with walls and occupants. It
// implements grid.SpatialQuery with straight-line visibility and answers
// conservatively for out-of-bounds coordinates (wall, not passable, vacant).
type Arena struct {
	Width, Height int
	walls         map[grid.Point]bool
	occupants     map[string]grid.Point
}

// NewArena creates an empty arena of the given size.
//
// Precondition: width and height must be >= 1.
func NewArena(width, height int) *Arena {
	return &Arena{
		Width:     width,
		Height:    height,
		walls:     make(map[grid.Point]bool),
		occupants: make(map[string]grid.Point),
	}
}

// SetWall marks (x, y) as opaque, impassable terrain.
func (a *Arena) SetWall(x, y int) { a.walls[grid.Point{X: x, Y: y}] = true }

// Place puts entity id at (x, y), moving it if already present.
func (a *Arena) Place(id string, x, y int) { a.occupants[id] = grid.Point{X: x, Y: y} }

// Remove deletes entity id from the arena.
func (a *Arena) Remove(id string) { delete(a.occupants, id) }

// PositionOf returns the position of entity id.
func (a *Arena) PositionOf(id string) (grid.Point, bool) {
	p, ok := a.occupants[id]
	return p, ok
}

func (a *Arena) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < a.Width && y < a.Height
}

// IsPassable implements grid.SpatialQuery.
func (a *Arena) IsPassable(x, y int) bool {
	return a.inBounds(x, y) && !a.walls[grid.Point{X: x, Y: y}]
}

// IsWall implements grid.SpatialQuery.
func (a *Arena) IsWall(x, y int) bool {
	return !a.inBounds(x, y) || a.walls[grid.Point{X: x, Y: y}]
}

// OccupantAt implements grid.SpatialQuery.
func (a *Arena) OccupantAt(x, y int) string {
	p := grid.Point{X: x, Y: y}
	for id, pos := range a.occupants {
		if pos == p {
			return id
		}
	}
	return ""
}

// OccupantsInRadius implements grid.SpatialQuery.
func (a *Arena) OccupantsInRadius(x, y, r int) []string {
	center := grid.Point{X: x, Y: y}
	var out []string
	for id, pos := range a.occupants {
		if grid.Dist(center, pos) <= r {
			out = append(out, id)
		}
	}
	return out
}

// LineOfSight implements grid.SpatialQuery with a Bresenham walk; any wall
// cell strictly between the endpoints blocks the line.
func (a *Arena) LineOfSight(from, to grid.Point) bool {
	if !a.inBounds(from.X, from.Y) || !a.inBounds(to.X, to.Y) {
		return false
	}
	x0, y0, x1, y1 := from.X, from.Y, to.X, to.Y
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 == x1 && y0 == y1 {
			return true
		}
		p := grid.Point{X: x0, Y: y0}
		if p != from && a.walls[p] {
			return false
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
