package world

import (
	"sync"

	"github.com/duskmantle/delve/internal/game/grid"
)

// Dungeon wraps a Map with a thread-safe occupant index. It implements
// grid.SpatialQuery plus the Place/Remove bookkeeping the turn loop uses.
// Occupancy does not affect passability; callers check vacancy separately
// through OccupantAt.
type Dungeon struct {
	mu        sync.RWMutex
	m         *Map
	occupants map[string]grid.Point
	byCell    map[grid.Point]string
}

// NewDungeon creates a Dungeon over the given map with no occupants.
//
// Precondition: m must have passed Validate.
func NewDungeon(m *Map) *Dungeon {
	return &Dungeon{
		m:         m,
		occupants: make(map[string]grid.Point),
		byCell:    make(map[grid.Point]string),
	}
}

// Map returns the underlying immutable map.
func (d *Dungeon) Map() *Map { return d.m }

// Place puts entity id at (x, y), moving it if already present.
func (d *Dungeon) Place(id string, x, y int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.occupants[id]; ok {
		delete(d.byCell, old)
	}
	p := grid.Point{X: x, Y: y}
	d.occupants[id] = p
	d.byCell[p] = id
}

// Remove deletes entity id from the dungeon.
func (d *Dungeon) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.occupants[id]; ok {
		delete(d.byCell, p)
		delete(d.occupants, id)
	}
}

// PositionOf returns the position of entity id.
func (d *Dungeon) PositionOf(id string) (grid.Point, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.occupants[id]
	return p, ok
}

// OccupantCount returns the number of placed entities.
func (d *Dungeon) OccupantCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.occupants)
}

// IsPassable implements grid.SpatialQuery.
func (d *Dungeon) IsPassable(x, y int) bool {
	return !d.m.IsWall(x, y)
}

// IsWall implements grid.SpatialQuery.
func (d *Dungeon) IsWall(x, y int) bool {
	return d.m.IsWall(x, y)
}

// OccupantAt implements grid.SpatialQuery.
func (d *Dungeon) OccupantAt(x, y int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byCell[grid.Point{X: x, Y: y}]
}

// OccupantsInRadius implements grid.SpatialQuery.
func (d *Dungeon) OccupantsInRadius(x, y, r int) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	center := grid.Point{X: x, Y: y}
	var out []string
	for id, pos := range d.occupants {
		if grid.Dist(center, pos) <= r {
			out = append(out, id)
		}
	}
	return out
}

// LineOfSight implements grid.SpatialQuery with a Bresenham walk; any wall
// cell strictly between the endpoints blocks the line.
func (d *Dungeon) LineOfSight(from, to grid.Point) bool {
	if !d.m.InBounds(from.X, from.Y) || !d.m.InBounds(to.X, to.Y) {
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
		if p != from && d.m.IsWall(p.X, p.Y) {
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
