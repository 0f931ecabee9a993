// Package world provides the dungeon map model: a rectangular tile grid
// with walls, spawn points, and a thread-safe occupant index that answers
// the engine's spatial queries.
package world

import (
	"fmt"

	"github.com/duskmantle/delve/internal/game/grid"
)

// Tile glyphs used in map files. Each row of the tiles block is one map row.
const (
	TileWall  = '#'
	TileFloor = '.'
)

// SpawnConfig places instances of a creature template on the map at load.
type SpawnConfig struct {
	// Template is the creature template ID to spawn.
	Template string
	// X, Y is the spawn cell; Count > 1 spreads extras onto adjacent
	// open cells.
	X, Y  int
	Count int
}

// Map is an immutable rectangular dungeon floor. All mutable occupancy
// state lives on Dungeon.
type Map struct {
	// ID uniquely identifies this map.
	ID string
	// Name is the display name of the map.
	Name string
	// Description summarizes the map's theme.
	Description string

	Width, Height int
	// PlayerStart is the cell the player enters on.
	PlayerStart grid.Point
	// Spawns lists the creatures that populate this map.
	Spawns []SpawnConfig

	walls map[grid.Point]bool
}

// NewMap builds an empty floor of the given size with a solid one-tile
// border wall.
//
// Precondition: width and height must be >= 3.
func NewMap(id string, width, height int) *Map {
	m := &Map{
		ID:     id,
		Name:   id,
		Width:  width,
		Height: height,
		walls:  make(map[grid.Point]bool),
	}
	for x := 0; x < width; x++ {
		m.walls[grid.Point{X: x, Y: 0}] = true
		m.walls[grid.Point{X: x, Y: height - 1}] = true
	}
	for y := 0; y < height; y++ {
		m.walls[grid.Point{X: 0, Y: y}] = true
		m.walls[grid.Point{X: width - 1, Y: y}] = true
	}
	m.PlayerStart = grid.Point{X: width / 2, Y: height / 2}
	return m
}

// InBounds reports whether (x, y) lies on the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// IsWall reports whether (x, y) is opaque terrain. Out-of-bounds cells
// count as wall.
func (m *Map) IsWall(x, y int) bool {
	return !m.InBounds(x, y) || m.walls[grid.Point{X: x, Y: y}]
}

// SetWall marks (x, y) as wall. Used by the loader and by terrain-altering
// effects resolved by the session layer.
func (m *Map) SetWall(x, y int) {
	if m.walls == nil {
		m.walls = make(map[grid.Point]bool)
	}
	m.walls[grid.Point{X: x, Y: y}] = true
}

// Validate checks map invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (m *Map) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("map ID must not be empty")
	}
	if m.Width < 3 || m.Height < 3 {
		return fmt.Errorf("map %q: size must be at least 3x3, got %dx%d", m.ID, m.Width, m.Height)
	}
	if m.IsWall(m.PlayerStart.X, m.PlayerStart.Y) {
		return fmt.Errorf("map %q: player start (%d,%d) is not an open cell",
			m.ID, m.PlayerStart.X, m.PlayerStart.Y)
	}
	for i, s := range m.Spawns {
		if s.Template == "" {
			return fmt.Errorf("map %q: spawn[%d]: template must not be empty", m.ID, i)
		}
		if s.Count < 1 {
			return fmt.Errorf("map %q: spawn[%d] (%s): count must be >= 1, got %d",
				m.ID, i, s.Template, s.Count)
		}
		if m.IsWall(s.X, s.Y) {
			return fmt.Errorf("map %q: spawn[%d] (%s): cell (%d,%d) is not open",
				m.ID, i, s.Template, s.X, s.Y)
		}
	}
	return nil
}
