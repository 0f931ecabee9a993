package world

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/duskmantle/delve/internal/game/grid"
)

// yamlMapFile is the top-level YAML structure for map files.
type yamlMapFile struct {
	Map yamlMap `yaml:"map"`
}

// yamlMap is the YAML representation of a dungeon map. Tiles is the floor
// drawn as rows of glyphs; every row must have the same width.
type yamlMap struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Tiles       []string    `yaml:"tiles"`
	PlayerStart yamlPoint   `yaml:"player_start"`
	Spawns      []yamlSpawn `yaml:"spawns"`
}

type yamlPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type yamlSpawn struct {
	Template string `yaml:"template"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Count    int    `yaml:"count"`
}

// LoadMapFromFile reads and validates a single map YAML file.
//
// Precondition: path must point to a valid YAML map file.
// Postcondition: Returns a validated Map or a non-nil error.
func LoadMapFromFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}
	return LoadMapFromBytes(data)
}

// LoadMapFromBytes parses and validates a map from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the map schema.
// Postcondition: Returns a validated Map or a non-nil error.
func LoadMapFromBytes(data []byte) (*Map, error) {
	var file yamlMapFile
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing map YAML: %w", err)
	}

	m, err := convertYAMLMap(file.Map)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validating map: %w", err)
	}
	return m, nil
}

// convertYAMLMap converts the parsed YAML structures into the domain type.
func convertYAMLMap(ym yamlMap) (*Map, error) {
	if len(ym.Tiles) == 0 {
		return nil, fmt.Errorf("map %q: tiles must not be empty", ym.ID)
	}

	width := len(ym.Tiles[0])
	m := &Map{
		ID:          ym.ID,
		Name:        ym.Name,
		Description: strings.TrimSpace(ym.Description),
		Width:       width,
		Height:      len(ym.Tiles),
		PlayerStart: grid.Point{X: ym.PlayerStart.X, Y: ym.PlayerStart.Y},
		walls:       make(map[grid.Point]bool),
	}
	if m.Name == "" {
		m.Name = m.ID
	}

	for y, row := range ym.Tiles {
		if len(row) != width {
			return nil, fmt.Errorf("map %q: row %d is %d wide, want %d", ym.ID, y, len(row), width)
		}
		for x, glyph := range []byte(row) {
			switch glyph {
			case TileWall:
				m.walls[grid.Point{X: x, Y: y}] = true
			case TileFloor:
			default:
				return nil, fmt.Errorf("map %q: unknown tile %q at (%d,%d)", ym.ID, glyph, x, y)
			}
		}
	}

	for _, ys := range ym.Spawns {
		count := ys.Count
		if count == 0 {
			count = 1
		}
		m.Spawns = append(m.Spawns, SpawnConfig{
			Template: ys.Template,
			X:        ys.X,
			Y:        ys.Y,
			Count:    count,
		})
	}

	return m, nil
}
