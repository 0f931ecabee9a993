package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cryptYAML = `
map:
  id: crypt
  name: The Sunken Crypt
  description: |
    Collapsed burial vaults below the chapel.
  tiles:
    - "##########"
    - "#........#"
    - "#..#.....#"
    - "#..#.....#"
    - "#........#"
    - "##########"
  player_start:
    x: 1
    y: 1
  spawns:
    - template: goblin
      x: 8
      y: 4
      count: 2
    - template: giant-rat
      x: 5
      y: 2
`

func TestLoadMapFromBytes(t *testing.T) {
	m, err := LoadMapFromBytes([]byte(cryptYAML))
	require.NoError(t, err)

	assert.Equal(t, "crypt", m.ID)
	assert.Equal(t, "The Sunken Crypt", m.Name)
	assert.Equal(t, 10, m.Width)
	assert.Equal(t, 6, m.Height)
	assert.True(t, m.IsWall(3, 2), "interior pillar")
	assert.False(t, m.IsWall(1, 1))
	assert.Equal(t, 1, m.PlayerStart.X)
	assert.Equal(t, 1, m.PlayerStart.Y)

	require.Len(t, m.Spawns, 2)
	assert.Equal(t, SpawnConfig{Template: "goblin", X: 8, Y: 4, Count: 2}, m.Spawns[0])
	assert.Equal(t, 1, m.Spawns[1].Count, "count defaults to 1")
}

func TestLoadMapFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crypt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cryptYAML), 0644))

	m, err := LoadMapFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "crypt", m.ID)
}

func TestLoadMapFromFileMissing(t *testing.T) {
	_, err := LoadMapFromFile("/nonexistent/crypt.yaml")
	assert.Error(t, err)
}

func TestLoadMapErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", `{{{`},
		{"unknown field", `
map:
  id: m
  rooms: []
  tiles: ["###", "#.#", "###"]
  player_start: {x: 1, y: 1}
`},
		{"no tiles", `
map:
  id: m
`},
		{"ragged rows", `
map:
  id: m
  tiles: ["####", "#.#", "####"]
  player_start: {x: 1, y: 1}
`},
		{"unknown glyph", `
map:
  id: m
  tiles: ["###", "#@#", "###"]
  player_start: {x: 1, y: 1}
`},
		{"start in wall", `
map:
  id: m
  tiles: ["###", "#.#", "###"]
  player_start: {x: 0, y: 0}
`},
		{"spawn out of bounds", `
map:
  id: m
  tiles: ["###", "#.#", "###"]
  player_start: {x: 1, y: 1}
  spawns:
    - template: goblin
      x: 9
      y: 9
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMapFromBytes([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
