// Package condition implements the transient creature conditions (poisoned,
// confused, stunned, webbed, raging, …) and their per-turn duration
// bookkeeping.
package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Def is the static definition of a condition, loaded from YAML. Definitions
// are shared and immutable; per-creature state lives in ActiveSet.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Stackable conditions accumulate duration on re-application;
	// unstackable conditions refresh to the newest duration instead.
	Stackable bool `yaml:"stackable"`

	// Behavioral flags consumed by the turn driver and ability engine.
	SkipsTurn         bool `yaml:"skips_turn"`         // stunned, paralyzed
	BlocksMovement    bool `yaml:"blocks_movement"`    // webbed
	ScramblesMovement bool `yaml:"scrambles_movement"` // confused
	Conceals          bool `yaml:"conceals"`           // invisible
	BlocksAbilities   bool `yaml:"blocks_abilities"`

	// TickDamage, if set, is rolled and applied to the bearer once per turn
	// while the condition lasts (poison).
	TickDamage     string `yaml:"tick_damage"`
	TickDamageKind string `yaml:"tick_damage_kind"`

	// Stat modifiers active while the condition lasts; removal at expiry is
	// the condition's one-shot reversion effect.
	AttackMod int `yaml:"attack_mod"` // raging +, cursed −
	ACMod     int `yaml:"ac_mod"`
}

// Validate checks the definition's invariants.
//
// Postcondition: nil return guarantees a non-empty ID and Name.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("condition def: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("condition def %q: name must not be empty", d.ID)
	}
	return nil
}

// Registry holds all known condition Defs keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot slice of all registered Defs.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def, and
// returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
