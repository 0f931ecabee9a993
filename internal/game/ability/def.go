// Package ability implements the special-ability engine: YAML-defined
// ability data, a kind-keyed dispatch table of resolution functions, and
// per-creature cooldown and trigger discipline.
package ability

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ability kinds understood by the dispatch table.
const (
	KindBreath    = "breath"   // cone area attack, friendly fire included
	KindBolt      = "bolt"     // single-target ranged attack
	KindGaze      = "gaze"     // sight-based status attack, reflectable
	KindEngulf    = "engulf"   // swallow one target; digestion is a passive
	KindTouch     = "touch"    // melee-range damage and/or status
	KindSummon    = "summon"   // request event only, never mutates the world
	KindTransform = "transform" // terrain-change request event
	KindSteal     = "steal"    // item-theft request event
	KindTeleport  = "teleport" // relocate the user to a random passable cell
	KindRegen     = "regen"    // passive per-turn self heal
	KindEnrage    = "enrage"   // passive self-condition below an HP fraction
)

var validKinds = map[string]bool{
	KindBreath:    true,
	KindBolt:      true,
	KindGaze:      true,
	KindEngulf:    true,
	KindTouch:     true,
	KindSummon:    true,
	KindTransform: true,
	KindSteal:     true,
	KindTeleport:  true,
	KindRegen:     true,
	KindEnrage:    true,
}

// TriggerDef gates an ability. A declarative max_hp_percent fires only when
// the user's HP fraction is at or below the given percent; a hook names a
// Lua function that must return true. Both may be set; both must hold.
type TriggerDef struct {
	MaxHPPercent float64 `yaml:"max_hp_percent"`
	Hook         string  `yaml:"hook"`
}

// Def is the static definition of one ability, loaded from YAML. Shared and
// immutable; per-creature cooldown state lives on the Instance.
type Def struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Description string `yaml:"description"`

	// Cooldown is the turn count set on successful use; 0 means every turn.
	Cooldown int `yaml:"cooldown"`
	// Range in Chebyshev cells; 0 means range is not checked (self-targeted
	// and passive abilities).
	Range int `yaml:"range"`

	Damage     string `yaml:"damage"`
	DamageKind string `yaml:"damage_kind"`
	// Heal is the dice expression for regen kinds.
	Heal string `yaml:"heal"`

	// Condition is applied to the victim (or the user, for enrage) for
	// Duration turns.
	Condition string `yaml:"condition"`
	Duration  int    `yaml:"duration"`

	SummonCount int    `yaml:"summon_count"`
	SummonKind  string `yaml:"summon_kind"`
	// Terrain names the tile kind for transform requests.
	Terrain string `yaml:"terrain"`

	// InstantKillChance applies during digestion once the victim is below
	// the digest threshold.
	InstantKillChance float64 `yaml:"instant_kill_chance"`
	// DegradeChance is the probability a touch emits an equipment
	// degradation request alongside its effect.
	DegradeChance float64 `yaml:"degrade_chance"`

	// Passive abilities run automatically once per owner turn and are never
	// selectable through Use.
	Passive bool `yaml:"passive"`

	Trigger TriggerDef `yaml:"trigger"`
}

// Validate checks the definition's invariants.
func (d *Def) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("ability: name must not be empty")
	}
	if !validKinds[d.Kind] {
		return fmt.Errorf("ability %q: unknown kind %q", d.Name, d.Kind)
	}
	if d.Cooldown < 0 || d.Range < 0 || d.Duration < 0 {
		return fmt.Errorf("ability %q: cooldown, range, and duration must be >= 0", d.Name)
	}
	if d.InstantKillChance < 0 || d.InstantKillChance > 1 {
		return fmt.Errorf("ability %q: instant_kill_chance must be in [0, 1]", d.Name)
	}
	if d.DegradeChance < 0 || d.DegradeChance > 1 {
		return fmt.Errorf("ability %q: degrade_chance must be in [0, 1]", d.Name)
	}
	if d.Trigger.MaxHPPercent < 0 || d.Trigger.MaxHPPercent > 100 {
		return fmt.Errorf("ability %q: trigger max_hp_percent must be in [0, 100]", d.Name)
	}
	if d.Condition != "" && d.Duration < 1 {
		return fmt.Errorf("ability %q: condition %q needs duration >= 1", d.Name, d.Condition)
	}
	switch d.Kind {
	case KindBreath, KindBolt:
		if d.Damage == "" {
			return fmt.Errorf("ability %q: %s needs damage dice", d.Name, d.Kind)
		}
		if d.Range < 1 {
			return fmt.Errorf("ability %q: %s needs range >= 1", d.Name, d.Kind)
		}
	case KindSummon:
		if d.SummonCount < 1 || d.SummonKind == "" {
			return fmt.Errorf("ability %q: summon needs summon_count >= 1 and summon_kind", d.Name)
		}
	case KindTransform:
		if d.Terrain == "" {
			return fmt.Errorf("ability %q: transform needs terrain", d.Name)
		}
	case KindTeleport:
		if d.Range < 1 {
			return fmt.Errorf("ability %q: teleport needs range >= 1", d.Name)
		}
	case KindRegen:
		if d.Heal == "" {
			return fmt.Errorf("ability %q: regen needs heal dice", d.Name)
		}
		if !d.Passive {
			return fmt.Errorf("ability %q: regen must be passive", d.Name)
		}
	case KindEnrage:
		if d.Condition == "" {
			return fmt.Errorf("ability %q: enrage needs a condition", d.Name)
		}
		if !d.Passive {
			return fmt.Errorf("ability %q: enrage must be passive", d.Name)
		}
	}
	return nil
}

// Registry holds all known ability Defs keyed by name.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def, overwriting any existing entry with the same name.
//
// Precondition: def must not be nil and def.Name must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.Name] = def
}

// Get returns the Def for name, or (nil, false) if not found.
func (r *Registry) Get(name string) (*Def, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def, and
// returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails
// to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
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
