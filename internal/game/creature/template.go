// Package creature provides creature template definitions, live instances,
// and the awareness state machine (sleeping / wandering / guarding / hostile
// with fleeing as a hostile sub-mode).
package creature

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Valid AI pattern tags. Patterns themselves live in the behavior package;
// the template only carries the tag.
var validPatterns = map[string]bool{
	"aggressive":  true,
	"defensive":   true,
	"ranged":      true,
	"intelligent": true,
	"cowardly":    true,
	"pack_hunter": true,
	"guard":       true,
}

// AttackDef is one entry in a creature's attack list: a damage-kind tagged
// dice expression plus delivery mode. Read-only once loaded.
type AttackDef struct {
	// Mode is the delivery mode: "melee", "ranged", "cone", "gaze",
	// "engulf", or "touch".
	Mode string `yaml:"mode"`
	// Damage is the dice expression, e.g. "2d6+1".
	Damage string `yaml:"damage"`
	// Kind is the damage kind: physical, fire, cold, lightning, acid,
	// poison, magic.
	Kind string `yaml:"kind"`
	// StunChance is the probability (0–1) the attack stuns on hit.
	StunChance float64 `yaml:"stun_chance"`
	// StatusID names a condition applied on hit with StatusChance; empty
	// means no secondary status.
	StatusID       string  `yaml:"status"`
	StatusChance   float64 `yaml:"status_chance"`
	StatusDuration int     `yaml:"status_duration"`
}

// Validate checks the attack definition.
func (a AttackDef) Validate() error {
	switch a.Mode {
	case "melee", "ranged", "cone", "gaze", "engulf", "touch":
	default:
		return fmt.Errorf("attack: unknown mode %q", a.Mode)
	}
	if a.Damage == "" && a.Mode != "gaze" {
		return fmt.Errorf("attack (%s): damage must not be empty", a.Mode)
	}
	if a.StunChance < 0 || a.StunChance > 1 {
		return fmt.Errorf("attack (%s): stun_chance must be in [0, 1]", a.Mode)
	}
	if a.StatusChance < 0 || a.StatusChance > 1 {
		return fmt.Errorf("attack (%s): status_chance must be in [0, 1]", a.Mode)
	}
	if a.StatusID != "" && a.StatusDuration < 1 {
		return fmt.Errorf("attack (%s): status %q needs status_duration >= 1", a.Mode, a.StatusID)
	}
	return nil
}

// Template defines a reusable creature archetype loaded from YAML. Templates
// are shared and immutable; all mutable state lives on Instance.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Symbol      string `yaml:"symbol"`
	Description string `yaml:"description"`

	MaxHP int `yaml:"max_hp"`
	// ToHit is the THAC0-style to-hit value: a d20 + target AC must meet or
	// exceed it for the creature to land a blow. Lower is better.
	ToHit int `yaml:"to_hit"`
	Speed int `yaml:"speed"`

	SightRange   int `yaml:"sight_range"`
	HearingRange int `yaml:"hearing_range"`
	// AlertRadius is the pack-alert broadcast radius when this creature
	// turns hostile.
	AlertRadius int `yaml:"alert_radius"`

	// Pattern is the AI pattern tag; see the behavior package.
	Pattern string `yaml:"pattern"`
	// DefaultState is the state at spawn: "wandering", "sleeping", or
	// "guarding". Empty means wandering.
	DefaultState string `yaml:"default_state"`

	Attacks   []AttackDef `yaml:"attacks"`
	Abilities []string    `yaml:"abilities"`

	// Resistances halve matching damage; Reflects zero elemental damage of
	// the matching kind and bounce gaze effects; Weaknesses double damage.
	Resistances []string `yaml:"resistances"`
	Weaknesses  []string `yaml:"weaknesses"`
	Reflects    []string `yaml:"reflects"`

	SeesInvisible bool `yaml:"sees_invisible"`
	Blind         bool `yaml:"blind"`
	// Unholy creatures take the blessed-weapon bonus from player attacks.
	Unholy bool `yaml:"unholy"`

	Loot *LootTable `yaml:"loot"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, MaxHP >= 1,
// ToHit >= 1, ranges are non-negative, the pattern tag is known, and all
// attacks and the loot table validate.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("creature template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("creature template %q: name must not be empty", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("creature template %q: max_hp must be >= 1", t.ID)
	}
	if t.ToHit < 1 {
		return fmt.Errorf("creature template %q: to_hit must be >= 1", t.ID)
	}
	if t.SightRange < 0 || t.HearingRange < 0 || t.AlertRadius < 0 {
		return fmt.Errorf("creature template %q: ranges must be >= 0", t.ID)
	}
	if !validPatterns[t.Pattern] {
		return fmt.Errorf("creature template %q: unknown pattern %q", t.ID, t.Pattern)
	}
	switch t.DefaultState {
	case "", "wandering", "sleeping", "guarding":
	default:
		return fmt.Errorf("creature template %q: unknown default_state %q", t.ID, t.DefaultState)
	}
	for i, atk := range t.Attacks {
		if err := atk.Validate(); err != nil {
			return fmt.Errorf("creature template %q attack[%d]: %w", t.ID, i, err)
		}
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("creature template %q: %w", t.ID, err)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single creature template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing creature template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading creature dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
