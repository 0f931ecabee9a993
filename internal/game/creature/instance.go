package creature

import (
	"github.com/google/uuid"

	"github.com/duskmantle/delve/internal/game/condition"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
)

// State is a creature's primary awareness state. Fleeing is a behavioral
// sub-mode of hostile, not a state of its own.
type State int

const (
	StateSleeping State = iota
	StateWandering
	StateGuarding
	StateHostile
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateSleeping:
		return "sleeping"
	case StateWandering:
		return "wandering"
	case StateGuarding:
		return "guarding"
	case StateHostile:
		return "hostile"
	default:
		return "unknown"
	}
}

// Default flee thresholds as HP fractions. Cowardly creatures roll their
// threshold once at spawn inside [cowardFleeMin, cowardFleeMax] so the
// pattern stays a deterministic function of its inputs afterwards.
const (
	defaultFleeThreshold = 0.20
	cowardFleeMin        = 0.50
	cowardFleeMax        = 0.70
)

// Instance is a live creature on the map.
//
// Invariants: 0 <= HP <= MaxHP; cooldown counters never go negative; at most
// one engulfed target at a time; death latches exactly once.
type Instance struct {
	ID         string
	TemplateID string
	Name       string
	Symbol     string

	Pos grid.Point

	MaxHP int
	HP    int
	ToHit int
	Speed int

	SightRange   int
	HearingRange int
	AlertRadius  int

	Pattern string
	// FleeThreshold is the HP fraction below which the flee check fires.
	FleeThreshold float64

	State State
	// Fleeing is the hostile sub-mode; meaningless outside StateHostile.
	Fleeing bool
	// GuardPost anchors the guard pattern; set at spawn for guards.
	GuardPost grid.Point
	// GuardEngaged latches once a guard has attacked; an engaged guard is
	// permanently hostile and never returns to its post.
	GuardEngaged bool
	// TargetID is the identity of the engaged target while hostile.
	TargetID string

	Attacks   []AttackDef
	Abilities []string

	resistances map[string]bool
	weaknesses  map[string]bool
	reflects    map[string]bool

	SeesInvisible bool
	Blind         bool
	Unholy        bool

	// EngulfedID is the target currently engulfed, or "". At most one.
	EngulfedID string

	Conditions *condition.ActiveSet
	// Cooldowns maps ability name to turns remaining; absent means ready.
	Cooldowns map[string]int

	Loot *LootTable

	dead bool
}

// NewInstance creates a live creature from a template at pos, with full HP
// and the template's default state. src drives the cowardly flee-threshold
// roll at spawn.
//
// Precondition: tmpl must have passed Validate; src must be non-nil.
// Postcondition: HP == MaxHP; all cooldowns are 0; the instance is not dead.
func NewInstance(tmpl *Template, pos grid.Point, src dice.Source) *Instance {
	state := StateWandering
	switch tmpl.DefaultState {
	case "sleeping":
		state = StateSleeping
	case "guarding":
		state = StateGuarding
	}

	threshold := defaultFleeThreshold
	if tmpl.Pattern == "cowardly" {
		// Uniform in [cowardFleeMin, cowardFleeMax] at percent granularity.
		span := int((cowardFleeMax - cowardFleeMin) * 100)
		threshold = cowardFleeMin + float64(src.Intn(span+1))/100
	}

	inst := &Instance{
		ID:            uuid.New().String(),
		TemplateID:    tmpl.ID,
		Name:          tmpl.Name,
		Symbol:        tmpl.Symbol,
		Pos:           pos,
		MaxHP:         tmpl.MaxHP,
		HP:            tmpl.MaxHP,
		ToHit:         tmpl.ToHit,
		Speed:         tmpl.Speed,
		SightRange:    tmpl.SightRange,
		HearingRange:  tmpl.HearingRange,
		AlertRadius:   tmpl.AlertRadius,
		Pattern:       tmpl.Pattern,
		FleeThreshold: threshold,
		State:         state,
		GuardPost:     pos,
		Attacks:       tmpl.Attacks,
		Abilities:     tmpl.Abilities,
		resistances:   toSet(tmpl.Resistances),
		weaknesses:    toSet(tmpl.Weaknesses),
		reflects:      toSet(tmpl.Reflects),
		SeesInvisible: tmpl.SeesInvisible,
		Blind:         tmpl.Blind,
		Unholy:        tmpl.Unholy,
		Conditions:    condition.NewActiveSet(),
		Cooldowns:     make(map[string]int),
		Loot:          tmpl.Loot,
	}
	return inst
}

func toSet(kinds []string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// IsDead reports whether the creature's death has latched.
func (c *Instance) IsDead() bool { return c.dead }

// HPFraction returns current HP as a fraction of MaxHP.
//
// Postcondition: return value in [0, 1] for a valid instance.
func (c *Instance) HPFraction() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: HP >= 0.
func (c *Instance) ApplyDamage(amount int) {
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}

// Heal restores HP by amount, capping at MaxHP. Dead creatures stay dead.
//
// Precondition: amount >= 0.
// Postcondition: HP <= MaxHP.
func (c *Instance) Heal(amount int) {
	if c.dead {
		return
	}
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// MarkDead latches the death flag. The first call returns true; every later
// call returns false, guaranteeing the death transition fires exactly once.
//
// Precondition: HP == 0.
func (c *Instance) MarkDead() bool {
	if c.dead {
		return false
	}
	c.dead = true
	return true
}

// Resists reports whether the creature resists the damage kind (halved).
func (c *Instance) Resists(kind string) bool { return c.resistances[kind] }

// WeakTo reports whether the creature is weak to the damage kind (doubled).
func (c *Instance) WeakTo(kind string) bool { return c.weaknesses[kind] }

// ReflectsKind reports whether the creature reflects the damage kind
// (elemental damage zeroed; gaze effects bounced onto the gazer).
func (c *Instance) ReflectsKind(kind string) bool { return c.reflects[kind] }

// HasReflection reports whether the creature reflects anything at all.
func (c *Instance) HasReflection() bool { return len(c.reflects) > 0 }

// Cooldown returns the remaining cooldown for ability name; 0 means ready.
//
// Postcondition: return value >= 0.
func (c *Instance) Cooldown(name string) int { return c.Cooldowns[name] }

// SetCooldown sets the remaining cooldown for ability name.
//
// Precondition: turns >= 0.
func (c *Instance) SetCooldown(name string, turns int) {
	if turns <= 0 {
		delete(c.Cooldowns, name)
		return
	}
	c.Cooldowns[name] = turns
}

// TickCooldowns decrements every cooldown by exactly 1, never below 0.
// Called once at the start of the creature's turn.
//
// Postcondition: no cooldown is negative.
func (c *Instance) TickCooldowns() {
	for name, left := range c.Cooldowns {
		left--
		if left <= 0 {
			delete(c.Cooldowns, name)
			continue
		}
		c.Cooldowns[name] = left
	}
}

// EffectiveSight returns the sight range after state effects: a sleeping
// creature sees nothing; a blind creature sees nothing.
func (c *Instance) EffectiveSight() int {
	if c.State == StateSleeping || c.Blind {
		return 0
	}
	return c.SightRange
}

// EffectiveHearing returns the hearing range after state effects: a sleeping
// creature hears nothing through this channel (waking is noise-check only).
func (c *Instance) EffectiveHearing() int {
	if c.State == StateSleeping {
		return 0
	}
	return c.HearingRange
}

// CombatID returns the instance ID for combat collaborators.
func (c *Instance) CombatID() string { return c.ID }

// Position returns the current grid position.
func (c *Instance) Position() grid.Point { return c.Pos }

// ActiveConditions exposes the condition set for combat collaborators.
func (c *Instance) ActiveConditions() *condition.ActiveSet { return c.Conditions }

// Concealed reports whether the creature is hidden from normal sight.
func (c *Instance) Concealed() bool { return condition.Concealed(c.Conditions) }

// Alive reports whether the creature can still act and be targeted.
func (c *Instance) Alive() bool { return !c.dead }

// CurrentHP returns the current hit points.
func (c *Instance) CurrentHP() int { return c.HP }

// Blinded reports whether the creature cannot meet a gaze, either born
// eyeless or carrying the blinding condition.
func (c *Instance) Blinded() bool { return c.Blind || c.Conditions.Has("blinded") }

// Snapshot is the plain-data export of an Instance for collaborators
// (persistence stays outside the engine).
type Snapshot struct {
	ID            string
	TemplateID    string
	Name          string
	Symbol        string
	X, Y          int
	HP, MaxHP     int
	State         string
	Fleeing       bool
	Dead          bool
	Conditions    []string
	CooldownsLeft map[string]int
}

// Snapshot returns a detached plain-data view of the creature.
//
// Postcondition: mutating the returned value never affects the Instance.
func (c *Instance) Snapshot() Snapshot {
	conds := make([]string, 0, c.Conditions.Len())
	for _, ac := range c.Conditions.All() {
		conds = append(conds, ac.Def.ID)
	}
	cds := make(map[string]int, len(c.Cooldowns))
	for k, v := range c.Cooldowns {
		cds[k] = v
	}
	return Snapshot{
		ID:            c.ID,
		TemplateID:    c.TemplateID,
		Name:          c.Name,
		Symbol:        c.Symbol,
		X:             c.Pos.X,
		Y:             c.Pos.Y,
		HP:            c.HP,
		MaxHP:         c.MaxHP,
		State:         c.State.String(),
		Fleeing:       c.Fleeing,
		Dead:          c.dead,
		Conditions:    conds,
		CooldownsLeft: cds,
	}
}
