package combat

import (
	"github.com/duskmantle/delve/internal/game/condition"
	"github.com/duskmantle/delve/internal/game/grid"
)

// Player is the engine-facing view of the player character. It carries only
// resolved combat numbers handed over by the equipment collaborator (armor
// class, weapon table, resistances); the engine never reads raw item records.
type Player struct {
	ID  string
	Pos grid.Point

	MaxHP int
	HP    int
	// AC is the resolved armor class; lower is better.
	AC int

	Weapon *ChainWeapon

	resistances map[string]bool
	weaknesses  map[string]bool
	reflects    map[string]bool

	Conditions *condition.ActiveSet
}

// NewPlayer creates a player combatant at full HP with no active conditions.
func NewPlayer(id string, pos grid.Point, maxHP, ac int, weapon *ChainWeapon) *Player {
	return &Player{
		ID:          id,
		Pos:         pos,
		MaxHP:       maxHP,
		HP:          maxHP,
		AC:          ac,
		Weapon:      weapon,
		resistances: make(map[string]bool),
		weaknesses:  make(map[string]bool),
		reflects:    make(map[string]bool),
		Conditions:  condition.NewActiveSet(),
	}
}

// SetResistances replaces the player's mitigation sets with the resolved
// equipment modifiers.
func (p *Player) SetResistances(resist, weak, reflect []string) {
	p.resistances = toSet(resist)
	p.weaknesses = toSet(weak)
	p.reflects = toSet(reflect)
}

func toSet(kinds []string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// Resists reports whether the player resists the damage kind.
func (p *Player) Resists(kind string) bool { return p.resistances[kind] }

// WeakTo reports whether the player is weak to the damage kind.
func (p *Player) WeakTo(kind string) bool { return p.weaknesses[kind] }

// ReflectsKind reports whether the player reflects the damage kind.
func (p *Player) ReflectsKind(kind string) bool { return p.reflects[kind] }

// HasReflection reports whether the player reflects anything at all, the
// gate for bouncing gaze effects back onto the gazer.
func (p *Player) HasReflection() bool { return len(p.reflects) > 0 }

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: HP >= 0.
func (p *Player) ApplyDamage(amount int) {
	p.HP -= amount
	if p.HP < 0 {
		p.HP = 0
	}
}

// Heal restores HP by amount, capping at MaxHP.
func (p *Player) Heal(amount int) {
	p.HP += amount
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
}

// IsDown reports whether the player has been reduced to zero HP. Game-over
// handling belongs to the caller, not the engine.
func (p *Player) IsDown() bool { return p.HP <= 0 }

// Concealed reports whether the player is currently hidden from creatures
// that cannot see invisible targets.
func (p *Player) Concealed() bool { return condition.Concealed(p.Conditions) }

// CombatID returns the player's combatant ID.
func (p *Player) CombatID() string { return p.ID }

// Position returns the player's grid position.
func (p *Player) Position() grid.Point { return p.Pos }

// HPFraction returns current HP as a fraction of MaxHP.
func (p *Player) HPFraction() float64 {
	if p.MaxHP <= 0 {
		return 0
	}
	return float64(p.HP) / float64(p.MaxHP)
}

// ActiveConditions exposes the condition set for combat collaborators.
func (p *Player) ActiveConditions() *condition.ActiveSet { return p.Conditions }

// Alive reports whether the player is still standing.
func (p *Player) Alive() bool { return p.HP > 0 }

// CurrentHP returns the current hit points.
func (p *Player) CurrentHP() int { return p.HP }

// Blinded reports whether the player cannot meet a gaze.
func (p *Player) Blinded() bool { return p.Conditions.Has("blinded") }

// EffectiveAC returns the armor class after active condition modifiers.
func (p *Player) EffectiveAC() int { return p.AC + condition.ACMod(p.Conditions) }
