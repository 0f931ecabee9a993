// Package combat implements the dual-mode attack resolver: a THAC0-style
// roll-to-hit pipeline for creatures and a quiz-gated chain-multiplier
// pipeline for the player, converging on a single damage-application path
// that owns elemental mitigation and the one-shot death transition.
package combat

import (
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/notice"
)

// Damage kinds understood by the mitigation table.
const (
	KindPhysical  = "physical"
	KindFire      = "fire"
	KindCold      = "cold"
	KindLightning = "lightning"
	KindAcid      = "acid"
	KindPoison    = "poison"
	KindMagic     = "magic"
)

// reflectable lists the damage kinds a reflective target can bounce to zero.
// Physical, poison, and magic damage always land.
var reflectable = map[string]bool{
	KindFire:      true,
	KindCold:      true,
	KindLightning: true,
	KindAcid:      true,
}

// Reflectable reports whether kind can be zeroed by a reflective target.
func Reflectable(kind string) bool { return reflectable[kind] }

// Mitigator is the subset of a combatant consulted for elemental mitigation.
// Both creature instances and the player satisfy it.
type Mitigator interface {
	Resists(kind string) bool
	WeakTo(kind string) bool
	ReflectsKind(kind string) bool
}

// Mitigate adjusts raw damage of the given kind for the target: reflected
// kinds go to zero, resisted kinds are halved, weaknesses double.
//
// Precondition: dmg >= 0.
// Postcondition: Returns >= 0.
func Mitigate(kind string, dmg int, target Mitigator) int {
	if Reflectable(kind) && target.ReflectsKind(kind) {
		return 0
	}
	if target.Resists(kind) {
		dmg /= 2
	}
	if target.WeakTo(kind) {
		dmg *= 2
	}
	return dmg
}

// Outcome is the transient record of one resolved attack, consumed by the
// notice and loot collaborators and never persisted.
type Outcome struct {
	AttackerID string
	TargetID   string
	// Hit is false on a THAC0 miss or a zero-score quiz attack.
	Hit bool
	// Damage is the post-mitigation damage actually applied.
	Damage int
	Kind   string
	// StatusID names the secondary condition applied on hit, if any.
	StatusID string
	// Killed is true only for the attack whose damage latched the death.
	Killed bool
	// Reflected is true when mitigation zeroed the damage via reflection.
	Reflected bool
}

// DealDamage applies mitigated damage of the given kind to a creature and
// drives the death transition. The death notice and the loot-generation
// request are emitted exactly once no matter how many attacks land on a
// creature at zero HP.
//
// Precondition: target, sink non-nil; raw >= 0.
func DealDamage(target *creature.Instance, raw int, kind, attackerID string, sink notice.Sink) Outcome {
	out := Outcome{
		AttackerID: attackerID,
		TargetID:   target.ID,
		Hit:        true,
		Kind:       kind,
	}
	if target.IsDead() {
		out.Hit = false
		return out
	}

	dmg := Mitigate(kind, raw, target)
	if dmg == 0 && raw > 0 && Reflectable(kind) && target.ReflectsKind(kind) {
		out.Reflected = true
	}
	out.Damage = dmg

	target.ApplyDamage(dmg)
	sink.Post(notice.Event{
		Type:     notice.TypeDamage,
		ActorID:  attackerID,
		TargetID: target.ID,
		Amount:   dmg,
		Kind:     kind,
	})

	if target.HP <= 0 && target.MarkDead() {
		out.Killed = true
		sink.Post(notice.Event{
			Type:     notice.TypeDeath,
			ActorID:  attackerID,
			TargetID: target.ID,
			X:        target.Pos.X,
			Y:        target.Pos.Y,
		})
		sink.Post(notice.Event{
			Type:     notice.TypeLootRequest,
			TargetID: target.ID,
			Kind:     target.TemplateID,
			X:        target.Pos.X,
			Y:        target.Pos.Y,
		})
	}
	return out
}

// rollChance runs a probability check at 1/1000 granularity.
func rollChance(p float64, src dice.Source) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Intn(1000) < int(p*1000)
}
