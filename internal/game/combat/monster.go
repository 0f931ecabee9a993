package combat

import (
	"github.com/duskmantle/delve/internal/game/condition"
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/notice"
)

// stunDuration is how long an attack-inflicted stun lasts, in turns.
const stunDuration = 1

// ResolveMonsterAttack runs the THAC0 pipeline for one creature attack on
// the player: a d20 hits iff roll + target AC meets or exceeds the
// attacker's to-hit value (lower armor class is better, equality hits). On
// hit the attack's damage dice are rolled and mitigated; on miss a distinct
// miss notice is emitted and nothing else happens. Secondary statuses (stun
// chance, named condition) only apply when the target survives the hit.
//
// Precondition: attacker, target, reg, src, sink non-nil; atk validated.
func ResolveMonsterAttack(attacker *creature.Instance, atk creature.AttackDef, target *Player, reg *condition.Registry, src dice.Source, sink notice.Sink) Outcome {
	out := Outcome{
		AttackerID: attacker.ID,
		TargetID:   target.ID,
		Kind:       atk.Kind,
	}
	if attacker.IsDead() {
		return out
	}

	roll := src.Intn(20) + 1
	atkMod := condition.AttackMod(attacker.Conditions)
	if roll+target.EffectiveAC()+atkMod < attacker.ToHit {
		sink.Post(notice.Event{
			Type:     notice.TypeAttackMiss,
			ActorID:  attacker.ID,
			TargetID: target.ID,
			Amount:   roll,
		})
		return out
	}
	out.Hit = true

	raw := dice.Eval(atk.Damage, src)
	dmg := Mitigate(atk.Kind, raw, target)
	if dmg == 0 && raw > 0 && Reflectable(atk.Kind) && target.ReflectsKind(atk.Kind) {
		out.Reflected = true
	}
	out.Damage = dmg

	sink.Post(notice.Event{
		Type:     notice.TypeAttackHit,
		ActorID:  attacker.ID,
		TargetID: target.ID,
		Amount:   roll,
	})
	target.ApplyDamage(dmg)
	sink.Post(notice.Event{
		Type:     notice.TypeDamage,
		ActorID:  attacker.ID,
		TargetID: target.ID,
		Amount:   dmg,
		Kind:     atk.Kind,
	})

	if target.IsDown() {
		out.Killed = true
		sink.Post(notice.Event{
			Type:     notice.TypeDeath,
			ActorID:  attacker.ID,
			TargetID: target.ID,
			X:        target.Pos.X,
			Y:        target.Pos.Y,
		})
		return out
	}

	out.StatusID = applySecondary(atk, target, reg, src, sink, attacker.ID)
	return out
}

// applySecondary rolls the attack's on-hit status effects against a
// surviving target and returns the applied condition ID, if any.
func applySecondary(atk creature.AttackDef, target *Player, reg *condition.Registry, src dice.Source, sink notice.Sink, attackerID string) string {
	if rollChance(atk.StunChance, src) {
		if def, ok := reg.Get("stunned"); ok {
			if err := target.Conditions.Apply(def, stunDuration); err == nil {
				sink.Post(notice.Event{
					Type:     notice.TypeStatusApplied,
					ActorID:  attackerID,
					TargetID: target.ID,
					Kind:     def.ID,
					Amount:   stunDuration,
				})
				return def.ID
			}
		}
	}
	if atk.StatusID != "" && rollChance(atk.StatusChance, src) {
		if def, ok := reg.Get(atk.StatusID); ok {
			if err := target.Conditions.Apply(def, atk.StatusDuration); err == nil {
				sink.Post(notice.Event{
					Type:     notice.TypeStatusApplied,
					ActorID:  attackerID,
					TargetID: target.ID,
					Kind:     def.ID,
					Amount:   atk.StatusDuration,
				})
				return def.ID
			}
		}
	}
	return ""
}
