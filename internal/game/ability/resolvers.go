package ability

import (
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
)

// breath fills an angular cone toward the target and applies one damage
// roll, individually mitigated, to every occupant in it. Allies in the cone
// are hit too; friendly fire is intentional.
func (e *Engine) breath(c *creature.Instance, def *Def, target Target) bool {
	if !e.world.LineOfSight(c.Pos, target.Position()) {
		return false
	}
	raw := dice.Eval(def.Damage, e.src)
	for _, cell := range grid.ConeCells(c.Pos, target.Position(), def.Range) {
		id := e.world.OccupantAt(cell.X, cell.Y)
		if id == "" || id == c.ID {
			continue
		}
		victim := e.resolve(id)
		if victim == nil || !victim.Alive() {
			continue
		}
		e.deal(c.ID, victim, raw, def.DamageKind)
	}
	return true
}

// bolt is a single-target ranged attack with optional rider condition.
func (e *Engine) bolt(c *creature.Instance, def *Def, target Target) bool {
	if !e.world.LineOfSight(c.Pos, target.Position()) {
		return false
	}
	raw := dice.Eval(def.Damage, e.src)
	out := e.deal(c.ID, target, raw, def.DamageKind)
	if def.Condition != "" && !out.Killed {
		e.applyCondition(c.ID, target, def.Condition, def.Duration)
	}
	return true
}

// gaze is a sight-based attack. It fails outright when either party cannot
// meet the other's eyes: the user blind, the target blind, or the target
// concealed from a user that cannot see the invisible. A reflective target
// bounces the complete effect back onto the user.
func (e *Engine) gaze(c *creature.Instance, def *Def, target Target) bool {
	if c.Blind || target.Blinded() {
		return false
	}
	if target.Concealed() && !c.SeesInvisible {
		return false
	}
	if !e.world.LineOfSight(c.Pos, target.Position()) {
		return false
	}

	victim := target
	if target.HasReflection() {
		victim = c
	}

	if def.Damage != "" {
		raw := dice.Eval(def.Damage, e.src)
		out := e.deal(c.ID, victim, raw, def.DamageKind)
		if out.Killed {
			return true
		}
	}
	if def.Condition != "" {
		e.applyCondition(c.ID, victim, def.Condition, def.Duration)
	}
	return true
}

// engulf swallows the target whole. A creature digests at most one victim
// at a time; digestion itself runs as part of RunPassives each turn.
func (e *Engine) engulf(c *creature.Instance, def *Def, target Target) bool {
	if c.EngulfedID != "" {
		return false
	}
	c.EngulfedID = target.CombatID()
	if def.Condition != "" {
		e.applyCondition(c.ID, target, def.Condition, def.Duration)
	}
	if def.Damage != "" {
		e.deal(c.ID, target, dice.Eval(def.Damage, e.src), def.DamageKind)
	}
	return true
}

// digest runs one digestion turn against the engulfed victim: repeat the
// engulf damage, and once the victim is below the digest threshold each
// turn carries an independent instant-kill chance.
func (e *Engine) digest(c *creature.Instance, def *Def) {
	victim := e.resolve(c.EngulfedID)
	if victim == nil || !victim.Alive() {
		c.EngulfedID = ""
		return
	}
	if def.Damage != "" {
		out := e.deal(c.ID, victim, dice.Eval(def.Damage, e.src), def.DamageKind)
		if out.Killed {
			c.EngulfedID = ""
			return
		}
	}
	if victim.HPFraction() < digestThreshold && e.chance(def.InstantKillChance) {
		e.slay(c.ID, victim)
		c.EngulfedID = ""
	}
}

// touch is a melee-range effect: damage, rider condition, and an optional
// equipment-degradation request to the inventory collaborator.
func (e *Engine) touch(c *creature.Instance, def *Def, target Target) bool {
	killed := false
	if def.Damage != "" {
		killed = e.deal(c.ID, target, dice.Eval(def.Damage, e.src), def.DamageKind).Killed
	}
	if def.Condition != "" && !killed {
		e.applyCondition(c.ID, target, def.Condition, def.Duration)
	}
	if !killed && e.chance(def.DegradeChance) {
		e.sink.Post(notice.Event{
			Type:     notice.TypeEquipmentDamageRequest,
			ActorID:  c.ID,
			TargetID: target.CombatID(),
			Kind:     def.DamageKind,
		})
	}
	return true
}

// summon requests reinforcements near the user. The spawner collaborator
// owns placement and the actual creation.
func (e *Engine) summon(c *creature.Instance, def *Def, _ Target) bool {
	e.sink.Post(notice.Event{
		Type:    notice.TypeSummonRequest,
		ActorID: c.ID,
		Kind:    def.SummonKind,
		Amount:  def.SummonCount,
		X:       c.Pos.X,
		Y:       c.Pos.Y,
	})
	return true
}

// transform requests a terrain change at the target's cell (or the user's
// own when untargeted). The dungeon collaborator owns tile mutation.
func (e *Engine) transform(c *creature.Instance, def *Def, target Target) bool {
	at := c.Pos
	if target != nil {
		at = target.Position()
	}
	e.sink.Post(notice.Event{
		Type:    notice.TypeTerrainRequest,
		ActorID: c.ID,
		Kind:    def.Terrain,
		X:       at.X,
		Y:       at.Y,
	})
	return true
}

// steal requests an item theft from the target's inventory.
func (e *Engine) steal(c *creature.Instance, def *Def, target Target) bool {
	e.sink.Post(notice.Event{
		Type:     notice.TypeTheftRequest,
		ActorID:  c.ID,
		TargetID: target.CombatID(),
		Kind:     def.Name,
	})
	return true
}

// teleport relocates the user to a random passable, vacant cell within
// range. Fails, consuming nothing, when no destination is found.
func (e *Engine) teleport(c *creature.Instance, def *Def, _ Target) bool {
	for i := 0; i < teleportAttempts; i++ {
		dst := grid.Point{
			X: c.Pos.X + e.src.Intn(2*def.Range+1) - def.Range,
			Y: c.Pos.Y + e.src.Intn(2*def.Range+1) - def.Range,
		}
		if dst == c.Pos {
			continue
		}
		if !e.world.IsPassable(dst.X, dst.Y) || e.world.OccupantAt(dst.X, dst.Y) != "" {
			continue
		}
		c.Pos = dst
		return true
	}
	return false
}

// regenerate is the passive per-turn self heal.
func (e *Engine) regenerate(c *creature.Instance, def *Def) {
	if c.HP >= c.MaxHP {
		return
	}
	c.Heal(dice.Eval(def.Heal, e.src))
}

// enrage is the passive self-condition (raging, berserk) applied once its
// trigger holds. Re-application while active is skipped so the status
// notice fires once per episode.
func (e *Engine) enrage(c *creature.Instance, def *Def) {
	if c.Conditions.Has(def.Condition) {
		return
	}
	e.applyCondition(c.ID, c, def.Condition, def.Duration)
}

// resolve looks up an occupant ID, tolerating a nil Lookup.
func (e *Engine) resolve(id string) Target {
	if e.Lookup == nil {
		return nil
	}
	return e.Lookup(id)
}
