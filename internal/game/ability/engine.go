package ability

import (
	"github.com/duskmantle/delve/internal/game/combat"
	"github.com/duskmantle/delve/internal/game/condition"
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
)

// digestThreshold is the victim HP fraction below which each digestion turn
// carries the ability's independent instant-kill chance.
const digestThreshold = 0.25

// teleportAttempts bounds the random cell sampling for teleport.
const teleportAttempts = 20

// Target is a combatant an ability can affect: a creature or the player.
type Target interface {
	combat.Mitigator
	CombatID() string
	Position() grid.Point
	CurrentHP() int
	HPFraction() float64
	ApplyDamage(amount int)
	ActiveConditions() *condition.ActiveSet
	HasReflection() bool
	Concealed() bool
	Blinded() bool
	Alive() bool
}

// TriggerEvaluator evaluates a named Lua trigger hook for a creature ID.
// scripting.Manager satisfies it.
type TriggerEvaluator interface {
	TriggerAllows(hook, id string) bool
}

// resolver executes one ability kind. A false return means no effect took
// place and no cooldown is consumed.
type resolver func(e *Engine, c *creature.Instance, def *Def, target Target) bool

var resolvers = map[string]resolver{
	KindBreath:    (*Engine).breath,
	KindBolt:      (*Engine).bolt,
	KindGaze:      (*Engine).gaze,
	KindEngulf:    (*Engine).engulf,
	KindTouch:     (*Engine).touch,
	KindSummon:    (*Engine).summon,
	KindTransform: (*Engine).transform,
	KindSteal:     (*Engine).steal,
	KindTeleport:  (*Engine).teleport,
}

// Engine dispatches ability use and passive execution. It never mutates the
// dungeon or the player's equipment directly; cross-subsystem effects leave
// as request notices.
type Engine struct {
	defs       *Registry
	conditions *condition.Registry
	world      grid.SpatialQuery
	src        dice.Source
	sink       notice.Sink

	// Scripts evaluates Lua trigger hooks; nil means hook triggers veto.
	Scripts TriggerEvaluator
	// Lookup resolves an occupant ID to a live target; nil lookups make
	// area and digestion effects skip unresolvable occupants.
	Lookup func(id string) Target
}

// NewEngine creates an Engine over the given collaborators.
//
// Precondition: all arguments non-nil.
func NewEngine(defs *Registry, conditions *condition.Registry, world grid.SpatialQuery, src dice.Source, sink notice.Sink) *Engine {
	return &Engine{
		defs:       defs,
		conditions: conditions,
		world:      world,
		src:        src,
		sink:       sink,
	}
}

// Use attempts to activate the named ability for c against target. All
// preconditions are checked before any effect: the ability must be known to
// the creature, not passive, off cooldown, in range, and its trigger must
// hold; the user must be awake, unstunned, unconfused, and able to act. A
// false return guarantees zero world mutation. On success the ability's
// cooldown is set to its configured length.
func (e *Engine) Use(c *creature.Instance, name string, target Target) bool {
	def, ok := e.ready(c, name, target)
	if !ok {
		return false
	}

	resolve := resolvers[def.Kind]
	if resolve == nil || !resolve(e, c, def, target) {
		return false
	}

	c.SetCooldown(name, def.Cooldown)
	e.sink.Post(notice.Event{
		Type:    notice.TypeAbilityUsed,
		ActorID: c.ID,
		Kind:    def.Name,
		X:       c.Pos.X,
		Y:       c.Pos.Y,
	})
	return true
}

// Ready reports whether Use would pass every precondition for the named
// ability against target, without resolving anything. Behavior patterns
// poll it when ranking actions.
func (e *Engine) Ready(c *creature.Instance, name string, target Target) bool {
	_, ok := e.ready(c, name, target)
	return ok
}

// KindOf returns the kind of the named ability definition.
func (e *Engine) KindOf(name string) (string, bool) {
	def, ok := e.defs.Get(name)
	if !ok {
		return "", false
	}
	return def.Kind, true
}

func (e *Engine) ready(c *creature.Instance, name string, target Target) (*Def, bool) {
	def, ok := e.defs.Get(name)
	if !ok || def.Passive || !knows(c, name) {
		return nil, false
	}
	if !e.canAct(c) {
		return nil, false
	}
	if c.Cooldown(name) != 0 {
		return nil, false
	}
	if needsTarget(def.Kind) && (target == nil || !target.Alive()) {
		return nil, false
	}
	if def.Kind == KindEngulf && c.EngulfedID != "" {
		return nil, false
	}
	if def.Range > 0 && target != nil && grid.Dist(c.Pos, target.Position()) > def.Range {
		return nil, false
	}
	if !e.triggerHolds(c, def) {
		return nil, false
	}
	return def, true
}

// RunPassives executes c's passive abilities and any ongoing digestion for
// this turn. target is the creature's current engagement target, consulted
// only for trigger evaluation.
func (e *Engine) RunPassives(c *creature.Instance, target Target) {
	if c.IsDead() {
		return
	}
	for _, name := range c.Abilities {
		def, ok := e.defs.Get(name)
		if !ok {
			continue
		}
		switch {
		case def.Kind == KindEngulf && c.EngulfedID != "":
			e.digest(c, def)
		case !def.Passive:
			continue
		case !e.triggerHolds(c, def):
			continue
		case def.Kind == KindRegen:
			e.regenerate(c, def)
		case def.Kind == KindEnrage:
			e.enrage(c, def)
		}
	}
}

func knows(c *creature.Instance, name string) bool {
	for _, n := range c.Abilities {
		if n == name {
			return true
		}
	}
	return false
}

// needsTarget reports whether the kind requires a live target.
func needsTarget(kind string) bool {
	switch kind {
	case KindBreath, KindBolt, KindGaze, KindEngulf, KindTouch, KindSteal:
		return true
	}
	return false
}

// canAct reports whether c may deliberately trigger abilities this turn.
func (e *Engine) canAct(c *creature.Instance) bool {
	if c.IsDead() || c.State == creature.StateSleeping {
		return false
	}
	if condition.SkipsTurn(c.Conditions) || condition.MovementScrambled(c.Conditions) {
		return false
	}
	if condition.BlocksAbilities(c.Conditions) {
		return false
	}
	return true
}

func (e *Engine) triggerHolds(c *creature.Instance, def *Def) bool {
	if def.Trigger.MaxHPPercent > 0 && c.HPFraction()*100 > def.Trigger.MaxHPPercent {
		return false
	}
	if def.Trigger.Hook != "" {
		if e.Scripts == nil || !e.Scripts.TriggerAllows(def.Trigger.Hook, c.ID) {
			return false
		}
	}
	return true
}

// chance runs a probability check at 1/1000 granularity.
func (e *Engine) chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return e.src.Intn(1000) < int(p*1000)
}

// deal routes damage through the convergent application path: creatures get
// the full death/loot handling, the player gets mitigation plus a death
// notice for the caller to act on.
func (e *Engine) deal(attackerID string, t Target, raw int, kind string) combat.Outcome {
	if c, ok := t.(*creature.Instance); ok {
		return combat.DealDamage(c, raw, kind, attackerID, e.sink)
	}

	out := combat.Outcome{AttackerID: attackerID, TargetID: t.CombatID(), Hit: true, Kind: kind}
	dmg := combat.Mitigate(kind, raw, t)
	if dmg == 0 && raw > 0 && combat.Reflectable(kind) && t.ReflectsKind(kind) {
		out.Reflected = true
	}
	out.Damage = dmg
	t.ApplyDamage(dmg)
	e.sink.Post(notice.Event{
		Type:     notice.TypeDamage,
		ActorID:  attackerID,
		TargetID: t.CombatID(),
		Amount:   dmg,
		Kind:     kind,
	})
	if !t.Alive() {
		out.Killed = true
		e.sink.Post(notice.Event{
			Type:     notice.TypeDeath,
			ActorID:  attackerID,
			TargetID: t.CombatID(),
			X:        t.Position().X,
			Y:        t.Position().Y,
		})
	}
	return out
}

// slay kills the target outright, bypassing mitigation.
func (e *Engine) slay(attackerID string, t Target) {
	if c, ok := t.(*creature.Instance); ok {
		c.ApplyDamage(c.HP)
		if c.MarkDead() {
			e.sink.Post(notice.Event{
				Type:     notice.TypeDeath,
				ActorID:  attackerID,
				TargetID: c.ID,
				X:        c.Pos.X,
				Y:        c.Pos.Y,
			})
			e.sink.Post(notice.Event{
				Type:     notice.TypeLootRequest,
				TargetID: c.ID,
				Kind:     c.TemplateID,
				X:        c.Pos.X,
				Y:        c.Pos.Y,
			})
		}
		return
	}
	t.ApplyDamage(t.CurrentHP())
	e.sink.Post(notice.Event{
		Type:     notice.TypeDeath,
		ActorID:  attackerID,
		TargetID: t.CombatID(),
		X:        t.Position().X,
		Y:        t.Position().Y,
	})
}

// applyCondition applies the named condition to the victim and emits a
// status notice. Returns false when the condition is unknown.
func (e *Engine) applyCondition(actorID string, victim Target, condID string, duration int) bool {
	def, ok := e.conditions.Get(condID)
	if !ok {
		return false
	}
	if err := victim.ActiveConditions().Apply(def, duration); err != nil {
		return false
	}
	e.sink.Post(notice.Event{
		Type:     notice.TypeStatusApplied,
		ActorID:  actorID,
		TargetID: victim.CombatID(),
		Kind:     def.ID,
		Amount:   duration,
	})
	return true
}
