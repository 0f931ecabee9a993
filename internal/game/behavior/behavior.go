// Package behavior implements the per-turn action selector: a registry of
// AI pattern functions, each a deterministic mapping from a creature's
// situation snapshot to exactly one action.
package behavior

import (
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
)

// Action kinds. Movement actions carry candidate steps in tie-break order;
// the turn driver takes the first open one, and a fully blocked move is a
// valid no-op, never retried within the turn.
const (
	ActionNone        = "none"
	ActionAttack      = "attack"
	ActionAbility     = "ability"
	ActionPursue      = "pursue"
	ActionStepBack    = "step_back"
	ActionCircle      = "circle"
	ActionFlee        = "flee"
	ActionGuardReturn = "guard_return"
	ActionWander      = "wander"
)

// Action is the single decision a creature makes for one turn.
type Action struct {
	Kind string
	// Steps are candidate destination cells in strict preference order.
	Steps []grid.Point
	// Ability names the ability to use for ActionAbility.
	Ability string
}

// Context is the situation snapshot a pattern decides on. Patterns are pure
// functions of this value; they never mutate the creature.
type Context struct {
	Self      *creature.Instance
	TargetID  string
	TargetPos grid.Point
	// TargetHPFraction feeds the cowardly finishing-blow exception.
	TargetHPFraction float64

	Dist int
	LOS  bool
	// AllyCount is the number of same-kind hostile allies within the pack
	// radius, feeding the pack_hunter surround heuristic.
	AllyCount int

	World grid.SpatialQuery
	Src   dice.Source
	Sink  notice.Sink

	// CanUse reports whether the named ability is ready for Self this turn
	// (known, off cooldown, trigger holds). nil means no ability is ready.
	CanUse func(name string) bool
	// ReadyAbility returns the first of Self's abilities that is ready this
	// turn and whose kind is in kinds; empty means none. It is what lets
	// non-intelligent patterns reach their specials.
	ReadyAbility func(kinds ...string) string
}

// readyOfKind consults ctx.ReadyAbility, tolerating a nil hook.
func readyOfKind(ctx *Context, kinds ...string) string {
	if ctx.ReadyAbility == nil {
		return ""
	}
	return ctx.ReadyAbility(kinds...)
}

// PatternFunc maps a situation to an action.
type PatternFunc func(ctx *Context) Action

// Registry maps pattern tags to their functions.
type Registry struct {
	patterns map[string]PatternFunc
}

// NewRegistry returns a Registry with all built-in patterns installed.
func NewRegistry() *Registry {
	r := &Registry{patterns: make(map[string]PatternFunc)}
	r.Register("aggressive", aggressive)
	r.Register("defensive", defensive)
	r.Register("ranged", ranged)
	r.Register("intelligent", intelligent)
	r.Register("cowardly", cowardly)
	r.Register("pack_hunter", packHunter)
	r.Register("guard", guard)
	return r
}

// Register installs fn under tag, overwriting any existing entry.
func (r *Registry) Register(tag string, fn PatternFunc) {
	r.patterns[tag] = fn
}

// Select chooses exactly one action for the creature this turn.
//
// Non-hostile states act on their own: sleepers do nothing, wanderers take
// a random step, unengaged guards hold or return to post. For hostile
// creatures the flee check runs before pattern dispatch: below the flee
// threshold the creature always flees (by escape ability when one is
// ready), except a cowardly creature that is cornered or facing a nearly
// dead target, which attacks instead. Unknown pattern tags fall back to
// aggressive with a debug notice.
func (r *Registry) Select(ctx *Context) Action {
	c := ctx.Self
	switch c.State {
	case creature.StateSleeping:
		return Action{Kind: ActionNone}
	case creature.StateWandering:
		return wanderStep(ctx)
	case creature.StateGuarding:
		return holdPost(ctx)
	}

	if c.HPFraction() < c.FleeThreshold {
		brave := c.Pattern == "cowardly" &&
			(cornered(ctx) || ctx.TargetHPFraction < finishingBlowFraction)
		if !brave {
			// An escape ability beats running on foot.
			if name := readyOfKind(ctx, escapeKinds...); name != "" {
				return Action{Kind: ActionAbility, Ability: name}
			}
			return Action{Kind: ActionFlee, Steps: grid.StepAway(c.Pos, ctx.TargetPos)}
		}
		return attackOrPursue(ctx)
	}

	fn, ok := r.patterns[c.Pattern]
	if !ok {
		ctx.Sink.Post(notice.Event{
			Type:    notice.TypeDebug,
			ActorID: c.ID,
			Kind:    c.Pattern,
			Detail:  "unknown pattern, using aggressive",
		})
		fn = aggressive
	}
	return fn(ctx)
}
