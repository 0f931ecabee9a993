package behavior

import (
	"github.com/duskmantle/delve/internal/game/ability"
	"github.com/duskmantle/delve/internal/game/grid"
)

const (
	// finishingBlowFraction is the target HP fraction below which a fleeing
	// cowardly creature turns and attacks instead.
	finishingBlowFraction = 0.20
	// woundedFraction is where the defensive pattern starts giving ground.
	woundedFraction = 0.50
	// packAllies is the minimum ally count to attempt a surround.
	packAllies = 2
	// guardEngageRadius is how close to the post a target must come.
	guardEngageRadius = 3
	// guardLeash is the displacement past which a guard returns to post.
	guardLeash = 2
)

// PackRadius bounds the same-kind ally count behind Context.AllyCount; the
// turn driver counts allies over this radius.
const PackRadius = 8

// escapeKinds are the ability kinds the flee check prefers over running.
var escapeKinds = []string{ability.KindTeleport}

// closeKinds are the melee-range ability kinds attackOrPursue leads with
// when adjacent.
var closeKinds = []string{ability.KindEngulf, ability.KindTouch, ability.KindSteal}

// aggressive closes and hits: attack when adjacent, otherwise pursue.
func aggressive(ctx *Context) Action {
	return attackOrPursue(ctx)
}

// defensive fights in place but gives ground when wounded and pressed.
func defensive(ctx *Context) Action {
	if ctx.Dist <= 1 {
		if ctx.Self.HPFraction() < woundedFraction {
			return Action{Kind: ActionStepBack, Steps: grid.StepAway(ctx.Self.Pos, ctx.TargetPos)}
		}
		return Action{Kind: ActionAttack}
	}
	if ctx.Dist <= 2 {
		// Hold and let the target come.
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionPursue, Steps: grid.StepToward(ctx.Self.Pos, ctx.TargetPos)}
}

// ranged keeps its distance: back off when adjacent, circle to regain a
// blocked sight line, shoot whenever the line is clear.
func ranged(ctx *Context) Action {
	if ctx.Dist <= 1 {
		return Action{Kind: ActionStepBack, Steps: grid.StepAway(ctx.Self.Pos, ctx.TargetPos)}
	}
	if !ctx.LOS {
		return Action{Kind: ActionCircle, Steps: sidesteps(ctx.Self.Pos, ctx.TargetPos)}
	}
	if ctx.Dist <= ctx.Self.SightRange {
		return Action{Kind: ActionAttack}
	}
	return Action{Kind: ActionPursue, Steps: grid.StepToward(ctx.Self.Pos, ctx.TargetPos)}
}

// intelligent leads with a ready special ability, then fights like an
// aggressive creature.
func intelligent(ctx *Context) Action {
	if ctx.CanUse != nil {
		for _, name := range ctx.Self.Abilities {
			if ctx.CanUse(name) {
				return Action{Kind: ActionAbility, Ability: name}
			}
		}
	}
	return attackOrPursue(ctx)
}

// cowardly above its flee threshold fights like anything else; the high
// threshold rolled at spawn is what makes it break early. The cornered and
// finishing-blow exceptions live in the flee check, not here.
func cowardly(ctx *Context) Action {
	return attackOrPursue(ctx)
}

// packHunter surrounds: with enough hostile packmates it heads for the
// first open cell adjacent to the target, in fixed order; otherwise it
// pursues directly.
func packHunter(ctx *Context) Action {
	if ctx.Dist <= 1 {
		return Action{Kind: ActionAttack}
	}
	if ctx.AllyCount >= packAllies {
		for _, cell := range grid.Neighbors(ctx.TargetPos) {
			if cell == ctx.Self.Pos {
				return Action{Kind: ActionAttack}
			}
			if !ctx.World.IsPassable(cell.X, cell.Y) || ctx.World.OccupantAt(cell.X, cell.Y) != "" {
				continue
			}
			return Action{Kind: ActionPursue, Steps: grid.StepToward(ctx.Self.Pos, cell)}
		}
	}
	return Action{Kind: ActionPursue, Steps: grid.StepToward(ctx.Self.Pos, ctx.TargetPos)}
}

// guard defends a post. It engages anything that comes within the engage
// radius of the post; once it has attacked it never stands down, otherwise
// it walks back when displaced past the leash.
func guard(ctx *Context) Action {
	c := ctx.Self
	if c.GuardEngaged || grid.Dist(ctx.TargetPos, c.GuardPost) <= guardEngageRadius {
		return attackOrPursue(ctx)
	}
	if grid.Dist(c.Pos, c.GuardPost) > guardLeash {
		return Action{Kind: ActionGuardReturn, Steps: grid.StepToward(c.Pos, c.GuardPost)}
	}
	return Action{Kind: ActionNone}
}

// attackOrPursue is the shared close-and-hit core. Adjacent, it leads with
// a ready melee-range ability so specials like engulf are not reserved to
// the intelligent pattern.
func attackOrPursue(ctx *Context) Action {
	if ctx.Dist <= 1 {
		if name := readyOfKind(ctx, closeKinds...); name != "" {
			return Action{Kind: ActionAbility, Ability: name}
		}
		return Action{Kind: ActionAttack}
	}
	return Action{Kind: ActionPursue, Steps: grid.StepToward(ctx.Self.Pos, ctx.TargetPos)}
}

// wanderStep is a random-direction move attempt.
func wanderStep(ctx *Context) Action {
	dirs := grid.Neighbors(ctx.Self.Pos)
	return Action{Kind: ActionWander, Steps: []grid.Point{dirs[ctx.Src.Intn(len(dirs))]}}
}

// holdPost is the unengaged guard's idle: walk home when displaced, stand
// otherwise.
func holdPost(ctx *Context) Action {
	c := ctx.Self
	if grid.Dist(c.Pos, c.GuardPost) > guardLeash {
		return Action{Kind: ActionGuardReturn, Steps: grid.StepToward(c.Pos, c.GuardPost)}
	}
	return Action{Kind: ActionNone}
}

// cornered reports whether the creature has at most one open escape cell.
func cornered(ctx *Context) bool {
	open := 0
	for _, cell := range grid.Neighbors(ctx.Self.Pos) {
		if ctx.World.IsPassable(cell.X, cell.Y) && ctx.World.OccupantAt(cell.X, cell.Y) == "" {
			open++
		}
	}
	return open <= 1
}

// sidesteps offers the two cells perpendicular to the target axis, for
// working around a blocking wall.
func sidesteps(from, toward grid.Point) []grid.Point {
	dx := toward.X - from.X
	dy := toward.Y - from.Y
	if abs(dx) >= abs(dy) {
		return []grid.Point{{X: from.X, Y: from.Y - 1}, {X: from.X, Y: from.Y + 1}}
	}
	return []grid.Point{{X: from.X - 1, Y: from.Y}, {X: from.X + 1, Y: from.Y}}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
