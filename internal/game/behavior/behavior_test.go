package behavior_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskmantle/delve/internal/game/ability"
	"github.com/duskmantle/delve/internal/game/behavior"
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
	"github.com/duskmantle/delve/internal/testutil"
)

func hostile(t *testing.T, pattern string, pos grid.Point, hp, maxHP int) *creature.Instance {
	t.Helper()
	tmpl := &creature.Template{
		ID: "wolf", Name: "Wolf", Symbol: "w",
		MaxHP: maxHP, ToHit: 15, Speed: 1,
		SightRange: 6, HearingRange: 6,
		Pattern: pattern,
		Attacks: []creature.AttackDef{{Mode: "melee", Damage: "1d6", Kind: "physical"}},
	}
	c := creature.NewInstance(tmpl, pos, dice.NewSeededSource(1))
	c.State = creature.StateHostile
	c.TargetID = "player"
	c.HP = hp
	return c
}

func makeCtx(t *testing.T, self *creature.Instance, targetPos grid.Point, arena *testutil.Arena) *behavior.Context {
	t.Helper()
	if arena == nil {
		arena = testutil.NewArena(20, 20)
	}
	return &behavior.Context{
		Self:             self,
		TargetID:         "player",
		TargetPos:        targetPos,
		TargetHPFraction: 1.0,
		Dist:             grid.Dist(self.Pos, targetPos),
		LOS:              arena.LineOfSight(self.Pos, targetPos),
		World:            arena,
		Src:              dice.NewSeededSource(7),
		Sink:             notice.Discard{},
	}
}

// TestFleeCheck pins the threshold boundary: an aggressive creature at
// 10/40 HP (25%) fights on, but at 7/40 (17.5%) it flees instead.
func TestFleeCheck(t *testing.T) {
	reg := behavior.NewRegistry()

	c := hostile(t, "aggressive", grid.Point{X: 5, Y: 5}, 10, 40)
	act := reg.Select(makeCtx(t, c, grid.Point{X: 6, Y: 5}, nil))
	assert.Equal(t, behavior.ActionAttack, act.Kind, "25% is at the default threshold, not below")

	c.HP = 7
	act = reg.Select(makeCtx(t, c, grid.Point{X: 6, Y: 5}, nil))
	assert.Equal(t, behavior.ActionFlee, act.Kind)
	require.NotEmpty(t, act.Steps)
	assert.Equal(t, grid.Point{X: 4, Y: 5}, act.Steps[0], "first flee step mirrors the threat")
}

// TestCowardly_CorneredFights: a fleeing coward with at most one open
// escape cell turns and attacks.
func TestCowardly_CorneredFights(t *testing.T) {
	reg := behavior.NewRegistry()
	arena := testutil.NewArena(20, 20)
	c := hostile(t, "cowardly", grid.Point{X: 0, Y: 0}, 1, 10)
	// Corner plus walls: only (1,1) stays open around the origin cell.
	arena.SetWall(1, 0)
	arena.Place("player", 0, 1)

	act := reg.Select(makeCtx(t, c, grid.Point{X: 0, Y: 1}, arena))
	assert.Equal(t, behavior.ActionAttack, act.Kind, "cornered cowards fight")
}

// TestCowardly_FinishingBlow: a coward below its threshold still attacks a
// target that is nearly dead.
func TestCowardly_FinishingBlow(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "cowardly", grid.Point{X: 5, Y: 5}, 1, 10)

	ctx := makeCtx(t, c, grid.Point{X: 6, Y: 5}, nil)
	ctx.TargetHPFraction = 0.10
	assert.Equal(t, behavior.ActionAttack, reg.Select(ctx).Kind)

	ctx.TargetHPFraction = 0.90
	assert.Equal(t, behavior.ActionFlee, reg.Select(ctx).Kind, "healthy target, the coward runs")
}

// TestCowardly_ThresholdFromSpawn: the cowardly flee threshold lands in
// [50%, 70%], so a coward at half health already flees.
func TestCowardly_ThresholdFromSpawn(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "cowardly", grid.Point{X: 5, Y: 5}, 4, 10)
	require.GreaterOrEqual(t, c.FleeThreshold, 0.50)

	act := reg.Select(makeCtx(t, c, grid.Point{X: 9, Y: 5}, nil))
	assert.Equal(t, behavior.ActionFlee, act.Kind)
}

func TestDefensive(t *testing.T) {
	reg := behavior.NewRegistry()

	healthy := hostile(t, "defensive", grid.Point{X: 5, Y: 5}, 10, 10)
	act := reg.Select(makeCtx(t, healthy, grid.Point{X: 6, Y: 5}, nil))
	assert.Equal(t, behavior.ActionAttack, act.Kind)

	wounded := hostile(t, "defensive", grid.Point{X: 5, Y: 5}, 4, 10)
	act = reg.Select(makeCtx(t, wounded, grid.Point{X: 6, Y: 5}, nil))
	assert.Equal(t, behavior.ActionStepBack, act.Kind, "wounded and pressed gives ground")

	act = reg.Select(makeCtx(t, healthy, grid.Point{X: 7, Y: 5}, nil))
	assert.Equal(t, behavior.ActionNone, act.Kind, "holds at two tiles")

	act = reg.Select(makeCtx(t, healthy, grid.Point{X: 9, Y: 5}, nil))
	assert.Equal(t, behavior.ActionPursue, act.Kind)
}

func TestRanged(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "ranged", grid.Point{X: 5, Y: 5}, 10, 10)

	act := reg.Select(makeCtx(t, c, grid.Point{X: 6, Y: 5}, nil))
	assert.Equal(t, behavior.ActionStepBack, act.Kind, "backs off from melee")

	act = reg.Select(makeCtx(t, c, grid.Point{X: 9, Y: 5}, nil))
	assert.Equal(t, behavior.ActionAttack, act.Kind, "clear line inside sight range")

	arena := testutil.NewArena(20, 20)
	arena.SetWall(7, 5)
	act = reg.Select(makeCtx(t, c, grid.Point{X: 9, Y: 5}, arena))
	assert.Equal(t, behavior.ActionCircle, act.Kind, "sidesteps a blocked line")
	assert.Equal(t, []grid.Point{{X: 5, Y: 4}, {X: 5, Y: 6}}, act.Steps)

	act = reg.Select(makeCtx(t, c, grid.Point{X: 15, Y: 5}, nil))
	assert.Equal(t, behavior.ActionPursue, act.Kind, "out of reach, closes in")
}

func TestIntelligent_PrefersReadyAbility(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "intelligent", grid.Point{X: 5, Y: 5}, 10, 10)
	c.Abilities = []string{"web-spray", "blink"}

	ctx := makeCtx(t, c, grid.Point{X: 8, Y: 5}, nil)
	ctx.CanUse = func(name string) bool { return name == "blink" }
	act := reg.Select(ctx)
	assert.Equal(t, behavior.ActionAbility, act.Kind)
	assert.Equal(t, "blink", act.Ability)

	ctx.CanUse = func(string) bool { return false }
	assert.Equal(t, behavior.ActionPursue, reg.Select(ctx).Kind, "nothing ready, fight normally")
}

// TestPackHunter_Surround: with two hostile packmates nearby the hunter
// heads for the first open cell around the target in the fixed clockwise
// order, starting north.
func TestPackHunter_Surround(t *testing.T) {
	reg := behavior.NewRegistry()
	arena := testutil.NewArena(20, 20)
	c := hostile(t, "pack_hunter", grid.Point{X: 2, Y: 5}, 10, 10)
	target := grid.Point{X: 8, Y: 5}
	arena.Place("player", 8, 5)

	ctx := makeCtx(t, c, target, arena)
	ctx.AllyCount = 2
	act := reg.Select(ctx)
	require.Equal(t, behavior.ActionPursue, act.Kind)
	// First surround cell is north of the target: (8,4); the first step from
	// (2,5) toward it is the diagonal.
	assert.Equal(t, grid.Point{X: 3, Y: 4}, act.Steps[0])

	// Block north; the next clockwise cell (9,4) becomes the goal.
	arena.SetWall(8, 4)
	act = reg.Select(ctx)
	require.Equal(t, behavior.ActionPursue, act.Kind)
	assert.Equal(t, grid.Point{X: 3, Y: 4}, act.Steps[0], "diagonal toward (9,4) from (2,5)")

	// Without the pack it pursues the target directly.
	ctx.AllyCount = 1
	act = reg.Select(ctx)
	require.Equal(t, behavior.ActionPursue, act.Kind)
	assert.Equal(t, grid.Point{X: 3, Y: 5}, act.Steps[0])
}

func TestPackHunter_AdjacentAttacks(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "pack_hunter", grid.Point{X: 7, Y: 5}, 10, 10)
	ctx := makeCtx(t, c, grid.Point{X: 8, Y: 5}, nil)
	ctx.AllyCount = 3
	assert.Equal(t, behavior.ActionAttack, reg.Select(ctx).Kind)
}

func TestGuard(t *testing.T) {
	reg := behavior.NewRegistry()

	t.Run("engages near the post", func(t *testing.T) {
		c := hostile(t, "guard", grid.Point{X: 5, Y: 5}, 10, 10)
		c.GuardPost = grid.Point{X: 5, Y: 5}
		act := reg.Select(makeCtx(t, c, grid.Point{X: 7, Y: 5}, nil))
		assert.Equal(t, behavior.ActionPursue, act.Kind)
	})

	t.Run("ignores a distant target and returns to post", func(t *testing.T) {
		c := hostile(t, "guard", grid.Point{X: 9, Y: 5}, 10, 10)
		c.GuardPost = grid.Point{X: 5, Y: 5}
		act := reg.Select(makeCtx(t, c, grid.Point{X: 15, Y: 5}, nil))
		assert.Equal(t, behavior.ActionGuardReturn, act.Kind)
		assert.Equal(t, grid.Point{X: 8, Y: 5}, act.Steps[0])
	})

	t.Run("engaged guards never stand down", func(t *testing.T) {
		c := hostile(t, "guard", grid.Point{X: 9, Y: 5}, 10, 10)
		c.GuardPost = grid.Point{X: 5, Y: 5}
		c.GuardEngaged = true
		act := reg.Select(makeCtx(t, c, grid.Point{X: 15, Y: 5}, nil))
		assert.Equal(t, behavior.ActionPursue, act.Kind, "permanently hostile once blooded")
	})

	t.Run("unengaged guarding state holds position", func(t *testing.T) {
		c := hostile(t, "guard", grid.Point{X: 5, Y: 5}, 10, 10)
		c.State = creature.StateGuarding
		c.GuardPost = grid.Point{X: 5, Y: 5}
		act := reg.Select(makeCtx(t, c, grid.Point{X: 15, Y: 5}, nil))
		assert.Equal(t, behavior.ActionNone, act.Kind)
	})
}

func TestWandering_RandomStep(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "aggressive", grid.Point{X: 5, Y: 5}, 10, 10)
	c.State = creature.StateWandering

	act := reg.Select(makeCtx(t, c, grid.Point{X: 15, Y: 5}, nil))
	require.Equal(t, behavior.ActionWander, act.Kind)
	require.Len(t, act.Steps, 1)
	assert.Equal(t, 1, grid.Dist(c.Pos, act.Steps[0]))
}

func TestSleeping_DoesNothing(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "aggressive", grid.Point{X: 5, Y: 5}, 10, 10)
	c.State = creature.StateSleeping
	assert.Equal(t, behavior.ActionNone, reg.Select(makeCtx(t, c, grid.Point{X: 6, Y: 5}, nil)).Kind)
}

// TestUnknownPattern falls back to aggressive and says so once.
func TestUnknownPattern_FallsBackAggressive(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "aggressive", grid.Point{X: 5, Y: 5}, 10, 10)
	c.Pattern = "bewildered"
	rec := &notice.Recorder{}

	ctx := makeCtx(t, c, grid.Point{X: 6, Y: 5}, nil)
	ctx.Sink = rec
	act := reg.Select(ctx)

	assert.Equal(t, behavior.ActionAttack, act.Kind)
	assert.Equal(t, 1, rec.Count(notice.TypeDebug))
}

// TestAggressive_LeadsWithCloseAbility: any pattern in melee range opens
// with a ready melee-range ability before falling back to a plain swing.
func TestAggressive_LeadsWithCloseAbility(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "aggressive", grid.Point{X: 5, Y: 5}, 10, 10)
	c.Abilities = []string{"engulf"}

	ctx := makeCtx(t, c, grid.Point{X: 6, Y: 5}, nil)
	ctx.ReadyAbility = func(kinds ...string) string {
		for _, k := range kinds {
			if k == ability.KindEngulf {
				return "engulf"
			}
		}
		return ""
	}
	act := reg.Select(ctx)
	assert.Equal(t, behavior.ActionAbility, act.Kind)
	assert.Equal(t, "engulf", act.Ability)

	ctx.ReadyAbility = func(...string) string { return "" }
	assert.Equal(t, behavior.ActionAttack, reg.Select(ctx).Kind, "on cooldown, swing instead")
}

// TestFlee_EscapeAbilityBeatsRunning: a fleeing creature with a ready
// teleport blinks out instead of running on foot.
func TestFlee_EscapeAbilityBeatsRunning(t *testing.T) {
	reg := behavior.NewRegistry()
	c := hostile(t, "cowardly", grid.Point{X: 5, Y: 5}, 1, 10)
	c.Abilities = []string{"blink"}

	ctx := makeCtx(t, c, grid.Point{X: 8, Y: 5}, nil)
	ctx.ReadyAbility = func(kinds ...string) string {
		for _, k := range kinds {
			if k == ability.KindTeleport {
				return "blink"
			}
		}
		return ""
	}
	act := reg.Select(ctx)
	assert.Equal(t, behavior.ActionAbility, act.Kind)
	assert.Equal(t, "blink", act.Ability)

	ctx.ReadyAbility = nil
	assert.Equal(t, behavior.ActionFlee, reg.Select(ctx).Kind, "no escape ready, run")
}
