package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/duskmantle/delve/internal/game/combat"
	"github.com/duskmantle/delve/internal/game/condition"
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
	"github.com/duskmantle/delve/internal/testutil"
)

func trollTemplate() *creature.Template {
	return &creature.Template{
		ID:     "troll",
		Name:   "Troll",
		Symbol: "T",
		MaxHP:  30,
		ToHit:  15,
		Speed:  1,
		Attacks: []creature.AttackDef{
			{Mode: "melee", Damage: "1d6+1", Kind: "physical"},
		},
		Pattern: "aggressive",
	}
}

func spawnTroll() *creature.Instance {
	return creature.NewInstance(trollTemplate(), grid.Point{X: 1, Y: 1}, dice.NewSeededSource(1))
}

func testWeapon() *combat.ChainWeapon {
	return &combat.ChainWeapon{
		ID:               "short-sword",
		Name:             "Short Sword",
		BaseDamage:       8,
		ChainMultipliers: []int{1, 2, 4, 6, 8, 10},
	}
}

func stunRegistry() *condition.Registry {
	reg := condition.NewRegistry()
	reg.Register(&condition.Def{ID: "stunned", Name: "Stunned", SkipsTurn: true})
	reg.Register(&condition.Def{ID: "poisoned", Name: "Poisoned", Stackable: true, TickDamage: "1d4", TickDamageKind: "poison"})
	return reg
}

type mitigationProfile struct {
	resist, weak, reflect map[string]bool
}

func (m mitigationProfile) Resists(kind string) bool      { return m.resist[kind] }
func (m mitigationProfile) WeakTo(kind string) bool       { return m.weak[kind] }
func (m mitigationProfile) ReflectsKind(kind string) bool { return m.reflect[kind] }

func TestMitigate(t *testing.T) {
	none := mitigationProfile{}
	assert.Equal(t, 10, combat.Mitigate(combat.KindFire, 10, none))

	resistFire := mitigationProfile{resist: map[string]bool{"fire": true}}
	assert.Equal(t, 5, combat.Mitigate(combat.KindFire, 10, resistFire), "resist halves")
	assert.Equal(t, 10, combat.Mitigate(combat.KindCold, 10, resistFire))

	weakCold := mitigationProfile{weak: map[string]bool{"cold": true}}
	assert.Equal(t, 20, combat.Mitigate(combat.KindCold, 10, weakCold), "weakness doubles")

	reflectFire := mitigationProfile{reflect: map[string]bool{"fire": true}}
	assert.Equal(t, 0, combat.Mitigate(combat.KindFire, 10, reflectFire), "reflection zeroes")

	// Physical is not in the reflectable set, so a reflect tag cannot zero it.
	reflectPhys := mitigationProfile{reflect: map[string]bool{"physical": true}}
	assert.Equal(t, 10, combat.Mitigate(combat.KindPhysical, 10, reflectPhys))
}

// TestMonsterAttack_Boundary pins the classical convention: with to-hit 15
// and target AC 10, a roll of 5 hits (equality counts) and a roll of 4
// misses.
func TestMonsterAttack_Boundary(t *testing.T) {
	reg := stunRegistry()

	t.Run("roll of 5 hits", func(t *testing.T) {
		troll := spawnTroll()
		player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 20, 10, testWeapon())
		rec := &notice.Recorder{}
		// d20 roll 5, then one d6 damage die showing 3.
		src := &testutil.ScriptedSource{Vals: []int{4, 2}}

		out := combat.ResolveMonsterAttack(troll, troll.Attacks[0], player, reg, src, rec)

		require.True(t, out.Hit)
		assert.Equal(t, 4, out.Damage, "1d6+1 with a die of 3")
		assert.Equal(t, 16, player.HP)
		assert.Equal(t, 1, rec.Count(notice.TypeAttackHit))
		assert.Equal(t, 1, rec.Count(notice.TypeDamage))
	})

	t.Run("roll of 4 misses", func(t *testing.T) {
		troll := spawnTroll()
		player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 20, 10, testWeapon())
		rec := &notice.Recorder{}
		src := &testutil.ScriptedSource{Vals: []int{3}}

		out := combat.ResolveMonsterAttack(troll, troll.Attacks[0], player, reg, src, rec)

		require.False(t, out.Hit)
		assert.Equal(t, 0, out.Damage)
		assert.Equal(t, 20, player.HP, "a miss deals no damage")
		assert.Equal(t, 1, rec.Count(notice.TypeAttackMiss))
		assert.Zero(t, rec.Count(notice.TypeDamage))
	})
}

// TestMonsterAttack_Mitigated: the player's equipment resistances halve the
// incoming elemental damage.
func TestMonsterAttack_Mitigated(t *testing.T) {
	tmpl := trollTemplate()
	tmpl.Attacks = []creature.AttackDef{{Mode: "melee", Damage: "2d6", Kind: "fire"}}
	troll := creature.NewInstance(tmpl, grid.Point{X: 1, Y: 1}, dice.NewSeededSource(1))
	player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 20, 10, testWeapon())
	player.SetResistances([]string{"fire"}, nil, nil)

	// Roll 20, then two d6 dice showing 6 and 6.
	src := &testutil.ScriptedSource{Vals: []int{19, 5, 5}}
	out := combat.ResolveMonsterAttack(troll, troll.Attacks[0], player, stunRegistry(), src, notice.Discard{})

	require.True(t, out.Hit)
	assert.Equal(t, 6, out.Damage, "12 fire halved")
	assert.Equal(t, 14, player.HP)
}

// TestMonsterAttack_StunOnHit: a guaranteed stun chance applies the stunned
// condition to a surviving target.
func TestMonsterAttack_StunOnHit(t *testing.T) {
	tmpl := trollTemplate()
	tmpl.Attacks = []creature.AttackDef{{Mode: "melee", Damage: "1d6", Kind: "physical", StunChance: 1}}
	troll := creature.NewInstance(tmpl, grid.Point{X: 1, Y: 1}, dice.NewSeededSource(1))
	player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 20, 10, testWeapon())
	rec := &notice.Recorder{}

	src := &testutil.ScriptedSource{Vals: []int{19, 2}}
	out := combat.ResolveMonsterAttack(troll, troll.Attacks[0], player, stunRegistry(), src, rec)

	require.True(t, out.Hit)
	assert.Equal(t, "stunned", out.StatusID)
	assert.True(t, player.Conditions.Has("stunned"))
	assert.Equal(t, 1, rec.Count(notice.TypeStatusApplied))
}

// TestMonsterAttack_StatusOnHit: a named on-hit condition with a certain
// chance lands with its configured duration.
func TestMonsterAttack_StatusOnHit(t *testing.T) {
	tmpl := trollTemplate()
	tmpl.Attacks = []creature.AttackDef{{
		Mode: "melee", Damage: "1d4", Kind: "physical",
		StatusID: "poisoned", StatusChance: 1, StatusDuration: 3,
	}}
	troll := creature.NewInstance(tmpl, grid.Point{X: 1, Y: 1}, dice.NewSeededSource(1))
	player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 20, 10, testWeapon())

	src := &testutil.ScriptedSource{Vals: []int{19, 1}}
	out := combat.ResolveMonsterAttack(troll, troll.Attacks[0], player, stunRegistry(), src, notice.Discard{})

	require.True(t, out.Hit)
	assert.Equal(t, "poisoned", out.StatusID)
	assert.Equal(t, 3, player.Conditions.Remaining("poisoned"))
}

// TestMonsterAttack_NoStatusOnKill: secondary statuses never apply to a
// target the hit just dropped.
func TestMonsterAttack_NoStatusOnKill(t *testing.T) {
	tmpl := trollTemplate()
	tmpl.Attacks = []creature.AttackDef{{Mode: "melee", Damage: "1d6", Kind: "physical", StunChance: 1}}
	troll := creature.NewInstance(tmpl, grid.Point{X: 1, Y: 1}, dice.NewSeededSource(1))
	player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 3, 10, testWeapon())
	rec := &notice.Recorder{}

	src := &testutil.ScriptedSource{Vals: []int{19, 5}}
	out := combat.ResolveMonsterAttack(troll, troll.Attacks[0], player, stunRegistry(), src, rec)

	require.True(t, out.Hit)
	assert.True(t, out.Killed)
	assert.Empty(t, out.StatusID)
	assert.Equal(t, 1, rec.Count(notice.TypeDeath))
	assert.False(t, player.Conditions.Has("stunned"))
}

// TestChainDamage pins the multiplier table lookup: base 8 with multipliers
// [1,2,4,6,8,10] and a score of 3 deals exactly 32.
func TestChainDamage(t *testing.T) {
	w := testWeapon()
	assert.Equal(t, 32, w.ChainDamage(3, false))
	assert.Equal(t, 8, w.ChainDamage(1, false))
	assert.Equal(t, 80, w.ChainDamage(6, false))
	assert.Equal(t, 80, w.ChainDamage(99, false), "scores past the table clamp to the last tier")
}

func TestChainDamage_Modifiers(t *testing.T) {
	w := testWeapon()
	w.Enchantment = 2
	assert.Equal(t, 34, w.ChainDamage(3, false))

	w.Blessed = true
	assert.Equal(t, 34, w.ChainDamage(3, false), "blessing is inert against the living")
	assert.Equal(t, 51, w.ChainDamage(3, true), "x1.5 against the unholy")

	cursed := &combat.ChainWeapon{ID: "rusty", BaseDamage: 1, ChainMultipliers: []int{1}, Cursed: true}
	assert.Equal(t, 1, cursed.ChainDamage(1, false), "damage never drops below 1")
}

// TestPlayerAttack_ZeroScoreAlwaysMisses: score 0 is a complete miss even
// when the quiz reports overall success.
func TestPlayerAttack_ZeroScoreAlwaysMisses(t *testing.T) {
	troll := spawnTroll()
	player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 20, 10, testWeapon())
	rec := &notice.Recorder{}

	out := combat.ResolvePlayerAttack(player, combat.QuizResult{Success: true, Score: 0, TotalQuestions: 5}, troll, rec)

	assert.False(t, out.Hit)
	assert.Equal(t, 30, troll.HP)
	assert.Equal(t, 1, rec.Count(notice.TypeAttackMiss))
}

func TestPlayerAttack_Hit(t *testing.T) {
	troll := spawnTroll()
	player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 20, 10, testWeapon())
	rec := &notice.Recorder{}

	out := combat.ResolvePlayerAttack(player, combat.QuizResult{Success: true, Score: 2, TotalQuestions: 5}, troll, rec)

	require.True(t, out.Hit)
	assert.Equal(t, 16, out.Damage)
	assert.Equal(t, 14, troll.HP)
	assert.Equal(t, 1, rec.Count(notice.TypeAttackHit))
}

// TestPlayerAttack_DeadTargetIsNoOp: attacking a corpse fails without
// emitting anything.
func TestPlayerAttack_DeadTargetIsNoOp(t *testing.T) {
	troll := spawnTroll()
	troll.ApplyDamage(30)
	require.True(t, troll.MarkDead())
	rec := &notice.Recorder{}
	player := combat.NewPlayer("player", grid.Point{X: 2, Y: 1}, 20, 10, testWeapon())

	out := combat.ResolvePlayerAttack(player, combat.QuizResult{Success: true, Score: 3}, troll, rec)

	assert.False(t, out.Hit)
	assert.Empty(t, rec.Events)
}

// TestDealDamage_DeathExactlyOnce: no matter how many killing blows land,
// the death notice and the loot request fire exactly once.
func TestDealDamage_DeathExactlyOnce(t *testing.T) {
	troll := spawnTroll()
	rec := &notice.Recorder{}

	first := combat.DealDamage(troll, 50, combat.KindPhysical, "player", rec)
	second := combat.DealDamage(troll, 50, combat.KindPhysical, "player", rec)

	assert.True(t, first.Killed)
	assert.False(t, second.Hit, "the corpse absorbs nothing")
	assert.Equal(t, 1, rec.Count(notice.TypeDeath))
	assert.Equal(t, 1, rec.Count(notice.TypeLootRequest))
}

// TestDealDamage_Reflected: a creature that reflects fire takes zero from it
// and the outcome says so.
func TestDealDamage_Reflected(t *testing.T) {
	tmpl := trollTemplate()
	tmpl.Reflects = []string{"fire"}
	troll := creature.NewInstance(tmpl, grid.Point{X: 1, Y: 1}, dice.NewSeededSource(1))

	out := combat.DealDamage(troll, 12, combat.KindFire, "player", notice.Discard{})

	assert.True(t, out.Reflected)
	assert.Equal(t, 0, out.Damage)
	assert.Equal(t, 30, troll.HP)
}

// TestDealDamage_HPNeverNegative is the clamp property across arbitrary
// damage sequences.
func TestDealDamage_HPNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		troll := spawnTroll()
		n := rapid.IntRange(1, 10).Draw(t, "n")
		for i := 0; i < n; i++ {
			amount := rapid.IntRange(0, 40).Draw(t, "amount")
			combat.DealDamage(troll, amount, combat.KindPhysical, "player", notice.Discard{})
			if troll.HP < 0 || troll.HP > troll.MaxHP {
				t.Fatalf("HP %d outside [0, %d]", troll.HP, troll.MaxHP)
			}
		}
	})
}

func TestChainWeaponValidate(t *testing.T) {
	for name, w := range map[string]*combat.ChainWeapon{
		"empty id":        {BaseDamage: 1, ChainMultipliers: []int{1}},
		"zero base":       {ID: "w", BaseDamage: 0, ChainMultipliers: []int{1}},
		"no multipliers":  {ID: "w", BaseDamage: 1},
		"zero multiplier": {ID: "w", BaseDamage: 1, ChainMultipliers: []int{1, 0}},
		"blessed+cursed":  {ID: "w", BaseDamage: 1, ChainMultipliers: []int{1}, Blessed: true, Cursed: true},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, w.Validate())
		})
	}
	assert.NoError(t, testWeapon().Validate())
}
