// Package turn implements the single-threaded cooperative turn loop: per
// creature per turn it ticks cooldowns, runs passives, ticks conditions,
// updates awareness, selects a behavior, and executes it in full before the
// next creature acts.
package turn

import (
	"go.uber.org/zap"

	"github.com/duskmantle/delve/internal/game/ability"
	"github.com/duskmantle/delve/internal/game/behavior"
	"github.com/duskmantle/delve/internal/game/combat"
	"github.com/duskmantle/delve/internal/game/condition"
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
)

// World is the dungeon collaborator surface the driver consumes: spatial
// queries plus occupant bookkeeping. The driver never mutates tiles.
type World interface {
	grid.SpatialQuery
	Place(id string, x, y int)
	Remove(id string)
}

// Deps wires the driver's collaborators explicitly.
type Deps struct {
	World      World
	Source     dice.Source
	Sink       notice.Sink
	Conditions *condition.Registry
	Abilities  *ability.Engine
	Patterns   *behavior.Registry
	Player     *combat.Player
	Logger     *zap.Logger
}

// Driver owns the creature roster and runs the turn loop. All methods are
// single-threaded; nothing here is safe for concurrent use.
type Driver struct {
	world      World
	src        dice.Source
	sink       notice.Sink
	conditions *condition.Registry
	abilities  *ability.Engine
	patterns   *behavior.Registry
	player     *combat.Player
	logger     *zap.Logger

	creatures []*creature.Instance
	byID      map[string]*creature.Instance
}

// NewDriver creates a Driver and wires the ability engine's target lookup
// to the roster.
//
// Precondition: every Deps field except Logger must be non-nil.
func NewDriver(deps Deps) *Driver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Driver{
		world:      deps.World,
		src:        deps.Source,
		sink:       deps.Sink,
		conditions: deps.Conditions,
		abilities:  deps.Abilities,
		patterns:   deps.Patterns,
		player:     deps.Player,
		logger:     logger,
		byID:       make(map[string]*creature.Instance),
	}
	d.abilities.Lookup = d.lookupTarget
	d.world.Place(d.player.ID, d.player.Pos.X, d.player.Pos.Y)
	return d
}

// Add registers a creature and places it on the world.
func (d *Driver) Add(c *creature.Instance) {
	d.creatures = append(d.creatures, c)
	d.byID[c.ID] = c
	d.world.Place(c.ID, c.Pos.X, c.Pos.Y)
}

// Player returns the player the driver was built with.
func (d *Driver) Player() *combat.Player { return d.player }

// Creature returns the live creature with the given ID.
func (d *Driver) Creature(id string) (*creature.Instance, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// Creatures returns the active roster in turn order.
func (d *Driver) Creatures() []*creature.Instance {
	return d.creatures
}

// RunTurn advances the world one full game turn. noise is the player-made
// noise level for this turn (0 = silent). Every creature's action resolves
// completely before the next creature acts; dead creatures leave the active
// set at the end of the turn.
func (d *Driver) RunTurn(noise int) {
	roster := make([]*creature.Instance, len(d.creatures))
	copy(roster, d.creatures)
	for _, c := range roster {
		if c.IsDead() {
			continue
		}
		d.takeTurn(c, noise)
	}
	d.pruneDead()
}

// ResolvePlayerAttack enters the player pipeline synchronously with a
// completed quiz result; waiting on the quiz is the caller's business. A
// struck creature engages regardless of its senses.
func (d *Driver) ResolvePlayerAttack(targetID string, quiz combat.QuizResult) combat.Outcome {
	target, ok := d.byID[targetID]
	if !ok {
		return combat.Outcome{AttackerID: d.player.ID, TargetID: targetID}
	}
	out := combat.ResolvePlayerAttack(d.player, quiz, target, d.sink)
	if out.Hit && !target.IsDead() {
		creature.ForceHostile(target, d.player.ID)
	}
	if out.Killed {
		d.pruneDead()
	}
	return out
}

// MovePlayer relocates the player to (x, y) when the cell is open. Returns
// false on a blocked move.
func (d *Driver) MovePlayer(x, y int) bool {
	if !d.world.IsPassable(x, y) || d.world.OccupantAt(x, y) != "" {
		return false
	}
	d.player.Pos = grid.Point{X: x, Y: y}
	d.world.Place(d.player.ID, x, y)
	return true
}

// PlayerGate reports what the player's active conditions allow this turn.
type PlayerGate struct {
	// SkipTurn is true while a stun-class condition holds; the whole
	// player action is forfeit.
	SkipTurn bool
	// MovementBlocked leaves in-place attacks available.
	MovementBlocked bool
}

// TickPlayerConditions runs the player's per-turn condition upkeep: tick
// damage, duration decrement, and expiry notices, mirroring the creature
// side. Gate flags are read before expiry so that a one-turn stun still
// costs the turn it expires on.
func (d *Driver) TickPlayerConditions() PlayerGate {
	gate := PlayerGate{
		SkipTurn:        condition.SkipsTurn(d.player.Conditions),
		MovementBlocked: condition.MovementBlocked(d.player.Conditions),
	}
	for _, ac := range d.player.Conditions.All() {
		if ac.Def.TickDamage == "" {
			continue
		}
		raw := dice.Eval(ac.Def.TickDamage, d.src)
		d.damagePlayer(raw, ac.Def.TickDamageKind, ac.Def.ID)
		if d.player.IsDown() {
			return gate
		}
	}
	for _, def := range d.player.Conditions.Tick() {
		d.sink.Post(notice.Event{
			Type:     notice.TypeStatusExpired,
			TargetID: d.player.ID,
			Kind:     def.ID,
		})
	}
	return gate
}

// damagePlayer applies mitigated damage to the player and emits the damage
// and, at zero HP, the death notice. Game-over handling stays with the
// caller.
func (d *Driver) damagePlayer(raw int, kind, sourceID string) {
	if d.player.IsDown() {
		return
	}
	dmg := combat.Mitigate(kind, raw, d.player)
	d.player.ApplyDamage(dmg)
	d.sink.Post(notice.Event{
		Type:     notice.TypeDamage,
		ActorID:  sourceID,
		TargetID: d.player.ID,
		Amount:   dmg,
		Kind:     kind,
	})
	if d.player.IsDown() {
		d.sink.Post(notice.Event{
			Type:     notice.TypeDeath,
			ActorID:  sourceID,
			TargetID: d.player.ID,
			X:        d.player.Pos.X,
			Y:        d.player.Pos.Y,
		})
	}
}

// SnapshotAll returns detached plain-data views of every live creature.
func (d *Driver) SnapshotAll() []creature.Snapshot {
	out := make([]creature.Snapshot, 0, len(d.creatures))
	for _, c := range d.creatures {
		out = append(out, c.Snapshot())
	}
	return out
}

// takeTurn runs one creature's complete turn in the fixed order: cooldowns,
// passives, condition tick, skip/confusion gates, awareness, behavior.
func (d *Driver) takeTurn(c *creature.Instance, noise int) {
	c.TickCooldowns()
	d.abilities.RunPassives(c, d.player)

	// Gate flags are read before expiry so that a one-turn stun still costs
	// the turn it expires on.
	skip := condition.SkipsTurn(c.Conditions)
	scrambled := condition.MovementScrambled(c.Conditions)
	if d.tickConditions(c) {
		return
	}

	if skip {
		return
	}
	if scrambled {
		// Confusion replaces selection with a random-direction stumble.
		dirs := grid.Neighbors(c.Pos)
		d.tryMove(c, []grid.Point{dirs[d.src.Intn(len(dirs))]})
		return
	}

	target := creature.TargetInfo{ID: d.player.ID, Pos: d.player.Pos}
	creature.UpdateAwareness(c, target, d.world, noise, d.src, d.creatures, d.sink)

	act := d.patterns.Select(d.contextFor(c))
	d.execute(c, act)
}

// tickConditions applies per-turn condition damage and expiry. Returns true
// when the bearer died of its conditions.
func (d *Driver) tickConditions(c *creature.Instance) bool {
	for _, ac := range c.Conditions.All() {
		if ac.Def.TickDamage == "" {
			continue
		}
		dmg := dice.Eval(ac.Def.TickDamage, d.src)
		out := combat.DealDamage(c, dmg, ac.Def.TickDamageKind, ac.Def.ID, d.sink)
		if out.Killed {
			return true
		}
	}
	for _, def := range c.Conditions.Tick() {
		d.sink.Post(notice.Event{
			Type:     notice.TypeStatusExpired,
			TargetID: c.ID,
			Kind:     def.ID,
		})
	}
	return false
}

func (d *Driver) contextFor(c *creature.Instance) *behavior.Context {
	return &behavior.Context{
		Self:             c,
		TargetID:         d.player.ID,
		TargetPos:        d.player.Pos,
		TargetHPFraction: d.player.HPFraction(),
		Dist:             grid.Dist(c.Pos, d.player.Pos),
		LOS:              d.world.LineOfSight(c.Pos, d.player.Pos),
		AllyCount:        d.packAllies(c),
		World:            d.world,
		Src:              d.src,
		Sink:             d.sink,
		CanUse:           func(name string) bool { return d.abilityReady(c, name) },
		ReadyAbility:     func(kinds ...string) string { return d.readyOfKind(c, kinds) },
	}
}

// readyOfKind returns c's first ready ability whose kind is in kinds.
func (d *Driver) readyOfKind(c *creature.Instance, kinds []string) string {
	for _, name := range c.Abilities {
		kind, ok := d.abilities.KindOf(name)
		if !ok {
			continue
		}
		wanted := false
		for _, k := range kinds {
			if k == kind {
				wanted = true
				break
			}
		}
		if wanted && d.abilityReady(c, name) {
			return name
		}
	}
	return ""
}

// packAllies counts same-kind hostile allies within the pack radius.
func (d *Driver) packAllies(c *creature.Instance) int {
	count := 0
	for _, other := range d.creatures {
		if other.ID == c.ID || other.IsDead() {
			continue
		}
		if other.TemplateID != c.TemplateID || other.State != creature.StateHostile {
			continue
		}
		if grid.Dist(c.Pos, other.Pos) <= behavior.PackRadius {
			count++
		}
	}
	return count
}

// abilityReady mirrors the engine's selection preconditions cheaply enough
// for the intelligent pattern to poll.
func (d *Driver) abilityReady(c *creature.Instance, name string) bool {
	return d.abilities.Ready(c, name, d.player)
}

func (d *Driver) execute(c *creature.Instance, act behavior.Action) {
	switch act.Kind {
	case behavior.ActionAttack:
		d.attack(c)
	case behavior.ActionAbility:
		d.abilities.Use(c, act.Ability, d.player)
	case behavior.ActionFlee:
		c.Fleeing = true
		d.tryMove(c, act.Steps)
		for i := 1; i < speed(c); i++ {
			d.tryMove(c, grid.StepAway(c.Pos, d.player.Pos))
		}
	case behavior.ActionPursue:
		c.Fleeing = false
		d.tryMove(c, act.Steps)
		for i := 1; i < speed(c) && grid.Dist(c.Pos, d.player.Pos) > 1; i++ {
			d.tryMove(c, grid.StepToward(c.Pos, d.player.Pos))
		}
	case behavior.ActionStepBack, behavior.ActionCircle,
		behavior.ActionGuardReturn, behavior.ActionWander:
		c.Fleeing = false
		d.tryMove(c, act.Steps)
	}
}

// speed is the per-turn move budget; pursuit and flight cover extra ground
// for fast creatures.
func speed(c *creature.Instance) int {
	if c.Speed > 1 {
		return c.Speed
	}
	return 1
}

// attack picks the attack matching the current range and resolves it. A
// hostile guard that lands its first attack is engaged for good.
func (d *Driver) attack(c *creature.Instance) {
	dist := grid.Dist(c.Pos, d.player.Pos)
	atk, ok := pickAttack(c, dist)
	if !ok {
		return
	}
	if c.Pattern == "guard" {
		c.GuardEngaged = true
	}
	combat.ResolveMonsterAttack(c, atk, d.player, d.conditions, d.src, d.sink)
}

// pickAttack chooses a melee-mode attack when adjacent, a ranged one
// otherwise. Gaze and engulf delivery runs through the ability engine, not
// here.
func pickAttack(c *creature.Instance, dist int) (creature.AttackDef, bool) {
	want := func(mode string) (creature.AttackDef, bool) {
		for _, a := range c.Attacks {
			if a.Mode == mode {
				return a, true
			}
		}
		return creature.AttackDef{}, false
	}
	if dist <= 1 {
		if a, ok := want("melee"); ok {
			return a, true
		}
		return want("touch")
	}
	return want("ranged")
}

// tryMove walks the candidate steps in order and takes the first open one.
// A fully blocked move, or a webbed mover, accomplishes nothing this turn.
func (d *Driver) tryMove(c *creature.Instance, steps []grid.Point) {
	if condition.MovementBlocked(c.Conditions) {
		return
	}
	for _, step := range steps {
		if !d.world.IsPassable(step.X, step.Y) || d.world.OccupantAt(step.X, step.Y) != "" {
			continue
		}
		c.Pos = step
		d.world.Place(c.ID, step.X, step.Y)
		return
	}
}

// lookupTarget resolves an occupant ID to an ability target.
func (d *Driver) lookupTarget(id string) ability.Target {
	if id == d.player.ID {
		return d.player
	}
	if c, ok := d.byID[id]; ok {
		return c
	}
	return nil
}

// pruneDead drops dead creatures from the roster and the world. Death
// notices were already emitted at the killing blow.
func (d *Driver) pruneDead() {
	live := d.creatures[:0]
	for _, c := range d.creatures {
		if c.IsDead() {
			d.world.Remove(c.ID)
			delete(d.byID, c.ID)
			d.logger.Debug("creature removed",
				zap.String("id", c.ID),
				zap.String("kind", c.TemplateID),
			)
			continue
		}
		live = append(live, c)
	}
	d.creatures = live
}
