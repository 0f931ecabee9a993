package turn

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/duskmantle/delve/internal/game/combat"
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
)

// Player noise levels per action. Fighting carries further than walking.
const (
	noiseMove   = 2
	noiseAttack = 6
)

// quizQuestions is the length of the simulated answer chain per swing.
const quizQuestions = 5

// Runner plays out a fixed number of turns: each turn the player's
// condition upkeep runs, the simulated player acts (attacks an adjacent
// creature or advances on the nearest one, conditions permitting), the
// driver runs the creature roster, and the runner services the loot and
// summon requests the engine posted. It implements the lifecycle Service
// contract; Start blocks until the turn budget is spent, the player goes
// down, or the floor is cleared.
type Runner struct {
	driver    *Driver
	templates map[string]*creature.Template
	requests  *notice.Recorder
	src       dice.Source
	logger    *zap.Logger
	turns     int

	consumed int
	stopped  atomic.Bool
}

// NewRunner creates a Runner over the driver.
//
// Precondition: requests must be one of the driver's sinks, or summon and
// loot requests will never be serviced.
func NewRunner(driver *Driver, templates map[string]*creature.Template, requests *notice.Recorder, src dice.Source, turns int, logger *zap.Logger) *Runner {
	return &Runner{
		driver:    driver,
		templates: templates,
		requests:  requests,
		src:       src,
		logger:    logger,
		turns:     turns,
	}
}

// Start runs the simulation to completion.
func (r *Runner) Start() error {
	for i := 0; i < r.turns; i++ {
		if r.stopped.Load() {
			r.logger.Info("simulation stopped", zap.Int("turn", i))
			return nil
		}
		if r.driver.Player().IsDown() {
			r.logger.Info("player down, ending simulation", zap.Int("turn", i))
			return nil
		}
		if len(r.driver.Creatures()) == 0 {
			r.logger.Info("floor cleared", zap.Int("turn", i))
			return nil
		}

		gate := r.driver.TickPlayerConditions()
		if r.driver.Player().IsDown() {
			r.logger.Info("player down, ending simulation", zap.Int("turn", i))
			return nil
		}

		noise := 0
		if !gate.SkipTurn {
			noise = r.playerAct(gate.MovementBlocked)
		}
		r.driver.RunTurn(noise)
		r.serviceRequests()
	}
	r.logger.Info("turn budget spent", zap.Int("turns", r.turns))
	return nil
}

// Stop ends the simulation at the next turn boundary.
func (r *Runner) Stop() {
	r.stopped.Store(true)
}

// playerAct attacks an adjacent creature when one exists, otherwise steps
// toward the nearest one. A held player can still swing in place. Returns
// the noise the action made.
func (r *Runner) playerAct(held bool) int {
	target := r.nearest()
	if target == nil {
		return 0
	}

	player := r.driver.Player()
	if grid.Dist(player.Pos, target.Pos) <= 1 {
		r.driver.ResolvePlayerAttack(target.ID, r.rollQuiz())
		return noiseAttack
	}
	if held {
		return 0
	}

	for _, step := range grid.StepToward(player.Pos, target.Pos) {
		if r.driver.MovePlayer(step.X, step.Y) {
			return noiseMove
		}
	}
	return 0
}

// nearest returns the closest live creature, or nil when none remain.
func (r *Runner) nearest() *creature.Instance {
	player := r.driver.Player()
	var best *creature.Instance
	bestDist := 0
	for _, c := range r.driver.Creatures() {
		if c.IsDead() {
			continue
		}
		d := grid.Dist(player.Pos, c.Pos)
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// rollQuiz simulates the player's answer chain: each question is answered
// correctly with even odds, and the chain breaks on the first wrong answer.
func (r *Runner) rollQuiz() combat.QuizResult {
	score := 0
	for i := 0; i < quizQuestions; i++ {
		if r.src.Intn(2) == 0 {
			break
		}
		score++
	}
	return combat.QuizResult{Success: score > 0, Score: score, TotalQuestions: quizQuestions}
}

// serviceRequests drains the request events posted since the last turn:
// summons place fresh instances near the requested cell, loot requests
// roll the dead creature's table.
func (r *Runner) serviceRequests() {
	pending := r.requests.Events[r.consumed:]
	r.consumed = len(r.requests.Events)

	for _, e := range pending {
		switch e.Type {
		case notice.TypeSummonRequest:
			r.spawnSummons(e)
		case notice.TypeLootRequest:
			r.rollLoot(e)
		}
	}
}

func (r *Runner) spawnSummons(e notice.Event) {
	tmpl, ok := r.templates[e.Kind]
	if !ok {
		r.logger.Warn("summon request for unknown template", zap.String("template", e.Kind))
		return
	}
	placed := 0
	for _, cell := range grid.Neighbors(grid.Point{X: e.X, Y: e.Y}) {
		if placed >= e.Amount {
			break
		}
		if !r.driver.world.IsPassable(cell.X, cell.Y) || r.driver.world.OccupantAt(cell.X, cell.Y) != "" {
			continue
		}
		inst := creature.NewInstance(tmpl, cell, r.src)
		creature.ForceHostile(inst, r.driver.Player().ID)
		r.driver.Add(inst)
		placed++
	}
	r.logger.Info("summons placed",
		zap.String("template", e.Kind),
		zap.Int("requested", e.Amount),
		zap.Int("placed", placed),
	)
}

func (r *Runner) rollLoot(e notice.Event) {
	tmpl, ok := r.templates[e.Kind]
	if !ok || tmpl.Loot == nil {
		return
	}
	result := creature.GenerateLoot(*tmpl.Loot, r.src)
	items := make([]string, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, fmt.Sprintf("%s x%d", it.ItemDefID, it.Quantity))
	}
	r.logger.Info("loot dropped",
		zap.String("template", e.Kind),
		zap.Int("currency", result.Currency),
		zap.Strings("items", items),
		zap.Int("x", e.X),
		zap.Int("y", e.Y),
	)
}
