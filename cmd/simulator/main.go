// Package main provides the dungeon simulator binary: it loads the content
// catalogs, populates a floor, and runs the creature engine against a
// simulated player for a fixed number of turns.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/duskmantle/delve/internal/config"
	"github.com/duskmantle/delve/internal/game/ability"
	"github.com/duskmantle/delve/internal/game/behavior"
	"github.com/duskmantle/delve/internal/game/combat"
	"github.com/duskmantle/delve/internal/game/condition"
	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
	"github.com/duskmantle/delve/internal/game/turn"
	"github.com/duskmantle/delve/internal/game/world"
	"github.com/duskmantle/delve/internal/observability"
	"github.com/duskmantle/delve/internal/scripting"
	"github.com/duskmantle/delve/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "", "content root override; empty = use config")
	turnsFlag := flag.Int("turns", 0, "turn budget override; 0 = use config")
	seedFlag := flag.Uint64("seed", 0, "randomizer seed override; 0 = use config")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *contentDir != "" {
		cfg.Content.Dir = *contentDir
	}
	if *turnsFlag > 0 {
		cfg.Simulation.Turns = *turnsFlag
	}
	if *seedFlag != 0 {
		cfg.Simulation.Seed = *seedFlag
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	logger, err := observability.NewRunLogger(cfg.Logging, seed)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewSeededSource(seed)
	logger.Info("starting simulator", zap.Int("turns", cfg.Simulation.Turns))

	// Load content catalogs.
	loadStart := time.Now()
	condRegistry, err := condition.LoadDirectory(cfg.Content.Resolve(cfg.Content.ConditionsDir))
	if err != nil {
		logger.Fatal("loading condition definitions", zap.Error(err))
	}
	abilityRegistry, err := ability.LoadDirectory(cfg.Content.Resolve(cfg.Content.AbilitiesDir))
	if err != nil {
		logger.Fatal("loading ability definitions", zap.Error(err))
	}
	templates, err := creature.LoadTemplates(cfg.Content.Resolve(cfg.Content.CreaturesDir))
	if err != nil {
		logger.Fatal("loading creature templates", zap.Error(err))
	}
	templateByID := make(map[string]*creature.Template, len(templates))
	for _, tmpl := range templates {
		templateByID[tmpl.ID] = tmpl
	}
	weapons, err := combat.LoadWeapons(cfg.Content.Resolve(cfg.Content.WeaponsDir))
	if err != nil {
		logger.Fatal("loading weapon definitions", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("conditions", len(condRegistry.All())),
		zap.Int("creatures", len(templates)),
		zap.Int("weapons", len(weapons)),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	// Load or generate the floor.
	var floor *world.Map
	if cfg.Content.MapFile != "" {
		floor, err = world.LoadMapFromFile(cfg.Content.Resolve(cfg.Content.MapFile))
		if err != nil {
			logger.Fatal("loading map", zap.Error(err))
		}
	} else {
		floor = world.NewMap("arena", cfg.Simulation.MapWidth, cfg.Simulation.MapHeight)
	}
	dungeon := world.NewDungeon(floor)
	logger.Info("floor ready",
		zap.String("map", floor.ID),
		zap.Int("width", floor.Width),
		zap.Int("height", floor.Height),
		zap.Int("spawns", len(floor.Spawns)),
	)

	// Equip the player.
	weapon, ok := weapons[cfg.Player.Weapon]
	if !ok {
		logger.Fatal("configured weapon not in catalog", zap.String("weapon", cfg.Player.Weapon))
	}
	player := combat.NewPlayer("player", floor.PlayerStart, cfg.Player.MaxHP, cfg.Player.AC, weapon)

	// Initialise scripting.
	scriptMgr := scripting.NewManager(logger)
	scriptsDir := cfg.Content.Resolve(cfg.Content.ScriptsDir)
	if info, statErr := os.Stat(scriptsDir); statErr == nil && info.IsDir() {
		if err := scriptMgr.Load(scriptsDir, cfg.Simulation.LuaInstructionLimit); err != nil {
			logger.Fatal("loading trigger scripts", zap.Error(err))
		}
		logger.Info("trigger scripts loaded", zap.String("dir", scriptsDir))
	} else {
		logger.Warn("scripts dir not found, hook triggers disabled", zap.String("dir", scriptsDir))
	}
	defer scriptMgr.Close()

	// Assemble the engine and turn driver.
	requests := &notice.Recorder{}
	sink := notice.Multi{notice.NewZapSink(logger), requests}
	engine := ability.NewEngine(abilityRegistry, condRegistry, dungeon, src, sink)
	engine.Scripts = scriptMgr
	driver := turn.NewDriver(turn.Deps{
		World:      dungeon,
		Source:     src,
		Sink:       sink,
		Conditions: condRegistry,
		Abilities:  engine,
		Patterns:   behavior.NewRegistry(),
		Player:     player,
		Logger:     logger,
	})

	// Wire the Lua callbacks to the live roster.
	scriptMgr.HPPercent = func(id string) (float64, bool) {
		if id == player.ID {
			return player.HPFraction(), true
		}
		c, ok := driver.Creature(id)
		if !ok {
			return 0, false
		}
		return c.HPFraction(), true
	}
	scriptMgr.Distance = func(id string) (int, bool) {
		pos, ok := dungeon.PositionOf(id)
		if !ok {
			return 0, false
		}
		return grid.Dist(pos, player.Pos), true
	}
	scriptMgr.HasCondition = func(id, name string) bool {
		if id == player.ID {
			return player.Conditions.Has(name)
		}
		c, ok := driver.Creature(id)
		return ok && c.Conditions.Has(name)
	}
	scriptMgr.Roll = func(expr string) int {
		return dice.Eval(expr, src)
	}

	// Populate the floor.
	for _, sc := range floor.Spawns {
		tmpl, ok := templateByID[sc.Template]
		if !ok {
			logger.Fatal("spawn references unknown creature template",
				zap.String("map", floor.ID),
				zap.String("template", sc.Template),
			)
		}
		placed := placeSpawn(driver, dungeon, tmpl, sc, src)
		logger.Info("spawned",
			zap.String("template", sc.Template),
			zap.Int("requested", sc.Count),
			zap.Int("placed", placed),
		)
	}

	runner := turn.NewRunner(driver, templateByID, requests, src, cfg.Simulation.Turns, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("simulation", runner)

	logger.Info("simulator initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("creatures", len(driver.Creatures())),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("simulation error", zap.Error(err))
	}

	report(logger, driver)
}

// placeSpawn puts the first instance on the configured cell and spreads
// extras onto adjacent open cells. Returns the number actually placed.
func placeSpawn(driver *turn.Driver, dungeon *world.Dungeon, tmpl *creature.Template, sc world.SpawnConfig, src dice.Source) int {
	cells := []grid.Point{{X: sc.X, Y: sc.Y}}
	for _, n := range grid.Neighbors(grid.Point{X: sc.X, Y: sc.Y}) {
		cells = append(cells, n)
	}

	placed := 0
	for _, cell := range cells {
		if placed >= sc.Count {
			break
		}
		if !dungeon.IsPassable(cell.X, cell.Y) || dungeon.OccupantAt(cell.X, cell.Y) != "" {
			continue
		}
		driver.Add(creature.NewInstance(tmpl, cell, src))
		placed++
	}
	return placed
}

// report logs the end-of-run state of every survivor and the player.
func report(logger *zap.Logger, driver *turn.Driver) {
	player := driver.Player()
	logger.Info("final player state",
		zap.Int("hp", player.HP),
		zap.Int("max_hp", player.MaxHP),
		zap.Int("x", player.Pos.X),
		zap.Int("y", player.Pos.Y),
	)
	for _, snap := range driver.SnapshotAll() {
		logger.Info("survivor",
			zap.String("id", snap.ID),
			zap.String("template", snap.TemplateID),
			zap.Int("hp", snap.HP),
			zap.Int("max_hp", snap.MaxHP),
			zap.String("state", snap.State),
			zap.Bool("fleeing", snap.Fleeing),
			zap.Strings("conditions", snap.Conditions),
		)
	}
}
