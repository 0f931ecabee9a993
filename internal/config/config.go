// Package config provides Viper-based configuration loading for the dungeon
// simulator.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ContentConfig locates the YAML and Lua content catalogs on disk.
type ContentConfig struct {
	// Dir is the content root; the per-catalog dirs below are relative
	// to it unless absolute.
	Dir           string `mapstructure:"dir"`
	CreaturesDir  string `mapstructure:"creatures_dir"`
	AbilitiesDir  string `mapstructure:"abilities_dir"`
	ConditionsDir string `mapstructure:"conditions_dir"`
	WeaponsDir    string `mapstructure:"weapons_dir"`
	ScriptsDir    string `mapstructure:"scripts_dir"`
	// MapFile is the dungeon map to load, relative to Dir. Empty means
	// generate an empty bordered floor of the configured map size.
	MapFile string `mapstructure:"map_file"`
}

// Resolve returns sub joined under the content root, leaving absolute
// paths untouched.
func (c ContentConfig) Resolve(sub string) string {
	if filepath.IsAbs(sub) {
		return sub
	}
	return filepath.Join(c.Dir, sub)
}

// SimulationConfig holds the turn-loop runtime settings.
type SimulationConfig struct {
	// Seed drives the randomizer; 0 means seed from the clock.
	Seed uint64 `mapstructure:"seed"`
	// Turns is the number of game turns to run before exiting.
	Turns int `mapstructure:"turns"`
	// MapWidth and MapHeight size the dungeon grid in tiles.
	MapWidth  int `mapstructure:"map_width"`
	MapHeight int `mapstructure:"map_height"`
	// LuaInstructionLimit caps instructions per script hook invocation.
	LuaInstructionLimit int `mapstructure:"lua_instruction_limit"`
}

// PlayerConfig holds the simulated player's starting stats.
type PlayerConfig struct {
	MaxHP int `mapstructure:"max_hp"`
	// AC is the armor class added to incoming to-hit rolls; higher is
	// worse for the defender.
	AC int `mapstructure:"ac"`
	// Weapon is the chain-weapon ID to equip from the weapons catalog.
	Weapon string `mapstructure:"weapon"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Content    ContentConfig    `mapstructure:"content"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Player     PlayerConfig     `mapstructure:"player"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePlayer(c.Player); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	for key, dir := range map[string]string{
		"content.creatures_dir":  c.CreaturesDir,
		"content.abilities_dir":  c.AbilitiesDir,
		"content.conditions_dir": c.ConditionsDir,
		"content.weapons_dir":    c.WeaponsDir,
		"content.scripts_dir":    c.ScriptsDir,
	} {
		if dir == "" {
			errs = append(errs, key+" must not be empty")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Turns < 1 {
		errs = append(errs, fmt.Sprintf("simulation.turns must be >= 1, got %d", s.Turns))
	}
	if s.MapWidth < 8 || s.MapHeight < 8 {
		errs = append(errs, fmt.Sprintf("simulation map must be at least 8x8, got %dx%d", s.MapWidth, s.MapHeight))
	}
	if s.LuaInstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("simulation.lua_instruction_limit must be >= 1, got %d", s.LuaInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	var errs []string
	if p.MaxHP < 1 {
		errs = append(errs, fmt.Sprintf("player.max_hp must be >= 1, got %d", p.MaxHP))
	}
	if p.AC < 0 {
		errs = append(errs, fmt.Sprintf("player.ac must be >= 0, got %d", p.AC))
	}
	if p.Weapon == "" {
		errs = append(errs, "player.weapon must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DELVE_ prefix
	v.SetEnvPrefix("DELVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("content.dir", "content")
	v.SetDefault("content.creatures_dir", "creatures")
	v.SetDefault("content.abilities_dir", "abilities")
	v.SetDefault("content.conditions_dir", "conditions")
	v.SetDefault("content.weapons_dir", "weapons")
	v.SetDefault("content.scripts_dir", "scripts")
	v.SetDefault("content.map_file", "maps/crypt.yaml")

	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.turns", 100)
	v.SetDefault("simulation.map_width", 40)
	v.SetDefault("simulation.map_height", 24)
	v.SetDefault("simulation.lua_instruction_limit", 100000)

	v.SetDefault("player.max_hp", 40)
	v.SetDefault("player.ac", 10)
	v.SetDefault("player.weapon", "training-flail")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
