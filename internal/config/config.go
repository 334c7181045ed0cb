// Package config provides Viper-based configuration loading for the arena simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds frame loop and run settings.
type SimulationConfig struct {
	// Seed seeds the run RNG. Zero draws a fresh seed at startup.
	Seed uint32 `mapstructure:"seed"`
	// FrameInterval is the wall-clock period of the frame loop.
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	// MinDt and MaxDt bound the per-frame delta time in seconds.
	MinDt float64 `mapstructure:"min_dt"`
	MaxDt float64 `mapstructure:"max_dt"`
	// ProjectileCap is the live projectile limit; the oldest are trimmed first.
	ProjectileCap int `mapstructure:"projectile_cap"`
	// ViewportWidth and ViewportHeight size the camera in world units.
	ViewportWidth  float64 `mapstructure:"viewport_width"`
	ViewportHeight float64 `mapstructure:"viewport_height"`
	// FocusMode is the initial focus mode identifier.
	FocusMode string `mapstructure:"focus_mode"`
	// ReducedMotion disables camera shake.
	ReducedMotion bool `mapstructure:"reduced_motion"`
	// MaxFrames stops the simulator after this many frames. Zero runs until signalled.
	MaxFrames int `mapstructure:"max_frames"`
	// Autopilot drives the avatar with the built-in bot input.
	Autopilot bool `mapstructure:"autopilot"`
}

// ContentConfig locates tuning data.
type ContentConfig struct {
	// Dir overrides the embedded content with YAML files from disk when non-empty.
	Dir string `mapstructure:"dir"`
}

// ScriptingConfig holds Lua stage-script settings.
type ScriptingConfig struct {
	// Dir overrides the embedded scripts when non-empty.
	Dir string `mapstructure:"dir"`
	// InstructionLimit bounds the VM instructions spent per hook call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Content    ContentConfig    `mapstructure:"content"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.FrameInterval <= 0 {
		errs = append(errs, "simulation.frame_interval must be positive")
	}
	if s.MinDt <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.min_dt must be > 0, got %g", s.MinDt))
	}
	if s.MaxDt < s.MinDt {
		errs = append(errs, "simulation.max_dt must not be less than simulation.min_dt")
	}
	if s.ProjectileCap < 1 {
		errs = append(errs, fmt.Sprintf("simulation.projectile_cap must be >= 1, got %d", s.ProjectileCap))
	}
	if s.ViewportWidth <= 0 || s.ViewportHeight <= 0 {
		errs = append(errs, "simulation.viewport_width and viewport_height must be positive")
	}
	if s.MaxFrames < 0 {
		errs = append(errs, fmt.Sprintf("simulation.max_frames must be >= 0, got %d", s.MaxFrames))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return errors.New("scripting.instruction_limit must not be negative")
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

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

// Defaults returns a Viper instance populated only with default values.
//
// Postcondition: LoadFromViper(Defaults()) succeeds.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.frame_interval", "16ms")
	v.SetDefault("simulation.min_dt", 0.001)
	v.SetDefault("simulation.max_dt", 0.033)
	v.SetDefault("simulation.projectile_cap", 900)
	v.SetDefault("simulation.viewport_width", 1280)
	v.SetDefault("simulation.viewport_height", 720)
	v.SetDefault("simulation.focus_mode", "chrono")
	v.SetDefault("simulation.reduced_motion", false)
	v.SetDefault("simulation.max_frames", 0)
	v.SetDefault("simulation.autopilot", true)

	v.SetDefault("content.dir", "")

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 100000)
}
