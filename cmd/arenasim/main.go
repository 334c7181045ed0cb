// Package main runs arena simulations headless: an autopilot plays runs
// against the full simulation and the session is summarized in the log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/content"
	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/run"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/scripting"
	"github.com/cory-johannsen/arena/internal/server"
)

// scriptSalt separates the script roller's stream from the run's.
const scriptSalt = 0x9e3779b9

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/arenasim.yaml", "path to configuration file")
	frames := flag.Int("frames", 0, "step this many fixed frames as fast as possible, then exit; 0 runs the real-time frame loop")
	seed := flag.Uint("seed", 0, "RNG seed; 0 keeps the configured seed")
	runs := flag.Int("runs", 1, "exit after this many runs end; 0 plays until stopped")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = uint32(*seed)
	}

	base, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer base.Sync() //nolint:errcheck

	s := cfg.Simulation.Seed
	if s == 0 {
		s = dice.NewSeed(dice.NewCryptoSource())
	}
	logger := observability.SessionLogger(base, uuid.NewString(), s)

	contentStart := time.Now()
	bundle, err := content.Load(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.String("dir", cfg.Content.Dir),
		zap.Int("stages", len(bundle.Stages)),
		zap.Int("weapons", len(bundle.Arsenal.All())),
		zap.Int("upgrades", bundle.Upgrades.Len()),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	scripts := scripting.NewManager(dice.NewLoggedRoller(dice.NewXorshift(s^scriptSalt), logger), logger)
	defer scripts.Close()
	if err := loadScripts(scripts, cfg.Scripting, bundle); err != nil {
		logger.Fatal("loading scripts", zap.Error(err))
	}

	sink := &tally{}
	r, err := run.New(run.Deps{
		Arsenal:       bundle.Arsenal,
		Brain:         bundle.Brain,
		Modes:         bundle.Modes,
		Upgrades:      bundle.Upgrades,
		Shop:          bundle.Shop,
		Stages:        bundle.Stages,
		Source:        dice.NewXorshift(s),
		Mix:           scripts,
		Sink:          sink,
		Logger:        logger,
		ProjectileCap: cfg.Simulation.ProjectileCap,
		ViewportW:     cfg.Simulation.ViewportWidth,
		ViewportH:     cfg.Simulation.ViewportHeight,
	})
	if err != nil {
		logger.Fatal("creating run", zap.Error(err))
	}

	sim := &session{
		run:     r,
		cfg:     cfg.Simulation,
		sink:    sink,
		logger:  logger,
		maxRuns: *runs,
	}
	logger.Info("simulator ready",
		zap.Int("frames", *frames),
		zap.Int("runs", *runs),
		zap.Bool("autopilot", cfg.Simulation.Autopilot),
		zap.Duration("startup", time.Since(start)),
	)

	if *frames > 0 {
		dt := server.ClampDt(cfg.Simulation.FrameInterval.Seconds(), cfg.Simulation.MinDt, cfg.Simulation.MaxDt)
		for i := 0; i < *frames; i++ {
			if !sim.step(dt) {
				break
			}
		}
	} else {
		loop := server.NewFrameLoop(server.FrameLoopConfig{
			Interval:  cfg.Simulation.FrameInterval,
			MinDt:     cfg.Simulation.MinDt,
			MaxDt:     cfg.Simulation.MaxDt,
			MaxFrames: cfg.Simulation.MaxFrames,
		}, sim.step, logger)
		lc := server.NewLifecycle(logger)
		lc.Add("frame-loop", loop)
		if err := lc.Run(context.Background()); err != nil {
			logger.Error("lifecycle error", zap.Error(err))
		}
	}

	sim.summary()
}

// loadScripts loads stage scripts from the configured directory, or from the
// content bundle when none is configured.
func loadScripts(m *scripting.Manager, cfg config.ScriptingConfig, bundle *content.Bundle) error {
	if cfg.Dir != "" {
		if err := m.LoadFS(os.DirFS(cfg.Dir), ".", cfg.InstructionLimit); err != nil {
			return fmt.Errorf("scripts in %s: %w", cfg.Dir, err)
		}
		return nil
	}
	return m.LoadFS(bundle.FS, content.ScriptsDir, cfg.InstructionLimit)
}
