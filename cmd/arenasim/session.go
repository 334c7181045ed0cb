package main

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/run"
)

// session drives one Run through as many runs as allowed, standing in for the
// menus a player would click through.
type session struct {
	run     *run.Run
	cfg     config.SimulationConfig
	pilot   Autopilot
	sink    *tally
	logger  *zap.Logger
	maxRuns int

	frames   int
	finished int
	best     float64
}

// step advances the session by dt. It returns false once maxRuns runs have
// ended or a command fails.
func (s *session) step(dt float64) bool {
	s.frames++
	r := s.run
	var err error
	switch r.State() {
	case run.Title:
		err = r.Start(s.cfg.FocusMode)
	case run.Playing:
		in := run.Input{Pointer: r.Avatar().Pos.Add(r.Avatar().Aim)}
		if s.cfg.Autopilot {
			in = s.pilot.Input(r)
		}
		r.Step(dt, in, s.cfg.ReducedMotion)
	case run.Paused:
		err = r.Resume()
	case run.Reward:
		err = r.PickReward(s.pilot.PickReward(r))
	case run.Shop:
		err = s.pilot.Shop(r)
	case run.GameOver:
		s.finished++
		s.best = max(s.best, r.Avatar().Score)
		s.logger.Info("run ended",
			zap.String("run", r.ID()),
			zap.Int("room", r.Room()),
			zap.Float64("score", r.Avatar().Score),
			zap.Int("runs", s.finished),
		)
		if s.maxRuns > 0 && s.finished >= s.maxRuns {
			return false
		}
		err = r.ReturnToTitle()
	}
	if err != nil {
		s.logger.Error("session command failed",
			zap.Stringer("state", r.State()),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *session) summary() {
	r := s.run
	av := r.Avatar()
	s.logger.Info("simulation summary",
		zap.Int("frames", s.frames),
		zap.Int("runs_finished", s.finished),
		zap.Float64("best_score", max(s.best, av.Score)),
		zap.Stringer("state", r.State()),
		zap.Int("room", r.Room()),
		zap.Int("kills", r.Kills()),
		zap.Float64("score", av.Score),
		zap.Int("force", av.Force),
		zap.Int("force_spent", av.ForceSpent),
		zap.Stringer("weapon", av.Weapon),
		s.sink.field(),
	)
}
