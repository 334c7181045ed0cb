package server

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StepFunc advances the simulation by dt seconds. Returning false ends the loop.
type StepFunc func(dt float64) bool

// FrameLoopConfig tunes a FrameLoop.
type FrameLoopConfig struct {
	Interval time.Duration
	// MinDt and MaxDt bound the measured frame time in seconds.
	MinDt, MaxDt float64
	// MaxFrames ends the loop after this many frames. Zero runs until stopped.
	MaxFrames int
}

// FrameLoop calls a StepFunc once per tick with the measured, clamped frame
// time. It implements Service.
type FrameLoop struct {
	cfg    FrameLoopConfig
	step   StepFunc
	logger *zap.Logger
	now    func() time.Time

	stop   chan struct{}
	once   sync.Once
	frames atomic.Int64
}

// NewFrameLoop returns a loop that steps every cfg.Interval.
//
// Precondition: cfg.Interval > 0; 0 < cfg.MinDt <= cfg.MaxDt; step is non-nil.
func NewFrameLoop(cfg FrameLoopConfig, step StepFunc, logger *zap.Logger) *FrameLoop {
	if cfg.Interval <= 0 {
		panic("server.NewFrameLoop: interval must be > 0")
	}
	if cfg.MinDt <= 0 || cfg.MaxDt < cfg.MinDt {
		panic("server.NewFrameLoop: dt bounds must satisfy 0 < min <= max")
	}
	if step == nil {
		panic("server.NewFrameLoop: step must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrameLoop{
		cfg:    cfg,
		step:   step,
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
}

// ClampDt bounds a measured frame time to [lo, hi]. NaN and negative
// measurements become lo.
func ClampDt(dt, lo, hi float64) float64 {
	if math.IsNaN(dt) || dt < lo {
		return lo
	}
	return math.Min(dt, hi)
}

// Start runs the loop until Stop, the step returns false, or MaxFrames is
// reached. It never fails.
func (f *FrameLoop) Start() error {
	select {
	case <-f.stop:
		return nil
	default:
	}
	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	last := f.now()
	for {
		select {
		case <-f.stop:
			return nil
		case <-ticker.C:
		}
		t := f.now()
		dt := ClampDt(t.Sub(last).Seconds(), f.cfg.MinDt, f.cfg.MaxDt)
		last = t

		n := f.frames.Add(1)
		if !f.step(dt) {
			f.logger.Info("frame loop finished", zap.Int64("frames", n))
			return nil
		}
		if f.cfg.MaxFrames > 0 && n >= int64(f.cfg.MaxFrames) {
			f.logger.Info("frame loop reached frame limit", zap.Int64("frames", n))
			return nil
		}
	}
}

// Stop ends the loop. Safe to call more than once.
func (f *FrameLoop) Stop() {
	f.once.Do(func() { close(f.stop) })
}

// Frames is the number of steps taken so far.
func (f *FrameLoop) Frames() int64 { return f.frames.Load() }
