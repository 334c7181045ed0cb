package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged content rolls.
// Every roll is logged at debug level with its label and outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil. A nil logger discards entries.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying Source.
func (r *Roller) Source() Source { return r.src }

// Pick returns a weighted index into weights (see WeightedIndex) and logs it.
//
// Postcondition: Returns -1 only when weights is empty.
func (r *Roller) Pick(label string, weights []float64) int {
	idx := WeightedIndex(r.src, weights)
	r.logger.Debug("weighted pick",
		zap.String("label", label),
		zap.Int("options", len(weights)),
		zap.Int("index", idx),
	)
	return idx
}

// Chance rolls against probability p and logs the outcome.
func (r *Roller) Chance(label string, p float64) bool {
	hit := Chance(r.src, p)
	r.logger.Debug("chance roll",
		zap.String("label", label),
		zap.Float64("p", p),
		zap.Bool("hit", hit),
	)
	return hit
}

// Range rolls a value between lo and hi and logs it.
func (r *Roller) Range(label string, lo, hi float64) float64 {
	v := Range(r.src, lo, hi)
	r.logger.Debug("range roll",
		zap.String("label", label),
		zap.Float64("lo", lo),
		zap.Float64("hi", hi),
		zap.Float64("value", v),
	)
	return v
}
