package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/arena/internal/game/event"
)

// tally counts notifications in place of audio and particles.
type tally struct {
	counts  [event.NumKinds]int
	elapsed float64
}

func (t *tally) Emit(e event.Event) {
	if e.Kind < event.NumKinds {
		t.counts[e.Kind]++
	}
}

func (t *tally) Advance(dtWorld float64) { t.elapsed += dtWorld }

// MarshalLogObject writes the non-zero counts.
func (t *tally) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for k, n := range t.counts {
		if n > 0 {
			enc.AddInt(event.Kind(k).String(), n)
		}
	}
	enc.AddFloat64("world_seconds", t.elapsed)
	return nil
}

func (t *tally) field() zap.Field { return zap.Object("events", t) }
