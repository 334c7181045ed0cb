package server

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"
)

func loopConfig(maxFrames int) FrameLoopConfig {
	return FrameLoopConfig{Interval: time.Millisecond, MinDt: 0.001, MaxDt: 0.05, MaxFrames: maxFrames}
}

func TestClampDt(t *testing.T) {
	assert.Equal(t, 0.001, ClampDt(-1, 0.001, 0.05))
	assert.Equal(t, 0.001, ClampDt(math.NaN(), 0.001, 0.05))
	assert.Equal(t, 0.05, ClampDt(3, 0.001, 0.05))
	assert.Equal(t, 0.05, ClampDt(math.Inf(1), 0.001, 0.05))
	assert.Equal(t, 0.016, ClampDt(0.016, 0.001, 0.05))
}

func TestProperty_ClampDtWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.Float64Range(1e-4, 0.02).Draw(rt, "lo")
		hi := lo + rapid.Float64Range(0, 0.2).Draw(rt, "span")
		dt := rapid.Float64Range(-10, 10).Draw(rt, "dt")
		got := ClampDt(dt, lo, hi)
		if got < lo || got > hi {
			rt.Fatalf("ClampDt(%v, %v, %v) = %v", dt, lo, hi, got)
		}
	})
}

func TestNewFrameLoop_Preconditions(t *testing.T) {
	step := func(float64) bool { return true }
	assert.Panics(t, func() { NewFrameLoop(FrameLoopConfig{MinDt: 0.001, MaxDt: 0.05}, step, nil) })
	assert.Panics(t, func() {
		NewFrameLoop(FrameLoopConfig{Interval: time.Millisecond, MinDt: 0.1, MaxDt: 0.05}, step, nil)
	})
	assert.Panics(t, func() { NewFrameLoop(loopConfig(0), nil, nil) })
}

func TestFrameLoop_StopsAtMaxFrames(t *testing.T) {
	var dts []float64
	loop := NewFrameLoop(loopConfig(25), func(dt float64) bool {
		dts = append(dts, dt)
		return true
	}, zaptest.NewLogger(t))

	require.NoError(t, loop.Start())
	assert.Equal(t, int64(25), loop.Frames())
	require.Len(t, dts, 25)
	for _, dt := range dts {
		assert.GreaterOrEqual(t, dt, 0.001)
		assert.LessOrEqual(t, dt, 0.05)
	}
}

func TestFrameLoop_StepCanEndLoop(t *testing.T) {
	loop := NewFrameLoop(loopConfig(0), func(float64) bool { return false }, nil)
	require.NoError(t, loop.Start())
	assert.Equal(t, int64(1), loop.Frames())
}

func TestFrameLoop_MeasuredDtIsClamped(t *testing.T) {
	var mu sync.Mutex
	var got []float64
	loop := NewFrameLoop(loopConfig(3), func(dt float64) bool {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, dt)
		return true
	}, nil)
	clock := time.Unix(0, 0)
	steps := []time.Duration{0, time.Second, 0, 10 * time.Millisecond}
	i := 0
	loop.now = func() time.Time {
		clock = clock.Add(steps[i%len(steps)])
		i++
		return clock
	}
	require.NoError(t, loop.Start())
	assert.Equal(t, []float64{0.05, 0.001, 0.01}, got)
}

func TestFrameLoop_StopIsIdempotent(t *testing.T) {
	loop := NewFrameLoop(loopConfig(0), func(float64) bool { return true }, nil)
	done := make(chan error, 1)
	go func() { done <- loop.Start() }()

	require.Eventually(t, func() bool { return loop.Frames() > 0 }, 2*time.Second, time.Millisecond)
	loop.Stop()
	loop.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestFrameLoop_StopBeforeStart(t *testing.T) {
	loop := NewFrameLoop(loopConfig(0), func(float64) bool { return true }, nil)
	loop.Stop()
	require.NoError(t, loop.Start())
	assert.Zero(t, loop.Frames())
}

func TestFrameLoop_UnderLifecycle(t *testing.T) {
	loop := NewFrameLoop(loopConfig(10), func(float64) bool { return true }, nil)
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("frames", loop)
	assert.NoError(t, lc.Run(context.Background()))
	assert.Equal(t, int64(10), loop.Frames())
}
