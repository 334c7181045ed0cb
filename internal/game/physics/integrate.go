// Package physics integrates body motion and resolves contacts.
package physics

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

// Decay applies exponential friction: v *= exp(-k*dt).
func Decay(v geom.Vec2, k, dt float64) geom.Vec2 {
	return v.Scale(math.Exp(-k * dt))
}

// LimitSpeed scales v down to max when it is faster.
func LimitSpeed(v geom.Vec2, max float64) geom.Vec2 {
	sp := v.Len()
	if sp > max && sp > 0 {
		return v.Scale(max / sp)
	}
	return v
}

// Steer integrates one frame of accelerated motion.
//
// Order: v += dir*accel*dt, clamp to maxSpeed, v *= exp(-friction*dt), x += v*dt.
// Bounds clamping is left to the caller so obstacle and hazard passes can run first.
func Steer(b *entity.Body, dir geom.Vec2, accel, maxSpeed, friction, dt float64) {
	b.Vel = b.Vel.AddScaled(dir, accel*dt)
	b.Vel = LimitSpeed(b.Vel, maxSpeed)
	b.Vel = Decay(b.Vel, friction, dt)
	b.Pos = b.Pos.AddScaled(b.Vel, dt)
}

// Advance moves b along its velocity without acceleration or friction.
func Advance(b *entity.Body, dt float64) {
	b.Pos = b.Pos.AddScaled(b.Vel, dt)
}

// ClampToBounds keeps b fully inside bounds, inset by its radius plus pad.
func ClampToBounds(b *entity.Body, bounds geom.Bounds, pad float64) {
	b.Pos = bounds.ClampPoint(b.Pos, b.R+pad)
}

// DashStep advances a fixed-distance dash by dt.
//
// Precondition: d.Speed > 0 and d.Dir is a unit vector.
// Postcondition: Returns the displacement for this frame, never more than the
// distance remaining. The dash ends (Remain and Time zeroed, ended true) once
// the full distance is spent, so the summed displacement equals the configured
// distance independent of dt.
func DashStep(d *entity.Dash, dt float64) (step geom.Vec2, ended bool) {
	if d.Remain <= 0 {
		*d = entity.Dash{}
		return geom.Vec2{}, true
	}
	n := math.Min(d.Remain, d.Speed*dt)
	d.Remain -= n
	d.Time -= dt
	step = d.Dir.Scale(n)
	if d.Remain <= 0 {
		*d = entity.Dash{}
		return step, true
	}
	return step, false
}
