package run

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

const (
	cameraLead   = 0.10
	cameraFollow = 7.5
	shakeDecay   = 14.0
)

// Camera is the view's top-left corner in world space plus the current shake.
type Camera struct {
	Pos    geom.Vec2
	Shake  float64
	Offset geom.Vec2
	W, H   float64
}

// Reset centers the view on focus with no shake.
func (c *Camera) Reset(focus geom.Vec2, w, h float64) {
	c.W, c.H = w, h
	c.Pos = geom.V(focus.X-w/2, focus.Y-h/2)
	c.Shake = 0
	c.Offset = geom.Vec2{}
}

// ToWorld converts a viewport point to world space.
func (c Camera) ToWorld(screen geom.Vec2) geom.Vec2 {
	return c.Pos.Add(screen)
}

// Follow eases the view toward focus, leading slightly toward aim, and decays
// the shake. reduced suppresses the shake offset.
func (c *Camera) Follow(focus, aim geom.Vec2, dt float64, reduced bool, src dice.Source) {
	target := geom.V(
		focus.X-c.W/2+(aim.X-focus.X)*cameraLead,
		focus.Y-c.H/2+(aim.Y-focus.Y)*cameraLead,
	)
	k := 1 - math.Exp(-cameraFollow*dt)
	c.Pos = geom.V(geom.Lerp(c.Pos.X, target.X, k), geom.Lerp(c.Pos.Y, target.Y, k))

	c.Shake = math.Max(0, c.Shake-dt*shakeDecay)
	if reduced || c.Shake <= 0 {
		c.Offset = geom.Vec2{}
		return
	}
	c.Offset = geom.V(dice.Range(src, -c.Shake, c.Shake), dice.Range(src, -c.Shake, c.Shake))
}

// shakeFor maps a notification to its camera shake.
func shakeFor(e event.Event) float64 {
	switch e.Kind {
	case event.Shot:
		return 1.4
	case event.Hit:
		return 2.4
	case event.AvatarHit:
		return 6.6
	case event.Touch:
		return 6.8
	case event.Blast:
		return math.Min(10.5, 3.5+e.Radius*0.02)
	case event.Nova:
		return 8.5
	case event.Dash:
		return 7.0
	case event.Death:
		if e.Boss {
			return 11.0
		}
		return 5.0
	}
	return 0
}
