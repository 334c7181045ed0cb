package main

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/hazard"
	"github.com/cory-johannsen/arena/internal/game/run"
)

const (
	kiteNear    = 260.0
	kiteFar     = 520.0
	crowdRadius = 220.0
	dashMargin  = 40.0
	wallMargin  = 220.0
)

// Autopilot plays the avatar: it kites the nearest adversary, shoots it, and
// spends dash, nova and focus when crowded. It stands in for a human player.
type Autopilot struct{}

// Input returns the frame's input for r.
func (Autopilot) Input(r *run.Run) run.Input {
	av := r.Avatar()
	in := run.Input{Pointer: av.Pos.Add(av.Aim)}

	target, dist := nearest(av.Pos, r.Adversaries())
	if target == nil {
		in.Move = homeward(av.Pos, r.Bounds())
		return in
	}
	in.Pointer = target.Pos
	in.FireHeld = true

	away := av.Pos.Sub(target.Pos).Norm()
	dir := away.Perp()
	switch {
	case dist < kiteNear:
		dir = dir.AddScaled(away, 1.2)
	case dist > kiteFar:
		dir = dir.AddScaled(away, -0.6)
	}
	dir = dir.Add(homeward(av.Pos, r.Bounds()).Scale(edgePressure(av.Pos, r.Bounds())))
	if s := r.Field().Evaluate(av.Pos); hurts(s) {
		dir = homeward(av.Pos, r.Bounds())
	}
	in.Move = dir.Norm()

	crowd := 0
	for _, a := range r.Adversaries() {
		if a.Pos.Dist(av.Pos) < crowdRadius {
			crowd++
		}
	}
	in.DashPressed = dist < target.R+av.R+dashMargin
	in.NovaPressed = crowd >= 3
	in.FocusHeld = crowd >= 4 || target.Type.IsBoss()
	return in
}

// PickReward chooses which offered upgrade to take.
func (Autopilot) PickReward(r *run.Run) int { return 0 }

// Shop buys the cheapest affordable offers until none remain, then leaves.
func (Autopilot) Shop(r *run.Run) error {
	for {
		best := -1
		for i, o := range r.Offers() {
			if o.Sold || o.Cost > r.Avatar().Force {
				continue
			}
			if best < 0 || o.Cost < r.Offers()[best].Cost {
				best = i
			}
		}
		if best < 0 {
			return r.LeaveShop()
		}
		if err := r.BuyShop(best); err != nil {
			return err
		}
	}
}

func nearest(p geom.Vec2, advs []*entity.Adversary) (*entity.Adversary, float64) {
	var best *entity.Adversary
	bestD := math.Inf(1)
	for _, a := range advs {
		if d := a.Pos.Dist(p); d < bestD {
			best, bestD = a, d
		}
	}
	return best, bestD
}

// homeward points from p toward the middle of b.
func homeward(p geom.Vec2, b geom.Bounds) geom.Vec2 {
	c := geom.V((b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2)
	return c.Sub(p).Norm()
}

// edgePressure grows from 0 to 1 as p nears a wall.
func edgePressure(p geom.Vec2, b geom.Bounds) float64 {
	gap := math.Min(math.Min(p.X-b.MinX, b.MaxX-p.X), math.Min(p.Y-b.MinY, b.MaxY-p.Y))
	return geom.Clamp01(1 - gap/wallMargin)
}

func hurts(s hazard.Sample) bool {
	switch s.Effect {
	case hazard.EffectLava, hazard.EffectToxic:
		return s.Intensity > 0.2
	case hazard.EffectVoid:
		return s.Intensity > 0.5
	}
	return false
}
