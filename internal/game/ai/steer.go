package ai

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/hazard"
)

const (
	avoidMargin      = 86.0
	wallMargin       = 90.0
	hazardSamples    = 8
	hazardReach      = 46.0
	screenFollow     = 74.0
	screenMinDot     = 0.55
	guardMidpoint    = 0.42
	stuckMoveEpsilon = 0.35
	stuckNudgeAfter  = 0.7
)

// AvoidObstacles returns a unit vector away from nearby geometry and walls, or zero.
// Obstacle repulsion is quadratic in proximity; wall repulsion is linear.
func AvoidObstacles(p geom.Vec2, r float64, obstacles []entity.Obstacle, bounds geom.Bounds) geom.Vec2 {
	var acc geom.Vec2
	for i := range obstacles {
		o := &obstacles[i]
		var away geom.Vec2
		var margin float64
		if o.Shape == entity.ShapeRect {
			away = p.Sub(o.ClosestPoint(p))
			margin = math.Max(o.W, o.H)*0.5 + r + avoidMargin
		} else {
			away = p.Sub(o.Pos)
			margin = o.R + r + avoidMargin
		}
		d := away.Len()
		if d == 0 {
			d = 1
		}
		if d < margin {
			t := (margin - d) / margin
			acc = acc.AddScaled(away, t*t/d)
		}
	}

	if p.X < bounds.MinX+wallMargin {
		acc.X += (bounds.MinX + wallMargin - p.X) / wallMargin
	}
	if p.X > bounds.MaxX-wallMargin {
		acc.X -= (p.X - (bounds.MaxX - wallMargin)) / wallMargin
	}
	if p.Y < bounds.MinY+wallMargin {
		acc.Y += (bounds.MinY + wallMargin - p.Y) / wallMargin
	}
	if p.Y > bounds.MaxY-wallMargin {
		acc.Y -= (p.Y - (bounds.MaxY - wallMargin)) / wallMargin
	}
	return unitOrZero(acc)
}

// hazardCost weighs damaging floors. Only lava and toxic repel.
func hazardCost(s hazard.Sample) float64 {
	switch s.Effect {
	case hazard.EffectLava:
		return s.Intensity
	case hazard.EffectToxic:
		return s.Intensity * 0.9
	}
	return 0
}

// AvoidHazards samples the field on a ring around p and returns a unit vector
// away from damaging floor, or zero.
func AvoidHazards(p geom.Vec2, r float64, field *hazard.Field) geom.Vec2 {
	if field == nil {
		return geom.Vec2{}
	}
	var acc geom.Vec2
	reach := r + hazardReach
	for i := 0; i < hazardSamples; i++ {
		dir := geom.FromAngle(2 * math.Pi * float64(i) / hazardSamples)
		if c := hazardCost(field.Evaluate(p.AddScaled(dir, reach))); c > 0 {
			acc = acc.AddScaled(dir, -c)
		}
	}
	return unitOrZero(acc)
}

// ScreenSteer pulls a ranged adversary toward a spot just behind a melee ally
// that stands between it and the avatar.
func ScreenSteer(self Peer, avatar geom.Vec2, snap *Snapshot) geom.Vec2 {
	if snap.Len() <= 1 {
		return geom.Vec2{}
	}
	toAvatar := avatar.Sub(self.Pos)
	distA := toAvatar.Len()
	if distA == 0 {
		distA = 1
	}
	dirA := toAvatar.Scale(1 / distA)

	var best *Peer
	bestScore := math.Inf(-1)
	for i := range snap.Peers {
		e := &snap.Peers[i]
		if e.ID == self.ID || e.Role != entity.RoleMelee {
			continue
		}
		dp := avatar.Dist(e.Pos)
		if dp > distA*0.98 {
			continue
		}
		v := e.Pos.Sub(self.Pos)
		d := v.Len()
		if d == 0 {
			d = 1
		}
		dot := v.Scale(1 / d).Dot(dirA)
		if dot < screenMinDot {
			continue
		}
		score := dot*2 - d/900 - dp/1100
		if score > bestScore {
			bestScore, best = score, e
		}
	}
	if best == nil {
		return geom.Vec2{}
	}
	target := best.Pos.AddScaled(dirA, -screenFollow)
	return target.Sub(self.Pos).Norm()
}

// GuardSteer pulls a melee adversary toward the space between the avatar and
// the nearest ranged ally.
func GuardSteer(self Peer, avatar geom.Vec2, snap *Snapshot) geom.Vec2 {
	if snap.Len() <= 1 {
		return geom.Vec2{}
	}
	ally, ok := snap.NearestOfRole(self.ID, self.Pos, entity.RoleRanged)
	if !ok {
		return geom.Vec2{}
	}
	target := avatar.AddScaled(ally.Pos.Sub(avatar), guardMidpoint)
	return target.Sub(self.Pos).Norm()
}

// trackStuck accumulates time spent nearly motionless and returns the current
// nudge strength for the perpendicular anti-softlock term.
func trackStuck(a *entity.Adversary, dt float64) float64 {
	if a.Pos.Dist(a.Last) < stuckMoveEpsilon {
		a.Stuck += dt
	} else {
		a.Stuck = math.Max(0, a.Stuck-dt*2.5)
	}
	a.Last = a.Pos
	if a.Stuck > stuckNudgeAfter {
		return 0.55 + 0.35*math.Sin(a.T*7.1)
	}
	return 0
}

func unitOrZero(v geom.Vec2) geom.Vec2 {
	if v.Len() <= 1e-5 {
		return geom.Vec2{}
	}
	return v.Norm()
}
