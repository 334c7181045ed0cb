package focus

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

const (
	barrierDenyShare = 0.70
	barrierKick      = 240.0
	denyKick         = 320.0
	strengthScale    = 0.001
	dragReachDefault = 300.0
	bendReference    = 12000.0
	bendMax          = 0.92
	reflectClearance = 6.0
	coreClearance    = 8.0
	knockScale       = 420.0
)

// radialFrom returns the unit vector from center to p and the distance (1 when coincident).
func radialFrom(center, p geom.Vec2) (geom.Vec2, float64) {
	d := p.Sub(center)
	l := d.Len()
	if l == 0 {
		return geom.V(1, 0), 1
	}
	return d.Scale(1 / l), l
}

// Barrier reports the open pulse barrier around the avatar.
func (c *Controller) Barrier() (radius, strength float64, ok bool) {
	return c.barrierR, c.barrierStr, c.barrierT > 0
}

// KeepAway pushes one adversary body out of the avatar's space: first the pulse
// barrier, then the active mode's repel field, deny core and drag.
func (c *Controller) KeepAway(center geom.Vec2, b *entity.Body, dtWorld float64) {
	if c.barrierT > 0 && c.barrierR > 0 {
		n, d := radialFrom(center, b.Pos)
		if d < c.barrierR {
			t := 1 - d/c.barrierR
			b.Vel = b.Vel.AddScaled(n, c.barrierStr*t*dtWorld*strengthScale)
			if deny := c.barrierR * barrierDenyShare; d < deny {
				b.Pos = center.AddScaled(n, deny)
				b.Vel = b.Vel.AddScaled(n, barrierKick)
			}
		}
	}
	if c.state != Active {
		return
	}
	m := c.mode
	if r := m.RepelEnemies; r != nil {
		n, d := radialFrom(center, b.Pos)
		if d < r.Radius {
			t := 1 - d/r.Radius
			b.Vel = b.Vel.AddScaled(n, r.Strength*t*dtWorld*strengthScale)
		}
	}
	if m.DenyRadius > 0 {
		n, d := radialFrom(center, b.Pos)
		if d < m.DenyRadius {
			b.Pos = center.AddScaled(n, m.DenyRadius)
			b.Vel = b.Vel.AddScaled(n, denyKick)
		}
	}
	if m.Drag > 0 {
		reach := dragReachDefault
		if m.RepelEnemies != nil {
			reach = m.RepelEnemies.Radius
		}
		if _, d := radialFrom(center, b.Pos); d < reach {
			t := 1 - d/reach
			b.Vel = b.Vel.Scale(math.Exp(-m.Drag * t * dtWorld))
		}
	}
}

// Guide bends one projectile before it moves: avatar shots home on the nearest
// adversary, hostile shots are repelled or reflected near the avatar.
func (c *Controller) Guide(center geom.Vec2, avatarR float64, p *entity.Projectile, advs []*entity.Adversary, dtWorld float64) {
	if c.state != Active {
		return
	}
	m := c.mode
	switch p.Team {
	case entity.TeamAvatar:
		if h := m.Homing; h != nil {
			home(p, h, advs, dtWorld)
		}
	case entity.TeamHostile:
		if r := m.RepelBullets; r != nil {
			repel(center, avatarR, p, r, m.Reflect)
		}
	}
}

func home(p *entity.Projectile, h *Homing, advs []*entity.Adversary, dt float64) {
	sp := p.Vel.Len()
	if sp <= 1e-4 {
		return
	}
	var best *entity.Adversary
	bestD := h.Radius
	for _, a := range advs {
		if a.Dead() {
			continue
		}
		if d := a.Pos.Dist(p.Pos); d < bestD {
			best, bestD = a, d
		}
	}
	if best == nil {
		return
	}
	cur := p.Vel.Angle()
	turn := h.Turn * dt
	da := geom.Clamp(geom.WrapAngle(best.Pos.Sub(p.Pos).Angle()-cur), -turn, turn)
	p.Vel = geom.FromAngle(cur + da).Scale(sp)
}

func repel(center geom.Vec2, avatarR float64, p *entity.Projectile, r *Radial, rf *Reflect) {
	n, d := radialFrom(center, p.Pos)
	if d >= r.Radius {
		return
	}
	sp := p.Vel.Len()
	if sp == 0 {
		sp = 1
	}
	if rf != nil && d < rf.Inner {
		p.Team = entity.TeamAvatar
		p.Reflected = true
		p.Damage *= rf.DamageMul
		p.Pierce = 0
		p.Vel = n.Scale(sp * rf.SpeedMul)
		p.Pos = center.AddScaled(n, rf.Inner+p.R+reflectClearance)
		p.Prev = p.Pos
		return
	}
	t := 1 - d/r.Radius
	blend := geom.Clamp(t*(r.Strength/bendReference), 0, bendMax)
	v := p.Vel.Scale(1 / sp)
	bent := v.AddScaled(n.Sub(v), blend)
	p.Vel = bent.Norm().Scale(sp)
	if minD := avatarR + p.R + coreClearance; d < minD {
		p.Pos = center.AddScaled(n, minD)
	}
}

// Absorbs reports whether the active shield swallows hostile projectile p after it moved.
// An absorbed projectile is expired in place.
func (c *Controller) Absorbs(center geom.Vec2, p *entity.Projectile) bool {
	s := c.mode.Shield
	if c.state != Active || s == nil || p.Team != entity.TeamHostile || p.Removed {
		return false
	}
	if p.Pos.Dist(center) >= s.Radius+p.R {
		return false
	}
	p.Age = p.Life
	return true
}

// Strike applies one pulse centered on center: falloff-scaled damage and
// knockback to adversaries in range, and removal of nearby hostile projectiles.
// dmgMul scales the base damage. It returns the adversaries hit and the projectiles cleared.
func (p *Pulse) Strike(center geom.Vec2, dmgMul float64, advs []*entity.Adversary, shots []*entity.Projectile) (hit, cleared int) {
	dmg := p.Damage * dmgMul * p.Mul
	for _, a := range advs {
		if a.Dead() {
			continue
		}
		n, d := radialFrom(center, a.Pos)
		if d > p.Radius {
			continue
		}
		k := 1 - geom.Clamp01(d/p.Radius)
		scale := 1.0
		if p.Falloff >= 0 && p.Falloff < 1 {
			scale = geom.Lerp(p.Falloff, 1, k)
		}
		a.TakeDamage(dmg * scale)
		if p.Knock > 0 {
			a.Vel = a.Vel.AddScaled(n, p.Knock*k*knockScale)
		}
		hit++
	}
	if p.ClearBullets {
		reach := p.Radius * p.ClearRadiusMul
		for _, s := range shots {
			if s.Team != entity.TeamHostile || s.Removed {
				continue
			}
			if s.Pos.Dist(center) <= reach {
				s.Removed = true
				cleared++
			}
		}
	}
	return hit, cleared
}
