package combat

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

// Blast is a radial explosion. Damage at the rim is Damage*Falloff and rises
// linearly to full damage at the center. Distance is measured to the target's edge.
type Blast struct {
	Center  geom.Vec2
	Radius  float64
	Falloff float64
	Damage  float64
}

// BlastOf returns the explosion of p at its current position with damage scaled by dmgMul.
func BlastOf(p *entity.Projectile, dmgMul float64) Blast {
	return Blast{Center: p.Pos, Radius: p.ExplodeR, Falloff: p.ExplodeFalloff, Damage: p.Damage * dmgMul}
}

// scale returns the damage share for a body of radius r at pos, and false outside the blast.
func (b Blast) scale(pos geom.Vec2, r float64) (float64, bool) {
	if b.Radius <= 0 {
		return 0, false
	}
	d0 := math.Max(0, pos.Dist(b.Center)-r)
	if d0 >= b.Radius {
		return 0, false
	}
	k := 1 - geom.Clamp01(d0/b.Radius)
	return geom.Lerp(b.Falloff, 1, k), true
}

// HitAvatar damages av when it lies inside the blast. It reports whether damage landed.
func (b Blast) HitAvatar(av *entity.Avatar) bool {
	mul, ok := b.scale(av.Pos, av.R)
	if !ok {
		return false
	}
	return av.TakeDamage(b.Damage * mul)
}

// HitAdversaries damages every living adversary inside the blast and returns how many were hit.
func (b Blast) HitAdversaries(advs []*entity.Adversary) int {
	n := 0
	for _, a := range advs {
		if a.Dead() {
			continue
		}
		if mul, ok := b.scale(a.Pos, a.R); ok {
			a.TakeDamage(b.Damage * mul)
			n++
		}
	}
	return n
}
