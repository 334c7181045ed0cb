package combat

import (
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

const (
	baseSpread      = 0.060
	focusSpread     = 0.018
	baseCritChance  = 0.07
	focusCritChance = 0.10
	critDamage      = 1.6
	muzzleGap       = 6.0
)

// Fire triggers the avatar's weapon for one frame and passes every projectile
// created to emit. Queued burst shots fire on their own delay whether or not
// the trigger is held. It returns the number of projectiles emitted.
//
// Precondition: av.FireCd has already been ticked for this frame; dt is the
// avatar's frame time.
func (a *Arsenal) Fire(av *entity.Avatar, held bool, dt float64, src dice.Source, emit func(*entity.Projectile)) int {
	w := a.Weapon(av.Weapon)
	if av.Burst.Remain > 0 {
		av.Burst.Delay -= dt
		if av.Burst.Delay <= 0 {
			av.Burst.Remain--
			av.Burst.Delay = w.BurstDelay
			emit(a.shot(av, w, av.Burst.Dir, 0, 1, src))
			return 1
		}
	}
	if !held || av.FireCd > 0 {
		return 0
	}
	dir := av.Aim.Norm()
	if dir.Len2() == 0 {
		dir = geom.V(1, 0)
	}
	av.FireCd = geom.SafeDiv(w.Cooldown, av.Mods.FireMul*av.FocusFx.Fire)
	if w.Burst > 0 {
		av.Burst = entity.BurstFire{Remain: w.Burst, Delay: w.BurstDelay, Dir: dir}
	}
	for i := 0; i < w.Pellets; i++ {
		emit(a.shot(av, w, dir, i, w.Pellets, src))
	}
	return w.Pellets
}

// shot builds pellet i of n fired along dir.
func (a *Arsenal) shot(av *entity.Avatar, w *Weapon, dir geom.Vec2, i, n int, src dice.Source) *entity.Projectile {
	fx := av.FocusFx
	m := av.Mods

	s := baseSpread
	factor := w.Spread
	if fx.Active {
		s, factor = focusSpread, w.FocusSpread
	}
	spread := dice.Range(src, -s, s) * m.SpreadMul * fx.Spread * factor
	switch {
	case w.Fan != nil:
		wide := w.Fan.Wide
		if fx.Active {
			wide = w.Fan.FocusWide
		}
		center := (float64(i) - float64(n-1)/2) * wide * w.Fan.Step
		spread += center + dice.Range(src, -wide, wide)*w.Fan.Jitter
	case len(w.Angles) > 0:
		j := w.AngleJitter
		if fx.Active {
			j *= w.FocusJitterMul
		}
		spread += w.Angles[i%len(w.Angles)] + dice.Range(src, -j, j)
	}
	d := dir.Rotate(spread)

	critChance := baseCritChance
	focusMul := 1.0
	if fx.Active {
		critChance = focusCritChance
		focusMul = m.FocusDmgMul * fx.Damage
	}
	critChance += m.CritAdd + fx.CritAdd + w.CritBonus
	crit := dice.Chance(src, critChance)

	dmg := w.Damage * m.DmgMul * focusMul
	if crit {
		dmg *= critDamage * m.CritMul
	}

	speed := w.Speed * m.BulletSpeedMul * fx.BulletSpeed
	p := entity.NewProjectile(entity.TeamAvatar, av.Pos.AddScaled(d, av.R+muzzleGap), d.Scale(speed))
	p.R = w.Radius * m.BulletRadiusMul
	p.Life = w.Life * m.BulletLifeMul * fx.BulletLife
	p.Damage = dmg
	p.Crit = crit
	if !w.NoPierce {
		p.Pierce = max(0, int(m.Pierce)+w.Pierce+fx.PierceAdd)
	}
	if w.ExplodeR > 0 {
		p.ExplodeR = w.ExplodeR * m.ExplodeRadiusMul
		p.ExplodeFalloff = w.ExplodeFalloff
	}
	return p
}
