package ai

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/physics"
)

// bossTick refreshes the phase and decrements every boss timer.
func bossTick(a *entity.Adversary, bt *BossTuning, dt float64) {
	bs := &a.Boss
	bs.Phase = 1
	if a.HP < a.MaxHP*bt.Enrage {
		bs.Phase = 2
	}
	for _, t := range []*float64{&bs.RingCd, &bs.BurstCd, &bs.StepCd, &bs.FireCd, &bs.SwapCd, &bs.PulseCd} {
		*t = math.Max(0, *t-dt)
	}
}

func (f *frame) moveBoss(a *entity.Adversary, m BossMotion) {
	sgn := 1.0
	if f.dist <= m.Want {
		sgn = -1
	}
	heading := f.dir.Scale(sgn).
		AddScaled(f.perp, math.Sin(a.T*1.35)*m.Wobble).
		AddScaled(f.avoid, 1.05).
		AddScaled(f.hazard, 0.20+0.85*f.smart)
	lvl := f.ctx.Level
	physics.Steer(&a.Body, heading.Norm(), m.Accel*(1+lvl*0.02), m.MaxSpeed*(1+lvl*0.01), m.Friction, f.ctx.Dt)
}

// ready reports whether v may fire on timer cd at dist, rearming cd when it can.
func (v *Volley) ready(cd *float64, dist float64, phase int) bool {
	if v == nil || *cd > 0 || (v.Range > 0 && dist >= v.Range) {
		return false
	}
	*cd = v.Cooldown.At(phase)
	return true
}

// fire emits one volley around base.
func (v *Volley) fire(a *entity.Adversary, base float64, phase int, ctx *Context) {
	s := shot{
		speed: v.Speed.At(phase), damage: v.Damage.At(phase), radius: v.Radius, life: v.Life,
		muzzle: bossMuzzle, explodeR: v.ExplodeR.At(phase), falloff: bossFalloff, pierce: v.Pierce.N(phase),
	}
	jitter := func() float64 {
		if v.Jitter <= 0 {
			return 0
		}
		return dice.Range(ctx.Rand, -v.Jitter, v.Jitter)
	}
	n := max(1, v.Count.N(phase))
	switch v.Pattern {
	case PatternRing:
		ring(a, base+jitter(), n, s, ctx)
	case PatternFan:
		fan(a, base+jitter(), n, v.Spread.At(phase), s, ctx)
	case PatternSway:
		sway := math.Sin(a.T*v.SwayFreq) * v.Sway
		emit(a, base+sway, s, ctx)
		emit(a, base-sway, s, ctx)
	default:
		for range n {
			emit(a, base+jitter(), s, ctx)
		}
	}
}

// warden cycles through the avatar's own weapon set.
func warden(_ *Brain, a *entity.Adversary, f *frame) {
	bt := f.prof.Boss
	bossTick(a, bt, f.ctx.Dt)
	bs := &a.Boss
	ph := bs.Phase
	src := f.ctx.Rand

	m := bt.Motion
	if bt.RageMotion != nil && a.HP < a.MaxHP*bt.RageAt {
		m = *bt.RageMotion
	}
	f.moveBoss(a, m)

	if b := bt.Blink; b != nil && bs.StepCd <= 0 && f.dist < b.Range {
		bs.StepCd = b.Cooldown.At(ph)
		a.Pos = a.Pos.AddScaled(f.perp, b.Distance.At(ph))
	}
	if sw := bt.Swap; sw != nil && bs.SwapCd <= 0 {
		bs.SwapCd = dice.Range(src, sw.Min.At(ph), sw.Max.At(ph))
		bs.Weapon = entity.WeaponID(src.Intn(int(entity.NumWeapons)))
		a.HitFlash = math.Max(a.HitFlash, 0.08)
	}
	base := f.dir.Angle()
	if bt.Secondary.ready(&bs.RingCd, f.dist, ph) {
		bt.Secondary.fire(a, base, ph, f.ctx)
	}
	if v := bt.Mimic(bs.Weapon); v.ready(&bs.FireCd, f.dist, ph) {
		v.fire(a, base, ph, f.ctx)
	}
}

// volleys fires the primary on the fire timer and the secondary, turned to
// rot, on the burst timer.
func volleys(a *entity.Adversary, f *frame, rot float64) {
	bt := f.prof.Boss
	bs := &a.Boss
	if bt.Primary.ready(&bs.FireCd, f.dist, bs.Phase) {
		bt.Primary.fire(a, f.dir.Angle(), bs.Phase, f.ctx)
	}
	if bt.Secondary.ready(&bs.BurstCd, f.dist, bs.Phase) {
		bt.Secondary.fire(a, rot, bs.Phase, f.ctx)
	}
}

// lavaTitan lobs firebombs and periodically erupts in a ring.
func lavaTitan(_ *Brain, a *entity.Adversary, f *frame) {
	bossTick(a, f.prof.Boss, f.ctx.Dt)
	f.moveBoss(a, f.prof.Boss.Motion)
	volleys(a, f, 0)
}

// cryoEmpress sprays shard fans and fires a narrow piercing rail sweep.
func cryoEmpress(_ *Brain, a *entity.Adversary, f *frame) {
	bossTick(a, f.prof.Boss, f.ctx.Dt)
	f.moveBoss(a, f.prof.Boss.Motion)
	volleys(a, f, f.dir.Angle())
}

// coilTyrant orbits the nearest magnet core and spews slow bullets for the field to bend.
func coilTyrant(_ *Brain, a *entity.Adversary, f *frame) {
	bt := f.prof.Boss
	bossTick(a, bt, f.ctx.Dt)

	core := f.ctx.Field.NearestMagnet(a.Pos)
	if o := bt.Orbit; o != nil && core != nil {
		away := a.Pos.Sub(core.Pos)
		d := away.Len()
		if d == 0 {
			d = 1
		}
		n := away.Scale(1 / d)
		heading := n.Perp().Scale(o.Spin * a.Boss.Spin).
			AddScaled(n, (o.Distance-d)*o.Gain).
			AddScaled(f.avoid, o.Avoid).
			AddScaled(f.hazard, 0.20+0.85*f.smart)
		physics.Steer(&a.Body, heading.Norm(), o.Accel, o.MaxSpeed, o.Friction, f.ctx.Dt)
	} else {
		f.moveBoss(a, bt.Motion)
	}
	volleys(a, f, f.dir.Angle()*0.25)
}

// sinkWarden drags the avatar toward itself with a gravity pulse between dart bursts.
func sinkWarden(_ *Brain, a *entity.Adversary, f *frame) {
	bt := f.prof.Boss
	bossTick(a, bt, f.ctx.Dt)
	bs := &a.Boss
	ph := bs.Phase
	f.moveBoss(a, bt.Motion)

	if p := bt.Pulse; p != nil && bs.PulseCd <= 0 {
		bs.PulseCd = p.Cooldown.At(ph)
		pull := a.Pos.Sub(f.ctx.Avatar.Pos)
		d := pull.Len()
		if d == 0 {
			d = 1
		}
		strength := p.Strength.At(ph) * geom.Clamp01(1-d/p.Reach)
		if f.ctx.PushAvatar != nil {
			f.ctx.PushAvatar(pull.Scale(strength / d))
		}
		a.HitFlash = math.Max(a.HitFlash, 0.10)
	}
	volleys(a, f, a.T*0.6)
}
