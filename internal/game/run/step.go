package run

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/hazard"
	"github.com/cory-johannsen/arena/internal/game/physics"
)

const (
	dashDrag       = 18.0
	dashEndInvuln  = 0.06
	stuckShoveAt   = 1.15
	stuckShove     = 70.0
	stuckAfter     = 0.35
	shotMargin     = 60.0
	pulseShake     = 4.2
	magnetReach    = 520.0
	magnetPull     = 220.0
	healthPickup   = 24.0
	focusPickup    = 32.0
	overflowForce  = 2.0
	eliteScoreMul  = 1.35
	eliteForceMul  = 1.5
	healthDropOdds = 0.16
	fragmentGap    = 26.0
)

// Step advances the run by one frame of real time dt.
//
// Precondition: dt is already clamped by the driver.
// Postcondition: outside Playing nothing moves and the result is {1, 0}.
func (r *Run) Step(dt float64, in Input, reducedMotion bool) FrameResult {
	if r.state != Playing {
		return FrameResult{TimeScale: 1}
	}
	r.reduced = reducedMotion
	r.roomIntro = math.Max(0, r.roomIntro-dt)
	av := r.avatar

	f := r.focus.Update(in.FocusHeld, av, dt)
	for i := 0; i < f.Pulses; i++ {
		r.strikePulse()
	}
	dtWorld, dtPlayer := f.DtWorld, f.DtPlayer

	r.updateAvatar(in, dtPlayer)
	r.avatarHazards(dt, dtPlayer)
	r.adversaryHazards(dt, dtWorld)

	combat.ArcNova(av, in.NovaPressed, r.advs, r.emit)
	combat.OrbitBlades(av, r.advs, r.emit)
	r.fire(in, dtPlayer)

	r.spawn(dtWorld)
	r.updateAdversaries(dtWorld)
	r.separate()
	r.keepAway(dtWorld)
	r.updateProjectiles(dtWorld)
	r.updatePickups(dtWorld)
	r.resolve()

	r.camera.Follow(av.Pos, in.Pointer, dt, reducedMotion, r.src)
	r.sink.Advance(dtWorld)

	if r.roomComplete() {
		r.completeRoom()
	} else if av.Dead() {
		r.gameOver()
	}
	return FrameResult{TimeScale: f.TimeScale, RoomIntro: r.roomIntro}
}

// strikePulse applies one paid focus pulse around the avatar.
func (r *Run) strikePulse() {
	p := r.focus.Mode().Pulse
	if p == nil {
		return
	}
	av := r.avatar
	p.Strike(av.Pos, av.Mods.DmgMul*r.focus.Mode().DmgMul, r.advs, r.shots)
	r.sink.Emit(event.Event{Kind: event.Pulse, Pos: av.Pos, Radius: p.Radius})
	if p.Shake > 0 {
		r.shake(p.Shake)
	} else {
		r.shake(pulseShake)
	}
}

func (r *Run) updateAvatar(in Input, dt float64) {
	av := r.avatar
	tu := av.Tuning
	av.T += dt
	av.FireCd = math.Max(0, av.FireCd-dt)
	av.Invuln = math.Max(0, av.Invuln-dt)
	av.DashCd = math.Max(0, av.DashCd-dt)
	av.NovaCd = math.Max(0, av.NovaCd-dt)
	av.TickCombo(dt)
	av.Aim = in.Pointer.Sub(av.Pos)

	switch {
	case av.Dash.Remain > 0:
		step, ended := physics.DashStep(&av.Dash, dt)
		av.Pos = av.Pos.Add(step)
		av.Vel = physics.Decay(av.Vel, dashDrag, dt)
		physics.ClampToBounds(&av.Body, r.bounds, 0)
		if ended {
			av.Invuln = math.Max(av.Invuln, dashEndInvuln)
		}
	case in.DashPressed && av.DashCd <= 0:
		av.DashCd = tu.DashCooldown * av.Mods.DashCdMul
		dir := in.Move
		if dir.Len() <= tu.DashDeadzone {
			dir = av.Aim
		}
		dir = dir.Norm()
		if dir.Len2() == 0 {
			dir = geom.V(1, 0)
		}
		dist := tu.DashDistance * av.Mods.DashDistMul
		av.Dash = entity.Dash{Time: tu.DashDuration, Remain: dist, Speed: geom.SafeDiv(dist, tu.DashDuration), Dir: dir}
		av.Vel = geom.Vec2{}
		av.Invuln = math.Max(av.Invuln, tu.DashDuration+dashEndInvuln)
		r.emit(event.Event{Kind: event.Dash, Pos: av.Pos})
	default:
		mul := av.Mods.MoveMul * av.Env.Move * av.FocusFx.Move
		move := in.Move
		if move.Len() > 1 {
			move = move.Norm()
		}
		physics.Steer(&av.Body, move, tu.Accel*mul, tu.MaxSpeed*mul, tu.Friction*av.Env.Friction, dt)
		physics.ClampToBounds(&av.Body, r.bounds, 0)
	}

	if physics.ResolveObstacles(&av.Body, r.obstacles) && av.Dash.Remain > 0 {
		av.Dash = entity.Dash{}
	}
}

// avatarHazards samples the floor under the avatar after it moved and stores
// the environment multipliers the next frame's movement and focus will use.
func (r *Run) avatarHazards(dt, dtPlayer float64) {
	av := r.avatar
	env := entity.NeutralEnv()
	s := r.field.Evaluate(av.Pos)
	a, p := s.Intensity, s.Params
	switch s.Effect {
	case hazard.EffectLava:
		av.HP -= p.DPS * a * dt
	case hazard.EffectIce:
		env.Friction = geom.Lerp(1, p.FrictionMul, a)
		env.Move = geom.Lerp(1, p.SpeedMul, a)
		av.Vel = av.Vel.Scale(math.Exp(p.AntiFriction * a * dt))
		av.Vel = physics.LimitSpeed(av.Vel, p.MaxSpeed*av.Mods.MoveMul*env.Move)
	case hazard.EffectToxic:
		av.HP -= p.DPS * a * dt
		env.Move = geom.Lerp(1, p.Slow, a)
		env.FocusRegen = geom.Lerp(1, p.FocusRegenMul, a)
		env.FocusCost = geom.Lerp(1, p.FocusCostMul, a)
		av.Focus -= p.FocusDrain * a * dt
	case hazard.EffectVoid:
		dv, peak := r.field.VoidPull(av.Pos, hazard.PlayerPull, dtPlayer)
		sink := math.Pow(peak, 1.35)
		env.Move = math.Min(env.Move, geom.Lerp(1, 0.52, sink))
		env.Friction = math.Max(env.Friction, geom.Lerp(1, 2.55, sink))
		av.Vel = av.Vel.Add(dv)
	}
	av.Env = env
	av.ClampMeters()
}

// adversaryHazards chips adversaries standing in damaging floor and lets void
// cores drift every adversary in range, whatever the dominant effect.
func (r *Run) adversaryHazards(dt, dtWorld float64) {
	for _, e := range r.advs {
		s := r.field.Evaluate(e.Pos)
		warden := e.Type == entity.Warden
		switch s.Effect {
		case hazard.EffectLava:
			mul := 0.32
			if warden {
				mul = 0.22
			}
			e.HP = math.Max(0, e.HP-s.Params.DPS*mul*s.Intensity*dt)
		case hazard.EffectToxic:
			mul := 0.38
			if warden {
				mul = 0.26
			}
			e.HP = math.Max(0, e.HP-s.Params.DPS*mul*s.Intensity*dt)
		}
		if len(r.field.Voids) > 0 {
			dv, _ := r.field.VoidPull(e.Pos, hazard.EnemyDrift, dtWorld)
			e.Vel = e.Vel.Add(dv)
		}
	}
}

// addShot appends p unless the projectile cap is reached. Adversary shots are
// never refused here; the projectile pass trims the oldest.
func (r *Run) addShot(p *entity.Projectile) bool {
	if p.Team == entity.TeamAvatar && len(r.shots) >= r.deps.ProjectileCap {
		return false
	}
	r.shots = append(r.shots, p)
	return true
}

func (r *Run) fire(in Input, dtPlayer float64) {
	made := 0
	var first geom.Vec2
	r.deps.Arsenal.Fire(r.avatar, in.FireHeld, dtPlayer, r.src, func(p *entity.Projectile) {
		if r.addShot(p) {
			if made == 0 {
				first = p.Pos
			}
			made++
		}
	})
	if made > 0 {
		r.emit(event.Event{Kind: event.Shot, Pos: first})
	}
}

func (r *Run) updateAdversaries(dtWorld float64) {
	av := r.avatar
	ctx := &ai.Context{
		Dt:         dtWorld,
		Level:      ai.Level(r.room),
		Avatar:     ai.Target{Pos: av.Pos, Vel: av.Vel},
		Peers:      ai.NewSnapshot(r.advs),
		Bounds:     r.bounds,
		Obstacles:  r.obstacles,
		Field:      &r.field,
		Rand:       r.src,
		Emit:       func(p *entity.Projectile) { r.addShot(p) },
		PushAvatar: func(dv geom.Vec2) { av.Vel = av.Vel.Add(dv) },
	}
	brain := r.deps.Brain
	for _, e := range r.advs {
		brain.Update(e, ctx)

		s := r.field.Evaluate(e.Pos)
		switch s.Effect {
		case hazard.EffectLava:
			e.HP = math.Max(0, e.HP-s.Params.DPS*0.65*s.Intensity*dtWorld)
			e.HitFlash = math.Max(e.HitFlash, 0.06)
		case hazard.EffectToxic:
			e.HP = math.Max(0, e.HP-s.Params.DPS*0.55*s.Intensity*dtWorld)
			e.HitFlash = math.Max(e.HitFlash, 0.05)
		case hazard.EffectVoid:
			dv, peak := r.field.VoidPull(e.Pos, hazard.EnemySink, dtWorld)
			e.Vel = e.Vel.Add(dv)
			e.Vel = physics.Decay(e.Vel, geom.Lerp(0, 7.5, math.Pow(peak, 1.25)), dtWorld)
		}

		if physics.ResolveObstacles(&e.Body, r.obstacles) {
			e.Stuck += dtWorld
			if e.Stuck > stuckShoveAt {
				e.Pos = e.Pos.AddScaled(geom.FromAngle(dice.Angle(r.src)), stuckShove)
				physics.ClampToBounds(&e.Body, r.bounds, 0)
				e.Stuck = stuckAfter
			}
		}
	}
}

// separate pushes overlapping adversaries apart, then out of obstacles again.
func (r *Run) separate() {
	if len(r.advs) < 2 {
		return
	}
	bodies := make([]*entity.Body, len(r.advs))
	for i, e := range r.advs {
		bodies[i] = &e.Body
	}
	r.grid.Separate(bodies, r.bounds)
	for _, b := range bodies {
		physics.ResolveObstacles(b, r.obstacles)
	}
}

func (r *Run) keepAway(dtWorld float64) {
	center := r.avatar.Pos
	for _, e := range r.advs {
		r.focus.KeepAway(center, &e.Body, dtWorld)
	}
}

func (r *Run) scene() *combat.Scene {
	return &combat.Scene{Avatar: r.avatar, Adversaries: r.advs, Projectiles: r.shots}
}

// updateProjectiles trims to the cap, then bends and moves every projectile.
// A segment that reaches a blocking obstacle is cut at the contact and marked
// Blocked; retiring happens in retireShots once targets have been tested.
func (r *Run) updateProjectiles(dtWorld float64) {
	if n := len(r.shots); n > r.deps.ProjectileCap {
		r.shots = append(r.shots[:0], r.shots[n-r.deps.ProjectileCap:]...)
	}
	av := r.avatar
	for _, p := range r.shots {
		if p.Removed {
			continue
		}
		if p.IgnoreT > 0 {
			p.IgnoreT -= dtWorld
			if p.IgnoreT <= 0 {
				p.IgnoreT, p.IgnoreID = 0, ""
			}
		}
		r.focus.Guide(av.Pos, av.R, p, r.advs, dtWorld)
		if omega := r.field.MagnetOmega(p.Pos); omega != 0 {
			p.Vel = hazard.Deflect(p.Vel, omega, dtWorld)
		}
		p.Advance(dtWorld)
		if r.focus.Absorbs(av.Pos, p) {
			r.emit(event.Event{Kind: event.Absorbed, Pos: p.Pos})
			p.Removed = true
			continue
		}
		if t, _, ok := physics.SweepObstacles(p.Prev, p.Pos, p.R, r.obstacles); ok {
			p.Pos = physics.PointAt(p.Prev, p.Pos, t)
			p.Blocked = true
		}
	}
}

// retireShots ends the projectiles that reached a wall, their lifetime or the
// room edge this frame without being spent on a target. Explosive ones
// detonate where they stopped.
func (r *Run) retireShots(s *combat.Scene) {
	for _, p := range r.shots {
		if p.Removed {
			continue
		}
		switch {
		case p.Blocked:
			if !r.resolver.Detonate(p, s) {
				r.emit(event.Event{Kind: event.Blocked, Pos: p.Pos})
				p.Removed = true
			}
		case p.Expired():
			if !r.resolver.Detonate(p, s) {
				p.Removed = true
			}
		case !r.bounds.Contains(p.Pos, shotMargin):
			p.Removed = true
		}
	}
}

func (r *Run) updatePickups(dtWorld float64) {
	av := r.avatar
	gain := int(math.Floor(overflowForce * av.Mods.ForceGainMul))
	kept := r.pickups[:0]
	for _, p := range r.pickups {
		to := av.Pos.Sub(p.Pos)
		if d := to.Len(); av.Mods.Magnet > 0 && d < magnetReach {
			if d == 0 {
				d = 1
			}
			p.Vel = p.Vel.AddScaled(to, av.Mods.Magnet*magnetPull*dtWorld/d)
			p.Vel = physics.Decay(p.Vel, 6, dtWorld)
		} else {
			p.Vel = physics.Decay(p.Vel, 8, dtWorld)
		}
		p.T += dtWorld
		physics.Advance(&p.Body, dtWorld)
		p.Vel = physics.Decay(p.Vel, 7.5, dtWorld)

		if av.Pos.Dist(p.Pos) >= p.R+av.R {
			kept = append(kept, p)
			continue
		}
		switch p.Kind {
		case entity.PickupHealth:
			if av.HP >= av.HPMax-0.01 {
				av.Force += gain
			} else {
				av.Heal(healthPickup)
			}
		default:
			if av.Focus >= av.FocusMax-0.01 {
				av.Force += gain
			} else {
				av.AddFocus(focusPickup)
			}
		}
		r.emit(event.Event{Kind: event.Pickup, Pos: p.Pos})
	}
	clear(r.pickups[len(kept):])
	r.pickups = kept
}

// resolve runs the collision pass, then retires spent projectiles and dead adversaries.
func (r *Run) resolve() {
	s := r.scene()
	r.resolver.Resolve(s)
	r.retireShots(s)
	physics.ClampToBounds(&r.avatar.Body, r.bounds, 0)

	kept := r.shots[:0]
	for _, p := range r.shots {
		if !p.Removed {
			kept = append(kept, p)
		}
	}
	clear(r.shots[len(kept):])
	r.shots = kept

	var spawned []*entity.Adversary
	for i := len(r.advs) - 1; i >= 0; i-- {
		e := r.advs[i]
		if !e.Dead() {
			continue
		}
		r.advs = append(r.advs[:i], r.advs[i+1:]...)
		spawned = append(spawned, r.kill(e)...)
	}
	r.advs = append(r.advs, spawned...)
}

// forceGain is the shop currency awarded for a kill of base value in room.
func forceGain(base float64, room int, elite bool, gainMul float64) int {
	roomMul := 1 + math.Min(0.85, math.Max(0, float64(room-1)*0.04))
	eliteMul := 1.0
	if elite {
		eliteMul = eliteForceMul
	}
	v := math.Max(1, math.Floor(base*roomMul*eliteMul))
	return int(math.Floor(v * gainMul))
}

// kill awards a defeated adversary and returns any fragments it splits into.
func (r *Run) kill(e *entity.Adversary) []*entity.Adversary {
	av := r.avatar
	prof := r.deps.Brain.Profile(e.Type)
	score := prof.Score
	if e.Elite {
		score *= eliteScoreMul
	}
	av.AddScore(score)
	av.Force += forceGain(prof.Force, r.room, e.Elite, av.Mods.ForceGainMul)
	if av.Mods.Vamp > 0 {
		av.Heal(av.Mods.Vamp)
	}

	var out []*entity.Adversary
	if e.Type == entity.Splitter {
		n := 3
		if e.Elite {
			n = 4
		}
		for k := 0; k < n; k++ {
			pos := e.Pos.AddScaled(geom.FromAngle(dice.Angle(r.src)), fragmentGap)
			out = append(out, r.deps.Brain.Spawn(entity.Mote, r.bounds.ClampPoint(pos, 20), false, r.src))
		}
	}
	if !e.Type.IsBoss() {
		r.kills++
	}
	drop := 0.58
	if e.Elite {
		drop = 0.92
	}
	if r.src.Float64() < drop {
		kind := entity.PickupFocus
		if r.src.Float64() < healthDropOdds {
			kind = entity.PickupHealth
		}
		r.pickups = append(r.pickups, entity.NewPickup(kind, e.Pos, geom.Vec2{}))
	}
	r.emit(event.Event{Kind: event.Death, Pos: e.Pos, Radius: e.R, Boss: e.Type.IsBoss()})
	return out
}

// roomComplete reports whether the current room is cleared: no adversary
// remains and, outside boss rooms, the kill target is met.
func (r *Run) roomComplete() bool {
	if len(r.advs) > 0 {
		return false
	}
	return r.boss || r.kills >= r.target
}
