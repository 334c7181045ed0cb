package ai

import (
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/hazard"
	"github.com/cory-johannsen/arena/internal/game/physics"
)

const (
	eliteHPMul     = 1.85
	eliteDamageMul = 1.25
	holdFriction   = 14.0
	aimLineHold    = 0.20
	maxLevel       = 8.0
)

// Target is the avatar as seen by the AI.
type Target struct {
	Pos geom.Vec2
	Vel geom.Vec2
}

// Context is everything an adversary may read or trigger during its update.
//
// Invariant: Rand and Emit are non-nil.
type Context struct {
	Dt        float64
	Level     float64
	Avatar    Target
	Peers     *Snapshot
	Bounds    geom.Bounds
	Obstacles []entity.Obstacle
	Field     *hazard.Field
	Rand      dice.Source
	// Emit receives every hostile projectile fired this frame.
	Emit func(p *entity.Projectile)
	// PushAvatar applies a velocity impulse to the avatar. May be nil.
	PushAvatar func(dv geom.Vec2)
}

// Level returns the AI difficulty for a room: roughly +1 every three rooms, capped at 8.
func Level(room int) float64 {
	return geom.Clamp(float64(room-1)/3, 0, maxLevel)
}

// frame caches the per-update geometry shared by every behavior.
type frame struct {
	ctx    *Context
	prof   *Profile
	dir    geom.Vec2
	perp   geom.Vec2
	dist   float64
	avoid  geom.Vec2
	hazard geom.Vec2
	smart  float64
	nudge  float64
}

type behavior func(b *Brain, a *entity.Adversary, f *frame)

// Brain updates adversaries from their profiles and the per-type behavior table.
type Brain struct {
	reg   *Registry
	table [entity.NumAdversaryTypes]behavior
}

// NewBrain returns a Brain over reg. A nil reg uses baseline profiles for every type.
func NewBrain(reg *Registry) *Brain {
	b := &Brain{reg: reg}
	b.table = [entity.NumAdversaryTypes]behavior{
		entity.Stalker:    pursue,
		entity.Mote:       pursue,
		entity.Shooter:    kite,
		entity.Bomber:     kite,
		entity.Weaver:     kite,
		entity.Sniper:     snipe,
		entity.Charger:    charge,
		entity.Splitter:   pursue,
		entity.Pylon:      turret,
		entity.Warden:     warden,
		entity.BossLava:   lavaTitan,
		entity.BossIce:    cryoEmpress,
		entity.BossMagnet: coilTyrant,
		entity.BossVoid:   sinkWarden,
	}
	return b
}

// Profile returns the profile used for t.
func (b *Brain) Profile(t entity.AdversaryType) *Profile {
	return b.reg.ProfileFor(t)
}

// Spawn creates an adversary of type t at pos with randomized starting timers.
//
// Postcondition: HP == MaxHP > 0; State is StateRoam.
func (b *Brain) Spawn(t entity.AdversaryType, pos geom.Vec2, elite bool, src dice.Source) *entity.Adversary {
	p := b.Profile(t)
	a := &entity.Adversary{
		Body:      entity.Body{Pos: pos, R: p.Radius},
		ID:        uuid.New().String(),
		Type:      t,
		Elite:     elite,
		DamageMul: 1,
		State:     entity.StateRoam,
		ShootCd:   dice.Range(src, 0.5, 1.2),
		Last:      pos,
	}
	hp := p.HP
	if elite {
		hp *= eliteHPMul
		a.DamageMul = eliteDamageMul
	}
	a.HP = math.Max(1, math.Floor(hp))
	a.MaxHP = a.HP
	if t.IsBoss() {
		a.Boss = entity.BossState{
			Phase:   1,
			RingCd:  dice.Range(src, 0.75, 1.15),
			BurstCd: dice.Range(src, 1.2, 2.6),
			StepCd:  dice.Range(src, 0.35, 0.95),
			SwapCd:  dice.Range(src, 0.75, 1.35),
			FireCd:  dice.Range(src, 0.45, 0.85),
			PulseCd: dice.Range(src, 2.2, 3.6),
			Weapon:  entity.Pulse,
			Spin:    dice.Sign(src),
		}
	}
	return a
}

// Update advances one adversary by ctx.Dt: timers, steering, attacks, then a bounds clamp.
//
// Precondition: ctx.Rand and ctx.Emit must be non-nil.
// Postcondition: a lies inside ctx.Bounds inset by its radius; a.State is legal for a.Type.
func (b *Brain) Update(a *entity.Adversary, ctx *Context) {
	dt := ctx.Dt
	a.T += dt
	a.HitFlash = math.Max(0, a.HitFlash-dt)
	a.ShootCd = math.Max(0, a.ShootCd-dt)
	a.TouchCd = math.Max(0, a.TouchCd-dt)
	a.LineT = math.Max(0, a.LineT-dt)

	p := b.Profile(a.Type)
	toAvatar := ctx.Avatar.Pos.Sub(a.Pos)
	dist := toAvatar.Len()
	if dist == 0 {
		dist = 1
	}
	dir := toAvatar.Scale(1 / dist)
	f := &frame{
		ctx:    ctx,
		prof:   p,
		dir:    dir,
		perp:   dir.Perp(),
		dist:   dist,
		avoid:  AvoidObstacles(a.Pos, a.R, ctx.Obstacles, ctx.Bounds),
		hazard: AvoidHazards(a.Pos, a.R, ctx.Field),
		smart:  geom.Clamp01(ctx.Level / 4),
		nudge:  trackStuck(a, dt),
	}

	if a.Type < entity.NumAdversaryTypes && b.table[a.Type] != nil {
		b.table[a.Type](b, a, f)
	} else {
		pursue(b, a, f)
	}
	physics.ClampToBounds(&a.Body, ctx.Bounds, 0)
}

// wobble is the perpendicular flank term of the profile.
func (f *frame) wobble(a *entity.Adversary) float64 {
	s := f.prof.Steering
	return s.WobbleBias + s.WobbleAmp*math.Sin(a.T*s.WobbleFreq+a.Pos.X*s.WobblePhaseX)
}

// group returns the weighted screen or guard term for a's role.
func (f *frame) group(a *entity.Adversary) geom.Vec2 {
	w := f.prof.Steering.Group
	if w == 0 {
		return geom.Vec2{}
	}
	self := Peer{ID: a.ID, Type: a.Type, Role: entity.RoleOf(a.Type), Pos: a.Pos}
	switch self.Role {
	case entity.RoleMelee:
		if f.smart <= 0.55 {
			return geom.Vec2{}
		}
		return GuardSteer(self, f.ctx.Avatar.Pos, f.ctx.Peers).Scale(w * geom.Clamp01((f.smart-0.55)/0.45))
	case entity.RoleRanged:
		if f.smart <= 0.35 {
			return geom.Vec2{}
		}
		return ScreenSteer(self, f.ctx.Avatar.Pos, f.ctx.Peers).Scale(w * geom.Clamp01((f.smart-0.35)/0.65))
	}
	return geom.Vec2{}
}

// compose blends the shared avoidance, hazard, group and nudge terms onto a base heading.
func (f *frame) compose(a *entity.Adversary, base geom.Vec2) geom.Vec2 {
	s := f.prof.Steering
	v := base.
		AddScaled(f.avoid, s.Avoid).
		AddScaled(f.hazard, s.HazardBase+s.HazardSmart*f.smart).
		Add(f.group(a)).
		AddScaled(f.perp, f.nudge)
	return v.Norm()
}

func (f *frame) move(a *entity.Adversary, heading geom.Vec2) {
	m := f.prof.Motion
	lvl := f.ctx.Level
	physics.Steer(&a.Body, heading, m.AccelAt(lvl), m.MaxSpeedAt(lvl), m.Friction, f.ctx.Dt)
}

// hold bleeds velocity quickly while an adversary telegraphs.
func (f *frame) hold(a *entity.Adversary) {
	a.Vel = physics.Decay(a.Vel, holdFriction, f.ctx.Dt)
	physics.Advance(&a.Body, f.ctx.Dt)
}

// approachSign is +1 when a should close distance and -1 when it should back off.
func (f *frame) approachSign() float64 {
	s := f.prof.Steering
	if s.PreferredRange <= 0 {
		return 1
	}
	if f.dist > s.PreferredRange+s.PreferredRangeSmart*f.smart {
		return 1
	}
	return -1
}

func pursue(_ *Brain, a *entity.Adversary, f *frame) {
	f.move(a, f.compose(a, f.dir.AddScaled(f.perp, f.wobble(a))))
}

func kite(b *Brain, a *entity.Adversary, f *frame) {
	f.move(a, f.compose(a, f.dir.Scale(f.approachSign()).AddScaled(f.perp, f.wobble(a))))
	if atk := f.prof.Attack; atk != nil && a.ShootCd <= 0 && f.dist < atk.Range {
		rearm(a, atk, f)
		volley(a, atk, f)
	}
}

func turret(b *Brain, a *entity.Adversary, f *frame) {
	a.Vel = physics.Decay(a.Vel, f.prof.Motion.Friction, f.ctx.Dt)
	physics.Advance(&a.Body, f.ctx.Dt)
	if atk := f.prof.Attack; atk != nil && a.ShootCd <= 0 && f.dist < atk.Range {
		rearm(a, atk, f)
		volley(a, atk, f)
	}
}

// snipe kites to range, then telegraphs an aim line before a single lead shot.
func snipe(b *Brain, a *entity.Adversary, f *frame) {
	atk := f.prof.Attack
	if atk == nil {
		pursue(b, a, f)
		return
	}
	if a.State == entity.StateAim {
		a.Windup -= f.ctx.Dt
		f.hold(a)
		a.LineT = math.Max(a.LineT, aimLineHold)
		if a.Windup <= 0 {
			a.Transition(entity.StateRoam)
			rearm(a, atk, f)
			volley(a, atk, f)
		}
		return
	}
	f.move(a, f.compose(a, f.dir.Scale(f.approachSign()).AddScaled(f.perp, f.wobble(a))))
	if a.ShootCd <= 0 && f.dist < atk.Range && a.Transition(entity.StateAim) {
		a.Windup = atk.Windup
		a.LineAngle = f.dir.Angle()
		a.LineT = atk.Windup
	}
}

// charge pursues, winds up with a lead-predicted heading, then dashes.
func charge(b *Brain, a *entity.Adversary, f *frame) {
	c := f.prof.Charge
	if c == nil {
		pursue(b, a, f)
		return
	}
	dt := f.ctx.Dt
	switch a.State {
	case entity.StateWindup:
		a.Windup -= dt
		f.hold(a)
		if a.Windup <= 0 && a.Transition(entity.StateDash) {
			a.Vel = a.ChargeDir.Scale(c.Speed)
			a.DashTime = c.Duration
		}
	case entity.StateDash:
		a.DashTime -= dt
		physics.Advance(&a.Body, dt)
		a.Vel = physics.Decay(a.Vel, c.Decay, dt)
		if a.DashTime <= 0 {
			a.Transition(entity.StateRoam)
		}
	default:
		pursue(b, a, f)
		if f.dist < c.TriggerRange && a.ShootCd <= 0 && a.Transition(entity.StateWindup) {
			a.Windup = c.Windup
			a.ShootCd = dice.Range(f.ctx.Rand, c.CooldownMin, c.CooldownMax) / (1 + f.ctx.Level*c.PerLevel)
			target := f.ctx.Avatar.Pos
			if f.ctx.Level >= c.LeadLevel {
				target = target.AddScaled(f.ctx.Avatar.Vel, c.LeadTime)
			}
			a.ChargeDir = target.Sub(a.Pos).Norm()
		}
	}
}

func rearm(a *entity.Adversary, atk *Attack, f *frame) {
	a.ShootCd = dice.Range(f.ctx.Rand, atk.CooldownMin, atk.CooldownMax) / (1 + f.ctx.Level*atk.CooldownPerLevel)
}

// volley fires atk's pattern from a.
func volley(a *entity.Adversary, atk *Attack, f *frame) {
	s := shot{speed: atk.Speed, damage: atk.Damage, radius: atk.Radius, life: atk.Life,
		muzzle: atk.Muzzle, explodeR: atk.ExplodeR, falloff: atk.ExplodeFalloff}
	n := atk.CountAt(f.ctx.Level)
	switch atk.Pattern {
	case PatternAimed:
		aim := f.ctx.Avatar.Pos
		if atk.LeadScale > 0 && f.ctx.Level >= atk.LeadLevel {
			aim = aim.AddScaled(f.ctx.Avatar.Vel, f.dist/atk.Speed*atk.LeadScale)
		}
		emit(a, aim.Sub(a.Pos).Angle(), s, f.ctx)
	case PatternFan:
		fan(a, f.dir.Angle(), n, atk.Spread, s, f.ctx)
	case PatternRing:
		ring(a, f.dir.Angle()+dice.Range(f.ctx.Rand, -atk.Jitter, atk.Jitter), n, s, f.ctx)
	}
}

// shot describes one hostile projectile before the elite damage multiplier.
type shot struct {
	speed    float64
	damage   float64
	radius   float64
	life     float64
	muzzle   float64
	explodeR float64
	falloff  float64
	pierce   int
}

func emit(a *entity.Adversary, angle float64, s shot, ctx *Context) {
	d := geom.FromAngle(angle)
	muzzle := s.muzzle
	if muzzle == 0 {
		muzzle = 6
	}
	p := entity.NewProjectile(entity.TeamHostile, a.Pos.AddScaled(d, a.R+muzzle), d.Scale(s.speed))
	p.Damage = s.damage * a.DamageMul
	if s.radius > 0 {
		p.R = s.radius
	}
	if s.life > 0 {
		p.Life = s.life
	}
	if s.explodeR > 0 {
		p.ExplodeR = s.explodeR
		if s.falloff > 0 {
			p.ExplodeFalloff = s.falloff
		}
	}
	p.Pierce = s.pierce
	ctx.Emit(p)
}

func fan(a *entity.Adversary, base float64, n int, spread float64, s shot, ctx *Context) {
	mid := float64(n-1) / 2
	for i := 0; i < n; i++ {
		emit(a, base+(float64(i)-mid)*spread, s, ctx)
	}
}

func ring(a *entity.Adversary, rot float64, n int, s shot, ctx *Context) {
	for i := 0; i < n; i++ {
		emit(a, rot+2*math.Pi*float64(i)/float64(n), s, ctx)
	}
}
