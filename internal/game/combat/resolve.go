package combat

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/physics"
)

const (
	ignoreWindow     = 0.06
	pierceClearance  = 2.0
	chainRange       = 240.0
	chainDamage      = 0.55
	defaultTouch     = 16.0
	touchClearance   = 0.5
	defaultPierceMul = 0.85
)

// Focus is the part of the focus controller consulted on avatar hits.
type Focus interface {
	GrantOnHit(av *entity.Avatar) (focus, hp float64)
	PierceDamageMul() float64
}

type noFocus struct{}

func (noFocus) GrantOnHit(*entity.Avatar) (float64, float64) { return 0, 0 }
func (noFocus) PierceDamageMul() float64 { return defaultPierceMul }

// Scene is the state a resolve pass reads and mutates. Projectiles are never
// removed from the slice; spent ones are marked Removed.
type Scene struct {
	Avatar      *entity.Avatar
	Adversaries []*entity.Adversary
	Projectiles []*entity.Projectile
}

// Resolver applies the damage of one frame's contacts.
type Resolver struct {
	focus Focus
	touch func(entity.AdversaryType) float64
	emit  event.Func
}

// NewResolver returns a resolver. focus may be nil; touch maps an adversary
// type to its contact damage and may be nil; emit may be nil.
func NewResolver(focus Focus, touch func(entity.AdversaryType) float64, emit event.Func) *Resolver {
	if focus == nil {
		focus = noFocus{}
	}
	if touch == nil {
		touch = func(entity.AdversaryType) float64 { return defaultTouch }
	}
	return &Resolver{focus: focus, touch: touch, emit: emit}
}

// Resolve runs avatar projectiles against adversaries, hostile projectiles
// against the avatar, then contact damage.
func (r *Resolver) Resolve(s *Scene) {
	for _, p := range s.Projectiles {
		if p.Removed {
			continue
		}
		if p.Team == entity.TeamAvatar {
			r.avatarShot(p, s)
		} else {
			r.hostileShot(p, s)
		}
	}
	r.Touch(s)
}

// Detonate explodes p at its position when it carries a blast and marks it removed.
// It reports whether p exploded.
func (r *Resolver) Detonate(p *entity.Projectile, s *Scene) bool {
	if p.ExplodeR <= 0 {
		return false
	}
	if p.Team == entity.TeamAvatar {
		b := BlastOf(p, s.Avatar.Mods.ExplodeDmgMul)
		b.HitAdversaries(s.Adversaries)
		r.emit.Send(event.Event{Kind: event.Blast, Pos: b.Center, Radius: b.Radius})
	} else {
		b := BlastOf(p, 1)
		b.HitAvatar(s.Avatar)
		r.emit.Send(event.Event{Kind: event.Blast, Pos: b.Center, Radius: b.Radius})
	}
	p.Removed = true
	return true
}

// earliest returns the living adversary p's sweep reaches first, skipping the ignored target.
func earliest(p *entity.Projectile, advs []*entity.Adversary) (*entity.Adversary, float64, bool) {
	var best *entity.Adversary
	bestT := math.Inf(1)
	for _, a := range advs {
		if a.Dead() || p.Ignores(a.ID) {
			continue
		}
		if t, ok := physics.SegmentCircleTOI(p.Prev, p.Pos, a.Pos, p.R+a.R); ok && t < bestT {
			best, bestT = a, t
		}
	}
	return best, bestT, best != nil
}

// avatarShot resolves at most one hit for an avatar projectile.
//
// Postcondition: a projectile with pierce N survives at most N hits and is
// removed on hit N+1.
func (r *Resolver) avatarShot(p *entity.Projectile, s *Scene) {
	a, t, ok := earliest(p, s.Adversaries)
	if !ok {
		return
	}
	p.Pos = physics.PointAt(p.Prev, p.Pos, t)
	if r.Detonate(p, s) {
		return
	}
	av := s.Avatar
	a.TakeDamage(p.Damage)
	r.focus.GrantOnHit(av)
	if av.Mods.Leech > 0 {
		av.Heal(p.Damage * av.Mods.Leech)
	}
	r.emit.Send(event.Event{Kind: event.Hit, Pos: p.Pos})
	r.chain(a, p.Damage, s)

	if !p.ConsumePierce() {
		p.Removed = true
		return
	}
	p.Damage *= r.focus.PierceDamageMul()
	p.IgnoreID = a.ID
	p.IgnoreT = ignoreWindow
	p.Pos = p.Pos.AddScaled(p.Vel.Norm(), a.R+p.R+pierceClearance)
}

// chain jumps from the struck adversary to the nearest unstruck ones.
func (r *Resolver) chain(from *entity.Adversary, dmg float64, s *Scene) {
	m := s.Avatar.Mods
	jumps := int(m.ChainCount)
	if m.Chain <= 0 || jumps <= 0 {
		return
	}
	reach := chainRange * m.ChainRangeMul
	if reach <= 0 {
		reach = chainRange
	}
	mul := m.ChainDamageMul
	if mul <= 0 {
		mul = chainDamage
	}
	used := map[string]bool{from.ID: true}
	for k := 0; k < jumps; k++ {
		next := nearestUnused(from.Pos, reach, s.Adversaries, used)
		if next == nil {
			return
		}
		used[next.ID] = true
		next.TakeDamage(dmg * mul)
		r.emit.Send(event.Event{Kind: event.Chain, Pos: next.Pos, Radius: next.R})
		from = next
	}
}

func nearestUnused(p geom.Vec2, reach float64, advs []*entity.Adversary, used map[string]bool) *entity.Adversary {
	var best *entity.Adversary
	bestD := reach
	for _, a := range advs {
		if a.Dead() || used[a.ID] {
			continue
		}
		if d := a.Pos.Dist(p); d < bestD {
			best, bestD = a, d
		}
	}
	return best
}

func (r *Resolver) hostileShot(p *entity.Projectile, s *Scene) {
	av := s.Avatar
	t, ok := physics.SegmentCircleTOI(p.Prev, p.Pos, av.Pos, p.R+av.R)
	if !ok {
		return
	}
	p.Pos = physics.PointAt(p.Prev, p.Pos, t)
	if r.Detonate(p, s) {
		return
	}
	if av.TakeDamage(p.Damage) {
		r.emit.Send(event.Event{Kind: event.AvatarHit, Pos: av.Pos})
	}
	p.Removed = true
}

// Touch applies contact damage from every overlapping adversary and pushes the
// avatar clear of each body.
func (r *Resolver) Touch(s *Scene) {
	av := s.Avatar
	for _, a := range s.Adversaries {
		if a.Dead() {
			continue
		}
		rr := a.R + av.R
		d := av.Pos.Dist(a.Pos)
		if d >= rr {
			continue
		}
		if av.TakeDamage(r.touch(a.Type) * a.DamageMul) {
			r.emit.Send(event.Event{Kind: event.Touch, Pos: av.Pos, Boss: a.Type.IsBoss()})
		}
		n := geom.V(1, 0)
		if d > 0 {
			n = av.Pos.Sub(a.Pos).Scale(1 / d)
		}
		av.Pos = av.Pos.AddScaled(n, rr-d+touchClearance)
	}
}
