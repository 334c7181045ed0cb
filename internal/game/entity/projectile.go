package entity

import "github.com/cory-johannsen/arena/internal/game/geom"

// Projectile is a bullet owned by one team.
//
// Invariant: Pierce never increases after creation.
type Projectile struct {
	Body
	Prev           geom.Vec2
	Team           Team
	Damage         float64
	Pierce         int
	Crit           bool
	Age, Life      float64
	ExplodeR       float64
	ExplodeFalloff float64

	// IgnoreID names a target that cannot be hit again until IgnoreT lapses.
	IgnoreID string
	IgnoreT  float64

	Reflected bool
	// Blocked marks a projectile whose segment this frame was cut short by an
	// obstacle; it is retired after targets on the shortened segment are tested.
	Blocked bool
	Removed bool
}

// NewProjectile returns a projectile with its team's default radius, lifetime and damage.
func NewProjectile(team Team, pos, vel geom.Vec2) *Projectile {
	p := &Projectile{
		Body:           Body{Pos: pos, Vel: vel},
		Prev:           pos,
		Team:           team,
		ExplodeFalloff: 0.75,
	}
	if team == TeamAvatar {
		p.R, p.Life, p.Damage = 3.2, 0.95, 18
	} else {
		p.R, p.Life, p.Damage = 4.2, 1.25, 12
	}
	return p
}

// Advance ages the projectile and moves it along its velocity, remembering the start point.
func (p *Projectile) Advance(dt float64) {
	p.Prev = p.Pos
	p.Age += dt
	p.Pos = p.Pos.AddScaled(p.Vel, dt)
}

// Expired reports whether the projectile has outlived its lifetime.
func (p *Projectile) Expired() bool { return p.Age >= p.Life }

// ConsumePierce spends one pierce charge.
//
// Postcondition: Returns false and leaves Pierce unchanged when none remain.
func (p *Projectile) ConsumePierce() bool {
	if p.Pierce <= 0 {
		return false
	}
	p.Pierce--
	return true
}

// Ignores reports whether the target id is inside the ignore window.
func (p *Projectile) Ignores(id string) bool {
	return p.IgnoreT > 0 && p.IgnoreID == id
}
