package entity

import "github.com/cory-johannsen/arena/internal/game/geom"

// Pickup is a collectible dropped by a defeated adversary.
type Pickup struct {
	Body
	Kind PickupKind
	T    float64
}

// NewPickup returns a pickup of kind at pos drifting with vel.
func NewPickup(kind PickupKind, pos, vel geom.Vec2) *Pickup {
	r := 10.0
	if kind == PickupFocus {
		r = 9
	}
	return &Pickup{Body: Body{Pos: pos, Vel: vel, R: r}, Kind: kind}
}
