package entity

import "github.com/cory-johannsen/arena/internal/game/geom"

// Body is the scalar state every moving record carries.
//
// Invariant: R > 0.
type Body struct {
	Pos geom.Vec2
	Vel geom.Vec2
	R   float64
}
