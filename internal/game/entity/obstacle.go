package entity

import "github.com/cory-johannsen/arena/internal/game/geom"

// Obstacle is a static body placed at room generation. Rect obstacles are
// axis-aligned and centered on Pos.
type Obstacle struct {
	Shape             Shape
	Pos               geom.Vec2
	R                 float64
	W, H              float64
	BlocksProjectiles bool
	Solid             bool
	Material          string
}

// Circle returns a circular obstacle.
func Circle(pos geom.Vec2, r float64, blocks bool, material string) Obstacle {
	return Obstacle{Shape: ShapeCircle, Pos: pos, R: r, BlocksProjectiles: blocks, Solid: true, Material: material}
}

// Rect returns a rectangular obstacle of size w by h centered on pos.
func Rect(pos geom.Vec2, w, h float64, blocks bool, material string) Obstacle {
	return Obstacle{Shape: ShapeRect, Pos: pos, W: w, H: h, BlocksProjectiles: blocks, Solid: true, Material: material}
}

// Bounds returns the rectangle's extent. Circles report their bounding square.
func (o Obstacle) Bounds() geom.Bounds {
	hw, hh := o.W/2, o.H/2
	if o.Shape == ShapeCircle {
		hw, hh = o.R, o.R
	}
	return geom.Bounds{MinX: o.Pos.X - hw, MinY: o.Pos.Y - hh, MaxX: o.Pos.X + hw, MaxY: o.Pos.Y + hh}
}

// ClosestPoint returns the point of a rect obstacle nearest p.
func (o Obstacle) ClosestPoint(p geom.Vec2) geom.Vec2 {
	b := o.Bounds()
	return geom.V(geom.Clamp(p.X, b.MinX, b.MaxX), geom.Clamp(p.Y, b.MinY, b.MaxY))
}
