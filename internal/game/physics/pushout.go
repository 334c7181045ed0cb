package physics

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

const (
	obstacleIterations = 2
	contactRetention   = 0.985
)

// Contact is a penetration normal and depth.
type Contact struct {
	Normal geom.Vec2
	Depth  float64
}

// CirclePushOut returns the contact between a circle at p of radius r and a circle at c of radius cr.
func CirclePushOut(p geom.Vec2, r float64, c geom.Vec2, cr float64) (Contact, bool) {
	d := p.Dist(c)
	min := r + cr
	if d >= min {
		return Contact{}, false
	}
	if d == 0 {
		return Contact{Normal: geom.V(1, 0), Depth: min}, true
	}
	return Contact{Normal: p.Sub(c).Scale(1 / d), Depth: min - d}, true
}

// CircleRectPushOut returns the contact between a circle at p of radius r and the rectangle rect.
// A center inside the rectangle is pushed out through the nearest side.
func CircleRectPushOut(p geom.Vec2, r float64, rect geom.Bounds) (Contact, bool) {
	cx := geom.Clamp(p.X, rect.MinX, rect.MaxX)
	cy := geom.Clamp(p.Y, rect.MinY, rect.MaxY)
	dx, dy := p.X-cx, p.Y-cy
	d2 := dx*dx + dy*dy
	if d2 > 1e-6 {
		if d2 >= r*r {
			return Contact{}, false
		}
		d := math.Sqrt(d2)
		return Contact{Normal: geom.V(dx/d, dy/d), Depth: r - d}, true
	}

	sides := [4]Contact{
		{Normal: geom.V(-1, 0), Depth: p.X - rect.MinX},
		{Normal: geom.V(1, 0), Depth: rect.MaxX - p.X},
		{Normal: geom.V(0, -1), Depth: p.Y - rect.MinY},
		{Normal: geom.V(0, 1), Depth: rect.MaxY - p.Y},
	}
	c := sides[0]
	for _, s := range sides[1:] {
		if s.Depth < c.Depth {
			c = s
		}
	}
	c.Depth += r
	return c, true
}

// ObstacleContact returns the contact between a circle and one obstacle.
func ObstacleContact(p geom.Vec2, r float64, o entity.Obstacle) (Contact, bool) {
	if o.Shape == entity.ShapeRect {
		return CircleRectPushOut(p, r, o.Bounds())
	}
	return CirclePushOut(p, r, o.Pos, o.R)
}

// ResolveObstacles pushes b out of every solid obstacle, removing inward velocity.
//
// Postcondition: Returns true when any contact was resolved. Two passes run so
// bodies wedged between overlapping obstacles settle.
func ResolveObstacles(b *entity.Body, obstacles []entity.Obstacle) bool {
	hit := false
	for iter := 0; iter < obstacleIterations; iter++ {
		for i := range obstacles {
			o := &obstacles[i]
			if !o.Solid {
				continue
			}
			c, ok := ObstacleContact(b.Pos, b.R, *o)
			if !ok {
				continue
			}
			b.Pos = b.Pos.AddScaled(c.Normal, c.Depth)
			if vn := b.Vel.Dot(c.Normal); vn < 0 {
				b.Vel = b.Vel.AddScaled(c.Normal, -vn)
			}
			b.Vel = b.Vel.Scale(contactRetention)
			hit = true
		}
	}
	return hit
}
