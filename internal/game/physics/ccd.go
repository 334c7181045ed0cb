package physics

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

// SegmentCircleTOI returns the earliest fraction t in [0, 1] at which a point
// moving from p0 to p1 comes within r of c. r is the sum of both radii.
//
// Postcondition: t is 0 when p0 already lies within r; ok is false when the
// segment never comes within r.
func SegmentCircleTOI(p0, p1, c geom.Vec2, r float64) (t float64, ok bool) {
	f := p0.Sub(c)
	cc := f.Len2() - r*r
	if cc <= 0 {
		return 0, true
	}
	d := p1.Sub(p0)
	a := d.Len2()
	if a < 1e-12 {
		return 0, false
	}
	b := 2 * f.Dot(d)
	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, false
	}
	t = (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

// SegmentRectTOI returns the entry fraction t in [0, 1] of the segment p0→p1
// into rect expanded by r on every side, using a slab clip.
//
// Postcondition: t is 0 when p0 starts inside the expanded rectangle.
func SegmentRectTOI(p0, p1 geom.Vec2, rect geom.Bounds, r float64) (t float64, ok bool) {
	minX, maxX := rect.MinX-r, rect.MaxX+r
	minY, maxY := rect.MinY-r, rect.MaxY+r
	d := p1.Sub(p0)
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		u := q / p
		if p < 0 {
			if u > t1 {
				return false
			}
			if u > t0 {
				t0 = u
			}
		} else {
			if u < t0 {
				return false
			}
			if u < t1 {
				t1 = u
			}
		}
		return true
	}

	if !clip(-d.X, p0.X-minX) || !clip(d.X, maxX-p0.X) ||
		!clip(-d.Y, p0.Y-minY) || !clip(d.Y, maxY-p0.Y) {
		return 0, false
	}
	return t0, true
}

// ObstacleTOI sweeps a circle of radius r from p0 to p1 against one obstacle.
func ObstacleTOI(p0, p1 geom.Vec2, r float64, o entity.Obstacle) (float64, bool) {
	if o.Shape == entity.ShapeRect {
		return SegmentRectTOI(p0, p1, o.Bounds(), r)
	}
	return SegmentCircleTOI(p0, p1, o.Pos, o.R+r)
}

// SweepObstacles returns the earliest impact of a swept circle against every
// projectile-blocking obstacle.
//
// Postcondition: idx indexes obstacles when ok is true.
func SweepObstacles(p0, p1 geom.Vec2, r float64, obstacles []entity.Obstacle) (t float64, idx int, ok bool) {
	t, idx = math.Inf(1), -1
	for i := range obstacles {
		if !obstacles[i].BlocksProjectiles {
			continue
		}
		if ti, hit := ObstacleTOI(p0, p1, r, obstacles[i]); hit && ti < t {
			t, idx = ti, i
		}
	}
	if idx < 0 {
		return 0, -1, false
	}
	return t, idx, true
}

// PointAt returns the point at fraction t along p0→p1.
func PointAt(p0, p1 geom.Vec2, t float64) geom.Vec2 {
	return p0.AddScaled(p1.Sub(p0), t)
}
