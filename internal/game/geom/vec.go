// Package geom provides the 2D vector and scalar helpers shared by the simulation.
package geom

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Len2() float64 { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Len() float64 { return math.Hypot(a.X, a.Y) }
func (a Vec2) Dist(b Vec2) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }
func (a Vec2) Angle() float64 { return math.Atan2(a.Y, a.X) }
func (a Vec2) AddScaled(b Vec2, k float64) Vec2 {
	return Vec2{a.X + b.X*k, a.Y + b.Y*k}
}

// Perp returns a rotated by +90 degrees.
func (a Vec2) Perp() Vec2 { return Vec2{-a.Y, a.X} }

// Norm returns a unit vector in the direction of a. The zero vector stays zero.
func (a Vec2) Norm() Vec2 {
	l := a.Len()
	if l == 0 {
		l = 1
	}
	return Vec2{a.X / l, a.Y / l}
}

// Rotate returns a rotated by angle radians.
func (a Vec2) Rotate(angle float64) Vec2 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec2{a.X*c - a.Y*s, a.X*s + a.Y*c}
}

// FromAngle returns the unit vector at angle radians.
func FromAngle(angle float64) Vec2 {
	return Vec2{math.Cos(angle), math.Sin(angle)}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Lerp interpolates from a to b by t.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// WrapAngle maps a into (-Pi, Pi].
func WrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// SafeDiv returns n/d, substituting 1 for a zero denominator.
func SafeDiv(n, d float64) float64 {
	if d == 0 {
		d = 1
	}
	return n / d
}
