package hazard

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

const (
	voidWeight   = 0.97
	magnetWeight = 0.90

	defaultMagnetOmega = 42.0
	defaultMagnetSoft  = 160.0
	defaultMagnetPow   = 2.6
	maxDeflectAngle    = 0.75
)

// Region is a resolved floor hazard. Rect regions are centered on Pos.
type Region struct {
	Shape  entity.Shape
	Pos    geom.Vec2
	W, H   float64
	R      float64
	Effect Effect
	Params Params
}

// Node is a resolved magnet or void core.
type Node struct {
	Pos geom.Vec2
	R   float64

	// Magnet
	Omega float64
	Soft  float64
	Pow   float64
	Dir   float64

	// Void
	Pull      float64
	PlayerMul float64
	EnemyMul  float64
}

// Field is the set of hazards active in one room.
type Field struct {
	Regions []Region
	Magnets []Node
	Voids   []Node
	// Falloff is the exponent applied to node intensity. Values <= 0 mean 1.
	Falloff float64
}

// Sample is the dominant effect at a point.
//
// Invariant: Intensity is in [0, 1]; Effect is EffectNone iff Intensity is 0.
type Sample struct {
	Effect    Effect
	Intensity float64
	Params    Params
	Node      *Node
}

// Evaluate returns the highest-intensity effect at p. It has no side effects.
func (f *Field) Evaluate(p geom.Vec2) Sample {
	var best Sample
	if f == nil {
		return best
	}
	for i := range f.Regions {
		r := &f.Regions[i]
		a := regionIntensity(r, p)
		if a > best.Intensity {
			best = Sample{Effect: r.Effect, Intensity: a, Params: r.Params}
		}
	}
	falloff := f.Falloff
	if falloff <= 0 {
		falloff = 1
	}
	check := func(e Effect, nodes []Node, weight float64) {
		for i := range nodes {
			n := &nodes[i]
			d := p.Dist(n.Pos)
			if d > n.R || n.R <= 0 {
				continue
			}
			a := geom.Clamp01(math.Pow(1-d/n.R, falloff) * weight)
			if a > best.Intensity {
				best = Sample{Effect: e, Intensity: a, Node: n}
			}
		}
	}
	check(EffectVoid, f.Voids, voidWeight)
	check(EffectMagnet, f.Magnets, magnetWeight)
	return best
}

func regionIntensity(r *Region, p geom.Vec2) float64 {
	switch r.Shape {
	case entity.ShapeRect:
		hw, hh := r.W/2, r.H/2
		if hw <= 0 || hh <= 0 {
			return 0
		}
		dx, dy := math.Abs(p.X-r.Pos.X), math.Abs(p.Y-r.Pos.Y)
		if dx > hw || dy > hh {
			return 0
		}
		return geom.Clamp01(math.Min(1-dx/hw, 1-dy/hh))
	case entity.ShapeCircle:
		if r.R <= 0 {
			return 0
		}
		d := p.Dist(r.Pos)
		if d > r.R {
			return 0
		}
		return geom.Clamp01(1 - d/r.R)
	}
	return 0
}

// NearestMagnet returns the magnet core closest to p, or nil.
func (f *Field) NearestMagnet(p geom.Vec2) *Node {
	var best *Node
	if f == nil {
		return nil
	}
	bestD := math.Inf(1)
	for i := range f.Magnets {
		if d := p.Dist(f.Magnets[i].Pos); d < bestD {
			best, bestD = &f.Magnets[i], d
		}
	}
	return best
}

// MagnetOmega returns the summed angular deflection rate at p in rad/s.
// Strength grows as (soft/(d+soft))^pow toward each core.
func (f *Field) MagnetOmega(p geom.Vec2) float64 {
	sum := 0.0
	if f == nil {
		return 0
	}
	for i := range f.Magnets {
		n := &f.Magnets[i]
		d := p.Dist(n.Pos)
		if d > n.R {
			continue
		}
		soft := orDefault(n.Soft, defaultMagnetSoft)
		pow := orDefault(n.Pow, defaultMagnetPow)
		omega := orDefault(n.Omega, defaultMagnetOmega)
		dir := orDefault(n.Dir, 1)
		sum += dir * omega * math.Pow(soft/(d+soft), pow)
	}
	return sum
}

// Deflect rotates v by omega*dt, clamped per frame, preserving speed.
func Deflect(v geom.Vec2, omega, dt float64) geom.Vec2 {
	ang := geom.Clamp(omega*dt, -maxDeflectAngle, maxDeflectAngle)
	if math.Abs(ang) <= 1e-6 {
		return v
	}
	sp := v.Len()
	r := v.Rotate(ang)
	return r.Scale(geom.SafeDiv(sp, r.Len()))
}

// PullSpec selects the void response of one body class.
type PullSpec struct {
	DefaultPull float64
	// Mul picks the node's player or enemy multiplier.
	Mul func(n *Node) float64
	Pow float64
	// Scale and Cap bound the per-frame velocity change.
	Scale float64
	Cap   float64
}

// PlayerPull is the avatar's response to void cores.
var PlayerPull = PullSpec{
	DefaultPull: 2400,
	Mul:         func(n *Node) float64 { return orDefault(n.PlayerMul, 0.30) },
	Pow:         2.15,
	Scale:       0.055,
	Cap:         2.9,
}

// EnemyDrift is the light pull every adversary feels near a void core.
var EnemyDrift = PullSpec{
	DefaultPull: 2000,
	Mul:         func(n *Node) float64 { return orDefault(n.EnemyMul, 0.55) },
	Pow:         2,
	Scale:       0.045,
	Cap:         2.6,
}

// EnemySink is the stronger pull applied to adversaries standing on a void core.
var EnemySink = PullSpec{
	DefaultPull: 2400,
	Mul:         func(n *Node) float64 { return orDefault(n.EnemyMul, 0.46) },
	Pow:         2.05,
	Scale:       0.055,
	Cap:         2.7,
}

// VoidPull returns the velocity change toward void cores at p and the peak proximity in [0, 1].
func (f *Field) VoidPull(p geom.Vec2, spec PullSpec, dt float64) (dv geom.Vec2, peak float64) {
	if f == nil {
		return dv, 0
	}
	for i := range f.Voids {
		n := &f.Voids[i]
		delta := n.Pos.Sub(p)
		d := delta.Len()
		if d == 0 {
			d = 1
		}
		if d > n.R {
			continue
		}
		t := 1 - d/n.R
		peak = math.Max(peak, t)
		pull := orDefault(n.Pull, spec.DefaultPull)
		mag := geom.Clamp(pull*spec.Mul(n)*math.Pow(t, spec.Pow)*dt*spec.Scale, 0, spec.Cap)
		dv = dv.AddScaled(delta, mag/d)
	}
	return dv, geom.Clamp01(peak)
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
