package physics

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

const (
	// SeparationCell is the grid cell edge, on the order of an adversary diameter.
	SeparationCell  = 96.0
	separationGap   = 2.0
	separationShare = 0.52
	closingImpulse  = 0.35
)

type cellKey struct{ x, y int }

// SeparationGrid is a uniform spatial hash reused across frames.
type SeparationGrid struct {
	cell    float64
	buckets map[cellKey][]int
	keys    []cellKey
}

// NewSeparationGrid returns a grid with the given cell edge. A non-positive edge uses SeparationCell.
func NewSeparationGrid(cell float64) *SeparationGrid {
	if cell <= 0 {
		cell = SeparationCell
	}
	return &SeparationGrid{cell: cell, buckets: make(map[cellKey][]int)}
}

func (g *SeparationGrid) key(p geom.Vec2, bounds geom.Bounds) cellKey {
	return cellKey{
		x: int(math.Floor((p.X - bounds.MinX) / g.cell)),
		y: int(math.Floor((p.Y - bounds.MinY) / g.cell)),
	}
}

// Separate pushes overlapping bodies apart and cancels their closing velocity.
//
// Each pair sharing or neighboring a cell is visited once. Cells are assigned
// before any push, so a body moved across a cell edge mid-pass still meets
// every neighbor of its starting cell. Bodies are clamped to bounds after
// every push.
func (g *SeparationGrid) Separate(bodies []*entity.Body, bounds geom.Bounds) {
	clear(g.buckets)
	g.keys = g.keys[:0]
	for i, b := range bodies {
		k := g.key(b.Pos, bounds)
		g.keys = append(g.keys, k)
		g.buckets[k] = append(g.buckets[k], i)
	}

	for i, a := range bodies {
		k := g.keys[i]
		for ox := -1; ox <= 1; ox++ {
			for oy := -1; oy <= 1; oy++ {
				for _, j := range g.buckets[cellKey{k.x + ox, k.y + oy}] {
					if j <= i {
						continue
					}
					separatePair(a, bodies[j], bounds)
				}
			}
		}
	}
}

func separatePair(a, b *entity.Body, bounds geom.Bounds) {
	delta := b.Pos.Sub(a.Pos)
	d := delta.Len()
	minD := a.R + b.R + separationGap
	if d >= minD {
		return
	}
	n := geom.V(1, 0)
	if d > 0 {
		n = delta.Scale(1 / d)
	}
	push := (minD - d) * separationShare
	a.Pos = a.Pos.AddScaled(n, -push)
	b.Pos = b.Pos.AddScaled(n, push)

	if vn := b.Vel.Sub(a.Vel).Dot(n); vn < 0 {
		imp := -vn * closingImpulse
		a.Vel = a.Vel.AddScaled(n, -imp)
		b.Vel = b.Vel.AddScaled(n, imp)
	}
	ClampToBounds(a, bounds, 0)
	ClampToBounds(b, bounds, 0)
}
