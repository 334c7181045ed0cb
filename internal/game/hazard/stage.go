package hazard

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

const (
	// DefaultHazardPad and DefaultJitterMul apply when a stage file omits them.
	DefaultHazardPad = 260.0
	DefaultJitterMul = 0.06

	fieldPad     = 240.0
	layoutSpread = 0.78
)

// RegionTemplate is a hazard region in normalized room coordinates.
// UX and UY lie in [-1, 1]; sizes scale with the room's smaller half-extent.
type RegionTemplate struct {
	Shape  entity.Shape
	UX, UY float64
	WMul   float64
	HMul   float64
	RMul   float64
	Effect Effect
	Params Params
}

// NodeTemplate is a magnet or void core in normalized room coordinates.
type NodeTemplate struct {
	UX, UY float64
	RMul   float64
	Node   Node
}

// ObstacleStyle controls room obstacle generation for a stage.
type ObstacleStyle struct {
	CircleBlockChance float64
	Materials         []string
}

// Stage is a room theme: its hazard layouts, field layouts, and obstacle style.
type Stage struct {
	ID        string
	Name      string
	Gimmick   string
	Rooms     []string
	Weight    float64
	NoBoss    bool
	BossOnly  bool
	Boss      entity.AdversaryType
	BossTitle string

	// FixedW and FixedH force the room size when both are positive.
	FixedW, FixedH float64
	// HazardPad keeps regions away from the walls; JitterMul scales random
	// placement offsets by the room's smaller half-extent.
	HazardPad float64
	JitterMul float64

	HazardLayouts [][]RegionTemplate
	MagnetLayouts [][]NodeTemplate
	VoidLayouts   [][]NodeTemplate
	Obstacles     ObstacleStyle
}

// Validate checks the stage's invariants.
//
// Postcondition: Returns nil if valid, or an error listing every violation.
func (s *Stage) Validate() error {
	var errs []string
	if s.ID == "" {
		errs = append(errs, "stage id must not be empty")
	}
	if s.Weight < 0 {
		errs = append(errs, fmt.Sprintf("stage %q weight must be >= 0", s.ID))
	}
	if s.NoBoss && s.BossOnly {
		errs = append(errs, fmt.Sprintf("stage %q cannot be both no_boss and boss_only", s.ID))
	}
	if !s.Boss.IsBoss() {
		errs = append(errs, fmt.Sprintf("stage %q boss %s is not a boss type", s.ID, s.Boss))
	}
	if s.Obstacles.CircleBlockChance < 0 || s.Obstacles.CircleBlockChance > 1 {
		errs = append(errs, fmt.Sprintf("stage %q circle_block_chance must be in [0,1]", s.ID))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// PickStage selects a stage by weight for a room, honoring boss filters and
// re-rolling once when the pick repeats the previous stage.
//
// Postcondition: Returns nil only when stages is empty.
func PickStage(stages []*Stage, boss bool, previousID string, roller *dice.Roller) *Stage {
	if len(stages) == 0 {
		return nil
	}
	var pool []*Stage
	for _, s := range stages {
		if (boss && s.NoBoss) || (!boss && s.BossOnly) {
			continue
		}
		pool = append(pool, s)
	}
	if len(pool) == 0 {
		pool = stages
	}
	weights := make([]float64, len(pool))
	for i, s := range pool {
		weights[i] = s.Weight
	}
	pick := pool[roller.Pick("stage", weights)]
	if pick.ID == previousID && len(pool) > 1 {
		pick = pool[roller.Pick("stage_reroll", weights)]
	}
	return pick
}

// RoomSize returns the room dimensions for a stage.
func RoomSize(s *Stage, boss bool, src dice.Source) (w, h float64) {
	if s != nil && s.FixedW > 0 && s.FixedH > 0 {
		return s.FixedW, s.FixedH
	}
	if boss {
		return dice.Range(src, 2200, 2600), dice.Range(src, 2000, 2400)
	}
	return dice.Range(src, 1700, 2400), dice.Range(src, 1600, 2300)
}

// RoomTitle returns the banner title for a room.
func RoomTitle(s *Stage, boss bool, src dice.Source) string {
	if s == nil {
		return "ROOM"
	}
	if boss {
		if s.BossTitle != "" {
			return s.BossTitle
		}
		return strings.ToUpper(strings.ReplaceAll(s.Boss.String(), "_", " "))
	}
	if len(s.Rooms) == 0 {
		return "ROOM"
	}
	return s.Rooms[src.Intn(len(s.Rooms))]
}

// Resolve places one of the stage's hazard layouts and field layouts into bounds.
// Empty or missing layouts resolve to no hazards.
//
// Postcondition: Every returned rect region lies inside bounds shrunk by the
// stage's hazard pad where the room is large enough.
func Resolve(s *Stage, bounds geom.Bounds, room int, src dice.Source) Field {
	var f Field
	if s == nil {
		return f
	}
	hx := math.Max(1, bounds.Width()/2)
	hy := math.Max(1, bounds.Height()/2)
	hmin := math.Min(hx, hy)

	jitter := s.JitterMul * hmin
	pad := s.HazardPad
	scatter := func(u, h float64) float64 {
		return u*h*layoutSpread + (src.Float64()*2-1)*jitter
	}

	if layout := pickLayout(len(s.HazardLayouts), room*197, src); layout >= 0 {
		for _, t := range s.HazardLayouts[layout] {
			switch t.Shape {
			case entity.ShapeRect:
				w := clampLoose(orDefault(t.WMul, 0.5)*hmin, 180, bounds.Width()-pad*2)
				h := clampLoose(orDefault(t.HMul, 0.35)*hmin, 160, bounds.Height()-pad*2)
				pos := geom.V(
					clampLoose(scatter(t.UX, hx), bounds.MinX+pad+w/2, bounds.MaxX-pad-w/2),
					clampLoose(scatter(t.UY, hy), bounds.MinY+pad+h/2, bounds.MaxY-pad-h/2),
				)
				f.Regions = append(f.Regions, Region{Shape: entity.ShapeRect, Pos: pos, W: w, H: h, Effect: t.Effect, Params: t.Params.WithDefaults(t.Effect)})
			case entity.ShapeCircle:
				r := clampLoose(orDefault(t.RMul, 0.25)*hmin, 120, hmin*0.98)
				pos := geom.V(
					clampLoose(scatter(t.UX, hx), bounds.MinX+pad+r, bounds.MaxX-pad-r),
					clampLoose(scatter(t.UY, hy), bounds.MinY+pad+r, bounds.MaxY-pad-r),
				)
				f.Regions = append(f.Regions, Region{Shape: entity.ShapeCircle, Pos: pos, R: r, Effect: t.Effect, Params: t.Params.WithDefaults(t.Effect)})
			}
		}
	}

	resolveNodes := func(ts []NodeTemplate) []Node {
		out := make([]Node, 0, len(ts))
		for _, t := range ts {
			n := t.Node
			n.Pos = geom.V(
				clampLoose(scatter(t.UX, hx), bounds.MinX+fieldPad, bounds.MaxX-fieldPad),
				clampLoose(scatter(t.UY, hy), bounds.MinY+fieldPad, bounds.MaxY-fieldPad),
			)
			n.R = geom.Clamp(orDefault(t.RMul, 0.8)*hmin*1.05, 520, 1700)
			out = append(out, n)
		}
		return out
	}
	if layout := pickLayout(len(s.MagnetLayouts), room*131, src); layout >= 0 {
		f.Magnets = resolveNodes(s.MagnetLayouts[layout])
	}
	if layout := pickLayout(len(s.VoidLayouts), room*131, src); layout >= 0 {
		f.Voids = resolveNodes(s.VoidLayouts[layout])
	}
	return f
}

// pickLayout biases the layout index by room so consecutive rooms differ even with similar RNG state.
func pickLayout(n, bias int, src dice.Source) int {
	if n == 0 {
		return -1
	}
	k := (bias + src.Intn(9999)) % n
	if k < 0 {
		k += n
	}
	return k
}

// clampLoose clamps v to [lo, hi], preferring lo when the range is inverted.
func clampLoose(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
