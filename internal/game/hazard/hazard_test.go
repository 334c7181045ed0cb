package hazard_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/hazard"
)

const lavaStage = `
stage:
  id: lava_works
  name: LAVA WORKS
  rooms: [Furnace Walk, Crucible]
  boss: boss_lava
  boss_title: LAVA TITAN
  obstacles:
    circle_block_chance: 0.28
    materials: [lavaRock, metal]
  hazard_layouts:
    - - {shape: rect, ux: 0, uy: 0, w_mul: 0.62, h_mul: 0.38, type: lava, dps: 18}
      - {shape: circle, ux: -0.58, uy: -0.52, r_mul: 0.22, type: lava}
`

func testField() *hazard.Field {
	return &hazard.Field{
		Regions: []hazard.Region{
			{Shape: entity.ShapeRect, Pos: geom.V(0, 0), W: 200, H: 100, Effect: hazard.EffectLava, Params: hazard.DefaultParams(hazard.EffectLava)},
			{Shape: entity.ShapeCircle, Pos: geom.V(500, 0), R: 100, Effect: hazard.EffectIce, Params: hazard.DefaultParams(hazard.EffectIce)},
		},
		Voids: []hazard.Node{{Pos: geom.V(-600, 0), R: 200}},
	}
}

func TestEvaluate_RectCenterIsFull(t *testing.T) {
	s := testField().Evaluate(geom.V(0, 0))
	assert.Equal(t, hazard.EffectLava, s.Effect)
	assert.InDelta(t, 1.0, s.Intensity, 1e-12)
	assert.Equal(t, 18.0, s.Params.DPS)
}

func TestEvaluate_FadesToEdge(t *testing.T) {
	s := testField().Evaluate(geom.V(550, 0))
	assert.Equal(t, hazard.EffectIce, s.Effect)
	assert.InDelta(t, 0.5, s.Intensity, 1e-12)
}

func TestEvaluate_OpenFloor(t *testing.T) {
	s := testField().Evaluate(geom.V(2000, 2000))
	assert.Equal(t, hazard.EffectNone, s.Effect)
	assert.Equal(t, 0.0, s.Intensity)
}

func TestEvaluate_VoidNodeWeighted(t *testing.T) {
	s := testField().Evaluate(geom.V(-600, 0))
	assert.Equal(t, hazard.EffectVoid, s.Effect)
	assert.InDelta(t, 0.97, s.Intensity, 1e-12)
	require.NotNil(t, s.Node)
}

func TestEvaluate_FalloffSteepensNodes(t *testing.T) {
	f := testField()
	linear := f.Evaluate(geom.V(-500, 0)).Intensity
	f.Falloff = 2
	steep := f.Evaluate(geom.V(-500, 0)).Intensity
	assert.Less(t, steep, linear)
}

func TestEvaluate_NilField(t *testing.T) {
	var f *hazard.Field
	assert.Equal(t, hazard.EffectNone, f.Evaluate(geom.Vec2{}).Effect)
}

func TestDeflect_PreservesSpeed(t *testing.T) {
	v := hazard.Deflect(geom.V(300, 0), 40, 0.016)
	assert.InDelta(t, 300, v.Len(), 1e-9)
	assert.Greater(t, v.Y, 0.0)
}

func TestDeflect_ClampsAngle(t *testing.T) {
	v := hazard.Deflect(geom.V(1, 0), 1000, 1)
	assert.InDelta(t, 0.75, v.Angle(), 1e-9)
}

func TestMagnetOmega_StrongerNearCore(t *testing.T) {
	f := &hazard.Field{Magnets: []hazard.Node{{Pos: geom.Vec2{}, R: 800}}}
	assert.Greater(t, f.MagnetOmega(geom.V(50, 0)), f.MagnetOmega(geom.V(400, 0)))
	assert.Equal(t, 0.0, f.MagnetOmega(geom.V(900, 0)))
}

func TestVoidPull_PointsAtCore(t *testing.T) {
	f := &hazard.Field{Voids: []hazard.Node{{Pos: geom.Vec2{}, R: 800}}}
	dv, peak := f.VoidPull(geom.V(200, 0), hazard.PlayerPull, 0.016)
	assert.Less(t, dv.X, 0.0)
	assert.InDelta(t, 0.75, peak, 1e-12)
	assert.LessOrEqual(t, dv.Len(), hazard.PlayerPull.Cap)
}

func TestLoadStageFromBytes(t *testing.T) {
	s, err := hazard.LoadStageFromBytes([]byte(lavaStage))
	require.NoError(t, err)
	assert.Equal(t, "lava_works", s.ID)
	assert.Equal(t, entity.BossLava, s.Boss)
	assert.Equal(t, 1.0, s.Weight)
	assert.Equal(t, hazard.DefaultHazardPad, s.HazardPad)
	require.Len(t, s.HazardLayouts, 1)
	assert.Len(t, s.HazardLayouts[0], 2)
}

func TestLoadStageFromBytes_UnknownHazard(t *testing.T) {
	_, err := hazard.LoadStageFromBytes([]byte(`
stage:
  id: bad
  hazard_layouts:
    - - {shape: rect, type: plasma}
`))
	assert.Error(t, err)
}

func TestLoadStagesFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lava.yaml"), []byte(lavaStage), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644))
	stages, err := hazard.LoadStagesFromDir(dir)
	require.NoError(t, err)
	assert.Len(t, stages, 1)

	_, err = hazard.LoadStagesFromDir(t.TempDir())
	assert.Error(t, err)
}

func TestResolve_EmptyStageHasNoHazards(t *testing.T) {
	f := hazard.Resolve(&hazard.Stage{ID: "plain"}, geom.Centered(2000, 2000), 3, dice.NewXorshift(1))
	assert.Empty(t, f.Regions)
	assert.Empty(t, f.Magnets)
	assert.Empty(t, f.Voids)
}

func TestPickStage_RerollKeepsWeights(t *testing.T) {
	stages := []*hazard.Stage{{ID: "a", Weight: 1, Boss: entity.Warden}, {ID: "b", Weight: 1000, Boss: entity.Warden}}
	r := dice.NewLoggedRoller(dice.NewXorshift(3), zap.NewNop())
	hits := 0
	for i := 0; i < 50; i++ {
		if hazard.PickStage(stages, false, "b", r).ID == "b" {
			hits++
		}
	}
	assert.Greater(t, hits, 40)
	assert.Nil(t, hazard.PickStage(nil, false, "", r))
}

func TestPickStage_BossOnlyFilter(t *testing.T) {
	stages := []*hazard.Stage{{ID: "arena", Weight: 1, BossOnly: true}, {ID: "plain", Weight: 1}}
	r := dice.NewLoggedRoller(dice.NewXorshift(8), zap.NewNop())
	for i := 0; i < 20; i++ {
		assert.Equal(t, "plain", hazard.PickStage(stages, false, "", r).ID)
	}
}

func TestPropertyResolvedHazardsInsideRoom(t *testing.T) {
	stage, err := hazard.LoadStageFromBytes([]byte(lavaStage))
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewXorshift(rapid.Uint32().Draw(rt, "seed"))
		w, h := hazard.RoomSize(stage, rapid.Bool().Draw(rt, "boss"), src)
		b := geom.Centered(w, h)
		f := hazard.Resolve(stage, b, rapid.IntRange(1, 40).Draw(rt, "room"), src)
		for _, r := range f.Regions {
			if !b.Contains(r.Pos, 0) {
				rt.Fatalf("region center %v outside room %v", r.Pos, b)
			}
		}
	})
}

func TestPropertyIntensityInUnitRange(t *testing.T) {
	f := testField()
	rapid.Check(t, func(rt *rapid.T) {
		p := geom.V(rapid.Float64Range(-1200, 1200).Draw(rt, "x"), rapid.Float64Range(-1200, 1200).Draw(rt, "y"))
		s := f.Evaluate(p)
		if s.Intensity < 0 || s.Intensity > 1 || math.IsNaN(s.Intensity) {
			rt.Fatalf("intensity %g at %v", s.Intensity, p)
		}
		if (s.Effect == hazard.EffectNone) != (s.Intensity == 0) {
			rt.Fatalf("effect %s with intensity %g", s.Effect, s.Intensity)
		}
	})
}
