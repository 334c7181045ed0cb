package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

func TestBossTuning_ContentLoads(t *testing.T) {
	reg := loadRegistry(t)

	w := reg.ProfileFor(entity.Warden).Boss
	require.NotNil(t, w)
	assert.Equal(t, ai.Phased{0, 1}, w.Mimic(entity.Rail).Pierce)
	assert.Equal(t, 9, w.Mimic(entity.Scatter).Count.N(2))
	assert.Equal(t, 0.55, w.RageAt)
	require.NotNil(t, w.RageMotion)
	assert.Equal(t, 260.0, w.RageMotion.MaxSpeed)

	assert.Equal(t, 880.0, reg.ProfileFor(entity.BossVoid).Boss.Pulse.Reach)
	assert.Equal(t, 155.0, reg.ProfileFor(entity.BossLava).Boss.Primary.ExplodeR.At(1))
	assert.Equal(t, 0.45, reg.ProfileFor(entity.BossIce).Boss.Enrage, "enrage defaults when omitted")
}

func TestPhased_ScalarOrPair(t *testing.T) {
	reg, err := ai.LoadRegistryFromBytes([]byte(`
adversaries:
  - type: boss_ice
    radius: 44
    hp: 640
    boss:
      motion: {want: 500, accel: 700, max_speed: 240, friction: 8}
      primary: {pattern: aimed, cooldown: [0.7, 0.5], speed: 1600, damage: [9, 11]}
`))
	require.NoError(t, err)
	v := reg.ProfileFor(entity.BossIce).Boss.Primary
	assert.Equal(t, ai.Phased{1600, 1600}, v.Speed)
	assert.Equal(t, 9.0, v.Damage.At(1))
	assert.Equal(t, 11.0, v.Damage.At(2))
}

func TestPhased_WrongLength(t *testing.T) {
	_, err := ai.LoadRegistryFromBytes([]byte(`
adversaries:
  - type: boss_ice
    radius: 44
    hp: 640
    boss:
      motion: {accel: 700, max_speed: 240}
      primary: {pattern: aimed, cooldown: 1, speed: [1, 2, 3]}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 entries")
}

func TestBossTuning_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "non-boss type",
			yaml: `
adversaries:
  - type: stalker
    radius: 15
    hp: 38
    boss:
      motion: {accel: 700, max_speed: 240}
`,
			want: "only valid on boss types",
		},
		{
			name: "unknown arsenal weapon",
			yaml: `
adversaries:
  - type: warden
    radius: 46
    hp: 520
    boss:
      motion: {accel: 700, max_speed: 240}
      arsenal:
        flamer: {pattern: fan, cooldown: 1, speed: 500}
`,
			want: "flamer",
		},
		{
			name: "bad volley pattern",
			yaml: `
adversaries:
  - type: boss_lava
    radius: 48
    hp: 680
    boss:
      motion: {accel: 700, max_speed: 240}
      secondary: {pattern: spiral, cooldown: 1, speed: 500}
`,
			want: "spiral",
		},
		{
			name: "missing motion",
			yaml: `
adversaries:
  - type: boss_void
    radius: 50
    hp: 700
    boss:
      primary: {pattern: fan, cooldown: 1, speed: 500}
`,
			want: "accel and max_speed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ai.LoadRegistryFromBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBossTuning_MissingUsesBaseline(t *testing.T) {
	reg, err := ai.LoadRegistryFromBytes([]byte(`
adversaries:
  - type: boss_lava
    radius: 48
    hp: 680
`))
	require.NoError(t, err)
	bt := reg.ProfileFor(entity.BossLava).Boss
	require.NotNil(t, bt)
	assert.NotNil(t, bt.Primary)
	assert.NotNil(t, bt.Secondary)

	assert.NotNil(t, ai.Baseline(entity.BossMagnet).Boss)
	assert.Nil(t, ai.Baseline(entity.Stalker).Boss)
}

// holdTimers parks every boss timer so only the ones a test clears can fire.
func holdTimers(a *entity.Adversary) {
	bs := &a.Boss
	bs.RingCd, bs.BurstCd, bs.StepCd, bs.FireCd, bs.SwapCd, bs.PulseCd = 10, 10, 10, 10, 10, 10
}

func TestWarden_FiresMimickedWeapon(t *testing.T) {
	b := ai.NewBrain(loadRegistry(t))
	src := dice.NewXorshift(5)
	rec := &recorder{}
	a := b.Spawn(entity.Warden, geom.V(0, 0), false, src)
	holdTimers(a)
	a.Boss.Weapon = entity.Scatter
	a.Boss.FireCd = 0

	b.Update(a, rec.ctx(geom.V(600, 0), 0, src))
	require.Len(t, rec.shots, 7)
	for _, p := range rec.shots {
		assert.InDelta(t, 780, p.Vel.Len(), 1e-6)
		assert.Equal(t, 6.0, p.Damage)
	}
	assert.InDelta(t, 1.08, a.Boss.FireCd, 1e-9)
}

func TestCryoEmpress_RailPierces(t *testing.T) {
	b := ai.NewBrain(loadRegistry(t))
	src := dice.NewXorshift(6)
	rec := &recorder{}
	a := b.Spawn(entity.BossIce, geom.V(0, 0), false, src)
	holdTimers(a)
	a.Boss.BurstCd = 0

	b.Update(a, rec.ctx(geom.V(600, 0), 0, src))
	require.Len(t, rec.shots, 2)
	for _, p := range rec.shots {
		assert.Equal(t, 1, p.Pierce)
		assert.InDelta(t, 1600, p.Vel.Len(), 1e-6)
	}
}

func TestBossVolley_HoldsFireOutOfRange(t *testing.T) {
	b := ai.NewBrain(loadRegistry(t))
	src := dice.NewXorshift(7)
	rec := &recorder{}
	a := b.Spawn(entity.BossLava, geom.V(0, 0), false, src)
	holdTimers(a)
	a.Boss.FireCd = 0

	b.Update(a, rec.ctx(geom.V(1200, 0), 0, src))
	assert.Empty(t, rec.shots)
	assert.Zero(t, a.Boss.FireCd, "the timer stays spent until the avatar is in range")

	b.Update(a, rec.ctx(geom.V(600, 0), 0, src))
	require.Len(t, rec.shots, 1)
	assert.Equal(t, 155.0, rec.shots[0].ExplodeR)
}
