package run_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/focus"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/hazard"
	"github.com/cory-johannsen/arena/internal/game/reward"
	"github.com/cory-johannsen/arena/internal/game/run"
)

const contentDir = "../../../content/"

const frame = 1.0 / 60

type recorder struct {
	events   []event.Event
	advanced float64
}

func (r *recorder) Emit(e event.Event) { r.events = append(r.events, e) }
func (r *recorder) Advance(dt float64) { r.advanced += dt }

func (r *recorder) count(k event.Kind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

type fixedMix map[entity.AdversaryType]float64

func (m fixedMix) SpawnMix(string, int, float64) map[entity.AdversaryType]float64 { return m }

type content struct {
	arsenal  *combat.Arsenal
	brain    *ai.Brain
	modes    *focus.Catalog
	upgrades *reward.Catalog
	shop     *reward.Shop
	stages   []*hazard.Stage
}

var loaded *content

func loadContent(t testing.TB) *content {
	t.Helper()
	if loaded != nil {
		return loaded
	}
	arsenal, err := combat.LoadArsenalFromFile(contentDir + "weapons.yaml")
	require.NoError(t, err)
	reg, err := ai.LoadRegistryFromFile(contentDir + "adversaries.yaml")
	require.NoError(t, err)
	modes, err := focus.LoadCatalogFromFile(contentDir + "focus_modes.yaml")
	require.NoError(t, err)
	upgrades, err := reward.LoadCatalogFromFile(contentDir + "upgrades.yaml")
	require.NoError(t, err)
	shop, err := reward.LoadShopFromFile(contentDir+"shop.yaml", arsenal.All())
	require.NoError(t, err)
	stages, err := hazard.LoadStagesFromDir(contentDir + "stages")
	require.NoError(t, err)
	loaded = &content{
		arsenal:  arsenal,
		brain:    ai.NewBrain(reg),
		modes:    modes,
		upgrades: upgrades,
		shop:     shop,
		stages:   stages,
	}
	return loaded
}

func deps(t testing.TB, seed uint32) run.Deps {
	c := loadContent(t)
	return run.Deps{
		Arsenal:  c.arsenal,
		Brain:    c.brain,
		Modes:    c.modes,
		Upgrades: c.upgrades,
		Shop:     c.shop,
		Stages:   c.stages,
		Source:   dice.NewXorshift(seed),
	}
}

func newRun(t testing.TB, seed uint32) *run.Run {
	t.Helper()
	r, err := run.New(deps(t, seed))
	require.NoError(t, err)
	return r
}

func started(t testing.TB, seed uint32) *run.Run {
	t.Helper()
	r := newRun(t, seed)
	require.NoError(t, r.Start("chrono"))
	return r
}

func TestDeps_ValidateListsMissing(t *testing.T) {
	_, err := run.New(run.Deps{})
	require.Error(t, err)
	for _, name := range []string{"arsenal", "brain", "focus modes", "upgrades", "shop"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestNew_ParksOnTitle(t *testing.T) {
	r := newRun(t, 7)
	assert.Equal(t, run.Title, r.State())
	assert.Equal(t, 1, r.Room())
	assert.False(t, r.IsBossRoom())
	assert.Equal(t, 13, r.KillTarget())
	assert.NotEmpty(t, r.ID())
	require.NotNil(t, r.Stage())
	assert.NotEmpty(t, r.RoomTitle())
	assert.True(t, r.Bounds().Contains(r.Avatar().Pos, 0))
	assert.NotEmpty(t, r.Obstacles())
}

func TestStep_FrozenOutsidePlaying(t *testing.T) {
	r := newRun(t, 7)
	before := r.Avatar().Pos
	res := r.Step(frame, run.Input{Move: geom.V(1, 0), FireHeld: true}, false)
	assert.Equal(t, run.FrameResult{TimeScale: 1}, res)
	assert.Equal(t, before, r.Avatar().Pos)
	assert.Empty(t, r.Projectiles())
}

func TestCommands_WrongState(t *testing.T) {
	r := newRun(t, 3)
	assert.ErrorIs(t, r.Pause(), run.ErrWrongState)
	assert.ErrorIs(t, r.Resume(), run.ErrWrongState)
	assert.ErrorIs(t, r.PickReward(0), run.ErrWrongState)
	assert.ErrorIs(t, r.BuyShop(0), run.ErrWrongState)
	assert.ErrorIs(t, r.RerollShop(), run.ErrWrongState)
	assert.ErrorIs(t, r.LeaveShop(), run.ErrWrongState)
	assert.ErrorIs(t, r.ReturnToTitle(), run.ErrWrongState)

	require.NoError(t, r.Start("chrono"))
	assert.ErrorIs(t, r.Start("chrono"), run.ErrWrongState)
}

func TestStart_UnknownModeFallsBack(t *testing.T) {
	r := newRun(t, 3)
	require.NoError(t, r.Start("no-such-mode"))
	assert.Equal(t, run.Playing, r.State())
	assert.NotNil(t, r.Focus().Mode())
}

func TestPauseResume(t *testing.T) {
	r := started(t, 11)
	require.NoError(t, r.Pause())
	assert.Equal(t, run.Paused, r.State())

	pos := r.Avatar().Pos
	r.Step(frame, run.Input{Move: geom.V(1, 0)}, false)
	assert.Equal(t, pos, r.Avatar().Pos)

	require.NoError(t, r.Resume())
	assert.Equal(t, run.Playing, r.State())
	for i := 0; i < 10; i++ {
		r.Step(frame, run.Input{Move: geom.V(1, 0), Pointer: r.Avatar().Pos.Add(geom.V(100, 0))}, false)
	}
	assert.Greater(t, r.Avatar().Pos.X, pos.X)
}

func TestReturnToTitle_FromPausedStartsFreshRun(t *testing.T) {
	r := started(t, 11)
	id := r.ID()
	r.CompleteRoom()
	require.NoError(t, r.PickReward(0))
	require.Equal(t, 2, r.Room())
	require.NoError(t, r.Pause())

	require.NoError(t, r.ReturnToTitle())
	assert.Equal(t, run.Title, r.State())
	assert.Equal(t, 1, r.Room())
	assert.NotEqual(t, id, r.ID())
	assert.Empty(t, r.Avatar().Upgrades)
}

func TestCompleteRoom_DraftsRewards(t *testing.T) {
	d := deps(t, 5)
	rec := &recorder{}
	d.Sink = rec
	r, err := run.New(d)
	require.NoError(t, err)
	require.NoError(t, r.Start("chrono"))

	av := r.Avatar()
	av.HP = 10
	av.Focus = 0
	r.CompleteRoom()

	assert.Equal(t, run.Reward, r.State())
	assert.Equal(t, 28.0, av.HP)
	assert.Equal(t, 40.0, av.Focus)
	assert.Len(t, r.Choices(), 3)
	assert.Empty(t, r.Adversaries())
	assert.Empty(t, r.Projectiles())
	assert.Equal(t, 1, rec.count(event.RoomClear))

	err = r.PickReward(3)
	assert.ErrorIs(t, err, run.ErrIndexOutOfRange)
	assert.ErrorIs(t, r.PickReward(-1), run.ErrIndexOutOfRange)

	picked := r.Choices()[1]
	require.NoError(t, r.PickReward(1))
	assert.Equal(t, 1, av.Stacks(picked.ID))
	assert.Equal(t, 2, r.Room())
	assert.Equal(t, run.Playing, r.State())
	assert.Equal(t, 16, r.KillTarget())
	assert.Equal(t, 2, rec.count(event.RoomStart))
}

// advance clears rooms by picking the first reward and leaving every shop
// until the run reaches room.
func advance(t *testing.T, r *run.Run, room int) {
	t.Helper()
	for r.Room() < room {
		if r.State() == run.Shop {
			require.NoError(t, r.LeaveShop())
		}
		r.CompleteRoom()
		require.NoError(t, r.PickReward(0))
	}
}

func TestRoomFlow_ShopAndBoss(t *testing.T) {
	r := started(t, 21)
	advance(t, r, 3)
	assert.Equal(t, run.Shop, r.State(), "shop opens before room 3")
	assert.NotEmpty(t, r.Offers())
	require.NoError(t, r.LeaveShop())
	assert.Equal(t, run.Playing, r.State())

	advance(t, r, 4)
	assert.Equal(t, run.Playing, r.State(), "no shop before room 4")

	advance(t, r, 5)
	require.Equal(t, run.Shop, r.State(), "shop opens before the boss")
	require.NoError(t, r.LeaveShop())
	assert.True(t, r.IsBossRoom())
	require.Len(t, r.Adversaries(), 1)
	boss := r.Adversaries()[0]
	assert.True(t, boss.Type.IsBoss())
	assert.Equal(t, r.Stage().Boss, boss.Type)
}

func TestShop_BuyAndReroll(t *testing.T) {
	r := started(t, 9)
	advance(t, r, 3)
	require.Equal(t, run.Shop, r.State())
	av := r.Avatar()
	offers := r.Offers()
	require.NotEmpty(t, offers)

	av.Force = 0
	assert.ErrorIs(t, r.BuyShop(0), run.ErrInsufficientForce)
	assert.ErrorIs(t, r.BuyShop(len(offers)), run.ErrIndexOutOfRange)
	assert.ErrorIs(t, r.RerollShop(), run.ErrInsufficientForce)

	av.Force = 10000
	cost := offers[0].Cost
	require.NoError(t, r.BuyShop(0))
	assert.True(t, offers[0].Sold)
	assert.Equal(t, 10000-cost, av.Force)
	assert.Equal(t, cost, av.ForceSpent)
	assert.ErrorIs(t, r.BuyShop(0), run.ErrSoldOut)

	first := r.RerollCost()
	before := av.Force
	require.NoError(t, r.RerollShop())
	assert.Equal(t, before-first, av.Force)
	assert.Greater(t, r.RerollCost(), first)
	for _, o := range r.Offers() {
		assert.False(t, o.Sold)
	}
}

func TestForceGain(t *testing.T) {
	assert.Equal(t, 1, run.ForceGain(0, 1, false, 1))
	assert.Equal(t, 3, run.ForceGain(3, 1, false, 1))
	assert.Equal(t, 4, run.ForceGain(3, 1, true, 1))
	assert.Equal(t, 5, run.ForceGain(3, 100, false, 1), "room bonus caps at +85%")
	assert.Equal(t, 0, run.ForceGain(3, 1, false, 0))
	assert.Equal(t, 6, run.ForceGain(3, 1, false, 2))
}

func TestRoomSchedule(t *testing.T) {
	assert.Equal(t, 13, run.KillTargetFor(1))
	assert.Equal(t, 42, run.KillTargetFor(10))
	assert.Equal(t, 12, run.SpawnCap(1))
	assert.Equal(t, 30, run.SpawnCap(40))
	for _, room := range []int{3, 5, 6, 9, 10} {
		assert.True(t, run.ShopBefore(room), "room %d", room)
	}
	for _, room := range []int{2, 4, 7, 8} {
		assert.False(t, run.ShopBefore(room), "room %d", room)
	}
}

func TestSpawn_UsesMixProvider(t *testing.T) {
	d := deps(t, 17)
	d.Mix = fixedMix{entity.Charger: 1, entity.BossLava: 5}
	r, err := run.New(d)
	require.NoError(t, err)
	require.NoError(t, r.Start("chrono"))

	for i := 0; i < 240 && r.State() == run.Playing; i++ {
		r.Step(frame, run.Input{Pointer: r.Avatar().Pos.Add(geom.V(1, 0))}, true)
	}
	require.NotEmpty(t, r.Adversaries())
	for _, a := range r.Adversaries() {
		assert.Equal(t, entity.Charger, a.Type)
	}
}

func TestStep_FireEmitsShots(t *testing.T) {
	d := deps(t, 4)
	rec := &recorder{}
	d.Sink = rec
	r, err := run.New(d)
	require.NoError(t, err)
	require.NoError(t, r.Start("chrono"))

	in := run.Input{FireHeld: true, Pointer: r.Avatar().Pos.Add(geom.V(200, 0))}
	for i := 0; i < 30; i++ {
		r.Step(frame, in, false)
	}
	assert.Positive(t, rec.count(event.Shot))
	assert.InDelta(t, 30*frame, rec.advanced, 1e-9)
}

func TestStep_DeathEndsRun(t *testing.T) {
	d := deps(t, 8)
	rec := &recorder{}
	d.Sink = rec
	r, err := run.New(d)
	require.NoError(t, err)
	require.NoError(t, r.Start("chrono"))

	r.Avatar().HP = 0
	r.Step(frame, run.Input{}, false)
	assert.Equal(t, run.GameOver, r.State())
	assert.Equal(t, 1, rec.count(event.GameOver))

	require.NoError(t, r.ReturnToTitle())
	assert.Equal(t, run.Title, r.State())
	assert.Equal(t, r.Avatar().HPMax, r.Avatar().HP)
}

func TestStep_DeterministicForSeed(t *testing.T) {
	play := func() (geom.Vec2, float64, int) {
		r := started(t, 99)
		for i := 0; i < 300 && r.State() == run.Playing; i++ {
			in := run.Input{
				Move:     geom.V(1, 0.5),
				FireHeld: true,
				Pointer:  r.Avatar().Pos.Add(geom.V(0, -300)),
			}
			r.Step(frame, in, false)
		}
		return r.Avatar().Pos, r.Avatar().Score, len(r.Adversaries())
	}
	p1, s1, n1 := play()
	p2, s2, n2 := play()
	assert.Equal(t, p1, p2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, n1, n2)
}

func TestStep_InvariantsHold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint32Range(1, 1<<31).Draw(rt, "seed")
		frames := rapid.IntRange(30, 120).Draw(rt, "frames")
		r := started(t, seed)
		for i := 0; i < frames && r.State() == run.Playing; i++ {
			in := run.Input{
				Move: geom.V(
					rapid.Float64Range(-1, 1).Draw(rt, "mx"),
					rapid.Float64Range(-1, 1).Draw(rt, "my"),
				),
				Pointer:     r.Avatar().Pos.Add(geom.V(rapid.Float64Range(-400, 400).Draw(rt, "px"), 150)),
				FireHeld:    rapid.Bool().Draw(rt, "fire"),
				FocusHeld:   rapid.Bool().Draw(rt, "focus"),
				DashPressed: rapid.Bool().Draw(rt, "dash"),
				NovaPressed: rapid.Bool().Draw(rt, "nova"),
			}
			res := r.Step(frame, in, false)
			if res.TimeScale <= 0 || res.TimeScale > 1 {
				rt.Fatalf("time scale %v out of (0, 1]", res.TimeScale)
			}

			av := r.Avatar()
			if !r.Bounds().Contains(av.Pos, 1e-6) {
				rt.Fatalf("avatar %v left room %+v", av.Pos, r.Bounds())
			}
			if av.HP > av.HPMax+1e-9 || av.Focus < 0 || av.Focus > av.FocusMax+1e-9 {
				rt.Fatalf("meters out of range: hp %v/%v focus %v/%v", av.HP, av.HPMax, av.Focus, av.FocusMax)
			}
			if r.Kills() > r.KillTarget() && r.State() == run.Playing && len(r.Adversaries()) == 0 {
				rt.Fatalf("room should have cleared at %d/%d kills", r.Kills(), r.KillTarget())
			}
			for _, a := range r.Adversaries() {
				if a.Dead() {
					rt.Fatalf("dead adversary %s left in play", a.ID)
				}
			}
			for _, p := range r.Projectiles() {
				if p.Removed {
					rt.Fatalf("removed projectile left in play")
				}
			}
		}
	})
}

func TestRun_ErrorsWrapSentinels(t *testing.T) {
	r := newRun(t, 1)
	err := r.Pause()
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrWrongState))
	assert.Contains(t, err.Error(), "title")
}

func recorded(t *testing.T, seed uint32) (*run.Run, *recorder) {
	t.Helper()
	d := deps(t, seed)
	rec := &recorder{}
	d.Sink = rec
	r, err := run.New(d)
	require.NoError(t, err)
	require.NoError(t, r.Start("chrono"))
	return r, rec
}

func dummy(id string, x float64) *entity.Adversary {
	return &entity.Adversary{
		Body: entity.Body{Pos: geom.V(x, 0), R: 14},
		ID:   id, Type: entity.Stalker,
		HP: 500, MaxHP: 500, DamageMul: 1,
	}
}

// wall spans x in [40, 60] across the shot's path.
var wall = entity.Rect(geom.V(50, 0), 20, 200, true, "")

func TestShots_HitTargetInFrontOfWall(t *testing.T) {
	r, rec := recorded(t, 31)
	r.Avatar().Pos = geom.V(0, 300)
	near := dummy("near", 20)
	r.SetArena([]entity.Obstacle{wall}, []*entity.Adversary{near})

	p := entity.NewProjectile(entity.TeamAvatar, geom.V(0, 0), geom.V(1000, 0))
	p.Damage, p.Pierce = 10, 0
	r.AddShot(p)
	r.MoveShots(0.05)

	assert.Equal(t, 490.0, near.HP)
	assert.Empty(t, r.Projectiles())
	assert.Equal(t, 1, rec.count(event.Hit))
	assert.Zero(t, rec.count(event.Blocked))
}

func TestShots_WallShieldsTargetBehindIt(t *testing.T) {
	r, rec := recorded(t, 32)
	r.Avatar().Pos = geom.V(0, 300)
	far := dummy("far", 80)
	r.SetArena([]entity.Obstacle{wall}, []*entity.Adversary{far})

	p := entity.NewProjectile(entity.TeamAvatar, geom.V(0, 0), geom.V(1000, 0))
	p.Damage = 10
	r.AddShot(p)
	r.MoveShots(0.05)

	assert.Equal(t, 500.0, far.HP)
	assert.Empty(t, r.Projectiles())
	assert.Equal(t, 1, rec.count(event.Blocked))
}

func TestShots_HostileHitsAvatarInFrontOfWall(t *testing.T) {
	r, _ := recorded(t, 33)
	av := r.Avatar()
	av.Pos = geom.V(20, 0)
	av.Invuln = 0
	hp := av.HP
	r.SetArena([]entity.Obstacle{wall}, nil)

	r.AddShot(entity.NewProjectile(entity.TeamHostile, geom.V(0, 0), geom.V(1000, 0)))
	r.MoveShots(0.05)

	assert.Less(t, av.HP, hp)
	assert.Empty(t, r.Projectiles())
}

func TestShots_ExpiringShotStillHits(t *testing.T) {
	r, _ := recorded(t, 34)
	r.Avatar().Pos = geom.V(0, 300)
	near := dummy("near", 20)
	r.SetArena(nil, []*entity.Adversary{near})

	p := entity.NewProjectile(entity.TeamAvatar, geom.V(0, 0), geom.V(1000, 0))
	p.Damage, p.Life = 10, 0.05
	r.AddShot(p)
	r.MoveShots(0.05)

	assert.Equal(t, 490.0, near.HP, "the final segment is tested before the shot expires")
	assert.Empty(t, r.Projectiles())
}

func TestStep_KillTargetWaitsForLastAdversary(t *testing.T) {
	r := started(t, 35)
	av := r.Avatar()
	b := r.Bounds()
	corner := geom.V(b.MinX+80, b.MinY+80)
	if av.Pos.X < 0 {
		corner.X = b.MaxX - 80
	}
	if av.Pos.Y < 0 {
		corner.Y = b.MaxY - 80
	}
	last := loadContent(t).brain.Spawn(entity.Stalker, corner, false, dice.NewXorshift(1))
	last.HP, last.MaxHP = 1e6, 1e6
	r.SetArena(r.Obstacles(), []*entity.Adversary{last})
	r.SetKills(r.KillTarget())

	r.Step(frame, run.Input{Pointer: av.Pos.Add(geom.V(1, 0))}, true)
	assert.Equal(t, run.Playing, r.State())
	require.Len(t, r.Adversaries(), 1)
}

func TestStep_KillTargetWithEmptyRoomClears(t *testing.T) {
	r, rec := recorded(t, 36)
	r.SetArena(r.Obstacles(), nil)
	r.SetKills(r.KillTarget())

	r.Step(frame, run.Input{Pointer: r.Avatar().Pos.Add(geom.V(1, 0))}, true)
	assert.Equal(t, run.Reward, r.State())
	assert.Equal(t, 1, rec.count(event.RoomClear))
}

func TestStep_BossRoomClearsOnBossDeath(t *testing.T) {
	r := started(t, 21)
	advance(t, r, 5)
	require.NoError(t, r.LeaveShop())
	require.True(t, r.IsBossRoom())
	require.Len(t, r.Adversaries(), 1)
	boss := r.Adversaries()[0]
	in := run.Input{Pointer: r.Avatar().Pos.Add(geom.V(1, 0))}

	r.SetKills(r.KillTarget())
	r.Step(frame, in, true)
	assert.Equal(t, run.Playing, r.State(), "the kill target alone does not clear a boss room")

	r.SetKills(0)
	boss.HP = 0
	r.Step(frame, in, true)
	assert.Equal(t, run.Reward, r.State())
	assert.Zero(t, r.Kills(), "bosses do not count toward kills")
}
