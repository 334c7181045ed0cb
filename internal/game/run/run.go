// Package run owns one arena run: the title/playing/reward/shop/gameover state
// machine, per-room generation and spawning, and the ordered frame step that
// drives every other simulation package.
package run

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/focus"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/hazard"
	"github.com/cory-johannsen/arena/internal/game/physics"
	"github.com/cory-johannsen/arena/internal/game/reward"
)

// State is the run's top-level state.
type State uint8

const (
	Title State = iota
	Playing
	Paused
	Reward
	Shop
	GameOver
)

func (s State) String() string {
	switch s {
	case Title:
		return "title"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Reward:
		return "reward"
	case Shop:
		return "shop"
	case GameOver:
		return "gameover"
	}
	return fmt.Sprintf("run.State(%d)", uint8(s))
}

// Command errors. Callers match them with errors.Is.
var (
	ErrWrongState        = errors.New("run: command not valid in current state")
	ErrIndexOutOfRange   = errors.New("run: index out of range")
	ErrSoldOut           = errors.New("run: offer already sold")
	ErrInsufficientForce = errors.New("run: not enough force")
)

const (
	defaultProjectileCap = 900
	defaultViewportW     = 1280
	defaultViewportH     = 720
	rewardChoices        = 3
)

// Input is one frame's immutable input snapshot. Pointer is in world space.
type Input struct {
	Move        geom.Vec2
	Pointer     geom.Vec2
	FireHeld    bool
	FocusHeld   bool
	DashPressed bool
	NovaPressed bool
}

// FrameResult is what the presentation layer needs back from a step.
type FrameResult struct {
	TimeScale float64
	RoomIntro float64
}

// Sink receives fire-and-forget notifications for audio and particles.
type Sink interface {
	Emit(e event.Event)
	// Advance ticks particle-style effects by world time.
	Advance(dtWorld float64)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Emit(event.Event) {}
func (NopSink) Advance(float64) {}

// MixProvider overrides the built-in adversary-type mix for a room. A nil or
// empty result keeps the built-in mix.
type MixProvider interface {
	SpawnMix(stageID string, room int, postBossT float64) map[entity.AdversaryType]float64
}

// Deps are the collaborators and tuning a run is built from.
type Deps struct {
	Arsenal  *combat.Arsenal
	Brain    *ai.Brain
	Modes    *focus.Catalog
	Upgrades *reward.Catalog
	Shop     *reward.Shop
	Stages   []*hazard.Stage
	Avatar   entity.AvatarTuning

	// Source seeds every roll of the run. nil draws a seed from the crypto source.
	Source dice.Source
	// Mix and Sink are optional.
	Mix    MixProvider
	Sink   Sink
	Logger *zap.Logger

	ProjectileCap        int
	ViewportW, ViewportH float64
}

// Validate reports missing collaborators.
func (d *Deps) Validate() error {
	var missing []string
	if d.Arsenal == nil {
		missing = append(missing, "arsenal")
	}
	if d.Brain == nil {
		missing = append(missing, "brain")
	}
	if d.Modes == nil {
		missing = append(missing, "focus modes")
	}
	if d.Upgrades == nil {
		missing = append(missing, "upgrades")
	}
	if d.Shop == nil {
		missing = append(missing, "shop")
	}
	if len(missing) > 0 {
		return fmt.Errorf("run.Deps: missing %s", strings.Join(missing, "; "))
	}
	return nil
}

// Run is one run's complete mutable state. It is not safe for concurrent use;
// the frame loop and the command methods must be called from one goroutine.
type Run struct {
	deps     Deps
	logger   *zap.Logger
	src      dice.Source
	roller   *dice.Roller
	sink     Sink
	focus    *focus.Controller
	resolver *combat.Resolver
	grid     *physics.SeparationGrid

	id    string
	state State

	room       int
	boss       bool
	kills      int
	target     int
	stage      *hazard.Stage
	title      string
	bounds     geom.Bounds
	field      hazard.Field
	obstacles  []entity.Obstacle
	spawnTimer float64
	roomIntro  float64

	avatar  *entity.Avatar
	advs    []*entity.Adversary
	shots   []*entity.Projectile
	pickups []*entity.Pickup

	camera  Camera
	reduced bool

	choices      []*reward.Upgrade
	offers       []*reward.Offer
	rerolls      int
	lastShopRoom int
}

// New builds a run parked on the title state with room 1 generated.
//
// Precondition: deps passes Validate.
// Postcondition: State() == Title; Room() == 1.
func New(deps Deps) (*Run, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Sink == nil {
		deps.Sink = NopSink{}
	}
	if deps.Source == nil {
		deps.Source = dice.NewXorshift(dice.NewSeed(dice.NewCryptoSource()))
	}
	if deps.ProjectileCap <= 0 {
		deps.ProjectileCap = defaultProjectileCap
	}
	if deps.ViewportW <= 0 || deps.ViewportH <= 0 {
		deps.ViewportW, deps.ViewportH = defaultViewportW, defaultViewportH
	}
	if deps.Avatar == (entity.AvatarTuning{}) {
		deps.Avatar = entity.DefaultAvatarTuning()
	}
	r := &Run{
		deps:   deps,
		logger: deps.Logger,
		src:    deps.Source,
		roller: dice.NewLoggedRoller(deps.Source, deps.Logger),
		sink:   deps.Sink,
		focus:  focus.NewController(deps.Modes.Default()),
		grid:   physics.NewSeparationGrid(0),
	}
	r.resolver = combat.NewResolver(r.focus, r.touchDamage, r.emit)
	r.reset()
	return r, nil
}

// reset discards all per-run state and parks the run on the title screen.
func (r *Run) reset() {
	r.id = uuid.New().String()
	r.avatar = entity.NewAvatar(r.deps.Avatar)
	r.focus.Reset()
	r.room = 1
	r.boss = isBossRoom(r.room)
	r.kills = 0
	r.target = killTarget(r.room)
	r.advs, r.shots, r.pickups = nil, nil, nil
	r.choices, r.offers = nil, nil
	r.rerolls, r.lastShopRoom = 0, 0
	r.stage = nil
	r.genRoom()
	r.spawnTimer = 0.85
	r.state = Title
}

func (r *Run) touchDamage(t entity.AdversaryType) float64 {
	return r.deps.Brain.Profile(t).TouchDamage
}

// emit forwards e to the sink and applies its camera shake.
func (r *Run) emit(e event.Event) {
	r.sink.Emit(e)
	if s := shakeFor(e); s > 0 {
		r.shake(s)
	}
}

func (r *Run) shake(amount float64) {
	if r.reduced {
		return
	}
	r.camera.Shake = max(r.camera.Shake, amount)
}

func (r *Run) ID() string { return r.id }
func (r *Run) State() State { return r.state }
func (r *Run) Room() int { return r.room }
func (r *Run) IsBossRoom() bool { return r.boss }
func (r *Run) Kills() int { return r.kills }
func (r *Run) KillTarget() int { return r.target }
func (r *Run) Stage() *hazard.Stage { return r.stage }
func (r *Run) RoomTitle() string { return r.title }
func (r *Run) Bounds() geom.Bounds { return r.bounds }
func (r *Run) Field() *hazard.Field { return &r.field }
func (r *Run) Obstacles() []entity.Obstacle { return r.obstacles }
func (r *Run) Avatar() *entity.Avatar { return r.avatar }
func (r *Run) Adversaries() []*entity.Adversary { return r.advs }
func (r *Run) Projectiles() []*entity.Projectile { return r.shots }
func (r *Run) Pickups() []*entity.Pickup { return r.pickups }
func (r *Run) Camera() Camera { return r.camera }
func (r *Run) Focus() *focus.Controller { return r.focus }
func (r *Run) Choices() []*reward.Upgrade { return r.choices }
func (r *Run) Offers() []*reward.Offer { return r.offers }
func (r *Run) RoomIntro() float64 { return r.roomIntro }

// RerollCost is the price of the next shop reroll.
func (r *Run) RerollCost() int {
	return r.deps.Shop.RerollCost(r.room, r.rerolls)
}
