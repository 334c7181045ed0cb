package focus

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

// State is the controller's gate state.
type State uint8

const (
	Idle State = iota
	Active
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("focus.State(%d)", uint8(s))
}

const (
	snapBackEase = 22.0
	budgetWindow = 1.0
)

// Frame is the outcome of one controller update.
type Frame struct {
	// DtWorld advances adversaries, projectiles, hazards and particles.
	DtWorld float64
	// DtPlayer advances the avatar; it tracks world time only partially.
	DtPlayer  float64
	TimeScale float64
	Active    bool
	Activated bool
	// Pulses is the number of paid pulses fired this frame.
	Pulses int
}

// Controller gates one mode behind the idle/active/exhausted state machine.
// It is not safe for concurrent use.
type Controller struct {
	mode  *Mode
	state State
	scale float64

	pulseT float64
	tapCd  float64

	budgetT     float64
	focusGained float64
	hpGained    float64

	barrierT   float64
	barrierR   float64
	barrierStr float64
}

// NewController returns an idle controller for m.
//
// Precondition: m must have passed Validate.
func NewController(m *Mode) *Controller {
	c := &Controller{mode: m}
	c.Reset()
	return c
}

// Reset returns the controller to idle at full time scale.
func (c *Controller) Reset() {
	*c = Controller{mode: c.mode, scale: 1, budgetT: budgetWindow}
}

// SetMode switches modes and resets all state.
func (c *Controller) SetMode(m *Mode) {
	c.mode = m
	c.Reset()
}

func (c *Controller) Mode() *Mode { return c.mode }
func (c *Controller) State() State { return c.state }
func (c *Controller) TimeScale() float64 { return c.scale }
func (c *Controller) IsActive() bool { return c.state == Active }
func (c *Controller) IsExhausted() bool { return c.state == Exhausted }

// exhaust forces the lockout and zeroes the meter.
func (c *Controller) exhaust(av *entity.Avatar) {
	av.Focus = 0
	c.state = Exhausted
}

// Update advances the gate by real dt with the focus input held or released.
// It drains or regenerates av.Focus, eases the time scale, fires pulses, and
// writes the active multipliers to av.FocusFx.
//
// Postcondition: 0 <= av.Focus <= av.FocusMax. When the meter falls below the
// sustain floor while active, the state is Exhausted and av.Focus is 0.
func (c *Controller) Update(held bool, av *entity.Avatar, dt float64) Frame {
	m := c.mode
	wasActive := c.state == Active
	wasExhausted := c.state == Exhausted

	if c.state == Exhausted && !held && av.Focus >= m.Recover {
		c.state = Idle
	}

	active := false
	if held && c.state != Exhausted {
		if wasActive {
			active = av.Focus >= m.MinSustain
			if !active {
				c.exhaust(av)
			}
		} else {
			active = av.Focus >= m.MinActivate
		}
	}

	activated := active && !wasActive
	if activated {
		if m.StartCost > 0 {
			av.Focus = math.Max(0, av.Focus-m.StartCost)
		}
		if av.Focus < m.MinSustain {
			c.exhaust(av)
			active, activated = false, false
		}
	}
	switch {
	case c.state == Exhausted:
	case active:
		c.state = Active
	default:
		c.state = Idle
	}

	target := 1.0
	if active {
		target = m.TimeScale
	}
	c.scale = geom.Lerp(c.scale, target, 1-math.Exp(-m.Ease*dt))
	dtWorld := dt * c.scale
	dtPlayer := dt * (playerDtBase + playerDtFollow*c.scale)

	if active {
		costMul := math.Max(costMulFloor, av.Mods.FocusCostMul)
		cost := m.CostPerSec * costMul * av.Env.FocusCost
		av.Focus = math.Max(0, av.Focus-cost*dt)
		if av.Focus < m.MinSustain {
			c.exhaust(av)
			active = false
			c.scale = geom.Lerp(c.scale, 1, 1-math.Exp(-snapBackEase*dt))
		}
	} else if wasExhausted || c.state != Exhausted {
		// No regen on the frame the meter burns out.
		regenMul := math.Min(regenMulCap, av.Mods.FocusRegenMul)
		regen := (baseRegen*regenMul + av.Mods.FocusRegenAdd) * av.Env.FocusRegen
		av.AddFocus(regen * dt)
	}

	c.budgetT -= dt
	if c.budgetT <= 0 {
		c.budgetT = budgetWindow
		c.focusGained, c.hpGained = 0, 0
	}

	pulses := 0
	c.tapCd = math.Max(0, c.tapCd-dt)
	if p := m.Pulse; active && p != nil {
		if activated && p.FiresOnActivate() {
			if c.tapCd <= 0 {
				if c.FirePulse(av) {
					pulses++
				}
				c.tapCd = p.TapCooldown
			}
			c.pulseT = 0
		}
		c.pulseT += dtWorld
		for c.state == Active && c.pulseT >= p.Period {
			c.pulseT -= p.Period
			if c.FirePulse(av) {
				pulses++
			}
		}
		if c.state == Exhausted {
			active = false
		}
	} else {
		c.pulseT = 0
	}

	c.barrierT = math.Max(0, c.barrierT-dt)
	if c.barrierT == 0 {
		c.barrierR, c.barrierStr = 0, 0
	}

	av.ClampMeters()
	av.FocusFx = c.multipliers(active)
	return Frame{
		DtWorld:   dtWorld,
		DtPlayer:  dtPlayer,
		TimeScale: c.scale,
		Active:    active,
		Activated: activated,
		Pulses:    pulses,
	}
}

// FirePulse charges the pulse cost and arms its side effects on av.
//
// Postcondition: returns false without effect when the mode has no pulse, or
// when the meter cannot cover the cost, in which case the controller is
// Exhausted and av.Focus is 0.
func (c *Controller) FirePulse(av *entity.Avatar) bool {
	p := c.mode.Pulse
	if p == nil {
		return false
	}
	if p.Cost > 0 {
		if av.Focus <= p.Cost {
			c.exhaust(av)
			return false
		}
		av.Focus = math.Max(0, av.Focus-p.Cost)
	}
	if p.IFrames > 0 {
		av.Invuln = math.Max(av.Invuln, p.IFrames)
	}
	if b := p.Barrier; b != nil {
		c.barrierT = math.Max(c.barrierT, b.Duration)
		c.barrierR = math.Max(c.barrierR, b.Radius)
		c.barrierStr = b.Strength
	}
	return true
}

// GrantOnHit applies the mode's on-hit gains to av, bounded by the remaining
// budget of the current one-second window. It returns the amounts granted.
func (c *Controller) GrantOnHit(av *entity.Avatar) (focus, hp float64) {
	oh := c.mode.OnHit
	if c.state != Active || oh == nil {
		return 0, 0
	}
	focus, hp = oh.Focus, oh.HP
	if cp := c.mode.OnHitCap; cp != nil {
		if cp.FocusPerSec > 0 {
			focus = math.Min(focus, math.Max(0, cp.FocusPerSec-c.focusGained))
		}
		if cp.HPPerSec > 0 {
			hp = math.Min(hp, math.Max(0, cp.HPPerSec-c.hpGained))
		}
	}
	if focus > 0 {
		av.AddFocus(focus)
		c.focusGained += focus
	}
	if hp > 0 {
		av.Heal(hp)
		c.hpGained += hp
	}
	return focus, hp
}

// PierceDamageMul is the damage decay applied per pierce hit.
func (c *Controller) PierceDamageMul() float64 {
	if c.state == Active {
		return c.mode.PierceDamageMul
	}
	return pierceDecay
}

// Multipliers returns the stat multipliers of the current state.
func (c *Controller) Multipliers() entity.FocusFx {
	return c.multipliers(c.state == Active)
}

func (c *Controller) multipliers(active bool) entity.FocusFx {
	if !active {
		return entity.NeutralFocusFx()
	}
	m := c.mode
	return entity.FocusFx{
		Active:          true,
		Move:            m.MoveMul,
		Fire:            m.FireMul,
		BulletSpeed:     m.BulletSpeedMul,
		BulletLife:      m.BulletLifeMul,
		Damage:          m.DmgMul,
		DamageTaken:     m.DmgTakenMul,
		Spread:          m.SpreadMul,
		CritAdd:         m.CritAdd,
		PierceAdd:       m.PierceAdd,
		PierceDamageMul: m.PierceDamageMul,
	}
}
