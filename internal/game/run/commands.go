package run

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/reward"
)

const (
	clearHeal   = 18.0
	clearFocus  = 40.0
	nextSpawnIn = 0.75
)

// Start begins play from the title screen with the focus mode modeID. An
// unknown mode falls back to the catalog's closest match.
//
// Postcondition: State() == Playing; a boss room has its boss spawned.
func (r *Run) Start(modeID string) error {
	if r.state != Title {
		return fmt.Errorf("Start from %s: %w", r.state, ErrWrongState)
	}
	r.focus.SetMode(r.deps.Modes.Lookup(modeID))
	r.logger.Info("run started",
		zap.String("run", r.id),
		zap.String("focus_mode", r.focus.Mode().ID),
	)
	r.startCombat()
	return nil
}

// Pause halts the frame step.
func (r *Run) Pause() error {
	if r.state != Playing {
		return fmt.Errorf("Pause from %s: %w", r.state, ErrWrongState)
	}
	r.state = Paused
	return nil
}

// Resume continues a paused run.
func (r *Run) Resume() error {
	if r.state != Paused {
		return fmt.Errorf("Resume from %s: %w", r.state, ErrWrongState)
	}
	r.state = Playing
	return nil
}

// ReturnToTitle discards the run and starts a fresh one on the title screen.
func (r *Run) ReturnToTitle() error {
	if r.state != GameOver && r.state != Paused {
		return fmt.Errorf("ReturnToTitle from %s: %w", r.state, ErrWrongState)
	}
	r.reset()
	return nil
}

// PickReward takes reward choice i and moves on to the next room, through the
// shop when one is due. With no choices on offer any index skips the reward.
func (r *Run) PickReward(i int) error {
	if r.state != Reward {
		return fmt.Errorf("PickReward from %s: %w", r.state, ErrWrongState)
	}
	if len(r.choices) > 0 {
		if i < 0 || i >= len(r.choices) {
			return fmt.Errorf("PickReward(%d) of %d: %w", i, len(r.choices), ErrIndexOutOfRange)
		}
		u := r.choices[i]
		reward.Take(r.avatar, u)
		r.logger.Info("reward picked",
			zap.String("run", r.id),
			zap.Int("room", r.room),
			zap.String("upgrade", u.ID),
			zap.Int("stacks", r.avatar.Stacks(u.ID)),
		)
	}
	r.choices = nil
	r.nextRoom()
	if shopBefore(r.room) && r.lastShopRoom != r.room {
		r.enterShop()
		return nil
	}
	r.startCombat()
	return nil
}

// BuyShop buys offer i.
//
// Postcondition: on success the offer is sold, its effects are applied and
// its cost moved from Force to ForceSpent.
func (r *Run) BuyShop(i int) error {
	if r.state != Shop {
		return fmt.Errorf("BuyShop from %s: %w", r.state, ErrWrongState)
	}
	if i < 0 || i >= len(r.offers) {
		return fmt.Errorf("BuyShop(%d) of %d: %w", i, len(r.offers), ErrIndexOutOfRange)
	}
	o := r.offers[i]
	if o.Sold {
		return fmt.Errorf("BuyShop %s: %w", o.ID, ErrSoldOut)
	}
	av := r.avatar
	if av.Force < o.Cost {
		return fmt.Errorf("BuyShop %s costs %d, have %d: %w", o.ID, o.Cost, av.Force, ErrInsufficientForce)
	}
	av.Force -= o.Cost
	av.ForceSpent += o.Cost
	o.Sold = true
	reward.Apply(av, o.Effects)
	r.logger.Info("shop purchase",
		zap.String("run", r.id),
		zap.Int("room", r.room),
		zap.String("item", o.ID),
		zap.Int("cost", o.Cost),
		zap.Int("force", av.Force),
	)
	return nil
}

// RerollShop pays for a fresh stock. Each reroll in the same visit costs more.
func (r *Run) RerollShop() error {
	if r.state != Shop {
		return fmt.Errorf("RerollShop from %s: %w", r.state, ErrWrongState)
	}
	av := r.avatar
	cost := r.RerollCost()
	if av.Force < cost {
		return fmt.Errorf("RerollShop costs %d, have %d: %w", cost, av.Force, ErrInsufficientForce)
	}
	av.Force -= cost
	av.ForceSpent += cost
	r.rerolls++
	r.offers = r.deps.Shop.RollStock(r.room, av.Weapon, r.roller)
	r.logger.Info("shop rerolled",
		zap.String("run", r.id),
		zap.Int("room", r.room),
		zap.Int("rerolls", r.rerolls),
		zap.Int("cost", cost),
	)
	return nil
}

// LeaveShop closes the shop and starts the room.
func (r *Run) LeaveShop() error {
	if r.state != Shop {
		return fmt.Errorf("LeaveShop from %s: %w", r.state, ErrWrongState)
	}
	r.offers = nil
	r.startCombat()
	return nil
}

func (r *Run) startCombat() {
	r.state = Playing
	if r.boss && len(r.advs) == 0 {
		r.spawnBoss()
	}
}

// completeRoom freezes the room, tops the avatar up and drafts the reward.
func (r *Run) completeRoom() {
	av := r.avatar
	r.state = Reward
	r.advs, r.shots = nil, nil
	av.Heal(clearHeal)
	av.AddFocus(clearFocus)
	r.choices = r.deps.Upgrades.RollChoices(av, r.room, r.boss, rewardChoices, r.roller)
	r.emit(event.Event{Kind: event.RoomClear, Pos: av.Pos, Boss: r.boss})
	r.logger.Info("room cleared",
		zap.String("run", r.id),
		zap.Int("room", r.room),
		zap.Bool("boss", r.boss),
		zap.Int("kills", r.kills),
		zap.Float64("score", av.Score),
		zap.Int("force", av.Force),
	)
}

func (r *Run) nextRoom() {
	r.room++
	r.kills = 0
	r.target = killTarget(r.room)
	r.boss = isBossRoom(r.room)
	r.advs, r.shots, r.pickups = nil, nil, nil
	r.spawnTimer = nextSpawnIn
	r.genRoom()
}

func (r *Run) enterShop() {
	r.state = Shop
	r.lastShopRoom = r.room
	r.advs, r.shots, r.pickups = nil, nil, nil
	r.rerolls = 0
	r.offers = r.deps.Shop.RollStock(r.room, r.avatar.Weapon, r.roller)
	r.logger.Info("shop opened",
		zap.String("run", r.id),
		zap.Int("room", r.room),
		zap.Int("offers", len(r.offers)),
		zap.Int("force", r.avatar.Force),
	)
}

func (r *Run) gameOver() {
	av := r.avatar
	r.state = GameOver
	r.emit(event.Event{Kind: event.GameOver, Pos: av.Pos})
	r.logger.Info("game over",
		zap.String("run", r.id),
		zap.Int("room", r.room),
		zap.Float64("score", av.Score),
		zap.Int("force", av.Force),
		zap.Int("force_spent", av.ForceSpent),
	)
}
