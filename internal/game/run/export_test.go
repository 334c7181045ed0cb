package run

import (
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/hazard"
)

// Test hooks into unexported run internals.

var (
	ForceGain     = forceGain
	KillTargetFor = killTarget
	SpawnCap      = spawnCap
	ShopBefore    = shopBefore
)

// CompleteRoom forces the current room to clear.
func (r *Run) CompleteRoom() { r.completeRoom() }

// SetState overrides the run state.
func (r *Run) SetState(s State) { r.state = s }

// SetArena replaces the room contents with obstacles and advs and clears
// projectiles and hazards.
func (r *Run) SetArena(obstacles []entity.Obstacle, advs []*entity.Adversary) {
	r.obstacles, r.advs, r.shots = obstacles, advs, nil
	r.field = hazard.Field{}
}

// AddShot puts p in flight.
func (r *Run) AddShot(p *entity.Projectile) { r.shots = append(r.shots, p) }

// MoveShots runs only the projectile half of a frame: flight, then collisions.
func (r *Run) MoveShots(dt float64) {
	r.updateProjectiles(dt)
	r.resolve()
}

// SetKills overrides the room's kill count.
func (r *Run) SetKills(n int) { r.kills = n }
