// Package event defines the side-effect notifications the simulation raises for
// its presentation collaborators (audio, particles, camera shake).
package event

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/geom"
)

// Kind is the closed set of notifications.
type Kind uint8

const (
	Shot Kind = iota
	Hit
	AvatarHit
	Touch
	Blast
	Chain
	Blocked
	Absorbed
	Nova
	Blade
	Pulse
	Dash
	Death
	Pickup
	RoomStart
	RoomClear
	GameOver

	NumKinds
)

var kindNames = [NumKinds]string{
	"shot", "hit", "avatar_hit", "touch", "blast", "chain", "blocked", "absorbed",
	"nova", "blade", "pulse", "dash", "death", "pickup", "room_start", "room_clear", "gameover",
}

func (k Kind) String() string {
	if k < NumKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Event is one notification. Radius is the effect size where one applies;
// Boss marks deaths and blasts caused by boss-class bodies.
type Event struct {
	Kind   Kind
	Pos    geom.Vec2
	Radius float64
	Boss   bool
}

// Func receives events. A nil Func discards them.
type Func func(Event)

// Send delivers e when f is non-nil.
func (f Func) Send(e Event) {
	if f != nil {
		f(e)
	}
}
