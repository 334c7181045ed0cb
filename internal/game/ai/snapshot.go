package ai

import (
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

// Peer is one adversary as seen by group steering.
type Peer struct {
	ID   string
	Type entity.AdversaryType
	Role entity.Role
	Pos  geom.Vec2
}

// Snapshot is an immutable view of every live adversary, built once per frame
// before the adversary pass. Steering reads only the snapshot, never the live list.
type Snapshot struct {
	Peers []Peer
}

// NewSnapshot copies the positions and roles of advs.
func NewSnapshot(advs []*entity.Adversary) *Snapshot {
	s := &Snapshot{Peers: make([]Peer, 0, len(advs))}
	for _, a := range advs {
		if a == nil || a.Dead() {
			continue
		}
		s.Peers = append(s.Peers, Peer{ID: a.ID, Type: a.Type, Role: entity.RoleOf(a.Type), Pos: a.Pos})
	}
	return s
}

// Len returns the number of peers.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Peers)
}

// NearestOfRole returns the peer of role closest to pos, excluding selfID.
//
// Postcondition: ok is false when no such peer exists.
func (s *Snapshot) NearestOfRole(selfID string, pos geom.Vec2, role entity.Role) (best Peer, ok bool) {
	bestD := 0.0
	for _, p := range s.Peers {
		if p.ID == selfID || p.Role != role {
			continue
		}
		d := p.Pos.Dist(pos)
		if !ok || d < bestD {
			best, bestD, ok = p, d, true
		}
	}
	return best, ok
}
