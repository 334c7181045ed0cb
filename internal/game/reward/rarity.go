// Package reward implements the between-room economy: the upgrade catalog and
// its weighted draft, the shop stock, and the effects both apply to the avatar.
package reward

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Gate scales rarity weights up to and including MaxRoom.
type Gate struct {
	MaxRoom int                `yaml:"max_room"`
	Mul     map[string]float64 `yaml:"mul"`
}

// RarityTable weights rarities by room progress.
//
// Invariant: Gates are sorted by MaxRoom after Validate.
type RarityTable struct {
	Weights map[string]float64 `yaml:"weights"`
	Gates   []Gate             `yaml:"gates"`
	// Boss multiplies weights for rewards earned by clearing a boss room.
	Boss map[string]float64 `yaml:"boss"`
}

// Validate checks that at least one rarity is weighted and that no weight is negative.
func (t *RarityTable) Validate() error {
	if len(t.Weights) == 0 {
		return errors.New("reward.RarityTable: no rarity weights")
	}
	var errs []string
	for r, w := range t.Weights {
		if w < 0 || math.IsNaN(w) {
			errs = append(errs, fmt.Sprintf("weight of %q must not be negative", r))
		}
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("reward.RarityTable: %s", strings.Join(errs, "; "))
	}
	sort.SliceStable(t.Gates, func(i, j int) bool { return t.Gates[i].MaxRoom < t.Gates[j].MaxRoom })
	return nil
}

// Has reports whether rarity is weighted.
func (t *RarityTable) Has(rarity string) bool {
	_, ok := t.Weights[rarity]
	return ok
}

// Weight returns the draw weight of rarity in room. Only the first gate whose
// MaxRoom is at least room applies.
//
// Postcondition: the result is >= 0.
func (t *RarityTable) Weight(rarity string, room int, boss bool) float64 {
	w, ok := t.Weights[rarity]
	if !ok {
		w = t.Weights["common"]
	}
	for _, g := range t.Gates {
		if room <= g.MaxRoom {
			if m, ok := g.Mul[rarity]; ok {
				w *= m
			}
			break
		}
	}
	if boss {
		if m, ok := t.Boss[rarity]; ok {
			w *= m
		}
	}
	return math.Max(0, w)
}
