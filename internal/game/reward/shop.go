package reward

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
)

// Item is a purchasable shop entry.
type Item struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Rarity      string  `yaml:"rarity"`
	Stats       string  `yaml:"stats"`
	Desc        string  `yaml:"desc"`
	Cost        float64 `yaml:"cost"`
	CostPerRoom float64 `yaml:"cost_per_room"`
	// Chance is the probability the item is stocked at all; 0 means always.
	Chance  float64  `yaml:"chance"`
	Effects []Effect `yaml:"effects"`
}

// Price returns the item's price in room.
func (it *Item) Price(room int) int {
	return int(math.Floor(it.Cost + float64(room)*it.CostPerRoom))
}

// RerollPricing prices a stock reroll:
// max(Minimum, floor(Base + r*PerRoom + k*(PerReroll + r*PerRerollRoom))).
type RerollPricing struct {
	Minimum       float64 `yaml:"minimum"`
	Base          float64 `yaml:"base"`
	PerRoom       float64 `yaml:"per_room"`
	PerReroll     float64 `yaml:"per_reroll"`
	PerRerollRoom float64 `yaml:"per_reroll_room"`
}

// ShopConfig is the shop's tuning data.
type ShopConfig struct {
	Rarity       RarityTable   `yaml:"rarity"`
	MaxItems     int           `yaml:"max_items"`
	AugmentSlots int           `yaml:"augment_slots"`
	WeaponPrefix string        `yaml:"weapon_prefix"`
	Reroll       RerollPricing `yaml:"reroll"`
	Utilities    []*Item       `yaml:"utilities"`
	Augments     []*Item       `yaml:"augments"`
}

// Offer is one stocked entry.
type Offer struct {
	ID      string
	Name    string
	Rarity  string
	Stats   string
	Desc    string
	Cost    int
	Effects []Effect
	Sold    bool
}

// Shop rolls stock from its config and the weapon table.
type Shop struct {
	cfg     ShopConfig
	weapons []*combat.Weapon
}

// NewShop validates cfg against weapons.
//
// Postcondition: returns error when an item has an unknown rarity or an
// invalid effect, or when no weapons are given.
func NewShop(cfg ShopConfig, weapons []*combat.Weapon) (*Shop, error) {
	if err := cfg.Rarity.Validate(); err != nil {
		return nil, err
	}
	if len(weapons) == 0 {
		return nil, errors.New("reward.NewShop: no weapons")
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 5
	}
	if cfg.AugmentSlots <= 0 {
		cfg.AugmentSlots = 2
	}
	if cfg.WeaponPrefix == "" {
		cfg.WeaponPrefix = "Weapon: "
	}
	var errs []string
	for _, it := range append(append([]*Item{}, cfg.Utilities...), cfg.Augments...) {
		it.Rarity = strings.ToLower(it.Rarity)
		if it.Rarity == "" {
			it.Rarity = "common"
		}
		if !cfg.Rarity.Has(it.Rarity) {
			errs = append(errs, fmt.Sprintf("%s: unknown rarity %q", it.ID, it.Rarity))
		}
		for i := range it.Effects {
			if err := it.Effects[i].Validate(); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", it.ID, err))
			}
		}
	}
	for _, w := range weapons {
		if !cfg.Rarity.Has(w.Rarity) {
			errs = append(errs, fmt.Sprintf("weapon %s: unknown rarity %q", w.Tag, w.Rarity))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("reward.NewShop: %s", strings.Join(errs, "; "))
	}
	return &Shop{cfg: cfg, weapons: weapons}, nil
}

// RerollCost returns the price of the next reroll in room after rerolls so far.
//
// Postcondition: never below the configured minimum.
func (s *Shop) RerollCost(room, rerolls int) int {
	p := s.cfg.Reroll
	r := float64(max(1, room))
	k := float64(max(0, rerolls))
	return int(math.Max(p.Minimum, math.Floor(p.Base+r*p.PerRoom+k*(p.PerReroll+r*p.PerRerollRoom))))
}

func (s *Shop) offerOf(it *Item, room int) *Offer {
	return &Offer{
		ID:      it.ID,
		Name:    it.Name,
		Rarity:  it.Rarity,
		Stats:   it.Stats,
		Desc:    it.Desc,
		Cost:    it.Price(room),
		Effects: it.Effects,
	}
}

// RollStock stocks the shop for room: utilities, one weapon other than
// current, then augments without repeats.
//
// Postcondition: at most MaxItems offers; the first utility is always kept.
func (s *Shop) RollStock(room int, current entity.WeaponID, roller *dice.Roller) []*Offer {
	var out []*Offer
	for _, it := range s.cfg.Utilities {
		if it.Chance > 0 && !roller.Chance("shop utility "+it.ID, it.Chance) {
			continue
		}
		out = append(out, s.offerOf(it, room))
	}

	var pool []*combat.Weapon
	var weights []float64
	for _, w := range s.weapons {
		if w.ID == current {
			continue
		}
		pool = append(pool, w)
		weights = append(weights, s.cfg.Rarity.Weight(w.Rarity, room, false))
	}
	if len(pool) > 0 {
		w := pool[roller.Pick("shop weapon", weights)]
		out = append(out, &Offer{
			ID:      "wp_" + w.Tag,
			Name:    s.cfg.WeaponPrefix + w.Name,
			Rarity:  w.Rarity,
			Stats:   w.Tagline,
			Cost:    w.Price(room),
			Effects: []Effect{{Stat: StatWeapon, Weapon: w.Tag}},
		})
	}

	var augs []*Item
	for _, it := range s.cfg.Augments {
		if it.Chance > 0 && !roller.Chance("shop augment "+it.ID, it.Chance) {
			continue
		}
		augs = append(augs, it)
	}
	for k := 0; k < s.cfg.AugmentSlots && len(augs) > 0; k++ {
		aw := make([]float64, len(augs))
		for i, it := range augs {
			aw[i] = s.cfg.Rarity.Weight(it.Rarity, room, false)
		}
		i := roller.Pick("shop augment", aw)
		out = append(out, s.offerOf(augs[i], room))
		augs = append(augs[:i], augs[i+1:]...)
	}

	for len(out) > s.cfg.MaxItems {
		out = append(out[:1], out[2:]...)
	}
	return out
}

// LoadShopFromBytes parses a YAML shop config and validates it against weapons.
func LoadShopFromBytes(data []byte, weapons []*combat.Weapon) (*Shop, error) {
	var cfg ShopConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("reward.LoadShop: parsing: %w", err)
	}
	return NewShop(cfg, weapons)
}

// LoadShopFromFile reads and parses a YAML shop config from path.
func LoadShopFromFile(path string, weapons []*combat.Weapon) (*Shop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reward.LoadShop: reading %s: %w", path, err)
	}
	return LoadShopFromBytes(data, weapons)
}
