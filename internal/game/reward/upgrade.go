package reward

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
)

const defaultStackPenalty = 0.9

// Upgrade is one draftable reward.
type Upgrade struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Rarity string `yaml:"rarity"`
	Stats  string `yaml:"stats"`
	Desc   string `yaml:"desc"`
	// Unique upgrades are never offered again once owned.
	Unique bool `yaml:"unique"`
	// StackPenalty overrides the catalog default; higher makes repeats rarer.
	StackPenalty *float64 `yaml:"stack_penalty"`
	// PrefWeapon biases the draw toward avatars holding that weapon.
	PrefWeapon string   `yaml:"pref_weapon"`
	Effects    []Effect `yaml:"effects"`
}

// WeaponBias multiplies the weight of upgrades with a preferred weapon.
type WeaponBias struct {
	Match float64 `yaml:"match"`
	Other float64 `yaml:"other"`
}

// Catalog is the validated upgrade pool.
//
// Invariant: ids are unique and every rarity is weighted by the table.
type Catalog struct {
	rarity       RarityTable
	stackPenalty float64
	bias         WeaponBias
	upgrades     []*Upgrade
	byID         map[string]*Upgrade
}

type yamlCatalogFile struct {
	Rarity       RarityTable `yaml:"rarity"`
	StackPenalty float64     `yaml:"stack_penalty"`
	WeaponBias   WeaponBias  `yaml:"weapon_bias"`
	Upgrades     []*Upgrade  `yaml:"upgrades"`
}

// NewCatalog validates and indexes upgrades.
//
// Postcondition: returns error on an empty pool, a duplicate id, an unknown
// rarity or preferred weapon, or an invalid effect.
func NewCatalog(rarity RarityTable, stackPenalty float64, bias WeaponBias, upgrades []*Upgrade) (*Catalog, error) {
	if err := rarity.Validate(); err != nil {
		return nil, err
	}
	if len(upgrades) == 0 {
		return nil, errors.New("reward.NewCatalog: no upgrades defined")
	}
	if stackPenalty <= 0 {
		stackPenalty = defaultStackPenalty
	}
	if bias.Match == 0 && bias.Other == 0 {
		bias = WeaponBias{Match: 1, Other: 1}
	}
	c := &Catalog{rarity: rarity, stackPenalty: stackPenalty, bias: bias, byID: make(map[string]*Upgrade, len(upgrades))}
	for _, u := range upgrades {
		if err := c.validate(u); err != nil {
			return nil, err
		}
		if _, dup := c.byID[u.ID]; dup {
			return nil, fmt.Errorf("reward.NewCatalog: upgrade %q already defined", u.ID)
		}
		c.byID[u.ID] = u
		c.upgrades = append(c.upgrades, u)
	}
	return c, nil
}

func (c *Catalog) validate(u *Upgrade) error {
	var errs []string
	if u.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	u.Rarity = strings.ToLower(u.Rarity)
	if u.Rarity == "" {
		u.Rarity = "common"
	}
	if !c.rarity.Has(u.Rarity) {
		errs = append(errs, fmt.Sprintf("unknown rarity %q", u.Rarity))
	}
	if _, ok := entity.ParseWeapon(u.PrefWeapon); u.PrefWeapon != "" && !ok {
		errs = append(errs, fmt.Sprintf("unknown pref_weapon %q", u.PrefWeapon))
	}
	if len(u.Effects) == 0 {
		errs = append(errs, "no effects")
	}
	for i := range u.Effects {
		if err := u.Effects[i].Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("reward.Upgrade %q: %s", u.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Upgrade returns the upgrade with id.
func (c *Catalog) Upgrade(id string) (*Upgrade, bool) {
	u, ok := c.byID[id]
	return u, ok
}

// Len returns the pool size.
func (c *Catalog) Len() int { return len(c.upgrades) }

// Weight returns the draw weight of u for av.
//
// Postcondition: 0 for an owned unique upgrade; otherwise finite and >= 0.
func (c *Catalog) Weight(u *Upgrade, av *entity.Avatar, room int, boss bool) float64 {
	stack := av.Stacks(u.ID)
	if u.Unique && stack > 0 {
		return 0
	}
	pen := c.stackPenalty
	if u.StackPenalty != nil {
		pen = *u.StackPenalty
	}
	w := c.rarity.Weight(u.Rarity, room, boss) / (1 + float64(stack)*pen)
	if u.PrefWeapon != "" {
		if av.Weapon.String() == u.PrefWeapon {
			w *= c.bias.Match
		} else {
			w *= c.bias.Other
		}
	}
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}

// RollChoices drafts up to n distinct upgrades for av. boss marks the reward
// for clearing a boss room.
//
// Postcondition: no upgrade appears twice; fewer than n are returned only when
// the remaining pool has no weight.
func (c *Catalog) RollChoices(av *entity.Avatar, room int, boss bool, n int, roller *dice.Roller) []*Upgrade {
	weights := make([]float64, len(c.upgrades))
	for i, u := range c.upgrades {
		weights[i] = c.Weight(u, av, room, boss)
	}
	var out []*Upgrade
	for len(out) < n {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		if total <= 0 {
			break
		}
		idx := roller.Pick("reward choice", weights)
		out = append(out, c.upgrades[idx])
		weights[idx] = 0
	}
	return out
}

// Take records one stack of u on av and applies its effects.
func Take(av *entity.Avatar, u *Upgrade) {
	if av.Upgrades == nil {
		av.Upgrades = map[string]int{}
	}
	av.Upgrades[u.ID]++
	Apply(av, u.Effects)
}

// LoadCatalogFromBytes parses a YAML upgrade catalog.
func LoadCatalogFromBytes(data []byte) (*Catalog, error) {
	var f yamlCatalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("reward.LoadCatalog: parsing: %w", err)
	}
	return NewCatalog(f.Rarity, f.StackPenalty, f.WeaponBias, f.Upgrades)
}

// LoadCatalogFromFile reads and parses a YAML upgrade catalog from path.
func LoadCatalogFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reward.LoadCatalog: reading %s: %w", path, err)
	}
	return LoadCatalogFromBytes(data)
}
