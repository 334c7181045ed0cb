package reward_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/reward"
)

const (
	upgradesPath = "../../../content/upgrades.yaml"
	shopPath     = "../../../content/shop.yaml"
	weaponsPath  = "../../../content/weapons.yaml"
)

type constSource float64

func (c constSource) Intn(int) int { return 0 }
func (c constSource) Float64() float64 { return float64(c) }

func roller(src dice.Source) *dice.Roller { return dice.NewLoggedRoller(src, nil) }

func loadCatalog(t testing.TB) *reward.Catalog {
	t.Helper()
	c, err := reward.LoadCatalogFromFile(upgradesPath)
	require.NoError(t, err)
	return c
}

func loadWeapons(t testing.TB) []*combat.Weapon {
	t.Helper()
	a, err := combat.LoadArsenalFromFile(weaponsPath)
	require.NoError(t, err)
	return a.All()
}

func loadShop(t testing.TB) *reward.Shop {
	t.Helper()
	s, err := reward.LoadShopFromFile(shopPath, loadWeapons(t))
	require.NoError(t, err)
	return s
}

func newAvatar() *entity.Avatar { return entity.NewAvatar(entity.DefaultAvatarTuning()) }

func upgrade(t *testing.T, c *reward.Catalog, id string) *reward.Upgrade {
	t.Helper()
	u, ok := c.Upgrade(id)
	require.True(t, ok, id)
	return u
}

func TestRarityTable_Gates(t *testing.T) {
	tbl := reward.RarityTable{
		Weights: map[string]float64{"common": 78, "epic": 0.55, "legendary": 0.10},
		Gates: []reward.Gate{
			{MaxRoom: 8, Mul: map[string]float64{"epic": 0.60}},
			{MaxRoom: 4, Mul: map[string]float64{"epic": 0.28, "legendary": 0}},
		},
		Boss: map[string]float64{"epic": 1.55},
	}
	require.NoError(t, tbl.Validate())

	assert.Zero(t, tbl.Weight("legendary", 3, false))
	assert.InDelta(t, 0.55*0.28, tbl.Weight("epic", 4, false), 1e-12)
	assert.InDelta(t, 0.55*0.60*1.55, tbl.Weight("epic", 6, true), 1e-12)
	assert.InDelta(t, 0.10, tbl.Weight("legendary", 30, false), 1e-12)
	assert.InDelta(t, 78, tbl.Weight("mythic", 1, false), 1e-12, "unknown rarity weighs as common")
}

func TestRarityTable_ValidateRejectsBadWeights(t *testing.T) {
	var empty reward.RarityTable
	assert.Error(t, empty.Validate())

	neg := reward.RarityTable{Weights: map[string]float64{"common": -1}}
	err := neg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"common"`)
}

func TestCatalog_ContentLoads(t *testing.T) {
	c := loadCatalog(t)
	assert.Equal(t, 41, c.Len())
	u := upgrade(t, c, "black_sun_reactor")
	assert.Equal(t, "legendary", u.Rarity)
	assert.True(t, u.Unique)
}

func TestCatalog_WeightAppliesStackPenalty(t *testing.T) {
	c := loadCatalog(t)
	av := newAvatar()
	u := upgrade(t, c, "rapid_trigger")

	assert.InDelta(t, 78.0, c.Weight(u, av, 10, false), 1e-9)
	av.Upgrades[u.ID] = 1
	assert.InDelta(t, 78.0/2.8, c.Weight(u, av, 10, false), 1e-9)

	plain := upgrade(t, c, "mag_rails")
	av.Upgrades[plain.ID] = 2
	assert.InDelta(t, 78.0/2.8, c.Weight(plain, av, 10, false), 1e-9, "default penalty 0.9")
}

func TestCatalog_OwnedUniqueHasNoWeight(t *testing.T) {
	c := loadCatalog(t)
	av := newAvatar()
	u := upgrade(t, c, "pickup_magnet")
	assert.Positive(t, c.Weight(u, av, 1, false))
	av.Upgrades[u.ID] = 1
	assert.Zero(t, c.Weight(u, av, 1, false))
}

func TestCatalog_WeaponBias(t *testing.T) {
	c := loadCatalog(t)
	u := upgrade(t, c, "needle_spool")
	av := newAvatar()

	av.SetWeapon(entity.Needle)
	assert.InDelta(t, 18*1.65, c.Weight(u, av, 10, false), 1e-9)
	av.SetWeapon(entity.Pulse)
	assert.InDelta(t, 18*0.35, c.Weight(u, av, 10, false), 1e-9)
}

func TestCatalog_BossRewardSkewsRare(t *testing.T) {
	c := loadCatalog(t)
	av := newAvatar()
	common := upgrade(t, c, "mag_rails")
	epic := upgrade(t, c, "storm_barrel")

	assert.Less(t, c.Weight(common, av, 10, true), c.Weight(common, av, 10, false))
	assert.Greater(t, c.Weight(epic, av, 10, true), c.Weight(epic, av, 10, false))
}

func TestCatalog_RollChoicesStopsWhenPoolIsSpent(t *testing.T) {
	rt := reward.RarityTable{Weights: map[string]float64{"common": 1}}
	c, err := reward.NewCatalog(rt, 0, reward.WeaponBias{}, []*reward.Upgrade{
		{ID: "a", Unique: true, Effects: []reward.Effect{{Stat: "magnet", Op: reward.OpMax, Value: 1}}},
		{ID: "b", Effects: []reward.Effect{{Stat: "pierce", Op: reward.OpAdd, Value: 1}}},
	})
	require.NoError(t, err)

	av := newAvatar()
	av.Upgrades["a"] = 1
	got := c.RollChoices(av, 1, false, 3, roller(constSource(0.5)))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestPropertyRollChoicesDistinct(t *testing.T) {
	c := loadCatalog(t)
	rapid.Check(t, func(rt *rapid.T) {
		av := newAvatar()
		for _, id := range []string{"pickup_magnet", "nova_core", "chain_spark"} {
			if rapid.Bool().Draw(rt, "own "+id) {
				av.Upgrades[id] = 1
			}
		}
		room := rapid.IntRange(1, 30).Draw(rt, "room")
		boss := rapid.Bool().Draw(rt, "boss")
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		src := dice.NewXorshift(rapid.Uint32().Draw(rt, "seed"))

		got := c.RollChoices(av, room, boss, n, roller(src))
		if len(got) != n {
			rt.Fatalf("got %d choices, want %d", len(got), n)
		}
		seen := map[string]bool{}
		for _, u := range got {
			if seen[u.ID] {
				rt.Fatalf("duplicate choice %s", u.ID)
			}
			seen[u.ID] = true
			if u.Unique && av.Stacks(u.ID) > 0 {
				rt.Fatalf("offered owned unique %s", u.ID)
			}
			if room <= 4 && u.Rarity == "legendary" {
				rt.Fatalf("legendary %s offered in room %d", u.ID, room)
			}
		}
	})
}

func TestNewCatalog_Errors(t *testing.T) {
	rt := reward.RarityTable{Weights: map[string]float64{"common": 1}}
	fx := []reward.Effect{{Stat: "pierce", Op: reward.OpAdd, Value: 1}}

	_, err := reward.NewCatalog(rt, 0, reward.WeaponBias{}, nil)
	assert.Error(t, err)

	_, err = reward.NewCatalog(rt, 0, reward.WeaponBias{}, []*reward.Upgrade{
		{ID: "a", Effects: fx}, {ID: "a", Effects: fx},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")

	_, err = reward.NewCatalog(rt, 0, reward.WeaponBias{}, []*reward.Upgrade{
		{ID: "x", Rarity: "Mythic", PrefWeapon: "bow", Effects: fx},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown rarity "mythic"`)
	assert.Contains(t, err.Error(), `unknown pref_weapon "bow"`)

	_, err = reward.NewCatalog(rt, 0, reward.WeaponBias{}, []*reward.Upgrade{{ID: "y"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no effects")
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := reward.LoadCatalogFromBytes([]byte("upgrades: [oops"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")

	_, err = reward.LoadCatalogFromFile("does/not/exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestEffect_Validate(t *testing.T) {
	cases := []struct {
		name string
		e    reward.Effect
		want string
	}{
		{"unknown stat", reward.Effect{Stat: "luck", Op: reward.OpAdd}, `unknown stat "luck"`},
		{"bad op", reward.Effect{Stat: "pierce", Op: "pow"}, `op "pow"`},
		{"bad weapon", reward.Effect{Stat: reward.StatWeapon, Weapon: "bow"}, `unknown weapon "bow"`},
		{"bad condition", reward.Effect{Stat: "pierce", Op: reward.OpAdd, IfWeapon: "bow"}, `unknown weapon condition "bow"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.e.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
	ok := reward.Effect{Stat: reward.StatWeapon, Weapon: "rail"}
	assert.NoError(t, ok.Validate())
}

func TestApply_GlassCannonFloorsMaxHP(t *testing.T) {
	c := loadCatalog(t)
	u := upgrade(t, c, "glass_cannon")
	av := newAvatar()

	reward.Take(av, u)
	assert.Equal(t, 1, av.Stacks(u.ID))
	assert.InDelta(t, 80, av.HPMax, 1e-9)
	assert.InDelta(t, 80, av.HP, 1e-9)
	assert.InDelta(t, 1.5, av.Mods.DmgMul, 1e-9)

	av.HPMax = 45
	reward.Apply(av, u.Effects)
	assert.InDelta(t, 40, av.HPMax, 1e-9)
	assert.LessOrEqual(t, av.HP, av.HPMax)
}

func TestApply_WeaponConditions(t *testing.T) {
	c := loadCatalog(t)
	u := upgrade(t, c, "needle_spool")

	av := newAvatar()
	reward.Apply(av, u.Effects)
	assert.InDelta(t, 1.06, av.Mods.FireMul, 1e-9)

	av = newAvatar()
	av.SetWeapon(entity.Needle)
	reward.Apply(av, u.Effects)
	assert.InDelta(t, 1.22, av.Mods.FireMul, 1e-9)
}

func TestApply_ArcLatticeStacks(t *testing.T) {
	c := loadCatalog(t)
	u := upgrade(t, c, "arc_lattice")
	av := newAvatar()

	reward.Take(av, u)
	assert.Equal(t, 1.0, av.Mods.Chain)
	assert.Equal(t, 2.0, av.Mods.ChainCount)
	assert.InDelta(t, 1.2, av.Mods.ChainRangeMul, 1e-9)

	reward.Take(av, u)
	assert.Equal(t, 3.0, av.Mods.ChainCount)
	assert.InDelta(t, 1.44, av.Mods.ChainRangeMul, 1e-9)
	assert.Equal(t, 2, av.Stacks(u.ID))
}

func TestApply_MetersStayClamped(t *testing.T) {
	av := newAvatar()
	av.HP = 90
	reward.Apply(av, []reward.Effect{{Stat: reward.StatHP, Op: reward.OpAdd, Value: 45}})
	assert.Equal(t, av.HPMax, av.HP)

	reward.Apply(av, []reward.Effect{
		{Stat: reward.StatFocusMax, Op: reward.OpAdd, Value: 60},
		{Stat: reward.StatFocus, Op: reward.OpAdd, Value: 40},
	})
	assert.InDelta(t, 160, av.FocusMax, 1e-9)
	assert.InDelta(t, 140, av.Focus, 1e-9)
}

func TestApply_WeaponEffectEquips(t *testing.T) {
	av := newAvatar()
	av.Burst = entity.BurstFire{Remain: 2}
	reward.Apply(av, []reward.Effect{{Stat: reward.StatWeapon, Weapon: "rail"}})
	assert.Equal(t, entity.Rail, av.Weapon)
	assert.Zero(t, av.Burst.Remain)
}

func TestShop_RerollCost(t *testing.T) {
	s := loadShop(t)
	assert.Equal(t, 30, s.RerollCost(1, 0))
	assert.Equal(t, 30, s.RerollCost(0, 0), "room is at least 1")
	assert.Equal(t, 48, s.RerollCost(1, 1))
	assert.Equal(t, 79, s.RerollCost(5, 2))

	floor, err := reward.NewShop(reward.ShopConfig{
		Rarity: reward.RarityTable{Weights: map[string]float64{"common": 1, "uncommon": 1, "rare": 1, "epic": 1}},
		Reroll: reward.RerollPricing{Minimum: 50, Base: 10},
	}, loadWeapons(t))
	require.NoError(t, err)
	assert.Equal(t, 50, floor.RerollCost(1, 0))
}

func TestShop_RollStockKnownDraw(t *testing.T) {
	s := loadShop(t)
	stock := s.RollStock(3, entity.Pulse, roller(constSource(0.1)))

	ids := make([]string, len(stock))
	for i, o := range stock {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"repair_kit", "focus_gel", "wp_needle", "aug_plating", "aug_capacitor"}, ids)
	assert.Equal(t, 27, stock[0].Cost)
	assert.Equal(t, 41, stock[2].Cost)
	assert.Equal(t, "Weapon: Needle", stock[2].Name)
	assert.Equal(t, []reward.Effect{{Stat: reward.StatWeapon, Weapon: "needle"}}, stock[2].Effects)
}

func TestShop_RollStockSkipsChanceItems(t *testing.T) {
	s := loadShop(t)
	stock := s.RollStock(1, entity.Pulse, roller(constSource(0.9)))
	require.Len(t, stock, 4)
	for _, o := range stock {
		assert.NotEqual(t, "focus_gel", o.ID)
		assert.NotEqual(t, "aug_force_extractor", o.ID)
	}
}

func TestShop_TrimDropsSecondEntry(t *testing.T) {
	ws := loadWeapons(t)
	fx := []reward.Effect{{Stat: "pierce", Op: reward.OpAdd, Value: 1}}
	cfg := reward.ShopConfig{
		Rarity:       reward.RarityTable{Weights: map[string]float64{"common": 1, "uncommon": 1, "rare": 1, "epic": 1}},
		MaxItems:     3,
		AugmentSlots: 3,
		Utilities:    []*reward.Item{{ID: "u1", Effects: fx}, {ID: "u2", Effects: fx}},
		Augments:     []*reward.Item{{ID: "a1", Effects: fx}, {ID: "a2", Effects: fx}, {ID: "a3", Effects: fx}},
	}
	s, err := reward.NewShop(cfg, ws)
	require.NoError(t, err)

	stock := s.RollStock(1, entity.Pulse, roller(constSource(0.0)))
	require.Len(t, stock, 3)
	assert.Equal(t, "u1", stock[0].ID)
	assert.Equal(t, "a2", stock[1].ID)
	assert.Equal(t, "a3", stock[2].ID)
}

func TestPropertyRollStockShape(t *testing.T) {
	s := loadShop(t)
	rapid.Check(t, func(rt *rapid.T) {
		room := rapid.IntRange(1, 40).Draw(rt, "room")
		current := entity.WeaponID(rapid.IntRange(0, int(entity.NumWeapons)-1).Draw(rt, "weapon"))
		src := dice.NewXorshift(rapid.Uint32().Draw(rt, "seed"))

		stock := s.RollStock(room, current, roller(src))
		if len(stock) == 0 || len(stock) > 5 {
			rt.Fatalf("stock size %d", len(stock))
		}
		if stock[0].ID != "repair_kit" {
			rt.Fatalf("first offer %s", stock[0].ID)
		}
		seen := map[string]bool{}
		weapons := 0
		for _, o := range stock {
			if seen[o.ID] {
				rt.Fatalf("duplicate offer %s", o.ID)
			}
			seen[o.ID] = true
			if strings.HasPrefix(o.ID, "wp_") {
				weapons++
				if o.ID == "wp_"+current.String() {
					rt.Fatalf("offered the equipped weapon %s", o.ID)
				}
			}
			if o.Cost <= 0 || o.Sold {
				rt.Fatalf("bad offer %+v", o)
			}
		}
		if weapons != 1 {
			rt.Fatalf("%d weapon offers", weapons)
		}
	})
}

func TestNewShop_Errors(t *testing.T) {
	rt := reward.RarityTable{Weights: map[string]float64{"common": 1, "uncommon": 1, "rare": 1, "epic": 1}}

	_, err := reward.NewShop(reward.ShopConfig{Rarity: rt}, nil)
	assert.Error(t, err)

	_, err = reward.NewShop(reward.ShopConfig{
		Rarity:   rt,
		Augments: []*reward.Item{{ID: "bad", Rarity: "mythic", Effects: []reward.Effect{{Stat: "luck", Op: reward.OpAdd}}}},
	}, loadWeapons(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `bad: unknown rarity "mythic"`)
	assert.Contains(t, err.Error(), `unknown stat "luck"`)

	_, err = reward.NewShop(reward.ShopConfig{
		Rarity: reward.RarityTable{Weights: map[string]float64{"common": 1}},
	}, loadWeapons(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weapon rail")
}
