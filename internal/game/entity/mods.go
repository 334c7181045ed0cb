package entity

// Mods is the avatar's modifier table. Multipliers default to 1, additive
// stats and skill flags default to 0.
type Mods struct {
	FireMul         float64
	DmgMul          float64
	BulletSpeedMul  float64
	BulletLifeMul   float64
	BulletRadiusMul float64
	SpreadMul       float64
	MoveMul         float64
	DashCdMul       float64
	DashDistMul     float64

	FocusCostMul  float64
	FocusRegenMul float64
	FocusRegenAdd float64
	FocusDmgMul   float64

	CritAdd float64
	CritMul float64
	Pierce  float64

	Magnet       float64
	ForceGainMul float64

	Chain          float64
	ChainCount     float64
	ChainRangeMul  float64
	ChainDamageMul float64

	Blades float64
	Vamp   float64
	Leech  float64

	Nova      float64
	NovaCdMax float64

	ExplodeRadiusMul float64
	ExplodeDmgMul    float64
}

// DefaultMods returns the neutral modifier table.
func DefaultMods() Mods {
	return Mods{
		FireMul:          1,
		DmgMul:           1,
		BulletSpeedMul:   1,
		BulletLifeMul:    1,
		BulletRadiusMul:  1,
		SpreadMul:        1,
		MoveMul:          1,
		DashCdMul:        1,
		DashDistMul:      1,
		FocusCostMul:     1,
		FocusRegenMul:    1,
		FocusDmgMul:      1,
		CritMul:          1,
		ForceGainMul:     1,
		ChainRangeMul:    1,
		NovaCdMax:        7.5,
		ExplodeRadiusMul: 1,
		ExplodeDmgMul:    1,
	}
}

// StatNames lists every name accepted by Stat, in declaration order.
var StatNames = []string{
	"fire_mul", "dmg_mul", "bullet_speed_mul", "bullet_life_mul", "bullet_radius_mul",
	"spread_mul", "move_mul", "dash_cd_mul", "dash_dist_mul",
	"focus_cost_mul", "focus_regen_mul", "focus_regen_add", "focus_dmg_mul",
	"crit_add", "crit_mul", "pierce", "magnet", "force_gain_mul",
	"chain", "chain_count", "chain_range_mul", "chain_damage_mul",
	"blades", "vamp", "leech", "nova", "nova_cd_max",
	"explode_radius_mul", "explode_dmg_mul",
}

// Stat returns a pointer to the named field.
//
// Postcondition: ok is false and p is nil for unknown names.
func (m *Mods) Stat(name string) (p *float64, ok bool) {
	switch name {
	case "fire_mul":
		p = &m.FireMul
	case "dmg_mul":
		p = &m.DmgMul
	case "bullet_speed_mul":
		p = &m.BulletSpeedMul
	case "bullet_life_mul":
		p = &m.BulletLifeMul
	case "bullet_radius_mul":
		p = &m.BulletRadiusMul
	case "spread_mul":
		p = &m.SpreadMul
	case "move_mul":
		p = &m.MoveMul
	case "dash_cd_mul":
		p = &m.DashCdMul
	case "dash_dist_mul":
		p = &m.DashDistMul
	case "focus_cost_mul":
		p = &m.FocusCostMul
	case "focus_regen_mul":
		p = &m.FocusRegenMul
	case "focus_regen_add":
		p = &m.FocusRegenAdd
	case "focus_dmg_mul":
		p = &m.FocusDmgMul
	case "crit_add":
		p = &m.CritAdd
	case "crit_mul":
		p = &m.CritMul
	case "pierce":
		p = &m.Pierce
	case "magnet":
		p = &m.Magnet
	case "force_gain_mul":
		p = &m.ForceGainMul
	case "chain":
		p = &m.Chain
	case "chain_count":
		p = &m.ChainCount
	case "chain_range_mul":
		p = &m.ChainRangeMul
	case "chain_damage_mul":
		p = &m.ChainDamageMul
	case "blades":
		p = &m.Blades
	case "vamp":
		p = &m.Vamp
	case "leech":
		p = &m.Leech
	case "nova":
		p = &m.Nova
	case "nova_cd_max":
		p = &m.NovaCdMax
	case "explode_radius_mul":
		p = &m.ExplodeRadiusMul
	case "explode_dmg_mul":
		p = &m.ExplodeDmgMul
	}
	return p, p != nil
}

// FocusFx holds the multipliers contributed by the active focus mode.
// All multipliers are 1 and additive terms 0 while focus is idle.
type FocusFx struct {
	Active          bool
	Move            float64
	Fire            float64
	BulletSpeed     float64
	BulletLife      float64
	Damage          float64
	DamageTaken     float64
	Spread          float64
	CritAdd         float64
	PierceAdd       int
	PierceDamageMul float64
}

// NeutralFocusFx returns the idle multiplier set.
func NeutralFocusFx() FocusFx {
	return FocusFx{
		Move:        1,
		Fire:        1,
		BulletSpeed: 1,
		BulletLife:  1,
		Damage:      1,
		DamageTaken: 1,
		Spread:      1,
	}
}

// Env holds the per-frame environment multipliers applied by hazard fields.
type Env struct {
	Move       float64
	Friction   float64
	FocusRegen float64
	FocusCost  float64
}

// NeutralEnv returns the multipliers for open floor.
func NeutralEnv() Env {
	return Env{Move: 1, Friction: 1, FocusRegen: 1, FocusCost: 1}
}
