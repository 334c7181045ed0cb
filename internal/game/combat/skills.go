package combat

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/geom"
)

const (
	novaFlash  = 0.16
	bladeSpeed = 2.2
)

// ArcNova fires the avatar's shockwave on the press edge when the skill is
// owned and off cooldown. It returns the number of adversaries hit and whether
// the nova fired.
//
// Postcondition: a fired nova sets av.NovaCd to av.Mods.NovaCdMax.
func ArcNova(av *entity.Avatar, pressed bool, advs []*entity.Adversary, emit event.Func) (hits int, fired bool) {
	if !pressed || av.Mods.Nova <= 0 || av.NovaCd > 0 {
		return 0, false
	}
	av.NovaCd = av.Mods.NovaCdMax
	radius := av.Tuning.NovaRadius
	dmg := av.Tuning.NovaDamage * av.Mods.DmgMul
	emit.Send(event.Event{Kind: event.Nova, Pos: av.Pos, Radius: radius})
	for _, a := range advs {
		if a.Dead() {
			continue
		}
		if a.Pos.Dist(av.Pos) < radius+a.R {
			a.TakeDamage(dmg)
			a.HitFlash = novaFlash
			hits++
		}
	}
	return hits, true
}

// BladePositions returns the centers of the avatar's orbiting blades.
func BladePositions(av *entity.Avatar) []geom.Vec2 {
	n := int(av.Mods.Blades)
	if n <= 0 {
		return nil
	}
	out := make([]geom.Vec2, n)
	for i := range out {
		a := av.T*bladeSpeed + 2*math.Pi*float64(i)/float64(n)
		out[i] = av.Pos.AddScaled(geom.FromAngle(a), av.Tuning.BladeOrbit)
	}
	return out
}

// OrbitBlades damages each adversary touching a blade, at most once per blade
// cooldown per adversary. It returns the number of adversaries struck.
func OrbitBlades(av *entity.Avatar, advs []*entity.Adversary, emit event.Func) int {
	blades := BladePositions(av)
	if len(blades) == 0 {
		return 0
	}
	dmg := av.Tuning.BladeDamage * av.Mods.DmgMul
	struck := 0
	for _, a := range advs {
		if a.Dead() || a.TouchCd > 0 {
			continue
		}
		for _, b := range blades {
			if a.Pos.Dist(b) < a.R+av.Tuning.BladeRadius {
				a.TakeDamage(dmg)
				a.TouchCd = av.Tuning.BladeCooldown
				emit.Send(event.Event{Kind: event.Blade, Pos: b})
				struck++
				break
			}
		}
	}
	return struck
}
