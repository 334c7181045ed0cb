package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/entity"
)

// SpawnMixHook is the Lua global a stage script defines to override the
// adversary mix:
//
//	function spawn_mix(stage, room, post_boss_t)
//	  return { stalker = 0.5, shooter = 0.5 }
//	end
const SpawnMixHook = "spawn_mix"

// SpawnMix asks the stage's scripts for the adversary-type weights of room.
// Unknown type names, boss types and non-positive weights are dropped. A nil
// result means no script overrides the mix.
func (m *Manager) SpawnMix(stageID string, room int, postBossT float64) map[entity.AdversaryType]float64 {
	ret, err := m.CallHook(stageID, SpawnMixHook, lua.LString(stageID), lua.LNumber(room), lua.LNumber(postBossT))
	if err != nil {
		return nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil
	}
	mix := make(map[entity.AdversaryType]float64)
	tbl.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok {
			return
		}
		w, ok := v.(lua.LNumber)
		if !ok || w <= 0 {
			return
		}
		t, ok := entity.ParseAdversaryType(string(name))
		if !ok || t.IsBoss() {
			m.logger.Warn("scripting: spawn_mix ignored type",
				zap.String("stage", stageID),
				zap.String("type", string(name)),
			)
			return
		}
		mix[t] = float64(w)
	})
	if len(mix) == 0 {
		return nil
	}
	return mix
}
