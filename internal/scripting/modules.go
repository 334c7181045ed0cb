package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/entity"
)

// RegisterModules registers the arena.* Lua tables into L:
//
//	arena.log.debug/info/warn(msg)  write to the manager's logger
//	arena.roll.chance(p)            true with probability p
//	arena.roll.range(lo, hi)        a number in [lo, hi]
//	arena.types                     names of every non-boss adversary type
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the arena global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	arena := L.NewTable()
	L.SetField(arena, "log", m.logModule(L))
	L.SetField(arena, "roll", m.rollModule(L))

	types := L.NewTable()
	for t := entity.AdversaryType(0); t < entity.NumAdversaryTypes; t++ {
		if !t.IsBoss() {
			types.Append(lua.LString(t.String()))
		}
	}
	L.SetField(arena, "types", types)
	L.SetGlobal("arena", arena)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	level := func(write func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			write(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}
	}
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"debug": level(m.logger.Debug),
		"info":  level(m.logger.Info),
		"warn":  level(m.logger.Warn),
	})
}

func (m *Manager) rollModule(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"chance": func(L *lua.LState) int {
			p := float64(L.CheckNumber(1))
			L.Push(lua.LBool(m.roller.Chance("lua", p)))
			return 1
		},
		"range": func(L *lua.LState) int {
			lo := float64(L.CheckNumber(1))
			hi := float64(L.CheckNumber(2))
			L.Push(lua.LNumber(m.roller.Range("lua", lo, hi)))
			return 1
		},
	})
}
