package scripting

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// globalKey is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when a stage has no VM of its own.
const globalKey = "__global__"

type vm struct {
	L      *lua.LState
	cancel func()
	limit  int
}

// Manager owns one sandboxed LState per stage plus an optional global VM and
// dispatches hooks to them.
//
// Manager is safe for concurrent use. A VM runs one hook at a time; calls into
// the same VM are serialized by the manager lock.
type Manager struct {
	mu     sync.Mutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a Manager with no VMs loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadStage creates a VM for stageID from every *.lua file in dir on disk.
//
// Precondition: stageID must be non-empty; dir must be a readable directory.
func (m *Manager) LoadStage(stageID, dir string, instLimit int) error {
	return m.loadInto(stageID, os.DirFS(dir), ".", instLimit)
}

// LoadGlobal creates the shared fallback VM from every *.lua file in dir on disk.
func (m *Manager) LoadGlobal(dir string, instLimit int) error {
	return m.loadInto(globalKey, os.DirFS(dir), ".", instLimit)
}

// LoadFS loads the global VM from the *.lua files directly in dir of fsys and
// one stage VM per subdirectory, keyed by the subdirectory name.
//
// Postcondition: On error no VM from this call stays registered.
func (m *Manager) LoadFS(fsys fs.FS, dir string, instLimit int) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var loaded []string
	unwind := func() {
		for _, key := range loaded {
			m.drop(key)
		}
	}
	if err := m.loadInto(globalKey, fsys, dir, instLimit); err != nil {
		return err
	}
	loaded = append(loaded, globalKey)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := m.loadInto(e.Name(), fsys, path.Join(dir, e.Name()), instLimit); err != nil {
			unwind()
			return err
		}
		loaded = append(loaded, e.Name())
	}
	return nil
}

func (m *Manager) loadInto(key string, fsys fs.FS, dir string, instLimit int) error {
	limit := effectiveLimit(instLimit)
	L, cancel := NewSandboxedState(limit)
	m.RegisterModules(L)
	fail := func(err error) error {
		cancel()
		L.Close()
		return err
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fail(fmt.Errorf("scripting: reading script dir %q for %q: %w", dir, key, err))
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".lua" {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, file := range files {
		src, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fail(fmt.Errorf("scripting: reading %q for %q: %w", file, key, err))
		}
		fn, err := L.Load(bytes.NewReader(src), file)
		if err != nil {
			return fail(fmt.Errorf("scripting: loading %q for %q: %w", file, key, err))
		}
		L.Push(fn)
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			return fail(fmt.Errorf("scripting: loading %q for %q: %w", file, key, err))
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, cancel: cancel, limit: limit}
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	m.logger.Debug("scripts loaded",
		zap.String("key", key),
		zap.Int("files", len(files)),
	)
	return nil
}

func (v *vm) close() {
	v.cancel()
	v.L.Close()
}

func (m *Manager) drop(key string) {
	m.mu.Lock()
	v := m.vms[key]
	delete(m.vms, key)
	m.mu.Unlock()
	if v != nil {
		v.close()
	}
}

// Has reports whether a VM is registered for stageID, the global VM excluded.
func (m *Manager) Has(stageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.vms[stageID]
	return ok && stageID != globalKey
}

// CallHook calls the Lua global function hook in stageID's VM, falling back to
// the global VM. Each call runs on a fresh instruction budget. A missing VM or
// hook returns (LNil, nil); Lua runtime errors, budget exhaustion included,
// are logged at Warn and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(stageID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vms[stageID]
	if !ok {
		v = m.vms[globalKey]
	}
	if v == nil {
		m.logger.Info("scripting: no VM for stage",
			zap.String("stage", stageID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	L := v.L
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	v.cancel()
	v.cancel = arm(L, v.limit)
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("stage", stageID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}
