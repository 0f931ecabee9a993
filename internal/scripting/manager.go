package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Manager owns a single sandboxed LState holding every loaded trigger script
// and exposes hook dispatch to the ability engine.
//
// The turn loop is single-threaded, so Manager sees no concurrent CallHook
// in practice; the mutex only guards against a Load racing an early call.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel func()
	logger *zap.Logger

	// Injected after construction. nil = the corresponding delve.* function
	// returns nil in Lua.
	HPPercent    func(id string) (float64, bool)
	Distance     func(id string) (int, bool)
	HasCondition func(id, name string) bool
	Roll         func(expr string) int
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Load creates the sandboxed VM, registers the delve module, then executes
// every *.lua file in scriptDir in lexicographic order. Calling Load again
// replaces the previous VM wholesale.
//
// Precondition: scriptDir must be a readable directory.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	cancel := func() { L.Close() }
	m.RegisterModule(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.cancel()
	}
	m.state = L
	m.cancel = cancel
	m.mu.Unlock()
	return nil
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined or no VM is loaded. Lua runtime errors are logged at
// Warn level and never propagated; a failing trigger reads as "not ready".
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	L := m.state
	m.mu.Unlock()

	if L == nil {
		m.logger.Info("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// TriggerAllows evaluates hook as an ability trigger for the creature with
// the given id. A hook that is missing, errors, or returns a non-true value
// vetoes the ability; only an explicit Lua true allows it.
func (m *Manager) TriggerAllows(hook, id string) bool {
	ret, err := m.CallHook(hook, lua.LString(id))
	if err != nil {
		return false
	}
	return ret == lua.LTrue
}

// Close tears down the VM. Safe to call twice.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.cancel()
		m.state = nil
		m.cancel = nil
	}
}
