package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoScript is returned by Run for a script that was never loaded.
var ErrNoScript = errors.New("no such script")

type script struct {
	L      *lua.LState
	cancel context.CancelFunc
	limit  int
}

// Manager owns one sandboxed LState per script and exposes hook dispatch.
// A script is named after its file without the .lua extension.
//
// Calls are serialized; the tz.* functions act on the object whose hook is
// running.
type Manager struct {
	mu      sync.Mutex
	scripts map[string]*script
	logger  *zap.Logger
	self    int64

	// Injected after construction. nil = no-op in tz.* functions.
	Say   func(self int64, text string)
	Emote func(self int64, text string)
	Move  func(self int64, exit string) bool
	Sleep func(self int64)
	Wake  func(self int64)
	Name  func(self int64) string
	Room  func(self int64) string
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scripts.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		scripts: make(map[string]*script),
		logger:  logger,
	}
}

// LoadDir loads every *.lua file in dir as its own script.
//
// Precondition: dir must be a readable directory.
// Postcondition: one script per file is registered; the first load failure is
// returned and the remaining files are skipped.
func (m *Manager) LoadDir(dir string, instLimit int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		src, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", f, err)
		}
		if err := m.LoadString(strings.TrimSuffix(f, ".lua"), string(src), instLimit); err != nil {
			return err
		}
	}
	m.logger.Info("scripts loaded", zap.String("dir", dir), zap.Int("count", len(files)))
	return nil
}

// LoadString creates a sandboxed VM for name, registers the tz module and
// runs src in it. A script already loaded under name is replaced.
//
// Precondition: name must be non-empty.
func (m *Manager) LoadString(name, src string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	if err := L.DoString(src); err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.scripts[name]; ok {
		old.L.Close()
	}
	m.scripts[name] = &script{L: L, limit: instLimit}
	return nil
}

// Names returns the loaded script names in order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.scripts))
	for name := range m.scripts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Has reports whether name is loaded.
func (m *Manager) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.scripts[name]
	return ok
}

// CallHook calls the named Lua global function in a script's VM on behalf of
// self. Returns (LNil, nil) if the hook is not defined. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(name, hook string, self int64, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scripts[name]
	if !ok {
		return lua.LNil, fmt.Errorf("scripting: %w: %s", ErrNoScript, name)
	}
	fn := s.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	m.self = self
	b := rearm(s.L, s.limit)
	defer b.cancel()
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", name),
			zap.String("hook", hook),
			zap.Int64("object", self),
			zap.Bool("budget_spent", b.spent()),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// Run calls hook with string arguments and discards the result.
func (m *Manager) Run(name, hook string, self int64, args ...string) error {
	vals := make([]lua.LValue, len(args))
	for i, a := range args {
		vals[i] = lua.LString(a)
	}
	_, err := m.CallHook(name, hook, self, vals...)
	return err
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, s := range m.scripts {
		s.L.Close()
		delete(m.scripts, name)
	}
}
