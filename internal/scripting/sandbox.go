// Package scripting runs mob behaviour written in Lua. Every script gets
// its own sandboxed VM with a bounded instruction budget per call. The
// package knows nothing about the world; game actions reach it through the
// Manager's callback fields.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit bounds one hook call when no limit is configured.
const DefaultInstructionLimit = 100_000

// unsafeGlobals are base library functions that reach the file system,
// compile new code or change function environments.
var unsafeGlobals = []string{
	"dofile", "loadfile", "load", "loadstring",
	"require", "module", "collectgarbage",
	"getfenv", "setfenv", "newproxy", "_printregs",
}

// budget is a context whose Done channel closes after a fixed number of
// polls. gopher-lua polls Done once per instruction while a context is set.
type budget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func newBudget(limit int) *budget {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	return b
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// spent reports whether the budget ran out.
func (b *budget) spent() bool { return b.left.Load() <= 0 }

// rearm gives L a fresh budget of limit instructions.
func rearm(L *lua.LState, limit int) *budget {
	b := newBudget(limit)
	L.SetContext(b)
	return b
}

// NewSandboxedState returns a VM with only the base, table, string and math
// libraries, the unsafe base functions removed, and a budget of instLimit
// instructions (DefaultInstructionLimit when instLimit is 0).
//
// Postcondition: the caller owns L and must Close it, and must call cancel
// once the first chunk has run.
func NewSandboxedState(instLimit int) (L *lua.LState, cancel context.CancelFunc) {
	L = lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L, rearm(L, instLimit).cancel
}
