package scripting

import lua "github.com/yuin/gopher-lua"

// RegisterModules registers the tz Lua table into L. Every function acts on
// the object whose hook is running:
//
//	tz.say(text)      tz.emote(text)   tz.move(exit) -> bool
//	tz.sleep()        tz.wake()        tz.name() -> string
//	tz.room() -> string
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: tz global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	tz := L.NewTable()
	L.SetFuncs(tz, map[string]lua.LGFunction{
		"say": func(L *lua.LState) int {
			if m.Say != nil {
				m.Say(m.self, L.CheckString(1))
			}
			return 0
		},
		"emote": func(L *lua.LState) int {
			if m.Emote != nil {
				m.Emote(m.self, L.CheckString(1))
			}
			return 0
		},
		"move": func(L *lua.LState) int {
			ok := false
			if m.Move != nil {
				ok = m.Move(m.self, L.CheckString(1))
			}
			L.Push(lua.LBool(ok))
			return 1
		},
		"sleep": func(L *lua.LState) int {
			if m.Sleep != nil {
				m.Sleep(m.self)
			}
			return 0
		},
		"wake": func(L *lua.LState) int {
			if m.Wake != nil {
				m.Wake(m.self)
			}
			return 0
		},
		"name": func(L *lua.LState) int {
			name := ""
			if m.Name != nil {
				name = m.Name(m.self)
			}
			L.Push(lua.LString(name))
			return 1
		},
		"room": func(L *lua.LState) int {
			room := ""
			if m.Room != nil {
				room = m.Room(m.self)
			}
			L.Push(lua.LString(room))
			return 1
		},
	})
	L.SetGlobal("tz", tz)
}
