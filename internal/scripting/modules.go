package scripting

import lua "github.com/yuin/gopher-lua"

// RegisterModule registers the delve.* Lua table into L. Every function
// consults the Manager's injected callbacks; a nil callback or an unknown
// id yields Lua nil so scripts can guard with plain truthiness.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the delve global is defined in L.
func (m *Manager) RegisterModule(L *lua.LState) {
	delve := L.NewTable()

	// delve.hp_percent(id) -> number in [0, 100] or nil
	L.SetField(delve, "hp_percent", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.HPPercent == nil {
			L.Push(lua.LNil)
			return 1
		}
		frac, ok := m.HPPercent(id)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(frac * 100))
		return 1
	}))

	// delve.distance(id) -> Chebyshev distance to the player or nil
	L.SetField(delve, "distance", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.Distance == nil {
			L.Push(lua.LNil)
			return 1
		}
		d, ok := m.Distance(id)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(d))
		return 1
	}))

	// delve.has_condition(id, name) -> boolean
	L.SetField(delve, "has_condition", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		name := L.CheckString(2)
		if m.HasCondition == nil {
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LBool(m.HasCondition(id, name)))
		return 1
	}))

	// delve.roll(expr) -> integer result of the dice expression
	L.SetField(delve, "roll", L.NewFunction(func(L *lua.LState) int {
		expr := L.CheckString(1)
		if m.Roll == nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.Roll(expr)))
		return 1
	}))

	L.SetGlobal("delve", delve)
}
