package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gitquest/types"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerTriggerHelpers(L)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
	registerColors(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", version = "..." }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Level { id = 1, name = "...", ... }
	L.SetGlobal("Level", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.levels = append(coll.levels, rawLevel{file: coll.file, table: tbl})
		return 0
	}))

	// Block "id" { at = {x, y, z}, ... } and friends. Curried: the first
	// call takes the id and returns a function that takes the table.
	voxel := func(t types.EntityType) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				coll.voxels = append(coll.voxels, rawVoxel{file: coll.file, id: id, kind: t, table: tbl})
				return 0
			}))
			return 1
		})
	}
	L.SetGlobal("Block", voxel(types.EntityBlock))
	L.SetGlobal("Wall", voxel(types.EntityWall))
	L.SetGlobal("Goal", voxel(types.EntityGoal))
	L.SetGlobal("Resource", voxel(types.EntityResource))
	L.SetGlobal("Obstacle", voxel(types.EntityObstacle))
	L.SetGlobal("Decoration", voxel(types.EntityDecoration))

	// Platform { x, y, w, h, z, color }: a w*h rectangle of ground blocks.
	L.SetGlobal("Platform", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.voxels = append(coll.voxels, rawVoxel{file: coll.file, kind: kindPlatform, table: tbl})
		return 0
	}))

	// On("event_type", { conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{file: coll.file, eventType: eventType, table: tbl})
		return 0
	}))

	// Step { on = ..., objective = "...", target = {...}, effects = {...} }
	// is a pass-through so tutorial tables read the same as the rest.
	L.SetGlobal("Step", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}))
}

func registerTriggerHelpers(L *lua.LState) {
	// MoveTo(x, y)
	L.SetGlobal("MoveTo", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString("move"))
		tbl.RawSetString("x", L.CheckNumber(1))
		tbl.RawSetString("y", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// Command("checkout", "main"); the argument is optional.
	L.SetGlobal("Command", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString("command"))
		tbl.RawSetString("command", lua.LString(L.CheckString(1)))
		tbl.RawSetString("arg", lua.LString(L.OptString(2, "")))
		L.Push(tbl)
		return 1
	}))
}

// condition registers a one-argument condition helper.
func condition(L *lua.LState, name, condType, param string, check func(L *lua.LState, n int) lua.LValue) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(condType))
		tbl.RawSetString(param, check(L, 1))
		L.Push(tbl)
		return 1
	}))
}

func checkString(L *lua.LState, n int) lua.LValue { return lua.LString(L.CheckString(n)) }
func checkNumber(L *lua.LState, n int) lua.LValue { return L.CheckNumber(n) }

func registerConditionHelpers(L *lua.LState) {
	condition(L, "HasCommit", "has_commit", "token", checkString)
	condition(L, "HasBranch", "has_branch", "branch", checkString)
	condition(L, "OnBranch", "on_branch", "branch", checkString)
	condition(L, "Staged", "staged", "label", checkString)
	condition(L, "StepIs", "step_is", "step", checkNumber)
	condition(L, "StatusIs", "status_is", "status", checkString)

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text", "warn"); the kind is optional.
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("say"))
		tbl.RawSetString("text", lua.LString(L.CheckString(1)))
		tbl.RawSetString("kind", lua.LString(L.OptString(2, "")))
		L.Push(tbl)
		return 1
	}))

	// Shake(amount)
	L.SetGlobal("Shake", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("shake"))
		tbl.RawSetString("amount", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	// Cue("objective")
	L.SetGlobal("Cue", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("cue"))
		tbl.RawSetString("cue", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// Burst { at = {x, y, z}, color = ..., count = n }
	L.SetGlobal("Burst", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("type", lua.LString("burst"))
		L.Push(tbl)
		return 1
	}))

	// SpawnBlocks { prefix = "...", color = ..., cells = { {x, y, z}, ... } }
	L.SetGlobal("SpawnBlocks", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("type", lua.LString("spawn_blocks"))
		L.Push(tbl)
		return 1
	}))

	// EmitEvent("type")
	L.SetGlobal("EmitEvent", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("emit_event"))
		tbl.RawSetString("event", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// Stop()
	L.SetGlobal("Stop", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("stop"))
		L.Push(tbl)
		return 1
	}))
}

// registerColors exposes the palette as the Colors table.
func registerColors(L *lua.LState) {
	tbl := L.NewTable()
	for name, hex := range types.Palette {
		tbl.RawSetString(name, lua.LString(hex))
	}
	L.SetGlobal("Colors", tbl)
}
