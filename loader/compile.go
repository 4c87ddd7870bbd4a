package loader

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gitquest/engine/effects"
	"github.com/nathoo/gitquest/engine/state"
	"github.com/nathoo/gitquest/types"
)

// kindPlatform marks a Platform{} entry; it expands into ground blocks.
const kindPlatform types.EntityType = "platform"

// rawLevel holds a Level{} table before compilation.
type rawLevel struct {
	file  string
	table *lua.LTable
}

// rawVoxel holds a voxel or platform table before compilation.
type rawVoxel struct {
	file  string
	id    string
	kind  types.EntityType
	table *lua.LTable
}

// rawHandler holds an event handler before compilation.
type rawHandler struct {
	file      string
	eventType string
	table     *lua.LTable
}

// defaultColors is used when a voxel does not set one.
var defaultColors = map[types.EntityType]string{
	types.EntityBlock:      types.ColorGround,
	types.EntityWall:       types.ColorGround,
	types.EntityGoal:       types.ColorBlockGold,
	types.EntityResource:   types.ColorResourceWood,
	types.EntityObstacle:   types.ColorObstacleVoid,
	types.EntityDecoration: types.ColorPlaceholder,
	kindPlatform:           types.ColorGround,
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the array part of a table field as strings.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	out := make([]string, 0, arr.MaxN())
	for i := 1; i <= arr.MaxN(); i++ {
		out = append(out, lua.LVAsString(arr.RawGetInt(i)))
	}
	return out
}

// toVec reads {x, y, z} or {x = .., y = .., z = ..}.
func toVec(v lua.LValue) (types.Vector3, bool) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return types.Vector3{}, false
	}
	if tbl.MaxN() >= 3 {
		return types.Vector3{
			X: int(lua.LVAsNumber(tbl.RawGetInt(1))),
			Y: int(lua.LVAsNumber(tbl.RawGetInt(2))),
			Z: int(lua.LVAsNumber(tbl.RawGetInt(3))),
		}, true
	}
	return types.Vector3{X: getInt(tbl, "x"), Y: getInt(tbl, "y"), Z: getInt(tbl, "z")}, true
}

func getVec(tbl *lua.LTable, key string) (types.Vector3, bool) {
	return toVec(tbl.RawGetString(key))
}

// color resolves a hex value or a palette name.
func color(s string) string {
	if hex, ok := types.Palette[s]; ok {
		return hex
	}
	return s
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if maxN := val.MaxN(); maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts the collected Lua data into a Catalog.
func compile(coll *collector) (*state.Catalog, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	cat := &state.Catalog{
		Title:  getString(coll.game, "title"),
		Levels: map[int]types.LevelDef{},
	}

	byFile := map[string]int{}
	for _, raw := range coll.levels {
		if prev, ok := byFile[raw.file]; ok {
			return nil, fmt.Errorf("%s: second Level{} after level %d", raw.file, prev)
		}
		def, err := compileLevel(raw.table)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.file, err)
		}
		if _, dup := cat.Levels[def.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate level id %d", raw.file, def.ID)
		}
		byFile[raw.file] = def.ID
		cat.Levels[def.ID] = def
	}

	for _, raw := range coll.voxels {
		id, ok := byFile[raw.file]
		if !ok {
			return nil, fmt.Errorf("%s: %s %q defined outside a Level{}", raw.file, raw.kind, raw.id)
		}
		ents, err := compileVoxel(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.file, err)
		}
		def := cat.Levels[id]
		def.Entities = append(def.Entities, ents...)
		cat.Levels[id] = def
	}

	for _, raw := range coll.handlers {
		id, ok := byFile[raw.file]
		if !ok {
			return nil, fmt.Errorf("%s: On(%q) defined outside a Level{}", raw.file, raw.eventType)
		}
		h, err := compileHandler(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: handler %s: %w", raw.file, raw.eventType, err)
		}
		def := cat.Levels[id]
		def.Handlers = append(def.Handlers, h)
		cat.Levels[id] = def
	}

	return cat, nil
}

func compileLevel(tbl *lua.LTable) (types.LevelDef, error) {
	def := types.LevelDef{
		ID:          getInt(tbl, "id"),
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Branch:      getString(tbl, "branch"),
		Branches:    getStrings(tbl, "branches"),
		Commits:     getStrings(tbl, "commits"),
		Objective:   getString(tbl, "objective"),
		Hint:        getStrings(tbl, "hint"),
		History:     getStrings(tbl, "history"),
	}
	if def.Branch == "" {
		def.Branch = "main"
	}
	if len(def.Branches) == 0 {
		def.Branches = []string{def.Branch}
	}
	if def.Commits == nil {
		def.Commits = []string{}
	}

	start, ok := getVec(tbl, "start")
	if !ok {
		return def, fmt.Errorf("level %d: start is required", def.ID)
	}
	def.Start = start
	if t, ok := getVec(tbl, "target"); ok {
		def.Target = &t
	}
	if w := getTable(tbl, "win"); w != nil {
		def.Win = compileConditions(w)
	}

	if tut := getTable(tbl, "tutorial"); tut != nil {
		for i := 1; i <= tut.MaxN(); i++ {
			stepTbl, ok := tut.RawGetInt(i).(*lua.LTable)
			if !ok {
				return def, fmt.Errorf("level %d: tutorial step %d is not a table", def.ID, i)
			}
			step, err := compileStep(stepTbl)
			if err != nil {
				return def, fmt.Errorf("level %d: tutorial step %d: %w", def.ID, i, err)
			}
			def.Tutorial = append(def.Tutorial, step)
		}
	}

	if s := getTable(tbl, "script"); s != nil {
		script, err := compileScript(s)
		if err != nil {
			return def, fmt.Errorf("level %d: script: %w", def.ID, err)
		}
		def.Script = script
	}
	return def, nil
}

func compileStep(tbl *lua.LTable) (types.TutorialStep, error) {
	on := getTable(tbl, "on")
	if on == nil {
		return types.TutorialStep{}, fmt.Errorf("missing trigger")
	}
	step := types.TutorialStep{
		On: types.Trigger{
			Kind:    getString(on, "kind"),
			X:       getInt(on, "x"),
			Y:       getInt(on, "y"),
			Command: getString(on, "command"),
			Arg:     getString(on, "arg"),
		},
		Objective: getString(tbl, "objective"),
	}
	if t, ok := getVec(tbl, "target"); ok {
		step.Target = &t
	}
	if e := getTable(tbl, "effects"); e != nil {
		effs, err := compileEffects(e)
		if err != nil {
			return step, err
		}
		step.Effects = effs
	}
	return step, nil
}

func compileScript(tbl *lua.LTable) (types.Script, error) {
	s := types.Script{
		CommitToken:   getString(tbl, "commit_token"),
		CommitMessage: getString(tbl, "commit_message"),
		ObstacleHint:  getString(tbl, "obstacle_hint"),
		Rebase:        getStrings(tbl, "rebase"),
	}

	if m := getTable(tbl, "merge"); m != nil {
		fix, ok := getVec(m, "fix")
		if !ok {
			return s, fmt.Errorf("merge.fix is required")
		}
		s.Merge = &types.MergeScript{
			Token:    getString(m, "token"),
			Requires: getString(m, "requires"),
			Fix:      fix,
			Color:    color(getString(m, "color")),
			Missing:  getString(m, "missing"),
		}
		if s.Merge.Color == "" {
			s.Merge.Color = types.ColorBranchMain
		}
	}

	if r := getTable(tbl, "revert"); r != nil {
		s.Revert = &types.RevertScript{
			Hash:     getString(r, "hash"),
			Token:    getString(r, "token"),
			Obstacle: getString(r, "obstacle"),
			Message:  getString(r, "message"),
		}
	}

	if c := getTable(tbl, "cherry"); c != nil {
		dest, ok := getVec(c, "dest")
		if !ok {
			return s, fmt.Errorf("cherry.dest is required")
		}
		s.Cherry = &types.CherryScript{
			Hash:  getString(c, "hash"),
			Token: getString(c, "token"),
			Dest:  dest,
			Color: color(getString(c, "color")),
		}
	}

	if sw := getTable(tbl, "swap"); sw != nil {
		s.Swap = &types.SwapScript{
			Targets: getStrings(sw, "targets"),
			Row:     getInt(sw, "row"),
			Token:   getString(sw, "token"),
		}
	}

	if g := getTable(tbl, "gap"); g != nil {
		at, ok := getVec(g, "at")
		if !ok {
			return s, fmt.Errorf("gap.at is required")
		}
		s.Gap = &types.GapScript{At: at, Message: getString(g, "message")}
	}
	return s, nil
}

// compileVoxel expands one Lua voxel or platform into entities.
func compileVoxel(raw rawVoxel) ([]types.VoxelEntity, error) {
	tbl := raw.table
	c := color(getString(tbl, "color"))
	if c == "" {
		c = defaultColors[raw.kind]
	}

	if raw.kind == kindPlatform {
		x, y, z := getInt(tbl, "x"), getInt(tbl, "y"), getInt(tbl, "z")
		w, h := getInt(tbl, "w"), getInt(tbl, "h")
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("platform at (%d,%d,%d) has size %dx%d", x, y, z, w, h)
		}
		out := make([]types.VoxelEntity, 0, w*h)
		for i := 0; i < w; i++ {
			for j := 0; j < h; j++ {
				out = append(out, types.VoxelEntity{
					ID:       fmt.Sprintf("ground_%d_%d_%d", x+i, y+j, z),
					Type:     types.EntityBlock,
					Position: types.Vector3{X: x + i, Y: y + j, Z: z},
					Color:    c,
				})
			}
		}
		return out, nil
	}

	at, ok := getVec(tbl, "at")
	if !ok {
		return nil, fmt.Errorf("%s %q: at is required", raw.kind, raw.id)
	}
	hidden, _ := tbl.RawGetString("hidden").(lua.LBool)
	return []types.VoxelEntity{{
		ID:       raw.id,
		Type:     raw.kind,
		Position: at,
		Color:    c,
		Label:    getString(tbl, "label"),
		Hidden:   bool(hidden),
	}}, nil
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for i := 1; i <= tbl.MaxN(); i++ {
		if condTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{Type: "not", Inner: &inner}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return types.Condition{Type: condType, Params: params}
}

func compileEffects(tbl *lua.LTable) ([]types.Effect, error) {
	var out []types.Effect
	for i := 1; i <= tbl.MaxN(); i++ {
		effTbl, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("effect %d is not a table", i)
		}
		effs, err := compileEffect(effTbl)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		out = append(out, effs...)
	}
	return out, nil
}

// compileEffect turns a Lua effect table into typed engine effects. One
// Lua effect may expand into several.
func compileEffect(tbl *lua.LTable) ([]types.Effect, error) {
	switch effType := getString(tbl, "type"); effType {
	case "say":
		return []types.Effect{effects.Say(getString(tbl, "text"), types.LineKind(getString(tbl, "kind")))}, nil

	case "shake":
		return []types.Effect{effects.Shake(getNumber(tbl, "amount"))}, nil

	case "cue":
		return []types.Effect{effects.Cue(types.Cue(getString(tbl, "cue")))}, nil

	case "burst":
		at, ok := getVec(tbl, "at")
		if !ok {
			return nil, fmt.Errorf("burst: at is required")
		}
		return []types.Effect{effects.Burst(at, getNumber(tbl, "dz"), color(getString(tbl, "color")), getInt(tbl, "count"))}, nil

	case "spawn_blocks":
		return compileSpawnBlocks(tbl)

	case "emit_event":
		return []types.Effect{{Type: "emit_event", Params: map[string]any{"event": getString(tbl, "event")}}}, nil

	case "stop":
		return []types.Effect{{Type: "stop"}}, nil

	default:
		// Unknown types are kept so validation can report them all at once.
		params := map[string]any{}
		tbl.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
				params[string(ks)] = toGoValue(v)
			}
		})
		return []types.Effect{{Type: effType, Params: params}}, nil
	}
}

// compileSpawnBlocks expands SpawnBlocks into one add_entity plus a small
// particle burst on every new block.
func compileSpawnBlocks(tbl *lua.LTable) ([]types.Effect, error) {
	prefix := getString(tbl, "prefix")
	if prefix == "" {
		prefix = "spawned"
	}
	c := color(getString(tbl, "color"))
	if c == "" {
		c = types.ColorGround
	}
	cells := getTable(tbl, "cells")
	if cells == nil || cells.MaxN() == 0 {
		return nil, fmt.Errorf("spawn_blocks: cells are required")
	}

	var ents []types.VoxelEntity
	var bursts []types.Effect
	for i := 1; i <= cells.MaxN(); i++ {
		at, ok := toVec(cells.RawGetInt(i))
		if !ok {
			return nil, fmt.Errorf("spawn_blocks: cell %d is not a vector", i)
		}
		ents = append(ents, types.VoxelEntity{
			ID:       fmt.Sprintf("%s_%d", strings.TrimSuffix(prefix, "_"), i),
			Type:     types.EntityBlock,
			Position: at,
			Color:    c,
		})
		bursts = append(bursts, effects.Burst(at, 0, c, 5))
	}
	add := types.Effect{Type: "add_entity", Params: map[string]any{"entities": ents}}
	return append([]types.Effect{add}, bursts...), nil
}

func compileHandler(raw rawHandler) (types.EventHandler, error) {
	h := types.EventHandler{EventType: raw.eventType}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		h.Conditions = compileConditions(condTbl)
	}
	if effTbl := getTable(raw.table, "effects"); effTbl != nil {
		effs, err := compileEffects(effTbl)
		if err != nil {
			return h, err
		}
		h.Effects = effs
	}
	return h, nil
}
