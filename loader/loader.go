// Package loader compiles Lua level scripts into the immutable level
// catalog. The Lua VM is discarded after loading; nothing Lua runs during
// play.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gitquest/engine/state"
)

// collector accumulates Lua definitions while the level files run. Every
// definition remembers the file it came from so voxels and handlers can be
// attached to the Level{} of the same file.
type collector struct {
	game     *lua.LTable
	file     string
	levels   []rawLevel
	voxels   []rawVoxel
	handlers []rawHandler
}

// LoadDir loads every .lua file in dir.
func LoadDir(dir string) (*state.Catalog, error) {
	cat, err := Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("loading levels from %s: %w", dir, err)
	}
	return cat, nil
}

// Load runs every .lua file at the root of fsys in a sandboxed VM,
// compiles the definitions and validates them.
func Load(fsys fs.FS) (*state.Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading level directory: %w", err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found")
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		coll.file = f
		if err := L.DoString(string(src)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	cat, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling levels: %w", err)
	}

	ve := validate(cat)
	for _, w := range ve.Warnings {
		log.Warn().Msg(w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return cat, nil
}

// sortedLuaFiles puts game.lua first and the rest in name order.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if path.Base(f) == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the level data.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Levels must be deterministic.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
