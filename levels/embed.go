// Package levels embeds the Lua level scripts that ship with the game.
package levels

import "embed"

// FS holds game.lua and one file per level.
//
//go:embed *.lua
var FS embed.FS
