// Package parser converts command strings into Intent structs.
// Intentionally dumb: a fixed git-flavoured grammar, no NLP.
package parser

import (
	"strings"

	"github.com/nathoo/gitquest/types"
)

// Movement keys. WASD wins over compass letters, so "w" is north.
var directionKeys = map[string]types.Direction{
	"w":     types.North,
	"a":     types.West,
	"s":     types.South,
	"d":     types.East,
	"n":     types.North,
	"e":     types.East,
	"north": types.North,
	"south": types.South,
	"east":  types.East,
	"west":  types.West,
}

var verbAliases = map[string]string{
	"go":   "move",
	"walk": "move",
	"look": "inspect",
	"x":    "inspect",
	"?":    "help",
}

var subAliases = map[string]string{
	"switch": "checkout",
	"-h":     "help",
	"--help": "help",
	"cp":     "cherry-pick",
}

// Direction maps a movement key to a direction.
func Direction(token string) (types.Direction, bool) {
	d, ok := directionKeys[strings.ToLower(token)]
	return d, ok
}

// Parse converts a raw command string into an Intent. The verb and the git
// subcommand are lower-cased; arguments keep their case because branch
// names and hashes are case-sensitive.
func Parse(input string) types.Intent {
	words := strings.Fields(input)
	if len(words) == 0 {
		return types.Intent{}
	}

	verb := strings.ToLower(words[0])

	// Direction shortcut: bare "w", "north", etc. -> move <direction>
	if len(words) == 1 {
		if d, ok := directionKeys[verb]; ok {
			return types.Intent{Verb: "move", Args: []string{string(d)}}
		}
	}

	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}

	if verb != "git" {
		return types.Intent{Verb: verb, Args: words[1:]}
	}

	if len(words) == 1 {
		return types.Intent{Verb: "git"}
	}
	sub := strings.ToLower(words[1])
	if alias, ok := subAliases[sub]; ok {
		sub = alias
	}
	return types.Intent{Verb: "git", Sub: sub, Args: words[2:]}
}

// Flag reports whether args contains flag, case-insensitively.
func Flag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

// Positional returns the args that are not flags, dropping the value that
// follows any flag listed in valued (e.g. -m "msg").
func Positional(args []string, valued ...string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "-") && a != "-" {
			for _, v := range valued {
				if strings.EqualFold(a, v) {
					i++
					break
				}
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

// Message returns the text after -m, joined and unquoted, or "".
func Message(args []string) string {
	for i, a := range args {
		if strings.EqualFold(a, "-m") && i+1 < len(args) {
			msg := strings.Join(args[i+1:], " ")
			return strings.Trim(msg, `"'`)
		}
	}
	return ""
}
