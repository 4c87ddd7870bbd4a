package rules

import "github.com/nathoo/gitquest/types"

// MatchTrigger checks if a tutorial trigger matches the reported action.
func MatchTrigger(on types.Trigger, a types.Action) bool {
	if on.Kind != a.Kind {
		return false
	}

	switch on.Kind {
	case "move":
		// Moves match on the horizontal cell only; height follows the terrain.
		return a.At.X == on.X && a.At.Y == on.Y

	case "command":
		if on.Command != a.Command {
			return false
		}
		// An empty trigger argument accepts any argument.
		return on.Arg == "" || on.Arg == a.Arg

	default:
		return false
	}
}
