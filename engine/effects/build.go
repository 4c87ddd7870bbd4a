package effects

import "github.com/nathoo/gitquest/types"

// Constructors for the effects command handlers emit most often.

func Say(text string, kind types.LineKind) types.Effect {
	return types.Effect{Type: "say", Params: map[string]any{"text": text, "kind": string(kind)}}
}

func Cue(c types.Cue) types.Effect {
	return types.Effect{Type: "cue", Params: map[string]any{"cue": c}}
}

func Shake(amount float64) types.Effect {
	return types.Effect{Type: "shake", Params: map[string]any{"amount": amount}}
}

// Burst spawns n particles at a grid cell offset by dz; n <= 0 uses the
// tuned default.
func Burst(at types.Vector3, dz float64, color string, n int) types.Effect {
	p := types.Point{X: float64(at.X), Y: float64(at.Y), Z: float64(at.Z) + dz}
	return BurstAt(p, color, n)
}

func BurstAt(at types.Point, color string, n int) types.Effect {
	return types.Effect{Type: "spawn_particles", Params: map[string]any{"at": at, "color": color, "count": n}}
}

func AppendCommit(token string, unique bool) types.Effect {
	return types.Effect{Type: "append_commit", Params: map[string]any{"token": token, "unique": unique}}
}

// Action reports a tutorial-relevant command.
func Action(command, arg string) types.Effect {
	a := types.Action{Kind: "command", Command: command, Arg: arg}
	return types.Effect{Type: "action", Params: map[string]any{"action": a}}
}

// Moved reports a tutorial-relevant step onto at.
func Moved(at types.Vector3) types.Effect {
	a := types.Action{Kind: "move", At: at}
	return types.Effect{Type: "action", Params: map[string]any{"action": a}}
}

// Fail is the standard error outcome: a red line, the error cue and a
// shake penalty (none when amount is zero).
func Fail(text string, amount float64) []types.Effect {
	effs := []types.Effect{Say(text, types.LineError), Cue(types.CueError)}
	if amount > 0 {
		effs = append(effs, Shake(amount))
	}
	return effs
}
