package engine

import (
	"github.com/nathoo/gitquest/engine/collision"
	"github.com/nathoo/gitquest/engine/effects"
	"github.com/nathoo/gitquest/engine/rules"
	"github.com/nathoo/gitquest/types"
)

var deltas = map[types.Direction]types.Vector3{
	types.North: {Y: -1},
	types.South: {Y: 1},
	types.West:  {X: -1},
	types.East:  {X: 1},
}

// canMove reports whether movement input is accepted at all.
func (e *Engine) canMove() bool {
	return e.Session.Status == types.StatusPlaying && !e.Session.Minigame.Active
}

// moveEffects checks one step in direction d and returns either the
// rejection feedback or the move, its tutorial action and, on the goal,
// the win sequence.
func (e *Engine) moveEffects(d types.Direction) []types.Effect {
	delta, ok := deltas[d]
	if !ok {
		return nil
	}
	from := e.Session.Player
	target := types.Vector3{X: from.X + delta.X, Y: from.Y + delta.Y, Z: from.Z}

	v := collision.Check(e.World, e.def.Script, target)
	if !v.OK {
		e.logger.Debug().Str("kind", string(v.Kind)).Int("x", target.X).Int("y", target.Y).Msg("move rejected")
		return e.rejectEffects(v)
	}

	effs := []types.Effect{
		{Type: "move_player", Params: map[string]any{"to": target}},
		effects.Cue(types.CueStep),
		effects.Moved(target),
	}

	goal, ok := e.World.Goal()
	if !ok || goal.Position.X != target.X || goal.Position.Y != target.Y {
		return effs
	}
	if !rules.Won(e.def, e.Session) {
		label := goal.Label
		if label == "" {
			label = "The goal"
		}
		return append(effs, effects.Say(label+" is not ready yet. Finish the lesson first.", types.LineWarn))
	}

	e.logger.Info().Int("level", e.Session.Level).Msg("level won")
	return append(effs,
		effects.Burst(target, 1, types.ColorGitOrange, e.Tuning.Particles.WinBurst),
		types.Effect{Type: "win", Params: map[string]any{"stars": 3}},
		effects.Say("HEAD reached. Deployment successful.", types.LineSuccess),
		effects.Cue(types.CueWin),
	)
}

func (e *Engine) rejectEffects(v collision.Verdict) []types.Effect {
	var effs []types.Effect
	switch v.Kind {
	case collision.Obstacle:
		effs = append(effs, effects.Say(v.Reason, types.LineError), effects.Shake(e.Tuning.Penalties.Obstacle))
	case collision.Gap:
		effs = append(effs, effects.Say(v.Reason, types.LineWarn))
	case collision.Ledge:
		effs = append(effs, effects.Say(v.Reason, types.LinePlain))
	}
	if v.Cue != "" {
		effs = append(effs, effects.Cue(v.Cue))
	}
	return effs
}
