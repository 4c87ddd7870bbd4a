// Package events implements single-pass event handler dispatch.
// Event handlers produce additional effects but do not recurse.
package events

import (
	"github.com/nathoo/gitquest/engine/effects"
	"github.com/nathoo/gitquest/engine/rules"
	"github.com/nathoo/gitquest/engine/tutorial"
	"github.com/nathoo/gitquest/types"
)

// Dispatch runs the level's event handlers and tutorial table against the
// emitted events. Single pass — no recursion. Returns additional effects
// produced by matching handlers and tutorial steps.
func Dispatch(events []types.Event, s *types.Session, def types.LevelDef) []types.Effect {
	var result []types.Effect
	step := s.TutorialStep

	for _, event := range events {
		if event.Type == "action" {
			a, _ := event.Data["action"].(types.Action)
			if u, ok := tutorial.Advance(def.Tutorial, step, a); ok {
				step = u.Step
				result = append(result, types.Effect{
					Type: "advance_tutorial",
					Params: map[string]any{
						"step":      u.Step,
						"objective": u.Objective,
						"target":    u.Target,
					},
				}, effects.Cue(types.CueObjective))
				result = append(result, u.Effects...)
			}
		}

		for _, handler := range def.Handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !rules.EvalAllConditions(handler.Conditions, s) {
				continue
			}
			result = append(result, handler.Effects...)
		}
	}

	return result
}
