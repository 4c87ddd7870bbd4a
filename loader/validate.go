package loader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nathoo/gitquest/engine/state"
	"github.com/nathoo/gitquest/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Effect types level scripts may produce after compilation.
var validEffectTypes = map[string]bool{
	"say":             true,
	"cue":             true,
	"shake":           true,
	"spawn_particles": true,
	"add_entity":      true,
	"emit_event":      true,
	"stop":            true,
}

var validConditionTypes = map[string]bool{
	"has_commit": true,
	"has_branch": true,
	"on_branch":  true,
	"staged":     true,
	"step_is":    true,
	"status_is":  true,
	"not":        true,
}

// Events the engine emits; handlers on anything else never fire.
var knownEvents = map[string]bool{
	"commit_appended":  true,
	"staged":           true,
	"branch_created":   true,
	"branch_switched":  true,
	"player_moved":     true,
	"level_won":        true,
	"minigame_started": true,
	"action":           true,
}

// Command descriptors the interpreter reports to the tutorial.
var knownCommands = map[string]bool{
	"status": true, "log": true, "add": true, "commit": true,
	"checkout -b": true, "checkout": true, "merge": true,
	"revert": true, "cherry-pick": true, "rebase": true,
	"swap": true, "rebased": true,
}

// validate checks the compiled catalog for consistency.
func validate(cat *state.Catalog) *ValidationError {
	ve := &ValidationError{}

	if cat.Title == "" {
		ve.errorf("Game.title is required")
	}
	if len(cat.Levels) == 0 {
		ve.errorf("no Level{} definitions found")
	}

	ids := cat.IDs()
	for i, id := range ids {
		if id != i+1 {
			ve.warnf("level ids are not 1..%d; unlocking follows id order", len(ids))
			break
		}
	}

	for _, id := range ids {
		validateLevel(cat.Levels[id], ve)
	}
	return ve
}

func validateLevel(def types.LevelDef, ve *ValidationError) {
	where := fmt.Sprintf("level %d", def.ID)
	if def.ID <= 0 {
		ve.errorf("%s: id must be positive", where)
	}
	if def.Name == "" {
		ve.errorf("%s: name is required", where)
	}
	if !slices.Contains(def.Branches, def.Branch) {
		ve.errorf("%s: start branch %q is not in branches %v", where, def.Branch, def.Branches)
	}
	if len(def.Win) == 0 {
		ve.warnf("%s: no win condition, the goal wins immediately", where)
	}

	ids := map[string]bool{}
	labels := map[string]bool{}
	goals := 0
	for _, e := range def.Entities {
		if e.ID == "" {
			ve.errorf("%s: %s at %v has no id", where, e.Type, e.Position)
		} else if ids[e.ID] {
			ve.errorf("%s: duplicate entity id %q", where, e.ID)
		}
		ids[e.ID] = true
		if e.Label != "" {
			labels[strings.ToLower(e.Label)] = true
		}
		if e.Type == types.EntityGoal {
			goals++
		}
	}
	if goals != 1 {
		ve.errorf("%s: expected exactly one Goal, found %d", where, goals)
	}
	if def.Start.Z > 0 && !grounded(def.Entities, def.Start) {
		ve.errorf("%s: start %v has no ground below it", where, def.Start)
	}

	validateConditions(where+" win", def.Win, ve)
	for i, step := range def.Tutorial {
		stepWhere := fmt.Sprintf("%s tutorial step %d", where, i+1)
		switch step.On.Kind {
		case "move":
		case "command":
			if !knownCommands[step.On.Command] {
				ve.warnf("%s: command %q is never reported", stepWhere, step.On.Command)
			}
		default:
			ve.errorf("%s: unknown trigger kind %q", stepWhere, step.On.Kind)
		}
		if step.Objective == "" {
			ve.warnf("%s: empty objective", stepWhere)
		}
		validateEffects(stepWhere, step.Effects, ve)
	}

	for _, h := range def.Handlers {
		hWhere := fmt.Sprintf("%s handler %q", where, h.EventType)
		if !knownEvents[h.EventType] {
			ve.warnf("%s: event is never emitted", hWhere)
		}
		validateConditions(hWhere, h.Conditions, ve)
		validateEffects(hWhere, h.Effects, ve)
	}

	validateScript(where, def, ids, labels, ve)
}

func validateScript(where string, def types.LevelDef, ids, labels map[string]bool, ve *ValidationError) {
	s := def.Script
	if m := s.Merge; m != nil {
		if m.Token == "" || m.Requires == "" {
			ve.errorf("%s: merge needs token and requires", where)
		}
		if s.CommitToken != "" && m.Requires != s.CommitToken {
			ve.warnf("%s: merge requires %q but commits append %q", where, m.Requires, s.CommitToken)
		}
	}
	if r := s.Revert; r != nil {
		if r.Hash == "" || r.Token == "" {
			ve.errorf("%s: revert needs hash and token", where)
		}
		if r.Obstacle != "" && !ids[r.Obstacle] {
			ve.errorf("%s: revert obstacle %q is not an entity", where, r.Obstacle)
		}
	}
	if c := s.Cherry; c != nil {
		if c.Token == "" {
			ve.errorf("%s: cherry needs a token", where)
		}
		if !labels[strings.ToLower(c.Hash)] {
			ve.errorf("%s: no entity labelled with cherry hash %q", where, c.Hash)
		}
	}
	if sw := s.Swap; sw != nil {
		if sw.Token == "" || len(sw.Targets) == 0 {
			ve.errorf("%s: swap needs targets and token", where)
		}
		for _, t := range sw.Targets {
			if !labels[strings.ToLower(t)] {
				ve.errorf("%s: swap target %q is not a label", where, t)
			}
		}
	}
}

func validateConditions(where string, conditions []types.Condition, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.errorf("%s: unknown condition type %q", where, cond.Type)
		}
		if cond.Type == "not" && cond.Inner != nil {
			validateConditions(where, []types.Condition{*cond.Inner}, ve)
		}
	}
}

func validateEffects(where string, effs []types.Effect, ve *ValidationError) {
	for _, eff := range effs {
		if !validEffectTypes[eff.Type] {
			ve.errorf("%s: unknown effect type %q", where, eff.Type)
		}
	}
}

// grounded reports whether a block, wall or goal sits directly below pos.
func grounded(ents []types.VoxelEntity, pos types.Vector3) bool {
	for _, e := range ents {
		if e.Position.X != pos.X || e.Position.Y != pos.Y || e.Position.Z != pos.Z-1 {
			continue
		}
		switch e.Type {
		case types.EntityBlock, types.EntityWall, types.EntityGoal:
			return true
		}
	}
	return false
}
