// Package rules evaluates level conditions and tutorial triggers.
package rules

import (
	"github.com/nathoo/gitquest/engine/state"
	"github.com/nathoo/gitquest/types"
)

// EvalCondition evaluates a single condition against the current session.
func EvalCondition(c types.Condition, s *types.Session) bool {
	switch c.Type {
	case "has_commit":
		token, _ := c.Params["token"].(string)
		return state.HasCommit(s, token)

	case "has_branch":
		branch, _ := c.Params["branch"].(string)
		return state.HasBranch(s, branch)

	case "on_branch":
		branch, _ := c.Params["branch"].(string)
		return s.CurrentBranch == branch

	case "staged":
		label, _ := c.Params["label"].(string)
		for _, l := range s.Inventory {
			if l == label {
				return true
			}
		}
		return false

	case "step_is":
		return s.TutorialStep == toInt(c.Params["step"])

	case "status_is":
		status, _ := c.Params["status"].(string)
		return string(s.Status) == status

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, s *types.Session) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s) {
			return false
		}
	}
	return true
}

// Won reports whether the level's win condition holds. A level without
// a win condition can only be finished by reaching its goal.
func Won(def types.LevelDef, s *types.Session) bool {
	return EvalAllConditions(def.Win, s)
}

// toInt converts an any value to int, handling float64 from Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
