package rules

import (
	"testing"

	"github.com/nathoo/gitquest/types"
)

func condTestSession() *types.Session {
	return &types.Session{
		Level:         1,
		CurrentBranch: "fix-bridge",
		Branches:      []string{"main", "fix-bridge"},
		Inventory:     []string{"bridge.js"},
		Commits:       []string{"init", "commit:resources"},
		Status:        types.StatusPlaying,
		TutorialStep:  4,
	}
}

func TestEvalCondition(t *testing.T) {
	s := condTestSession()

	tests := []struct {
		name string
		cond types.Condition
		want bool
	}{
		{
			name: "has_commit: token present",
			cond: types.Condition{Type: "has_commit", Params: map[string]any{"token": "commit:resources"}},
			want: true,
		},
		{
			name: "has_commit: token missing",
			cond: types.Condition{Type: "has_commit", Params: map[string]any{"token": "merge:fix-bridge"}},
			want: false,
		},
		{
			name: "has_branch: known branch",
			cond: types.Condition{Type: "has_branch", Params: map[string]any{"branch": "main"}},
			want: true,
		},
		{
			name: "on_branch: current",
			cond: types.Condition{Type: "on_branch", Params: map[string]any{"branch": "fix-bridge"}},
			want: true,
		},
		{
			name: "on_branch: other",
			cond: types.Condition{Type: "on_branch", Params: map[string]any{"branch": "main"}},
			want: false,
		},
		{
			name: "staged: label in inventory",
			cond: types.Condition{Type: "staged", Params: map[string]any{"label": "bridge.js"}},
			want: true,
		},
		{
			name: "step_is: float from lua",
			cond: types.Condition{Type: "step_is", Params: map[string]any{"step": float64(4)}},
			want: true,
		},
		{
			name: "status_is: playing",
			cond: types.Condition{Type: "status_is", Params: map[string]any{"status": "playing"}},
			want: true,
		},
		{
			name: "not: negates inner",
			cond: types.Condition{Type: "not", Inner: &types.Condition{
				Type: "has_commit", Params: map[string]any{"token": "rebased"},
			}},
			want: true,
		},
		{
			name: "not: nil inner is true",
			cond: types.Condition{Type: "not"},
			want: true,
		},
		{
			name: "unknown type is false",
			cond: types.Condition{Type: "bogus"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvalCondition(tt.cond, s); got != tt.want {
				t.Errorf("EvalCondition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalAllConditions_Empty(t *testing.T) {
	if !EvalAllConditions(nil, condTestSession()) {
		t.Error("empty condition list should be true")
	}
}

func TestEvalAllConditions_AnyFalse(t *testing.T) {
	conds := []types.Condition{
		{Type: "has_branch", Params: map[string]any{"branch": "main"}},
		{Type: "has_commit", Params: map[string]any{"token": "nope"}},
	}
	if EvalAllConditions(conds, condTestSession()) {
		t.Error("expected false when one condition fails")
	}
}

func TestWon(t *testing.T) {
	def := types.LevelDef{
		Win: []types.Condition{{Type: "has_commit", Params: map[string]any{"token": "merge:fix-bridge"}}},
	}
	s := condTestSession()
	if Won(def, s) {
		t.Error("Won() = true before merge token")
	}
	s.Commits = append(s.Commits, "merge:fix-bridge")
	if !Won(def, s) {
		t.Error("Won() = false after merge token")
	}
}
