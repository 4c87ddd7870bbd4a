package tutorial

import (
	"testing"

	"github.com/nathoo/gitquest/types"
)

func vec(x, y, z int) *types.Vector3 { return &types.Vector3{X: x, Y: y, Z: z} }

func testSteps() []types.TutorialStep {
	return []types.TutorialStep{
		{
			On:        types.Trigger{Kind: "move", X: 2, Y: 1},
			Objective: "Inspect the repository status.",
			Effects:   []types.Effect{{Type: "say", Params: map[string]any{"text": "Gap!"}}},
		},
		{
			On:        types.Trigger{Kind: "command", Command: "status"},
			Objective: "Create a branch.",
		},
		{
			On:        types.Trigger{Kind: "command", Command: "checkout -b"},
			Objective: "Move to the resource.",
			Target:    vec(2, 5, 1),
		},
	}
}

func TestAdvance(t *testing.T) {
	steps := testSteps()
	tests := []struct {
		name    string
		current int
		action  types.Action
		ok      bool
		want    string
	}{
		{"move on target", 0, types.Action{Kind: "move", At: types.Vector3{X: 2, Y: 1, Z: 1}}, true, "Inspect the repository status."},
		{"move elsewhere", 0, types.Action{Kind: "move", At: types.Vector3{X: 1, Y: 2, Z: 1}}, false, ""},
		{"command at move step", 0, types.Action{Kind: "command", Command: "status"}, false, ""},
		{"status", 1, types.Action{Kind: "command", Command: "status"}, true, "Create a branch."},
		{"wrong command", 1, types.Action{Kind: "command", Command: "log"}, false, ""},
		{"checkout -b any name", 2, types.Action{Kind: "command", Command: "checkout -b", Arg: "whatever"}, true, "Move to the resource."},
		{"plain checkout does not match -b", 2, types.Action{Kind: "command", Command: "checkout", Arg: "main"}, false, ""},
		{"past the end", 3, types.Action{Kind: "command", Command: "status"}, false, ""},
		{"negative cursor", -1, types.Action{Kind: "command", Command: "status"}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := Advance(steps, tt.current, tt.action)
			if ok != tt.ok {
				t.Fatalf("Advance(%d, %+v) ok = %v, want %v", tt.current, tt.action, ok, tt.ok)
			}
			if !ok {
				return
			}
			if u.Step != tt.current+1 {
				t.Errorf("Step = %d, want %d", u.Step, tt.current+1)
			}
			if u.Objective != tt.want {
				t.Errorf("Objective = %q, want %q", u.Objective, tt.want)
			}
		})
	}
}

func TestAdvance_CopiesTarget(t *testing.T) {
	steps := testSteps()
	u, ok := Advance(steps, 2, types.Action{Kind: "command", Command: "checkout -b"})
	if !ok || u.Target == nil {
		t.Fatalf("Advance = %+v, %v", u, ok)
	}
	u.Target.X = 99
	if steps[2].Target.X != 2 {
		t.Error("mutating the update changed the table")
	}
}

func TestAdvance_CarriesEffects(t *testing.T) {
	u, _ := Advance(testSteps(), 0, types.Action{Kind: "move", At: types.Vector3{X: 2, Y: 1}})
	if len(u.Effects) != 1 || u.Effects[0].Type != "say" {
		t.Errorf("Effects = %+v", u.Effects)
	}
}

func TestAdvance_Monotonic(t *testing.T) {
	steps := testSteps()
	actions := []types.Action{
		{Kind: "command", Command: "status"}, // ignored at step 0
		{Kind: "move", At: types.Vector3{X: 2, Y: 1}},
		{Kind: "move", At: types.Vector3{X: 2, Y: 1}}, // ignored at step 1
		{Kind: "command", Command: "status"},
		{Kind: "command", Command: "status"}, // ignored at step 2
		{Kind: "command", Command: "checkout -b", Arg: "fix"},
		{Kind: "command", Command: "checkout -b", Arg: "fix"}, // table exhausted
	}
	cur := 0
	for i, a := range actions {
		u, ok := Advance(steps, cur, a)
		if !ok {
			continue
		}
		if u.Step != cur+1 {
			t.Fatalf("action %d: step jumped from %d to %d", i, cur, u.Step)
		}
		cur = u.Step
	}
	if cur != 3 || !Done(steps, cur) {
		t.Errorf("final step = %d, want 3 and done", cur)
	}
}
