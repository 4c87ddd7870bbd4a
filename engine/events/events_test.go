package events

import (
	"testing"

	"github.com/nathoo/gitquest/types"
)

func testDef() types.LevelDef {
	return types.LevelDef{
		ID: 1,
		Tutorial: []types.TutorialStep{
			{On: types.Trigger{Kind: "move", X: 2, Y: 1}, Objective: "Type 'git status'."},
			{On: types.Trigger{Kind: "command", Command: "status"}, Objective: "Branch off.",
				Effects: []types.Effect{{Type: "shake", Params: map[string]any{"amount": 0.5}}}},
			{On: types.Trigger{Kind: "command", Command: "checkout -b"}, Objective: "Walk."},
		},
		Handlers: []types.EventHandler{
			{
				EventType: "branch_created",
				Conditions: []types.Condition{
					{Type: "on_branch", Params: map[string]any{"branch": "fix-bridge"}},
				},
				Effects: []types.Effect{
					{Type: "say", Params: map[string]any{"text": "A wild path appeared!"}},
				},
			},
			{
				EventType: "commit_appended",
				Effects: []types.Effect{
					{Type: "cue", Params: map[string]any{"cue": "commit"}},
				},
			},
		},
	}
}

func action(a types.Action) types.Event {
	return types.Event{Type: "action", Data: map[string]any{"action": a}}
}

func TestDispatch_MatchesEventType(t *testing.T) {
	s := &types.Session{CurrentBranch: "main"}
	effs := Dispatch([]types.Event{{Type: "commit_appended"}}, s, testDef())
	if len(effs) != 1 || effs[0].Type != "cue" {
		t.Fatalf("effects = %+v", effs)
	}
}

func TestDispatch_ConditionsFilter(t *testing.T) {
	def := testDef()
	events := []types.Event{{Type: "branch_created", Data: map[string]any{"branch": "other"}}}

	s := &types.Session{CurrentBranch: "other"}
	if effs := Dispatch(events, s, def); len(effs) != 0 {
		t.Errorf("handler fired on wrong branch: %+v", effs)
	}

	s.CurrentBranch = "fix-bridge"
	if effs := Dispatch(events, s, def); len(effs) != 1 {
		t.Errorf("handler did not fire: %+v", effs)
	}
}

func TestDispatch_NoMatchingHandlers(t *testing.T) {
	s := &types.Session{}
	if effs := Dispatch([]types.Event{{Type: "player_moved"}}, s, testDef()); len(effs) != 0 {
		t.Errorf("expected no effects, got %+v", effs)
	}
}

func TestDispatch_TutorialAdvance(t *testing.T) {
	s := &types.Session{TutorialStep: 1}
	effs := Dispatch([]types.Event{
		action(types.Action{Kind: "command", Command: "status"}),
	}, s, testDef())

	if len(effs) != 3 {
		t.Fatalf("effects = %+v, want advance, cue and step effect", effs)
	}
	if effs[0].Type != "advance_tutorial" || effs[0].Params["step"] != 2 {
		t.Errorf("effs[0] = %+v", effs[0])
	}
	if effs[1].Type != "cue" || effs[1].Params["cue"] != types.CueObjective {
		t.Errorf("effs[1] = %+v", effs[1])
	}
	if effs[2].Type != "shake" {
		t.Errorf("effs[2] = %+v", effs[2])
	}
	if s.TutorialStep != 1 {
		t.Error("Dispatch mutated the session")
	}
}

func TestDispatch_TutorialMismatch(t *testing.T) {
	s := &types.Session{TutorialStep: 0}
	effs := Dispatch([]types.Event{
		action(types.Action{Kind: "command", Command: "status"}),
	}, s, testDef())
	if len(effs) != 0 {
		t.Errorf("mismatched action advanced: %+v", effs)
	}
}

func TestDispatch_OneStepPerAction(t *testing.T) {
	s := &types.Session{TutorialStep: 1}
	effs := Dispatch([]types.Event{
		action(types.Action{Kind: "command", Command: "status"}),
		action(types.Action{Kind: "command", Command: "checkout -b", Arg: "fix"}),
	}, s, testDef())

	var steps []int
	for _, e := range effs {
		if e.Type == "advance_tutorial" {
			steps = append(steps, e.Params["step"].(int))
		}
	}
	if len(steps) != 2 || steps[0] != 2 || steps[1] != 3 {
		t.Errorf("steps = %v, want [2 3]", steps)
	}
}

func TestDispatch_SinglePass(t *testing.T) {
	// Handlers that emit events are not re-dispatched.
	def := types.LevelDef{Handlers: []types.EventHandler{{
		EventType: "a",
		Effects:   []types.Effect{{Type: "emit_event", Params: map[string]any{"event": "a"}}},
	}}}
	effs := Dispatch([]types.Event{{Type: "a"}}, &types.Session{}, def)
	if len(effs) != 1 {
		t.Errorf("expected exactly 1 effect, got %d", len(effs))
	}
}
