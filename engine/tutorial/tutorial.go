// Package tutorial walks a level's ordered table of expected actions.
package tutorial

import (
	"github.com/nathoo/gitquest/engine/rules"
	"github.com/nathoo/gitquest/types"
)

// Update is what a matched step changes.
type Update struct {
	Step      int // the new cursor, always current+1
	Objective string
	Target    *types.Vector3
	Effects   []types.Effect
}

// Advance checks a against the step at current. It returns false when the
// action does not match or the table is exhausted; the caller must then
// leave the cursor alone.
func Advance(steps []types.TutorialStep, current int, a types.Action) (Update, bool) {
	if current < 0 || current >= len(steps) {
		return Update{}, false
	}
	st := steps[current]
	if !rules.MatchTrigger(st.On, a) {
		return Update{}, false
	}
	var target *types.Vector3
	if st.Target != nil {
		v := *st.Target
		target = &v
	}
	return Update{
		Step:      current + 1,
		Objective: st.Objective,
		Target:    target,
		Effects:   st.Effects,
	}, true
}

// Done reports whether every step has been completed.
func Done(steps []types.TutorialStep, current int) bool {
	return current >= len(steps)
}
