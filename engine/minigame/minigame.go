// Package minigame implements the timed arrow-sequence challenge that
// gates merge-conflict resolution.
package minigame

import "github.com/nathoo/gitquest/types"

// Outcome is the result of feeding the minigame a tick or an input.
type Outcome int

const (
	None Outcome = iota
	Hit
	Miss
	Success
	Timeout
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	default:
		return "none"
	}
}

// Rand is the random source sequences are drawn from.
type Rand interface {
	Intn(n int) int
}

// Arrows is the alphabet sequences are drawn from.
var Arrows = []types.Arrow{types.ArrowUp, types.ArrowDown, types.ArrowLeft, types.ArrowRight}

// Start arms a fresh sequence of length arrows with seconds on the clock.
// Any previous sequence is discarded.
func Start(m *types.MinigameState, r Rand, length int, seconds float64, cont types.Continuation) {
	seq := make([]types.Arrow, length)
	for i := range seq {
		seq[i] = Arrows[r.Intn(len(Arrows))]
	}
	*m = types.MinigameState{
		Active:    true,
		Sequence:  seq,
		TimeLeft:  seconds,
		MaxTime:   seconds,
		OnSuccess: cont,
	}
}

// Tick counts the clock down. It returns Timeout exactly once, when the
// clock runs out on an active game.
func Tick(m *types.MinigameState, dt float64) Outcome {
	if !m.Active {
		return None
	}
	m.TimeLeft -= dt
	if m.TimeLeft <= 0 {
		m.TimeLeft = 0
		m.Active = false
		return Timeout
	}
	return None
}

// Input feeds one arrow. A miss keeps progress. Success is returned once,
// on the arrow that completes the sequence; the caller then runs
// m.OnSuccess.
func Input(m *types.MinigameState, a types.Arrow) Outcome {
	if !m.Active || m.Index >= len(m.Sequence) {
		return None
	}
	if m.Sequence[m.Index] != a {
		return Miss
	}
	m.Index++
	if m.Index == len(m.Sequence) {
		m.Active = false
		return Success
	}
	return Hit
}

// Next returns the arrow expected next, if any.
func Next(m types.MinigameState) (types.Arrow, bool) {
	if !m.Active || m.Index >= len(m.Sequence) {
		return "", false
	}
	return m.Sequence[m.Index], true
}
