// Package engine provides the Engine that wires together parsing, command
// handlers, effects, events, the tutorial and the timed subsystems.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/gitquest/engine/effects"
	"github.com/nathoo/gitquest/engine/events"
	"github.com/nathoo/gitquest/engine/minigame"
	"github.com/nathoo/gitquest/engine/parser"
	"github.com/nathoo/gitquest/engine/particles"
	"github.com/nathoo/gitquest/engine/rules"
	"github.com/nathoo/gitquest/engine/schedule"
	"github.com/nathoo/gitquest/engine/snapshot"
	"github.com/nathoo/gitquest/engine/state"
	"github.com/nathoo/gitquest/engine/world"
	"github.com/nathoo/gitquest/tuning"
	"github.com/nathoo/gitquest/types"
)

// ErrLevelLocked is returned by SelectLevel for levels not yet unlocked.
var ErrLevelLocked = errors.New("level locked")

// Engine owns the session and world of one player. It is not safe for
// concurrent use; front ends serialize every call.
type Engine struct {
	Catalog *state.Catalog
	Session *types.Session
	World   *world.Store
	RNG     *RNG
	Tuning  tuning.Tuning

	def    types.LevelDef
	queue  *schedule.Queue
	log    []types.Line
	logger zerolog.Logger
	seed   int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTuning overrides the embedded gameplay tuning.
func WithTuning(t tuning.Tuning) Option {
	return func(e *Engine) { e.Tuning = t }
}

// WithSeed fixes the RNG seed for reproducible runs.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// New creates an engine on the intro screen.
func New(cat *state.Catalog, opts ...Option) *Engine {
	e := &Engine{
		Catalog: cat,
		Session: state.NewSession(cat),
		World:   world.New(nil),
		Tuning:  tuning.Default(),
		queue:   schedule.New(),
		logger:  zerolog.Nop(),
		seed:    time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.RNG = NewRNG(e.seed)

	title := cat.Title
	if title == "" {
		title = "GitQuest"
	}
	e.Session.Message = "Welcome to the repo! Use 'w', 'a', 's', 'd' to move Keif around."
	e.log = []types.Line{
		{Text: "Welcome to " + title + "."},
		{Text: "Initializing repository..."},
		{Text: "Repo loaded."},
		{Text: "Type 'help' for commands.", Kind: types.LineInfo},
	}
	return e
}

// Level returns the definition of the loaded level.
func (e *Engine) Level() types.LevelDef {
	return e.def
}

// Log returns a copy of the player-facing log feed.
func (e *Engine) Log() []types.Line {
	out := make([]types.Line, len(e.log))
	copy(out, e.log)
	return out
}

// Snapshot returns a deep copy of the state renderers draw from.
func (e *Engine) Snapshot() snapshot.Snapshot {
	snap := snapshot.Take(e.Session, e.def.Name, e.World.Entities())
	snap.Seed = e.RNG.Seed()
	snap.RNGPosition = e.RNG.Position()
	return snap
}

// StartGame leaves the intro for the level map.
func (e *Engine) StartGame() types.Result {
	return e.screen(types.StatusMap, types.CueObjective)
}

// OpenKnowledgeBase shows the command reference.
func (e *Engine) OpenKnowledgeBase() types.Result {
	return e.screen(types.StatusKnowledgeBase, "")
}

// CloseKnowledgeBase returns to the map.
func (e *Engine) CloseKnowledgeBase() types.Result {
	return e.screen(types.StatusMap, "")
}

// ExitToMap abandons the current level. Pending deferred effects die with it.
func (e *Engine) ExitToMap() types.Result {
	e.queue.Reset()
	e.Session.Minigame = types.MinigameState{}
	return e.screen(types.StatusMap, "")
}

func (e *Engine) screen(st types.Status, cue types.Cue) types.Result {
	effs := []types.Effect{{Type: "set_status", Params: map[string]any{"status": st}}}
	if cue != "" {
		effs = append(effs, effects.Cue(cue))
	}
	var res types.Result
	e.commit(&res, effs)
	return res
}

// SelectLevel loads a level from the map, refusing locked ones.
func (e *Engine) SelectLevel(id int) (types.Result, error) {
	lp, ok := state.Progress(e.Session, id)
	if !ok {
		return types.Result{}, fmt.Errorf("level %d: %w", id, state.ErrUnknownLevel)
	}
	if !lp.Unlocked {
		return types.Result{}, fmt.Errorf("level %d: %w", id, ErrLevelLocked)
	}
	return e.LoadLevel(id)
}

// LoadLevel resets the world and every level-scoped session field from the
// catalog and starts a new attempt. Deferred effects of older attempts are
// dropped.
func (e *Engine) LoadLevel(id int) (types.Result, error) {
	def, err := e.Catalog.Level(id)
	if err != nil {
		return types.Result{}, err
	}
	e.def = def
	e.World = world.New(def.Entities)
	state.ResetForLevel(e.Session, def)
	e.queue.Reset()
	e.log = nil

	e.logger.Info().Int("level", id).Int("attempt", e.Session.Attempt).Str("name", def.Name).Msg("level loaded")

	var res types.Result
	res.Output = []types.Line{
		{Text: fmt.Sprintf("--- LOADED LEVEL %d: %s ---", id, def.Name), Kind: types.LineInfo},
		{Text: def.Description},
	}
	e.log = append(e.log, res.Output...)
	return res, nil
}

// Execute interprets one typed command line.
func (e *Engine) Execute(input string) types.Result {
	var res types.Result
	raw := strings.TrimSpace(input)
	if raw == "" {
		return res
	}

	echo := types.Line{Text: "> " + raw, Kind: types.LineInput}
	res.Output = append(res.Output, echo)
	e.log = append(e.log, echo)

	if e.Session.Status != types.StatusPlaying && e.Session.Status != types.StatusWon {
		e.commit(&res, []types.Effect{effects.Say("No level loaded. Pick one from the map.", types.LineWarn)})
		return res
	}
	if e.Session.Minigame.Active {
		e.commit(&res, []types.Effect{effects.Say("Resolve the merge conflict first! Use the arrow keys.", types.LineWarn)})
		return res
	}

	in := parser.Parse(raw)
	e.logger.Debug().
		Str("verb", in.Verb).
		Str("sub", in.Sub).
		Int("level", e.Session.Level).
		Int("step", e.Session.TutorialStep).
		Msg("command")

	e.commit(&res, e.dispatch(in))
	return res
}

// Move is a discrete movement intent from the input collaborator.
func (e *Engine) Move(d types.Direction) types.Result {
	var res types.Result
	if !e.canMove() {
		return res
	}
	e.commit(&res, e.moveEffects(d))
	return res
}

// MinigameInput feeds one arrow to an active minigame.
func (e *Engine) MinigameInput(a types.Arrow) types.Result {
	var res types.Result
	m := &e.Session.Minigame
	if !m.Active {
		return res
	}

	var effs []types.Effect
	switch minigame.Input(m, a) {
	case minigame.Hit:
		effs = append(effs, effects.Cue(types.CueHit))
	case minigame.Miss:
		effs = append(effs, effects.Cue(types.CueError), effects.Shake(e.Tuning.Penalties.MinigameMiss))
	case minigame.Success:
		e.logger.Info().Str("kind", m.OnSuccess.Kind).Msg("minigame won")
		effs = append(effs, effects.Cue(types.CueHit))
		effs = append(effs, e.continuation(m.OnSuccess)...)
	}
	e.commit(&res, effs)
	return res
}

// Tick advances the timed subsystems by dt seconds: particles and shake,
// the minigame countdown and the deferred effect queue. It is a cheap
// no-op when nothing is active.
func (e *Engine) Tick(dt float64) types.Result {
	var res types.Result
	s := e.Session

	s.Particles, s.Shake = particles.Step(s.Particles, s.Shake, e.Tuning.Particles, e.Tuning.Shake, dt)

	if minigame.Tick(&s.Minigame, dt) == minigame.Timeout {
		e.logger.Info().Msg("minigame timed out")
		e.commit(&res, []types.Effect{
			effects.Say("Merge Conflict Resolution Failed! Try again.", types.LineError),
			effects.Cue(types.CueError),
			effects.Shake(e.Tuning.Penalties.MinigameTimeout),
		})
	}

	for _, d := range e.queue.Advance(dt, s.Attempt) {
		if !rules.EvalAllConditions(d.Guard, s) {
			e.logger.Debug().Str("tag", d.Tag).Msg("deferred effect guarded off")
			continue
		}
		e.commit(&res, d.Effects)
	}
	return res
}

// commit applies effects, dispatches the resulting events once, applies
// what the handlers produced, and records everything in res and the log.
func (e *Engine) commit(res *types.Result, effs []types.Effect) {
	if len(effs) == 0 {
		return
	}
	env := effects.Env{Rand: e.RNG, Tuning: e.Tuning, Queue: e.queue}

	out := effects.Apply(e.Session, e.World, effs, env)
	e.record(res, effs, out)

	eventEffs := events.Dispatch(out.Events, e.Session, e.def)
	if len(eventEffs) > 0 {
		out2 := effects.Apply(e.Session, e.World, eventEffs, env)
		e.record(res, eventEffs, out2)
	}
}

func (e *Engine) record(res *types.Result, effs []types.Effect, out effects.Applied) {
	res.Effects = append(res.Effects, effs...)
	res.Events = append(res.Events, out.Events...)
	res.Output = append(res.Output, out.Output...)
	res.Cues = append(res.Cues, out.Cues...)
	e.log = append(e.log, out.Output...)
}
