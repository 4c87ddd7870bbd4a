// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"fmt"
	"strings"

	"github.com/nathoo/gitquest/engine/minigame"
	"github.com/nathoo/gitquest/engine/particles"
	"github.com/nathoo/gitquest/engine/schedule"
	"github.com/nathoo/gitquest/engine/state"
	"github.com/nathoo/gitquest/engine/world"
	"github.com/nathoo/gitquest/tuning"
	"github.com/nathoo/gitquest/types"
)

// Rand is the random source for particle bursts and minigame sequences.
type Rand interface {
	Intn(n int) int
	Float() float64
}

// Env is everything Apply needs besides the state it mutates.
type Env struct {
	Rand   Rand
	Tuning tuning.Tuning
	Queue  *schedule.Queue
}

// Applied is what a batch of effects produced.
type Applied struct {
	Events []types.Event
	Output []types.Line
	Cues   []types.Cue
}

// Apply applies a list of effects to the session and world, mutating them.
// Returns events emitted, output lines and cue requests collected.
func Apply(s *types.Session, w *world.Store, effs []types.Effect, env Env) Applied {
	var out Applied

	for _, eff := range effs {
		p := eff.Params
		switch eff.Type {
		case "say":
			text, _ := p["text"].(string)
			kind, _ := p["kind"].(string)
			for _, line := range strings.Split(interpolate(text, s), "\n") {
				out.Output = append(out.Output, types.Line{Text: line, Kind: types.LineKind(kind)})
			}

		case "cue":
			out.Cues = append(out.Cues, cueParam(p["cue"]))

		case "shake":
			s.Shake = clamp01(toFloat(p["amount"]))

		case "spawn_particles":
			at, _ := p["at"].(types.Point)
			color, _ := p["color"].(string)
			n := toInt(p["count"])
			if n <= 0 {
				n = env.Tuning.Particles.Burst
			}
			s.Particles = append(s.Particles, particles.Burst(env.Rand, env.Tuning.Particles, at, color, n)...)

		case "append_commit":
			token, _ := p["token"].(string)
			if unique, _ := p["unique"].(bool); unique && state.HasCommit(s, token) {
				continue
			}
			s.Commits = append(s.Commits, token)
			out.Events = append(out.Events, types.Event{
				Type: "commit_appended",
				Data: map[string]any{"token": token},
			})

		case "stage":
			label, _ := p["label"].(string)
			id, _ := p["entity"].(string)
			s.Inventory = append(s.Inventory, label)
			w.Update(id, func(e *types.VoxelEntity) { e.Hidden = true })
			out.Events = append(out.Events, types.Event{
				Type: "staged",
				Data: map[string]any{"label": label, "entity": id},
			})

		case "clear_inventory":
			s.Inventory = []string{}

		case "create_branch":
			name, _ := p["name"].(string)
			if state.HasBranch(s, name) {
				continue
			}
			s.Branches = append(s.Branches, name)
			out.Events = append(out.Events, types.Event{
				Type: "branch_created",
				Data: map[string]any{"branch": name},
			})

		case "switch_branch":
			name, _ := p["name"].(string)
			s.CurrentBranch = name
			out.Events = append(out.Events, types.Event{
				Type: "branch_switched",
				Data: map[string]any{"branch": name},
			})

		case "move_entity":
			id, _ := p["entity"].(string)
			to, _ := p["to"].(types.Vector3)
			w.Update(id, func(e *types.VoxelEntity) { e.Position = to })

		case "retype_entity":
			id, _ := p["entity"].(string)
			t, _ := p["type"].(types.EntityType)
			color, _ := p["color"].(string)
			w.Update(id, func(e *types.VoxelEntity) {
				if t != "" {
					e.Type = t
				}
				if color != "" {
					e.Color = color
				}
			})

		case "remove_entity":
			id, _ := p["entity"].(string)
			w.Remove(id)

		case "remove_type":
			t, _ := p["type"].(types.EntityType)
			for _, id := range w.OfType(t) {
				w.Remove(id)
			}

		case "add_entity":
			ents, _ := p["entities"].([]types.VoxelEntity)
			for _, e := range ents {
				w.Add(e)
			}

		case "move_player":
			to, _ := p["to"].(types.Vector3)
			s.Player = to
			out.Events = append(out.Events, types.Event{
				Type: "player_moved",
				Data: map[string]any{"to": to},
			})

		case "set_status":
			st, _ := p["status"].(types.Status)
			s.Status = st

		case "advance_tutorial":
			s.TutorialStep = toInt(p["step"])
			if s.Status == types.StatusWon {
				continue
			}
			if obj, ok := p["objective"].(string); ok && obj != "" {
				s.Objective = obj
			}
			target, _ := p["target"].(*types.Vector3)
			s.Target = target

		case "win":
			stars := toInt(p["stars"])
			s.Status = types.StatusWon
			s.Objective = "Level Complete!"
			s.Target = nil
			state.MarkWon(s, stars)
			out.Events = append(out.Events, types.Event{
				Type: "level_won",
				Data: map[string]any{"level": s.Level, "stars": stars},
			})

		case "start_minigame":
			cont, _ := p["continuation"].(types.Continuation)
			cont.Attempt = s.Attempt
			mg := env.Tuning.Minigame
			minigame.Start(&s.Minigame, env.Rand, mg.Length, mg.Seconds, cont)
			out.Events = append(out.Events, types.Event{
				Type: "minigame_started",
				Data: map[string]any{"kind": cont.Kind},
			})

		case "schedule":
			if env.Queue == nil {
				continue
			}
			delay := toFloat(p["delay"])
			tag, _ := p["tag"].(string)
			guard, _ := p["guard"].([]types.Condition)
			batch, _ := p["effects"].([]types.Effect)
			env.Queue.Add(delay, types.Deferred{
				Attempt: s.Attempt,
				Tag:     tag,
				Guard:   guard,
				Effects: batch,
			})

		case "action":
			a, _ := p["action"].(types.Action)
			out.Events = append(out.Events, types.Event{
				Type: "action",
				Data: map[string]any{"action": a},
			})

		case "emit_event":
			event, _ := p["event"].(string)
			out.Events = append(out.Events, types.Event{
				Type: event,
				Data: map[string]any{},
			})

		case "stop":
			return out

		default:
			// Unknown effect type — ignore silently.
		}
	}

	return out
}

// interpolate replaces template variables in text.
func interpolate(text string, s *types.Session) string {
	if !strings.Contains(text, "{") {
		return text
	}
	r := strings.NewReplacer(
		"{branch}", s.CurrentBranch,
		"{level}", fmt.Sprint(s.Level),
		"{staged}", strings.Join(s.Inventory, ", "),
	)
	return r.Replace(text)
}

// cueParam accepts both typed cues from Go and plain strings from Lua.
func cueParam(v any) types.Cue {
	switch c := v.(type) {
	case types.Cue:
		return c
	case string:
		return types.Cue(c)
	default:
		return ""
	}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

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

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
