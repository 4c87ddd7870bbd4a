package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/nathoo/gitquest/engine/effects"
	"github.com/nathoo/gitquest/engine/parser"
	"github.com/nathoo/gitquest/engine/particles"
	"github.com/nathoo/gitquest/engine/resolve"
	"github.com/nathoo/gitquest/engine/rules"
	"github.com/nathoo/gitquest/engine/state"
	"github.com/nathoo/gitquest/types"
)

// handler turns an intent into effects. Handlers never mutate state.
type handler func(e *Engine, in types.Intent) []types.Effect

// commands is keyed by verb, or "git <sub>" for git subcommands.
var commands = map[string]handler{
	"help":            (*Engine).cmdHelp,
	"git help":        (*Engine).cmdHelp,
	"move":            (*Engine).cmdMove,
	"swap":            (*Engine).cmdSwap,
	"inspect":         (*Engine).cmdInspect,
	"git status":      (*Engine).cmdStatus,
	"git branch":      (*Engine).cmdBranch,
	"git log":         (*Engine).cmdLog,
	"git rebase":      (*Engine).cmdRebase,
	"git revert":      (*Engine).cmdRevert,
	"git cherry-pick": (*Engine).cmdCherryPick,
	"git checkout":    (*Engine).cmdCheckout,
	"git add":         (*Engine).cmdAdd,
	"git commit":      (*Engine).cmdCommit,
	"git merge":       (*Engine).cmdMerge,
}

func (e *Engine) dispatch(in types.Intent) []types.Effect {
	key := in.Verb
	if in.Verb == "git" {
		key = "git " + in.Sub
	}
	if h, ok := commands[key]; ok {
		return h(e, in)
	}
	if in.Verb == "git" {
		return e.unknownGit(in)
	}
	return e.notFound(in.Verb)
}

func (e *Engine) notFound(verb string) []types.Effect {
	return effects.Fail(fmt.Sprintf("bash: %s: command not found. Try 'help'.", verb), e.Tuning.Penalties.UnknownCommand)
}

func (e *Engine) unknownGit(in types.Intent) []types.Effect {
	if in.Sub == "" {
		return effects.Fail("usage: git <command> [<args>]. Try 'help'.", e.Tuning.Penalties.UnknownGit)
	}
	return effects.Fail(fmt.Sprintf("git: '%s' is not a git command. See 'help'.", in.Sub), e.Tuning.Penalties.UnknownGit)
}

func (e *Engine) cmdHelp(in types.Intent) []types.Effect {
	hint := e.def.Hint
	if len(hint) == 0 {
		hint = []string{
			"Universal Commands:",
			"  move [w/a/s/d]   : Move Keif",
			"  git status       : Check state",
			"  git log          : View history",
		}
	}
	effs := []types.Effect{effects.Say(hint[0], types.LineInfo)}
	if len(hint) > 1 {
		effs = append(effs, effects.Say(strings.Join(hint[1:], "\n"), types.LinePlain))
	}
	return append(effs, effects.Cue(types.CueSuccess))
}

func (e *Engine) cmdMove(in types.Intent) []types.Effect {
	if len(in.Args) == 0 {
		return []types.Effect{effects.Say("Usage: move [w/a/s/d]", types.LineWarn)}
	}
	d, ok := parser.Direction(in.Args[0])
	if !ok {
		return []types.Effect{effects.Say("Usage: move [w/a/s/d]", types.LineWarn)}
	}
	if !e.canMove() {
		return nil
	}
	return e.moveEffects(d)
}

func (e *Engine) cmdSwap(in types.Intent) []types.Effect {
	sw := e.def.Script.Swap
	if sw == nil {
		return e.notFound(in.Verb)
	}
	if len(in.Args) < 2 {
		return []types.Effect{effects.Say("Usage: swap c1 slot1", types.LineWarn)}
	}
	a, err := resolve.Label(e.World, in.Args[0])
	if err != nil {
		return effects.Fail("Invalid target: "+err.Error()+".", e.Tuning.Penalties.Swap)
	}
	b, err := resolve.Label(e.World, in.Args[1])
	if err != nil {
		return effects.Fail("Invalid target: "+err.Error()+".", e.Tuning.Penalties.Swap)
	}
	if a.ID == b.ID {
		return effects.Fail("Invalid target: cannot swap a block with itself.", e.Tuning.Penalties.Swap)
	}

	effs := []types.Effect{
		{Type: "move_entity", Params: map[string]any{"entity": a.ID, "to": b.Position}},
		{Type: "move_entity", Params: map[string]any{"entity": b.ID, "to": a.Position}},
		effects.Burst(a.Position, 0, types.ColorGitOrange, 10),
		effects.Burst(b.Position, 0, types.ColorGitOrange, 10),
		effects.Cue(types.CueBranch),
		effects.Say(fmt.Sprintf("Swapped %s and %s.", a.Label, b.Label), types.LinePlain),
		effects.Action("swap", ""),
	}

	// Puzzle check against the positions after this swap.
	after := map[string]types.Vector3{a.ID: b.Position, b.ID: a.Position}
	var aligned []types.Vector3
	for _, label := range sw.Targets {
		ent, ok := e.World.FindLabel(label)
		if !ok {
			return effs
		}
		pos := ent.Position
		if p, moved := after[ent.ID]; moved {
			pos = p
		}
		if pos.Y != sw.Row {
			return effs
		}
		aligned = append(aligned, pos)
	}
	if state.HasCommit(e.Session, sw.Token) || e.queue.Pending(e.Session.Attempt, sw.Token) {
		return effs
	}

	success := []types.Effect{
		effects.Say("REBASE SUCCESS: Commits aligned. History linear.", types.LineSuccess),
		effects.Cue(types.CueMerge),
	}
	for _, pos := range aligned {
		success = append(success, effects.Burst(pos, 0, types.ColorKrakenGreen, 20))
	}
	success = append(success, effects.AppendCommit(sw.Token, true), effects.Action(sw.Token, ""))

	return append(effs, types.Effect{Type: "schedule", Params: map[string]any{
		"delay":   e.Tuning.Delays.RebaseSuccess,
		"tag":     sw.Token,
		"guard":   []types.Condition{notCommit(sw.Token)},
		"effects": success,
	}})
}

func (e *Engine) cmdInspect(in types.Intent) []types.Effect {
	if len(in.Args) == 0 {
		return []types.Effect{effects.Say("Usage: inspect <label>", types.LineWarn)}
	}
	ent, err := resolve.Label(e.World, strings.Join(in.Args, " "))
	if err != nil {
		return effects.Fail(err.Error(), 0)
	}

	p := e.Session.Player
	dist := math.Abs(float64(ent.Position.X-p.X)) + math.Abs(float64(ent.Position.Y-p.Y)) + math.Abs(float64(ent.Position.Z-p.Z))
	if dist > e.Tuning.InspectRange {
		return []types.Effect{
			effects.Say("Target too far to interact. Move closer.", types.LinePlain),
			effects.Cue(types.CueError),
		}
	}

	switch ent.Type {
	case types.EntityResource:
		effs := []types.Effect{effects.Say("> git add "+ent.Label, types.LineInput)}
		return append(effs, e.stageEffects(ent)...)
	case types.EntityObstacle:
		effs := []types.Effect{effects.Say("> Inspecting Obstacle: "+ent.Label, types.LinePlain)}
		if h := e.def.Script.ObstacleHint; h != "" {
			effs = append(effs, effects.Say("Hint: "+h, types.LineInfo))
		}
		return effs
	default:
		return []types.Effect{effects.Say("> Inspecting: "+ent.Label, types.LinePlain)}
	}
}

func (e *Engine) cmdStatus(in types.Intent) []types.Effect {
	s := e.Session
	var text string
	kind := types.LinePlain

	switch m := e.def.Script.Merge; {
	case len(e.def.Win) > 0 && rules.Won(e.def, s):
		text = fmt.Sprintf("On branch %s. All clean.", s.CurrentBranch)
		kind = types.LineSuccess
	case len(s.Inventory) > 0:
		lines := []string{fmt.Sprintf("On branch %s.", s.CurrentBranch), "Changes to be committed:"}
		for _, item := range s.Inventory {
			lines = append(lines, "  modified: "+item)
		}
		text = strings.Join(lines, "\n")
	case m != nil && s.CurrentBranch == "main" && !state.HasCommit(s, m.Requires):
		text = "On branch main.\nYou are detached from HEAD.\n" + m.Missing
		kind = types.LineWarn
	default:
		text = fmt.Sprintf("On branch %s.\nNothing to commit, working tree clean.", s.CurrentBranch)
	}

	return []types.Effect{
		effects.Say(text, kind),
		effects.Cue(types.CueSuccess),
		effects.Action("status", ""),
	}
}

func (e *Engine) cmdBranch(in types.Intent) []types.Effect {
	var effs []types.Effect
	for _, b := range e.Session.Branches {
		if b == e.Session.CurrentBranch {
			effs = append(effs, effects.Say("* "+b, types.LineSuccess))
		} else {
			effs = append(effs, effects.Say("  "+b, types.LinePlain))
		}
	}
	return append(effs, effects.Cue(types.CueSuccess))
}

func (e *Engine) cmdLog(in types.Intent) []types.Effect {
	var effs []types.Effect
	for _, line := range e.def.History {
		kind := types.LinePlain
		if strings.HasPrefix(line, "commit ") || strings.HasPrefix(line, "pick ") {
			kind = types.LineWarn
		}
		effs = append(effs, effects.Say(line, kind))
	}
	return append(effs, effects.Cue(types.CueSuccess), effects.Action("log", ""))
}

func (e *Engine) cmdRebase(in types.Intent) []types.Effect {
	guide := e.def.Script.Rebase
	if guide == nil || !parser.Flag(in.Args, "-i") {
		return e.unknownGit(in)
	}
	effs := []types.Effect{effects.Say("Interactive Rebase initiated.", types.LineInfo)}
	for _, line := range guide {
		effs = append(effs, effects.Say(line, types.LinePlain))
	}
	effs = append(effs, effects.Cue(types.CueMerge), effects.Action("rebase", ""))
	// Blocks swapped into place before the rebase: report the solved puzzle
	// again so the tutorial catches up in the same dispatch.
	if sw := e.def.Script.Swap; sw != nil && state.HasCommit(e.Session, sw.Token) {
		effs = append(effs, effects.Action(sw.Token, ""))
	}
	return effs
}

func (e *Engine) cmdRevert(in types.Intent) []types.Effect {
	arg := firstArg(in.Args)
	r := e.def.Script.Revert
	if r == nil || arg == "" || (arg != r.Hash && !strings.EqualFold(arg, "HEAD")) {
		return effects.Fail("fatal: Bad revision "+arg, e.Tuning.Penalties.BadRevision)
	}
	if state.HasCommit(e.Session, r.Token) {
		return effects.Fail("error: commit "+r.Hash+" has already been reverted.", e.Tuning.Penalties.BadRevision)
	}

	effs := []types.Effect{effects.AppendCommit(r.Token, true)}
	if bug, ok := e.World.Get(r.Obstacle); ok {
		effs = append(effs,
			effects.Burst(bug.Position, 0, types.ColorObstacleBug, 20),
			types.Effect{Type: "remove_entity", Params: map[string]any{"entity": bug.ID}},
		)
	}
	return append(effs,
		effects.Say(r.Message, types.LineSuccess),
		effects.Cue(types.CueRevert),
		effects.Action("revert", arg),
	)
}

func (e *Engine) cmdCherryPick(in types.Intent) []types.Effect {
	arg := firstArg(in.Args)
	c := e.def.Script.Cherry
	if c == nil || arg != c.Hash {
		return effects.Fail("fatal: bad object "+arg, e.Tuning.Penalties.BadObject)
	}
	if state.HasCommit(e.Session, c.Token) {
		return effects.Fail("error: commit "+c.Hash+" is already on this branch.", e.Tuning.Penalties.BadObject)
	}
	block, ok := e.World.FindLabel(c.Hash)
	if !ok {
		return effects.Fail("fatal: bad object "+arg, e.Tuning.Penalties.BadObject)
	}

	src := particles.At(block.Position)
	dst := particles.At(c.Dest)
	effs := []types.Effect{
		effects.BurstAt(src, types.ColorBlockGold, 15),
		{Type: "move_entity", Params: map[string]any{"entity": block.ID, "to": c.Dest}},
		{Type: "retype_entity", Params: map[string]any{"entity": block.ID, "type": types.EntityBlock, "color": c.Color}},
		effects.AppendCommit(c.Token, true),
		effects.Say(fmt.Sprintf("[%s %s] Cherry-pick: %s\n 1 file changed, 1 insertion(+)",
			e.Session.CurrentBranch, e.commitHash(c.Token), c.Hash), types.LineSuccess),
		effects.Say("Gap bridged! Move Keif to the finish line.", types.LinePlain),
		effects.Cue(types.CueMerge),
		effects.Action("cherry-pick", arg),
	}

	// Trail of sparks from the source to the gap, one burst per step.
	const trail = 6
	for i := 0; i < trail; i++ {
		at := particles.Lerp(src, dst, float64(i)/float64(trail-1))
		at.Z += 0.5
		effs = append(effs, types.Effect{Type: "schedule", Params: map[string]any{
			"delay":   float64(i) * e.Tuning.Delays.TrailStep,
			"tag":     "trail",
			"effects": []types.Effect{effects.BurstAt(at, types.ColorBlockGold, 4)},
		}})
	}
	return effs
}

func (e *Engine) cmdCheckout(in types.Intent) []types.Effect {
	pen := e.Tuning.Penalties.Branch
	names := parser.Positional(in.Args)

	if parser.Flag(in.Args, "-b") {
		if len(names) == 0 {
			return effects.Fail("Error: Branch name required.", pen)
		}
		name := names[0]
		if state.HasBranch(e.Session, name) {
			return effects.Fail(fmt.Sprintf("fatal: A branch named '%s' already exists.", name), pen)
		}
		return []types.Effect{
			{Type: "create_branch", Params: map[string]any{"name": name}},
			{Type: "switch_branch", Params: map[string]any{"name": name}},
			effects.Say(fmt.Sprintf("Switched to a new branch '%s'.", name), types.LineSuccess),
			effects.Cue(types.CueBranch),
			effects.Action("checkout -b", name),
		}
	}

	name := firstArg(names)
	if !state.HasBranch(e.Session, name) {
		return effects.Fail(fmt.Sprintf("error: pathspec '%s' did not match any file(s) known to git.", name), pen)
	}
	msg := fmt.Sprintf("Switched to branch '%s'", name)
	if name == e.Session.CurrentBranch {
		msg = fmt.Sprintf("Already on '%s'", name)
	}
	return []types.Effect{
		{Type: "switch_branch", Params: map[string]any{"name": name}},
		effects.Say(msg, types.LineSuccess),
		effects.Cue(types.CueSuccess),
		effects.Action("checkout", name),
	}
}

func (e *Engine) cmdAdd(in types.Intent) []types.Effect {
	res, ok := e.World.ResourceAt(e.Session.Player)
	if !ok {
		return effects.Fail("Nothing to add here.", e.Tuning.Penalties.Add)
	}
	return e.stageEffects(res)
}

// stageEffects stages a resource, shared by git add and inspect.
func (e *Engine) stageEffects(res types.VoxelEntity) []types.Effect {
	label := res.Label
	if label == "" {
		label = "file"
	}
	return []types.Effect{
		{Type: "stage", Params: map[string]any{"label": label, "entity": res.ID}},
		effects.Burst(res.Position, 1, types.ColorGitOrange, 10),
		effects.Say("Changes staged for commit.", types.LineSuccess),
		effects.Cue(types.CueSuccess),
		effects.Action("add", label),
	}
}

func (e *Engine) cmdCommit(in types.Intent) []types.Effect {
	s := e.Session
	if len(s.Inventory) == 0 {
		return effects.Fail("nothing to commit, working tree clean", e.Tuning.Penalties.Commit)
	}
	token := e.def.Script.CommitToken
	if token == "" {
		token = "commit:" + strings.Join(s.Inventory, ",")
	}
	msg := parser.Message(in.Args)
	if msg == "" {
		msg = e.def.Script.CommitMessage
	}
	if msg == "" {
		msg = "Update " + strings.Join(s.Inventory, ", ")
	}
	return []types.Effect{
		effects.AppendCommit(token, false),
		{Type: "clear_inventory"},
		effects.Say(fmt.Sprintf("[%s %s] %s\n %d file changed, 10 insertions(+)",
			s.CurrentBranch, e.commitHash(token), msg, len(s.Inventory)), types.LineSuccess),
		effects.Cue(types.CueCommit),
		effects.Action("commit", ""),
	}
}

func (e *Engine) cmdMerge(in types.Intent) []types.Effect {
	s := e.Session
	m := e.def.Script.Merge
	pen := e.Tuning.Penalties.Merge

	if s.CurrentBranch != "main" {
		return effects.Fail("Please checkout main before merging.", pen)
	}
	name := firstArg(parser.Positional(in.Args))
	if name == "" {
		return effects.Fail("usage: git merge <branch>", pen)
	}
	if !state.HasBranch(s, name) {
		return effects.Fail(fmt.Sprintf("merge: %s - not something we can merge", name), pen)
	}
	if m == nil {
		return effects.Fail("Branch is clean, nothing to merge.", pen)
	}
	if state.HasCommit(s, m.Token) {
		return []types.Effect{effects.Say("Already up to date.", types.LineInfo), effects.Cue(types.CueSuccess)}
	}
	if !state.HasCommit(s, m.Requires) {
		return effects.Fail("Branch is clean, nothing to merge.", pen)
	}

	e.logger.Info().Str("branch", name).Msg("merge conflict minigame started")
	return []types.Effect{
		effects.Say("CONFLICT DETECTED! Auto-merge failed.", types.LineError),
		effects.Say("Manual intervention required. Resolve the markers!", types.LineWarn),
		{Type: "start_minigame", Params: map[string]any{
			"continuation": types.Continuation{Kind: "merge", Branch: name},
		}},
		effects.Cue(types.CueAlert),
	}
}

// continuation returns the effects of a won minigame. Continuations from
// an older attempt are ignored.
func (e *Engine) continuation(c types.Continuation) []types.Effect {
	if c.Attempt != e.Session.Attempt {
		e.logger.Debug().Int("attempt", c.Attempt).Msg("stale continuation ignored")
		return nil
	}
	switch c.Kind {
	case "merge":
		m := e.def.Script.Merge
		if m == nil {
			return nil
		}
		fix := types.VoxelEntity{ID: "bridge_fix_main", Type: types.EntityBlock, Position: m.Fix, Color: m.Color}
		return []types.Effect{
			effects.AppendCommit(m.Token, true),
			{Type: "remove_type", Params: map[string]any{"type": types.EntityObstacle}},
			{Type: "add_entity", Params: map[string]any{"entities": []types.VoxelEntity{fix}}},
			effects.Burst(m.Fix, 1, m.Color, 20),
			effects.Say("Merge Conflict Resolved! Commit applied.", types.LineSuccess),
			effects.Cue(types.CueMerge),
			effects.Action("merge", c.Branch),
		}
	default:
		return nil
	}
}

// commitHash derives a short, stable commit id for log output.
func (e *Engine) commitHash(token string) string {
	key := fmt.Sprintf("%d/%d/%s/%d", e.Session.Level, e.Session.Attempt, token, len(e.Session.Commits))
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))[:6]
}

func notCommit(token string) types.Condition {
	inner := types.Condition{Type: "has_commit", Params: map[string]any{"token": token}}
	return types.Condition{Type: "not", Inner: &inner}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
