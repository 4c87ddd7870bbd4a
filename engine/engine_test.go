package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/gitquest/engine/minigame"
	"github.com/nathoo/gitquest/engine/snapshot"
	"github.com/nathoo/gitquest/engine/state"
	"github.com/nathoo/gitquest/levels"
	"github.com/nathoo/gitquest/loader"
	"github.com/nathoo/gitquest/types"
)

func testCatalog(t *testing.T) *state.Catalog {
	t.Helper()
	cat, err := loader.Load(levels.FS)
	if err != nil {
		t.Fatalf("loading levels: %v", err)
	}
	return cat
}

// newTestEngine returns an engine with level id loaded.
func newTestEngine(t *testing.T, id int) *Engine {
	t.Helper()
	e := New(testCatalog(t), WithSeed(7))
	e.StartGame()
	if _, err := e.LoadLevel(id); err != nil {
		t.Fatalf("LoadLevel(%d): %v", id, err)
	}
	return e
}

var keyDirs = map[rune]types.Direction{
	'w': types.North, 'a': types.West, 's': types.South, 'd': types.East,
}

// walk moves along a WASD path such as "dss".
func walk(e *Engine, path string) types.Result {
	var last types.Result
	for _, k := range path {
		last = e.Move(keyDirs[k])
	}
	return last
}

func run(e *Engine, cmds ...string) types.Result {
	var last types.Result
	for _, c := range cmds {
		last = e.Execute(c)
	}
	return last
}

func solveMinigame(t *testing.T, e *Engine) types.Result {
	t.Helper()
	var res types.Result
	for i := 0; i < 100; i++ {
		a, ok := minigame.Next(e.Session.Minigame)
		if !ok {
			return res
		}
		res = e.MinigameInput(a)
	}
	t.Fatal("minigame never finished")
	return res
}

func hasLine(res types.Result, substr string) bool {
	for _, l := range res.Output {
		if strings.Contains(l.Text, substr) {
			return true
		}
	}
	return false
}

func hasCue(res types.Result, c types.Cue) bool {
	for _, x := range res.Cues {
		if x == c {
			return true
		}
	}
	return false
}

func count(list []string, v string) int {
	n := 0
	for _, x := range list {
		if x == v {
			n++
		}
	}
	return n
}

// levelOneToMerge plays level 1 up to the merge conflict.
func levelOneToMerge(t *testing.T, e *Engine) {
	t.Helper()
	walk(e, "d")
	run(e, "git status", "git checkout -b fix-bridge")
	walk(e, "asssds")
	run(e, "git add .", `git commit -m "fix bridge"`, "git checkout main", "git merge fix-bridge")
	if !e.Session.Minigame.Active {
		t.Fatalf("merge did not start the minigame; log tail: %v", tail(e.Log(), 4))
	}
}

func tail(lines []types.Line, n int) []types.Line {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

func TestNew_IntroState(t *testing.T) {
	e := New(testCatalog(t), WithSeed(1))
	if e.Session.Status != types.StatusIntro {
		t.Errorf("Status = %q, want intro", e.Session.Status)
	}
	log := e.Log()
	if len(log) != 4 || log[0].Text != "Welcome to GitQuest." {
		t.Errorf("intro log = %v", log)
	}
	if lp, _ := state.Progress(e.Session, 1); !lp.Unlocked {
		t.Error("level 1 should start unlocked")
	}
	if lp, _ := state.Progress(e.Session, 2); lp.Unlocked {
		t.Error("level 2 should start locked")
	}
}

func TestScreens(t *testing.T) {
	e := New(testCatalog(t), WithSeed(1))
	res := e.StartGame()
	if e.Session.Status != types.StatusMap || !hasCue(res, types.CueObjective) {
		t.Errorf("StartGame: status %q cues %v", e.Session.Status, res.Cues)
	}
	e.OpenKnowledgeBase()
	if e.Session.Status != types.StatusKnowledgeBase {
		t.Errorf("OpenKnowledgeBase: status %q", e.Session.Status)
	}
	e.CloseKnowledgeBase()
	if e.Session.Status != types.StatusMap {
		t.Errorf("CloseKnowledgeBase: status %q", e.Session.Status)
	}
	res = e.Execute("git status")
	if !hasLine(res, "No level loaded") {
		t.Errorf("command on map: %v", res.Output)
	}
}

func TestSelectLevel(t *testing.T) {
	e := New(testCatalog(t), WithSeed(1))
	if _, err := e.SelectLevel(2); !errors.Is(err, ErrLevelLocked) {
		t.Errorf("SelectLevel(2) err = %v, want ErrLevelLocked", err)
	}
	if _, err := e.SelectLevel(9); !errors.Is(err, state.ErrUnknownLevel) {
		t.Errorf("SelectLevel(9) err = %v, want ErrUnknownLevel", err)
	}
	res, err := e.SelectLevel(1)
	if err != nil {
		t.Fatalf("SelectLevel(1): %v", err)
	}
	if !hasLine(res, "--- LOADED LEVEL 1: The Detached Bridge ---") {
		t.Errorf("banner missing: %v", res.Output)
	}
	if e.Session.Status != types.StatusPlaying || e.Session.Player != (types.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("after load: status %q player %v", e.Session.Status, e.Session.Player)
	}
}

func TestLevelOne_FullRun(t *testing.T) {
	e := newTestEngine(t, 1)
	levelOneToMerge(t, e)

	res := solveMinigame(t, e)
	if !hasLine(res, "Merge Conflict Resolved!") {
		t.Errorf("merge output = %v", res.Output)
	}
	if !state.HasCommit(e.Session, "merge:fix-bridge") {
		t.Fatalf("commits = %v, want merge:fix-bridge", e.Session.Commits)
	}
	if len(e.World.OfType(types.EntityObstacle)) != 0 {
		t.Error("obstacles should be cleared by the merge")
	}
	if e.Session.TutorialStep != 8 {
		t.Errorf("TutorialStep = %d, want 8", e.Session.TutorialStep)
	}

	res = walk(e, "wawwdwddd")
	if e.Session.Status != types.StatusWon {
		t.Fatalf("Status = %q at %v, want won", e.Session.Status, e.Session.Player)
	}
	if !hasLine(res, "HEAD reached") || !hasCue(res, types.CueWin) {
		t.Errorf("win output = %v cues %v", res.Output, res.Cues)
	}
	if e.Session.Objective != "Level Complete!" || e.Session.Target != nil {
		t.Errorf("objective %q target %v", e.Session.Objective, e.Session.Target)
	}
	if lp, _ := state.Progress(e.Session, 1); lp.Stars != 3 {
		t.Errorf("stars = %d, want 3", lp.Stars)
	}
	if _, err := e.SelectLevel(2); err != nil {
		t.Errorf("level 2 should be unlocked: %v", err)
	}
}

func TestLevelOne_BranchSpawnsConnectors(t *testing.T) {
	e := newTestEngine(t, 1)
	run(e, "git checkout -b elsewhere")
	if _, ok := e.World.Get("bridge_conn_1"); ok {
		t.Error("connectors spawned for the wrong branch")
	}
	run(e, "git checkout main", "git checkout -b fix-bridge")
	for _, id := range []string{"bridge_conn_1", "bridge_conn_2", "bridge_conn_3"} {
		if _, ok := e.World.Get(id); !ok {
			t.Errorf("%s missing", id)
		}
	}
}

func TestLevelOne_BranchStepNeedsFixBridge(t *testing.T) {
	e := newTestEngine(t, 1)
	walk(e, "d")
	run(e, "git status")
	if e.Session.TutorialStep != 2 {
		t.Fatalf("TutorialStep = %d, want 2", e.Session.TutorialStep)
	}

	run(e, "git checkout -b foo")
	if e.Session.TutorialStep != 2 {
		t.Errorf("checkout -b foo advanced the tutorial to %d", e.Session.TutorialStep)
	}
	if _, ok := e.World.Get("bridge_conn_1"); ok {
		t.Error("connectors spawned for foo")
	}

	res := run(e, "git checkout -b fix-bridge")
	if e.Session.TutorialStep != 3 || !hasCue(res, types.CueObjective) {
		t.Errorf("TutorialStep = %d after fix-bridge, want 3", e.Session.TutorialStep)
	}
	if _, ok := e.World.Get("bridge_conn_1"); !ok {
		t.Error("connectors missing after fix-bridge")
	}
}

func TestLevelFour_SwapBeforeRebase(t *testing.T) {
	e := newTestEngine(t, 4)
	run(e, "swap c1 slot1", "swap c2 slot2")
	e.Tick(0.6)
	if !state.HasCommit(e.Session, "rebased") {
		t.Fatalf("commits = %v, want rebased", e.Session.Commits)
	}
	if e.Session.TutorialStep != 0 {
		t.Fatalf("TutorialStep = %d before rebase, want 0", e.Session.TutorialStep)
	}

	run(e, "git rebase -i")
	if e.Session.TutorialStep != 2 {
		t.Errorf("TutorialStep = %d, want 2", e.Session.TutorialStep)
	}
	if e.Session.Target == nil || *e.Session.Target != (types.Vector3{X: 5, Y: 1, Z: 1}) {
		t.Errorf("Target = %v, want the goal", e.Session.Target)
	}
	if n := count(e.Session.Commits, "rebased"); n != 1 {
		t.Errorf("rebased appended %d times", n)
	}
}

func TestGoalBeforeWinCondition(t *testing.T) {
	e := newTestEngine(t, 2)
	run(e, "git revert bad123")
	e.Session.Commits = []string{"init"} // forget the revert
	res := walk(e, "ddddd")
	if e.Session.Status != types.StatusPlaying {
		t.Errorf("Status = %q, want playing", e.Session.Status)
	}
	if !hasLine(res, "not ready yet") {
		t.Errorf("output = %v", res.Output)
	}
}

func TestAdd_Idempotent(t *testing.T) {
	e := newTestEngine(t, 1)
	run(e, "git checkout -b fix-bridge")
	walk(e, "sssds")

	run(e, "git add .")
	res := run(e, "git add .")
	if len(e.Session.Inventory) != 1 {
		t.Errorf("Inventory = %v, want one entry", e.Session.Inventory)
	}
	if !hasLine(res, "Nothing to add here.") || !hasCue(res, types.CueError) {
		t.Errorf("second add = %v", res.Output)
	}
	if res, ok := e.World.Get("resource_wood"); !ok || !res.Hidden {
		t.Error("staged resource should be hidden")
	}
}

func TestTutorial_Monotonic(t *testing.T) {
	e := newTestEngine(t, 1)

	run(e, "git status") // step 0 waits for a move
	if e.Session.TutorialStep != 0 {
		t.Fatalf("out-of-order command advanced to %d", e.Session.TutorialStep)
	}
	res := walk(e, "d")
	if e.Session.TutorialStep != 1 || !hasCue(res, types.CueObjective) {
		t.Fatalf("after move: step %d cues %v", e.Session.TutorialStep, res.Cues)
	}
	if !hasLine(res, "Gap detected") {
		t.Errorf("step effects missing: %v", res.Output)
	}

	prev := e.Session.TutorialStep
	for _, c := range []string{"git status", "git status", "git log", "git status", "git checkout -b fix-bridge"} {
		run(e, c)
		if d := e.Session.TutorialStep - prev; d < 0 || d > 1 {
			t.Fatalf("%q moved the step from %d to %d", c, prev, e.Session.TutorialStep)
		}
		prev = e.Session.TutorialStep
	}
	if e.Session.TutorialStep != 3 {
		t.Errorf("TutorialStep = %d, want 3", e.Session.TutorialStep)
	}

	e.LoadLevel(1)
	if e.Session.TutorialStep != 0 {
		t.Errorf("reload kept step %d", e.Session.TutorialStep)
	}
}

func TestObstaclesBlock(t *testing.T) {
	e := newTestEngine(t, 2)
	res := walk(e, "dd")
	if e.Session.Player != (types.Vector3{X: 2, Y: 1, Z: 1}) {
		t.Errorf("Player = %v, want (2,1,1)", e.Session.Player)
	}
	if !hasLine(res, "FATAL: Path blocked by BUG! Resolve it first.") {
		t.Errorf("output = %v", res.Output)
	}
	if e.Session.Shake != 0.5 {
		t.Errorf("Shake = %g, want 0.5", e.Session.Shake)
	}

	// Level 1: the conflict sits in the gap under the walking layer.
	e = newTestEngine(t, 1)
	walk(e, "dd")
	if e.Session.Player.X != 2 {
		t.Errorf("Player = %v, want x=2", e.Session.Player)
	}
}

func TestBranchUniqueness(t *testing.T) {
	e := newTestEngine(t, 1)
	run(e, "git checkout -b fix-bridge")
	res := run(e, "git checkout -b fix-bridge")
	if !hasLine(res, "fatal: A branch named 'fix-bridge' already exists.") {
		t.Errorf("output = %v", res.Output)
	}
	run(e, "git checkout -b main")
	if count(e.Session.Branches, "fix-bridge") != 1 || count(e.Session.Branches, "main") != 1 {
		t.Errorf("Branches = %v", e.Session.Branches)
	}
	if e.Session.CurrentBranch != "fix-bridge" {
		t.Errorf("CurrentBranch = %q", e.Session.CurrentBranch)
	}
}

func TestLevelFour_SwapEitherOrder(t *testing.T) {
	orders := [][]string{
		{"swap c1 slot1", "swap c2 slot2"},
		{"swap C2 Slot2", "swap [c1] [slot1]"},
	}
	for _, order := range orders {
		t.Run(order[0], func(t *testing.T) {
			e := newTestEngine(t, 4)
			run(e, "git rebase -i")
			run(e, order...)

			c1, _ := e.World.Get("c1")
			c2, _ := e.World.Get("c2")
			if c1.Position.Y != 1 || c2.Position.Y != 1 {
				t.Fatalf("c1 %v c2 %v, want both on y=1", c1.Position, c2.Position)
			}
			if state.HasCommit(e.Session, "rebased") {
				t.Fatal("rebased should wait for the delay")
			}

			// More swaps while the success is pending, and after it lands.
			run(e, "swap c1 c2")
			e.Tick(0.6)
			run(e, "swap c2 c1")
			e.Tick(1)

			if n := count(e.Session.Commits, "rebased"); n != 1 {
				t.Errorf("rebased appears %d times, want 1", n)
			}
			if e.Session.TutorialStep != 2 {
				t.Errorf("TutorialStep = %d, want 2", e.Session.TutorialStep)
			}

			walk(e, "dddd")
			if e.Session.Status != types.StatusWon {
				t.Errorf("Status = %q at %v, want won", e.Session.Status, e.Session.Player)
			}
		})
	}
}

func TestSwap_Errors(t *testing.T) {
	e := newTestEngine(t, 4)
	tests := []struct {
		cmd  string
		want string
	}{
		{"swap c1", "Usage: swap c1 slot1"},
		{"swap c1 nowhere", `Invalid target: no block labelled "nowhere"`},
		{"swap c1 c1", "cannot swap a block with itself"},
	}
	for _, tt := range tests {
		res := run(e, tt.cmd)
		if !hasLine(res, tt.want) {
			t.Errorf("%q output = %v, want %q", tt.cmd, res.Output, tt.want)
		}
	}

	e = newTestEngine(t, 1)
	if res := run(e, "swap c1 slot1"); !hasLine(res, "bash: swap: command not found") {
		t.Errorf("swap outside level 4 = %v", res.Output)
	}
}

func TestMinigameTimeout(t *testing.T) {
	e := newTestEngine(t, 1)
	levelOneToMerge(t, e)

	res := run(e, "git status")
	if !hasLine(res, "Resolve the merge conflict first!") {
		t.Errorf("command during minigame = %v", res.Output)
	}

	res = e.Tick(e.Tuning.Minigame.Seconds + 0.1)
	if e.Session.Minigame.Active {
		t.Fatal("minigame still active after timeout")
	}
	if !hasLine(res, "Merge Conflict Resolution Failed!") || e.Session.Shake == 0 {
		t.Errorf("timeout output = %v shake %g", res.Output, e.Session.Shake)
	}
	if state.HasCommit(e.Session, "merge:fix-bridge") {
		t.Error("continuation ran after timeout")
	}
	if len(e.World.OfType(types.EntityObstacle)) == 0 {
		t.Error("obstacle removed after timeout")
	}

	run(e, "git merge fix-bridge")
	m := e.Session.Minigame
	if !m.Active || m.Index != 0 || m.TimeLeft != e.Tuning.Minigame.Seconds {
		t.Errorf("re-merge minigame = %+v", m)
	}
	solveMinigame(t, e)
	if !state.HasCommit(e.Session, "merge:fix-bridge") {
		t.Error("re-merge did not complete")
	}
}

func TestMinigame_MissKeepsProgress(t *testing.T) {
	e := newTestEngine(t, 1)
	levelOneToMerge(t, e)

	want, _ := minigame.Next(e.Session.Minigame)
	e.MinigameInput(want)
	wrong := types.ArrowUp
	if next, _ := minigame.Next(e.Session.Minigame); next == types.ArrowUp {
		wrong = types.ArrowDown
	}
	res := e.MinigameInput(wrong)
	if e.Session.Minigame.Index != 1 {
		t.Errorf("Index = %d after a miss, want 1", e.Session.Minigame.Index)
	}
	if !hasCue(res, types.CueError) || e.Session.Shake != e.Tuning.Penalties.MinigameMiss {
		t.Errorf("miss cues %v shake %g", res.Cues, e.Session.Shake)
	}
}

func TestStaleContinuationIgnored(t *testing.T) {
	e := newTestEngine(t, 1)
	levelOneToMerge(t, e)
	cont := e.Session.Minigame.OnSuccess

	e.LoadLevel(1)
	if effs := e.continuation(cont); len(effs) != 0 {
		t.Errorf("stale continuation produced %d effects", len(effs))
	}
}

func TestStaleDeferredDropped(t *testing.T) {
	e := newTestEngine(t, 4)
	run(e, "swap c1 slot1", "swap c2 slot2")
	e.LoadLevel(4)
	e.Tick(1)
	if state.HasCommit(e.Session, "rebased") {
		t.Error("deferred success from the previous attempt fired")
	}

	e = newTestEngine(t, 3)
	run(e, "git cherry-pick a1b2c3")
	e.ExitToMap()
	e.Session.Particles = nil
	e.Tick(1)
	if len(e.Session.Particles) != 0 {
		t.Errorf("trail bursts fired after exit: %d particles", len(e.Session.Particles))
	}
}

func TestParticlesTerminate(t *testing.T) {
	e := newTestEngine(t, 3)
	run(e, "git cherry-pick a1b2c3", "nonsense")
	if len(e.Session.Particles) == 0 || e.Session.Shake == 0 {
		t.Fatal("expected particles and shake")
	}
	for i := 0; i < 300; i++ {
		e.Tick(1.0 / 60)
	}
	if len(e.Session.Particles) != 0 || e.Session.Shake != 0 {
		t.Errorf("after 5s: %d particles, shake %g", len(e.Session.Particles), e.Session.Shake)
	}
}

func TestLevelTwo_Revert(t *testing.T) {
	e := newTestEngine(t, 2)

	res := run(e, "git revert nope")
	if !hasLine(res, "fatal: Bad revision nope") {
		t.Errorf("bad revert = %v", res.Output)
	}

	walk(e, "d")
	run(e, "git log")
	if e.Session.TutorialStep != 2 {
		t.Fatalf("TutorialStep = %d, want 2", e.Session.TutorialStep)
	}
	res = run(e, "git revert bad123")
	if !hasCue(res, types.CueRevert) || !state.HasCommit(e.Session, "revert:bad-commit") {
		t.Fatalf("revert cues %v commits %v", res.Cues, e.Session.Commits)
	}
	if _, ok := e.World.Get("bug_wall"); ok {
		t.Error("bug_wall should be removed")
	}
	if res := run(e, "git revert HEAD"); !hasLine(res, "already been reverted") {
		t.Errorf("second revert = %v", res.Output)
	}

	walk(e, "dddd")
	if e.Session.Status != types.StatusWon {
		t.Errorf("Status = %q at %v", e.Session.Status, e.Session.Player)
	}
}

func TestLevelThree_CherryPick(t *testing.T) {
	e := newTestEngine(t, 3)

	res := walk(e, "dd")
	if !hasLine(res, "Gap detected!") || e.Session.Player.X != 2 {
		t.Errorf("gap: output %v player %v", res.Output, e.Session.Player)
	}

	if res := run(e, "git cherry-pick bug001"); !hasLine(res, "fatal: bad object bug001") {
		t.Errorf("bad pick = %v", res.Output)
	}
	res = run(e, "git cherry-pick a1b2c3")
	if !hasLine(res, "Gap bridged!") {
		t.Errorf("pick = %v", res.Output)
	}
	block, _ := e.World.Get("good_commit")
	if block.Position != (types.Vector3{X: 3, Y: 1, Z: 0}) || block.Type != types.EntityBlock {
		t.Errorf("picked block = %+v", block)
	}
	if res := run(e, "git cherry-pick a1b2c3"); !hasLine(res, "already on this branch") {
		t.Errorf("second pick = %v", res.Output)
	}

	walk(e, "ddd")
	if e.Session.Status != types.StatusWon {
		t.Errorf("Status = %q at %v", e.Session.Status, e.Session.Player)
	}
}

func TestStatusPhrasings(t *testing.T) {
	e := newTestEngine(t, 1)
	if res := run(e, "git status"); !hasLine(res, "You are detached from HEAD.") {
		t.Errorf("main without fix = %v", res.Output)
	}
	run(e, "git checkout -b fix-bridge")
	if res := run(e, "git status"); !hasLine(res, "Nothing to commit") {
		t.Errorf("clean branch = %v", res.Output)
	}
	walk(e, "sssds")
	run(e, "git add")
	if res := run(e, "git status"); !hasLine(res, "  modified: bridge.js") {
		t.Errorf("staged = %v", res.Output)
	}
}

func TestMerge_Preconditions(t *testing.T) {
	e := newTestEngine(t, 1)
	tests := []struct {
		cmds []string
		want string
	}{
		{[]string{"git checkout -b fix-bridge", "git merge main"}, "Please checkout main before merging."},
		{[]string{"git checkout main", "git merge fix-bridge"}, "Branch is clean, nothing to merge."},
		{[]string{"git merge"}, "usage: git merge <branch>"},
		{[]string{"git merge ghost"}, "merge: ghost - not something we can merge"},
	}
	for _, tt := range tests {
		res := run(e, tt.cmds...)
		if !hasLine(res, tt.want) {
			t.Errorf("%v output = %v, want %q", tt.cmds, res.Output, tt.want)
		}
	}
	if e.Session.Minigame.Active {
		t.Error("minigame started on a failed merge")
	}
}

func TestUnknownCommands(t *testing.T) {
	e := newTestEngine(t, 1)
	tests := []struct {
		cmd   string
		want  string
		shake float64
	}{
		{"dance", "bash: dance: command not found. Try 'help'.", 0.2},
		{"git push", "git: 'push' is not a git command. See 'help'.", 0.1},
		{"git rebase -i", "git: 'rebase' is not a git command.", 0.1},
	}
	for _, tt := range tests {
		e.Session.Shake = 0
		res := run(e, tt.cmd)
		if !hasLine(res, tt.want) {
			t.Errorf("%q output = %v", tt.cmd, res.Output)
		}
		if e.Session.Shake != tt.shake {
			t.Errorf("%q shake = %g, want %g", tt.cmd, e.Session.Shake, tt.shake)
		}
	}
}

func TestHelpAndInspect(t *testing.T) {
	e := newTestEngine(t, 2)
	res := run(e, "help")
	if !hasLine(res, "Level 2 Hints (Undo):") || !hasLine(res, "git revert [id]") {
		t.Errorf("help = %v", res.Output)
	}

	res = run(e, "inspect bug")
	if !hasLine(res, "> Inspecting Obstacle: BUG") || !hasLine(res, "Hint: A bad commit caused this.") {
		t.Errorf("inspect = %v", res.Output)
	}
	res = run(e, "inspect prod")
	if !hasLine(res, "Target too far") {
		t.Errorf("far inspect = %v", res.Output)
	}
}

func TestInspectStagesResource(t *testing.T) {
	e := newTestEngine(t, 1)
	run(e, "git checkout -b fix-bridge")
	walk(e, "sss") // (1,4,1), two steps from bridge.js
	res := run(e, "inspect bridge.js")
	if !hasLine(res, "> git add bridge.js") || count(e.Session.Inventory, "bridge.js") != 1 {
		t.Errorf("inspect = %v inventory %v", res.Output, e.Session.Inventory)
	}
}

func TestSnapshot(t *testing.T) {
	e := newTestEngine(t, 1)
	run(e, "git checkout -b fix-bridge")

	snap := e.Snapshot()
	if snap.Level != 1 || snap.LevelName != "The Detached Bridge" || snap.Branch != "fix-bridge" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Seed != 7 {
		t.Errorf("Seed = %d, want 7", snap.Seed)
	}
	snap.Branches[0] = "mutated"
	if e.Session.Branches[0] == "mutated" {
		t.Error("snapshot shares the branch slice with the session")
	}

	data, err := snapshot.Encode(snap)
	if err != nil {
		t.Fatal(err)
	}
	back, err := snapshot.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Entities) != e.World.Len() {
		t.Errorf("decoded %d entities, want %d", len(back.Entities), e.World.Len())
	}
}

func TestLogIsAppendOnlyCopy(t *testing.T) {
	e := newTestEngine(t, 1)
	run(e, "git status")
	log := e.Log()
	n := len(log)
	log[0].Text = "changed"
	if e.Log()[0].Text == "changed" {
		t.Error("Log returned the internal slice")
	}
	run(e, "git branch")
	if len(e.Log()) <= n {
		t.Error("log did not grow")
	}
}
