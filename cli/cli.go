// Package cli provides the plain-text front end: line input, output
// formatting and meta-command dispatch for the GitQuest engine.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nathoo/gitquest/engine"
	"github.com/nathoo/gitquest/engine/snapshot"
	"github.com/nathoo/gitquest/kb"
	"github.com/nathoo/gitquest/types"
)

// errQuit ends the loop without reporting a failure.
var errQuit = errors.New("quit")

var arrowWords = map[string]types.Arrow{
	"up":    types.ArrowUp,
	"down":  types.ArrowDown,
	"left":  types.ArrowLeft,
	"right": types.ArrowRight,
}

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
	// Realtime drives Engine.Tick from a wall-clock ticker. Scripts leave it
	// off and advance time with /wait.
	Realtime bool
	// StartLevel, when set, is loaded straight away, locked or not.
	StartLevel int
	lastCmd    string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".gitquest", "snapshots"),
	}
}

// Run shows the level map and then loops: prompt, input, dispatch, output.
// It returns when input ends, the player types /quit or ctx is cancelled.
func (c *CLI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The reader stays outside the group: a blocked Scan on a terminal
	// cannot be interrupted and must not hold up shutdown.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	g, gctx := errgroup.WithContext(ctx)
	ticks := make(chan float64)
	if c.Realtime {
		g.Go(func() error { return c.tick(gctx, ticks) })
	}
	g.Go(func() error {
		defer cancel()
		err := c.loop(gctx, lines, ticks)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err == nil {
			select {
			case err = <-readErr:
			default:
			}
		}
		return err
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *CLI) tick(ctx context.Context, ticks chan<- float64) error {
	hz := c.Engine.Tuning.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	interval := time.Second / time.Duration(hz)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			select {
			case ticks <- interval.Seconds():
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (c *CLI) loop(ctx context.Context, lines <-chan string, ticks <-chan float64) error {
	c.printResult(c.Engine.StartGame())
	c.printMap()
	if c.StartLevel > 0 {
		res, err := c.Engine.LoadLevel(c.StartLevel)
		if err != nil {
			return fmt.Errorf("loading level %d: %w", c.StartLevel, err)
		}
		c.printResult(res)
	}
	c.print("> ")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case dt := <-ticks:
			res := c.Engine.Tick(dt)
			if len(res.Output) > 0 {
				c.printLine("")
				c.printResult(res)
				c.print("> ")
			}
		case line, ok := <-lines:
			if !ok {
				c.printLine("")
				return nil
			}
			if err := c.handle(strings.TrimSpace(line)); err != nil {
				return err
			}
			c.print("> ")
		}
	}
}

// handle processes one input line.
func (c *CLI) handle(input string) error {
	// Skip blanks and comment lines (for script files).
	if input == "" || strings.HasPrefix(input, "#") {
		return nil
	}
	if c.EchoInput {
		c.printLine(input)
	}

	// Meta-commands start with '/'.
	if strings.HasPrefix(input, "/") {
		return c.handleMeta(input)
	}

	// "again" / "g" repeats the last game command.
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if c.lastCmd == "" {
			c.printLine("Nothing to repeat.")
			return nil
		}
		input = c.lastCmd
		lower = strings.ToLower(input)
	} else {
		c.lastCmd = input
	}

	snap := c.Engine.Snapshot()
	switch {
	case snap.Minigame.Active && arrowWords[lower] != "":
		c.emit(c.Engine.MinigameInput(arrowWords[lower]))
	case snap.Status == types.StatusMap:
		if id, err := strconv.Atoi(input); err == nil {
			c.selectLevel(id)
			return nil
		}
		c.emit(withoutEcho(c.Engine.Execute(input)))
	default:
		c.emit(withoutEcho(c.Engine.Execute(input)))
	}
	return nil
}

// withoutEcho drops the engine's echo of the typed line; the terminal
// already shows it.
func withoutEcho(res types.Result) types.Result {
	if len(res.Output) > 0 && res.Output[0].Kind == types.LineInput {
		res.Output = res.Output[1:]
	}
	return res
}

// emit prints a result and announces a fresh win.
func (c *CLI) emit(res types.Result) {
	c.printResult(res)
	if c.Trace {
		c.printTrace(res)
	}
	for _, cue := range res.Cues {
		if cue == types.CueWin {
			snap := c.Engine.Snapshot()
			stars := 0
			for _, p := range snap.Progress {
				if p.LevelID == snap.Level {
					stars = p.Stars
				}
			}
			c.printSystem(fmt.Sprintf("Level %d complete! %s  Type /map to continue.", snap.Level, starString(stars)))
		}
	}
}

// handleMeta dispatches meta-commands. It returns errQuit on /quit.
func (c *CLI) handleMeta(input string) error {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return errQuit

	case "/help":
		c.cmdHelp()

	case "/map":
		c.printResult(c.Engine.ExitToMap())
		c.printMap()

	case "/level":
		id, err := strconv.Atoi(arg)
		if err != nil {
			c.printSystem("Usage: /level <number>")
			return nil
		}
		c.selectLevel(id)

	case "/kb":
		c.cmdKnowledgeBase()

	case "/wait":
		c.cmdWait(arg)

	case "/save":
		c.cmdSave(arg)

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return nil
}

func (c *CLI) selectLevel(id int) {
	res, err := c.Engine.SelectLevel(id)
	if err != nil {
		c.printSystem(fmt.Sprintf("Cannot open level: %v", err))
		return
	}
	c.printResult(res)
	if obj := c.Engine.Snapshot().Objective; obj != "" {
		c.printLine("Objective: " + obj)
	}
}

func (c *CLI) printMap() {
	c.printLine("Levels:")
	snap := c.Engine.Snapshot()
	for _, p := range snap.Progress {
		def, err := c.Engine.Catalog.Level(p.LevelID)
		if err != nil {
			continue
		}
		mark := starString(p.Stars)
		if !p.Unlocked {
			mark = "(locked)"
		}
		c.printLine(fmt.Sprintf("  %d. %-24s %s", p.LevelID, def.Name, mark))
	}
	c.printLine("Type a level number to play, /kb for the git reference, /help for more.")
}

func (c *CLI) cmdKnowledgeBase() {
	onMap := c.Engine.Snapshot().Status == types.StatusMap
	if onMap {
		c.Engine.OpenKnowledgeBase()
	}
	for _, sec := range kb.Sections() {
		c.printLine(sec.Category)
		for _, e := range sec.Entries {
			c.printLine(fmt.Sprintf("  %-22s %s", e.Cmd, e.Desc))
		}
	}
	if onMap {
		c.Engine.CloseKnowledgeBase()
	}
}

// cmdWait advances game time in fixed frames so scripted runs stay
// deterministic.
func (c *CLI) cmdWait(arg string) {
	secs := 1.0
	if arg != "" {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v <= 0 {
			c.printSystem("Usage: /wait [seconds]")
			return
		}
		secs = v
	}
	hz := c.Engine.Tuning.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	dt := 1 / float64(hz)
	frames := int(secs*float64(hz) + 0.5)
	for i := 0; i < frames; i++ {
		c.emit(c.Engine.Tick(dt))
	}
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "snapshot"
	}

	data, err := snapshot.Encode(c.Engine.Snapshot())
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Snapshot written to %s.", path))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /map           Back to the level map",
		"  /level <n>     Play level n",
		"  /kb            Show the git command reference",
		"  /wait [secs]   Let game time pass (default 1s)",
		"  /save [name]   Write a JSON snapshot of the game",
		"  /state         Debug: dump current state",
		"  /trace         Toggle debug trace output",
		"  /quit          Exit game",
		"",
		"In a level:",
		"  w/a/s/d               Move Keif",
		"  help                  Level hint",
		"  inspect <label>       Look at a nearby block",
		"  git <command> ...     Run a git command",
		"  up/down/left/right    Answer the merge conflict sequence",
		"  again (g)             Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.Snapshot()
	c.printSystem(fmt.Sprintf("Level: %d %s (attempt %d)", s.Level, s.LevelName, s.Attempt))
	c.printSystem(fmt.Sprintf("Status: %s", s.Status))
	c.printSystem(fmt.Sprintf("Branch: %s of %v", s.Branch, s.Branches))
	c.printSystem(fmt.Sprintf("Player: %v", s.Player))
	c.printSystem(fmt.Sprintf("Step: %d %q", s.TutorialStep, s.Objective))
	if len(s.Inventory) > 0 {
		c.printSystem(fmt.Sprintf("Staged: %v", s.Inventory))
	}
	if len(s.Commits) > 0 {
		c.printSystem(fmt.Sprintf("Commits: %v", s.Commits))
	}
	if s.Minigame.Active {
		c.printSystem(fmt.Sprintf("Minigame: %v at %d, %.1fs left", s.Minigame.Sequence, s.Minigame.Index, s.Minigame.TimeLeft))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Effects) > 0 {
		c.printSystem(fmt.Sprintf("trace: effects %d", len(result.Effects)))
		for _, e := range result.Effects {
			c.printSystem(fmt.Sprintf("trace:   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("trace: events %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("trace:   %s %v", e.Type, e.Data))
		}
	}
	if len(result.Cues) > 0 {
		c.printSystem(fmt.Sprintf("trace: cues %v", result.Cues))
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line.Text)
	}
}

func starString(n int) string {
	return strings.Repeat("*", n) + strings.Repeat(".", max(0, 3-n))
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
