package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/gitquest/engine"
	"github.com/nathoo/gitquest/engine/snapshot"
	"github.com/nathoo/gitquest/kb"
	"github.com/nathoo/gitquest/types"
)

// rawLine stores an unstyled feed line with its classification, so we can
// re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text string
	kind lineKind
}

// Model is the Bubble Tea model for the GitQuest TUI.
type Model struct {
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated feed lines (unstyled, for re-wrapping)

	width     int
	height    int
	ready     bool
	trace     bool
	quitting  bool
	lastCmd   string
	saveDir   string
	cursor    int // selected row on the level map
	tickEvery time.Duration
}

// tickMsg drives Engine.Tick at the tuned frame rate.
type tickMsg time.Time

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "$ "
	ti.Placeholder = "type a command, e.g. git status"
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	hz := eng.Tuning.TickRateHz
	if hz <= 0 {
		hz = 60
	}

	home, _ := os.UserHomeDir()
	m := Model{
		engine:    eng,
		input:     ti,
		history:   NewHistory(100),
		saveDir:   filepath.Join(home, ".gitquest", "snapshots"),
		tickEvery: time.Second / time.Duration(hz),
	}
	for _, l := range eng.Log() {
		m.rawLines = append(m.rawLines, rawLine{text: l.Text, kind: classifyLine(l.Kind)})
	}
	return m
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine) error {
	p := tea.NewProgram(New(eng), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init starts the cursor blink and the frame clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages (key presses, window resize, frame ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		}
		m.viewport.Width = m.width
		m.layout()
		return m, nil

	case tickMsg:
		res := m.engine.Tick(m.tickEvery.Seconds())
		if len(res.Output) > 0 {
			m = m.appendResult(res)
		} else {
			m.layout()
		}
		return m, m.tick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.engine.Session.Status {
		case types.StatusIntro:
			return m.updateIntro(msg)
		case types.StatusMap:
			return m.updateMap(msg)
		case types.StatusKnowledgeBase:
			return m.updateKnowledgeBase(msg)
		default:
			return m.updateLevel(msg)
		}
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

func (m Model) updateIntro(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		m = m.appendResult(m.engine.StartGame())
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateMap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	progress := m.engine.Session.Progress
	switch s := msg.String(); s {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(progress)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor < len(progress) {
			m = m.selectLevel(progress[m.cursor].LevelID)
		}
	case "?", "b":
		m.engine.OpenKnowledgeBase()
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	default:
		if id, err := strconv.Atoi(s); err == nil {
			m = m.selectLevel(id)
		}
	}
	return m, nil
}

func (m Model) updateKnowledgeBase(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q", "b", "?":
		m.engine.CloseKnowledgeBase()
	}
	return m, nil
}

func (m Model) updateLevel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.engine.Session.Minigame.Active {
		if a, ok := arrowKeys[msg.String()]; ok {
			m = m.appendResult(m.engine.MinigameInput(a))
			return m, nil
		}
	}

	switch msg.String() {
	case "enter":
		return m.handleEnter()

	case "esc":
		m = m.appendResult(m.engine.ExitToMap())
		return m, nil

	case "up":
		if prev, ok := m.history.Prev(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil

	case "down":
		if next, ok := m.history.Next(); ok {
			m.input.SetValue(next)
			m.input.CursorEnd()
		} else {
			m.input.SetValue("")
			m.history.ResetCursor()
		}
		return m, nil

	case "pgup", "pgdown":
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, vpCmd
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

var arrowKeys = map[string]types.Arrow{
	"up":    types.ArrowUp,
	"down":  types.ArrowDown,
	"left":  types.ArrowLeft,
	"right": types.ArrowRight,
}

func (m Model) selectLevel(id int) Model {
	res, err := m.engine.SelectLevel(id)
	if err != nil {
		return m.appendSystem(fmt.Sprintf("Cannot open level: %v", err))
	}
	m.rawLines = nil
	m.history.ResetCursor()
	return m.appendResult(res)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			return m.appendSystem("Nothing to repeat."), nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, err := m.handleMeta(input)
		for _, line := range output {
			m = m.appendSystem(line)
		}
		if errors.Is(err, errQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	return m.appendResult(m.engine.Execute(input)), nil
}

// appendResult adds engine output to the feed and refreshes the layout.
func (m Model) appendResult(res types.Result) Model {
	for _, l := range res.Output {
		m.rawLines = append(m.rawLines, rawLine{text: l.Text, kind: classifyLine(l.Kind)})
	}
	if m.trace {
		for _, line := range formatTrace(res) {
			m.rawLines = append(m.rawLines, rawLine{text: line, kind: kindTrace})
		}
	}
	m.layout()
	return m
}

func (m Model) appendSystem(text string) Model {
	m.rawLines = append(m.rawLines, rawLine{text: text, kind: kindSystem})
	m.layout()
	return m
}

// layout sizes the feed to whatever the grid leaves free, then re-wraps
// and re-styles all raw lines at the current width.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	snap := m.engine.Snapshot()
	used := 3 // objective, status bar, input
	if snap.Status == types.StatusPlaying || snap.Status == types.StatusWon {
		used += lipgloss.Height(renderGrid(snap)) + 1
		if snap.Minigame.Active {
			used += 2
		}
	}
	m.viewport.Height = max(1, m.height-used)

	width := max(10, m.width)
	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		for _, part := range strings.Split(rl.text, "\n") {
			styled = append(styled, renderLineKind(wordWrap(part, width), rl.kind))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Leading indentation is kept on the first line.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	indent := text[:len(text)-len(strings.TrimLeft(text, " "))]
	var result strings.Builder
	words := strings.Fields(text)
	result.WriteString(indent)
	lineLen := len(indent)

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen += wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	snap := m.engine.Snapshot()
	switch snap.Status {
	case types.StatusIntro:
		return m.viewIntro()
	case types.StatusMap:
		return m.viewMap(snap)
	case types.StatusKnowledgeBase:
		return m.viewKnowledgeBase()
	}

	parts := []string{renderGrid(snap), ""}
	if mg := renderMinigame(snap.Minigame, m.width); mg != "" {
		parts = append(parts, mg)
	}
	parts = append(parts,
		m.viewport.View(),
		styleObjective.Render("Objective: "+snap.Objective),
		m.renderStatusBar(snap),
		m.input.View(),
	)
	return strings.Join(parts, "\n")
}

func (m Model) viewIntro() string {
	title := m.engine.Catalog.Title
	if title == "" {
		title = "GitQuest"
	}
	body := styleTitle.Render(strings.ToUpper(title)) + "\n\n" +
		"Guide Keif the Kraken across a voxel repository\n" +
		"by typing real git commands.\n\n" +
		styleSystem.Render("enter: start   q: quit")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, stylePanel.Render(body))
}

func (m Model) viewMap(snap snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("LEVEL MAP"))
	b.WriteString("\n\n")
	for i, p := range snap.Progress {
		name := fmt.Sprintf("Level %d", p.LevelID)
		if def, err := m.engine.Catalog.Level(p.LevelID); err == nil {
			name = def.Name
		}
		row := fmt.Sprintf(" %d. %-24s %s ", p.LevelID, name, stars(p.Stars))
		switch {
		case !p.Unlocked:
			row = styleLocked.Render(fmt.Sprintf(" %d. %-24s locked ", p.LevelID, name))
		case i == m.cursor:
			row = styleSelected.Render(row)
		}
		b.WriteString(row)
		b.WriteByte('\n')
	}
	if n := len(m.rawLines); n > 0 && m.rawLines[n-1].kind == kindSystem {
		b.WriteString("\n" + styledSystemMsg(m.rawLines[n-1].text) + "\n")
	}
	b.WriteString("\n" + styleSystem.Render("↑/↓ select  enter: play  ?: git reference  q: quit"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, stylePanel.Render(b.String()))
}

func (m Model) viewKnowledgeBase() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("GIT KNOWLEDGE BASE"))
	b.WriteByte('\n')
	for _, sec := range kb.Sections() {
		b.WriteString("\n" + styleInfo.Render(sec.Category) + "\n")
		for _, e := range sec.Entries {
			b.WriteString(fmt.Sprintf("  %-22s %s\n", e.Cmd, styleSystem.Render(e.Desc)))
		}
	}
	b.WriteString("\n" + styleSystem.Render("esc: back to the map"))
	return stylePanel.Render(b.String())
}

// errQuit signals that the player asked to leave.
var errQuit = errors.New("quit")

// handleMeta dispatches meta-commands. It returns output lines and errQuit
// when the game should exit.
func (m *Model) handleMeta(input string) ([]string, error) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, errQuit

	case "/save":
		return m.cmdSave(arg), nil

	case "/map":
		m.engine.ExitToMap()
		return nil, nil

	case "/kb":
		m.engine.ExitToMap()
		m.engine.OpenKnowledgeBase()
		return nil, nil

	case "/help":
		return m.cmdHelp(), nil

	case "/state":
		return m.cmdState(), nil

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, nil
		}
		return []string{"Trace output disabled."}, nil

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, nil
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "snapshot"
	}

	data, err := snapshot.Encode(m.engine.Snapshot())
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	return []string{fmt.Sprintf("Snapshot written to %s.", name)}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /map          Leave the level",
		"  /kb           Git command reference (leaves the level)",
		"  /save [name]  Write a JSON snapshot",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"  /quit         Exit game",
		"",
		"Type 'help' for hints on this level.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history, Esc for the map",
	}
}

func (m *Model) cmdState() []string {
	s := m.engine.Snapshot()
	output := []string{
		fmt.Sprintf("Level: %d (attempt %d)", s.Level, s.Attempt),
		fmt.Sprintf("Player: %d,%d,%d", s.Player.X, s.Player.Y, s.Player.Z),
		fmt.Sprintf("Branches: %v", s.Branches),
		fmt.Sprintf("Step: %d", s.TutorialStep),
	}
	if len(s.Commits) > 0 {
		output = append(output, fmt.Sprintf("Commits: %v", s.Commits))
	}
	if len(s.Particles) > 0 {
		output = append(output, fmt.Sprintf("Particles: %d", len(s.Particles)))
	}
	return output
}

func formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
