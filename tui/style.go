package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/gitquest/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlain = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleInfo = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	styleWarn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F05032")).
			Bold(true)

	styleObjective = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	styleSelected = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("#F05032"))

	styleLocked = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleArrowDone = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	styleArrowNext = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Bold(true)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// lineKind identifies how a feed line is styled. Engine lines carry their
// own kind; the TUI adds system and trace lines.
type lineKind int

const (
	kindPlain lineKind = iota
	kindInfo
	kindSuccess
	kindWarn
	kindError
	kindInput
	kindSystem
	kindTrace
)

// classifyLine maps an engine line kind onto a feed style.
func classifyLine(k types.LineKind) lineKind {
	switch k {
	case types.LineInfo:
		return kindInfo
	case types.LineSuccess:
		return kindSuccess
	case types.LineWarn:
		return kindWarn
	case types.LineError:
		return kindError
	case types.LineInput:
		return kindInput
	default:
		return kindPlain
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindInfo:
		return styleInfo.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindWarn:
		return styleWarn.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindInput:
		return stylePlayerInput.Render(line)
	case kindSystem:
		return styledSystemMsg(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return stylePlain.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
