package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/gitquest/engine/snapshot"
)

// renderStatusBar produces a full-width inverted status line showing the
// level, branch, staged files and commit count.
func (m Model) renderStatusBar(snap snapshot.Snapshot) string {
	left := fmt.Sprintf(" L%d %s | branch: %s", snap.Level, snap.LevelName, snap.Branch)
	right := fmt.Sprintf("commits: %d ", len(snap.Commits))

	// Show staged files if they fit, otherwise just count.
	if n := len(snap.Inventory); n > 0 {
		candidate := fmt.Sprintf("staged: %s | commits: %d ", strings.Join(snap.Inventory, ", "), len(snap.Commits))
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("staged: %d | commits: %d ", n, len(snap.Commits))
		}
	}

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// stars renders a 0..3 rating.
func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", max(0, 3-n))
}
