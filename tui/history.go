// Package tui provides a Bubble Tea terminal UI for GitQuest.
package tui

import "strings"

// moveKeys are single-keystroke moves. They are not worth recalling and
// would bury the git commands in history.
var moveKeys = map[string]bool{
	"w": true, "a": true, "s": true, "d": true,
	"n": true, "e": true,
}

// History holds recently submitted commands for Up/Down recall.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating, 0..len-1 = position in entries
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push records a command. Bare movement keys and consecutive duplicates
// are skipped; the oldest entry is evicted once max is reached.
func (h *History) Push(cmd string) {
	if moveKeys[strings.ToLower(cmd)] {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	if len(h.entries) == h.max {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.max-1]
	}
	h.entries = append(h.entries, cmd)
}

// Prev steps back to an older entry, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps forward. Past the newest entry it reports false and the
// caller goes back to a fresh prompt.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	if h.cursor++; h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.cursor = -1
}
