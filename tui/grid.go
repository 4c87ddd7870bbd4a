package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/gitquest/engine/snapshot"
	"github.com/nathoo/gitquest/types"
)

// glyphs for the top-down view, keyed by entity type.
var glyphs = map[types.EntityType]rune{
	types.EntityBlock:      '#',
	types.EntityWall:       '%',
	types.EntityResource:   'R',
	types.EntityObstacle:   'X',
	types.EntityGoal:       'G',
	types.EntityDecoration: ',',
}

const (
	glyphPlayer   = '@'
	glyphTarget   = '*'
	glyphParticle = '+'
	glyphEmpty    = ' '
)

// cell is one character of the grid with its colour.
type cell struct {
	r     rune
	color string
	z     int
}

// renderGrid draws the world from above, one cell per x/y column. Within a
// column the highest visible entity wins; the avatar, the guide target and
// live particles are drawn on top. Screen shake nudges the whole grid.
func renderGrid(snap snapshot.Snapshot) string {
	minX, minY, maxX, maxY := bounds(snap)
	w, h := maxX-minX+1, maxY-minY+1
	if w <= 0 || h <= 0 {
		return ""
	}

	cells := make([][]cell, h)
	for y := range cells {
		cells[y] = make([]cell, w)
		for x := range cells[y] {
			cells[y][x] = cell{r: glyphEmpty, z: math.MinInt}
		}
	}
	put := func(x, y int, c cell) {
		x, y = x-minX, y-minY
		if y < 0 || y >= h || x < 0 || x >= w {
			return
		}
		cells[y][x] = c
	}

	for _, ent := range snap.Entities {
		if ent.Hidden {
			continue
		}
		g, ok := glyphs[ent.Type]
		if !ok {
			continue
		}
		x, y := ent.Position.X-minX, ent.Position.Y-minY
		if ent.Position.Z < cells[y][x].z {
			continue
		}
		cells[y][x] = cell{r: g, color: ent.Color, z: ent.Position.Z}
	}
	if t := snap.Target; t != nil && snap.Status == types.StatusPlaying {
		put(t.X, t.Y, cell{r: glyphTarget, color: types.ColorGuideArrow})
	}
	for _, p := range snap.Particles {
		put(int(math.Round(p.Position.X)), int(math.Round(p.Position.Y)), cell{r: glyphParticle, color: p.Color})
	}
	put(snap.Player.X, snap.Player.Y, cell{r: glyphPlayer, color: types.ColorKrakenGreen})

	pad := strings.Repeat(" ", shakeOffset(snap.Shake))
	var b strings.Builder
	for y, row := range cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pad)
		for _, c := range row {
			s := string(c.r)
			if c.color != "" {
				s = lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Render(s)
			}
			// Double each column so cells look roughly square.
			b.WriteString(s)
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// bounds returns the x/y extent of everything drawable.
func bounds(snap snapshot.Snapshot) (minX, minY, maxX, maxY int) {
	minX, minY = snap.Player.X, snap.Player.Y
	maxX, maxY = minX, minY
	grow := func(x, y int) {
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	for _, ent := range snap.Entities {
		if !ent.Hidden {
			grow(ent.Position.X, ent.Position.Y)
		}
	}
	return minX, minY, maxX, maxY
}

// shakeOffset converts shake intensity into a left indent.
func shakeOffset(shake float64) int {
	if shake < 0.05 {
		return 0
	}
	return min(3, int(math.Ceil(shake*3)))
}

// renderMinigame draws the arrow sequence and the countdown bar.
func renderMinigame(m types.MinigameState, width int) string {
	if !m.Active {
		return ""
	}
	var arrows []string
	for i, a := range m.Sequence {
		s := arrowGlyph(a)
		switch {
		case i < m.Index:
			s = styleArrowDone.Render(s)
		case i == m.Index:
			s = styleArrowNext.Render(s)
		}
		arrows = append(arrows, s)
	}

	barWidth := max(10, min(40, width-20))
	filled := 0
	if m.MaxTime > 0 {
		filled = int(math.Round(float64(barWidth) * m.TimeLeft / m.MaxTime))
	}
	filled = max(0, min(barWidth, filled))
	bar := strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled)

	return styleError.Render("MERGE CONFLICT") + "  " + strings.Join(arrows, " ") + "\n" +
		"[" + bar + "] " + styleSystem.Render("use the arrow keys")
}

func arrowGlyph(a types.Arrow) string {
	switch a {
	case types.ArrowUp:
		return "↑"
	case types.ArrowDown:
		return "↓"
	case types.ArrowLeft:
		return "←"
	case types.ArrowRight:
		return "→"
	}
	return "?"
}
