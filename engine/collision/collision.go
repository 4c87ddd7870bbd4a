// Package collision decides whether the avatar may step onto a cell.
package collision

import (
	"fmt"

	"github.com/nathoo/gitquest/types"
)

// Kind classifies a rejected move.
type Kind string

const (
	Clear    Kind = ""
	Bounds   Kind = "bounds"
	Obstacle Kind = "obstacle"
	Gap      Kind = "gap"
	Ledge    Kind = "ledge"
)

// Verdict is the result of Check.
type Verdict struct {
	OK     bool
	Kind   Kind
	Reason string // player-facing; empty for silent rejections
	Cue    types.Cue
}

// Ground is the part of the world store collision reads.
type Ground interface {
	AtOfType(pos types.Vector3, t types.EntityType) (types.VoxelEntity, bool)
	Supports(pos types.Vector3) bool
}

// Check applies the movement rules in order: world floor, obstacles in
// or directly under the cell, the level's scripted gap, then support.
func Check(w Ground, s types.Script, target types.Vector3) Verdict {
	if target.Z < 0 {
		return Verdict{Kind: Bounds}
	}

	below := types.Vector3{X: target.X, Y: target.Y, Z: target.Z - 1}
	for _, pos := range []types.Vector3{target, below} {
		if e, ok := w.AtOfType(pos, types.EntityObstacle); ok {
			name := e.Label
			if name == "" {
				name = "Obstacle"
			}
			return Verdict{
				Kind:   Obstacle,
				Reason: fmt.Sprintf("FATAL: Path blocked by %s! Resolve it first.", name),
				Cue:    types.CueError,
			}
		}
	}

	supported := w.Supports(target)
	if g := s.Gap; g != nil && !supported && g.At.X == target.X && g.At.Y == target.Y {
		return Verdict{Kind: Gap, Reason: g.Message, Cue: types.CueError}
	}

	if target.Z > 0 && !supported {
		return Verdict{Kind: Ledge, Reason: "Watch out! The branch ends here."}
	}

	return Verdict{OK: true}
}
