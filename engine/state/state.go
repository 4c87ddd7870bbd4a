// Package state holds the immutable level catalog and the session helpers
// the rest of the engine uses to read and reset mutable game state.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/gitquest/types"
)

// ErrUnknownLevel is returned when a level id is not in the catalog.
var ErrUnknownLevel = errors.New("unknown level")

// Catalog holds the immutable level definitions loaded from Lua.
type Catalog struct {
	Title  string
	Levels map[int]types.LevelDef
}

// Level returns the definition for id. Entities in the returned value share
// backing arrays with the catalog; callers must copy before mutating.
func (c *Catalog) Level(id int) (types.LevelDef, error) {
	def, ok := c.Levels[id]
	if !ok {
		return types.LevelDef{}, fmt.Errorf("level %d: %w", id, ErrUnknownLevel)
	}
	return def, nil
}

// IDs returns the level ids in ascending order.
func (c *Catalog) IDs() []int {
	ids := make([]int, 0, len(c.Levels))
	for id := range c.Levels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// NewSession creates a fresh session on the intro screen. The first level
// in the catalog is unlocked.
func NewSession(c *Catalog) *types.Session {
	s := &types.Session{
		CurrentBranch: "main",
		Branches:      []string{"main"},
		Inventory:     []string{},
		Commits:       []string{},
		Status:        types.StatusIntro,
		Particles:     []types.Particle{},
	}
	for i, id := range c.IDs() {
		s.Progress = append(s.Progress, types.LevelProgress{LevelID: id, Unlocked: i == 0})
	}
	if ids := c.IDs(); len(ids) > 0 {
		s.Level = ids[0]
	}
	return s
}

// ResetForLevel resets every level-scoped field of s from def.
func ResetForLevel(s *types.Session, def types.LevelDef) {
	s.Level = def.ID
	s.Branches = append([]string{}, def.Branches...)
	s.CurrentBranch = def.Branch
	s.Inventory = []string{}
	s.Commits = append([]string{}, def.Commits...)
	s.Status = types.StatusPlaying
	s.TutorialStep = 0
	s.Objective = def.Objective
	s.Target = copyTarget(def.Target)
	s.Player = def.Start
	s.Shake = 0
	s.Particles = []types.Particle{}
	s.Minigame = types.MinigameState{}
	s.Message = def.Description
	s.Attempt++
}

// HasCommit returns true if token is in the commit history.
func HasCommit(s *types.Session, token string) bool {
	return contains(s.Commits, token)
}

// HasBranch returns true if name is a known branch.
func HasBranch(s *types.Session, name string) bool {
	return contains(s.Branches, name)
}

// Progress returns the progress entry for a level.
func Progress(s *types.Session, levelID int) (types.LevelProgress, bool) {
	for _, lp := range s.Progress {
		if lp.LevelID == levelID {
			return lp, true
		}
	}
	return types.LevelProgress{}, false
}

// MarkWon awards stars for the current level and unlocks the next one.
func MarkWon(s *types.Session, stars int) {
	next := s.Level + 1
	for i, lp := range s.Progress {
		switch lp.LevelID {
		case s.Level:
			if stars > lp.Stars {
				s.Progress[i].Stars = stars
			}
		case next:
			s.Progress[i].Unlocked = true
		}
	}
}

func copyTarget(t *types.Vector3) *types.Vector3 {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
