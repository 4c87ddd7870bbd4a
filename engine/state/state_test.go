package state

import (
	"errors"
	"testing"

	"github.com/nathoo/gitquest/types"
)

func testCatalog() *Catalog {
	return &Catalog{
		Title: "Test",
		Levels: map[int]types.LevelDef{
			2: {
				ID:        2,
				Name:      "Second",
				Branches:  []string{"main"},
				Branch:    "main",
				Commits:   []string{"init", "bad123"},
				Objective: "Walk.",
				Target:    &types.Vector3{X: 3, Y: 1, Z: 2},
				Start:     types.Vector3{X: 1, Y: 1, Z: 1},
			},
			1: {
				ID:       1,
				Name:     "First",
				Branches: []string{"main", "feature"},
				Branch:   "main",
			},
		},
	}
}

func TestCatalog_Level(t *testing.T) {
	c := testCatalog()
	def, err := c.Level(2)
	if err != nil {
		t.Fatalf("Level(2): %v", err)
	}
	if def.Name != "Second" {
		t.Errorf("Name = %q, want %q", def.Name, "Second")
	}

	_, err = c.Level(9)
	if !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Level(9) err = %v, want ErrUnknownLevel", err)
	}
}

func TestCatalog_IDsSorted(t *testing.T) {
	ids := testCatalog().IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("IDs() = %v, want [1 2]", ids)
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession(testCatalog())
	if s.Status != types.StatusIntro {
		t.Errorf("Status = %q, want intro", s.Status)
	}
	if len(s.Progress) != 2 {
		t.Fatalf("Progress len = %d, want 2", len(s.Progress))
	}
	if !s.Progress[0].Unlocked || s.Progress[1].Unlocked {
		t.Errorf("only the first level should be unlocked: %+v", s.Progress)
	}
	if s.Level != 1 {
		t.Errorf("Level = %d, want 1", s.Level)
	}
}

func TestResetForLevel(t *testing.T) {
	c := testCatalog()
	s := NewSession(c)
	s.Inventory = []string{"junk"}
	s.TutorialStep = 5
	s.Shake = 0.7
	s.Particles = []types.Particle{{ID: "p"}}
	s.Minigame.Active = true

	def, _ := c.Level(2)
	ResetForLevel(s, def)

	if s.Level != 2 || s.Status != types.StatusPlaying {
		t.Errorf("Level/Status = %d/%q", s.Level, s.Status)
	}
	if s.TutorialStep != 0 || s.Shake != 0 || len(s.Particles) != 0 || s.Minigame.Active {
		t.Errorf("transient state not reset: %+v", s)
	}
	if len(s.Inventory) != 0 {
		t.Errorf("Inventory = %v, want empty", s.Inventory)
	}
	if len(s.Commits) != 2 || s.Commits[1] != "bad123" {
		t.Errorf("Commits = %v", s.Commits)
	}
	if s.Player != def.Start {
		t.Errorf("Player = %+v, want %+v", s.Player, def.Start)
	}
	if s.Attempt != 1 {
		t.Errorf("Attempt = %d, want 1", s.Attempt)
	}

	// Mutating the session must not touch the catalog.
	s.Commits[0] = "changed"
	s.Target.X = 99
	again, _ := c.Level(2)
	if again.Commits[0] != "init" {
		t.Errorf("catalog commits mutated: %v", again.Commits)
	}
	if again.Target.X != 3 {
		t.Errorf("catalog target mutated: %+v", again.Target)
	}
}

func TestHasCommitAndBranch(t *testing.T) {
	s := &types.Session{Commits: []string{"a"}, Branches: []string{"main"}}
	if !HasCommit(s, "a") || HasCommit(s, "b") {
		t.Error("HasCommit wrong")
	}
	if !HasBranch(s, "main") || HasBranch(s, "dev") {
		t.Error("HasBranch wrong")
	}
}

func TestMarkWon(t *testing.T) {
	s := NewSession(testCatalog())
	s.Level = 1
	MarkWon(s, 3)

	lp1, _ := Progress(s, 1)
	lp2, _ := Progress(s, 2)
	if lp1.Stars != 3 {
		t.Errorf("level 1 stars = %d, want 3", lp1.Stars)
	}
	if !lp2.Unlocked {
		t.Error("level 2 should be unlocked")
	}

	// Stars never go down.
	MarkWon(s, 1)
	lp1, _ = Progress(s, 1)
	if lp1.Stars != 3 {
		t.Errorf("stars lowered to %d", lp1.Stars)
	}
}
