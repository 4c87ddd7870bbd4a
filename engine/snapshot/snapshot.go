// Package snapshot builds the read-only, JSON-serializable view of a game
// that front ends render from.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/gitquest/types"
)

// Version is bumped whenever the JSON shape changes.
const Version = 1

// Snapshot is a deep copy of everything a renderer needs.
type Snapshot struct {
	Version      int                   `json:"version"`
	Level        int                   `json:"level"`
	LevelName    string                `json:"level_name"`
	Status       types.Status          `json:"status"`
	Branch       string                `json:"branch"`
	Branches     []string              `json:"branches"`
	Inventory    []string              `json:"inventory"`
	Commits      []string              `json:"commits"`
	TutorialStep int                   `json:"tutorial_step"`
	Objective    string                `json:"objective"`
	Target       *types.Vector3        `json:"target,omitempty"`
	Player       types.Vector3         `json:"player"`
	Shake        float64               `json:"shake"`
	Particles    []types.Particle      `json:"particles"`
	Minigame     types.MinigameState   `json:"minigame"`
	Progress     []types.LevelProgress `json:"progress"`
	Entities     []types.VoxelEntity   `json:"entities"`
	Attempt      int                   `json:"attempt"`
	Seed         int64                 `json:"seed"`
	RNGPosition  int64                 `json:"rng_position"`
}

// Take copies s and ents into a Snapshot. Nothing in the result aliases
// engine state.
func Take(s *types.Session, levelName string, ents []types.VoxelEntity) Snapshot {
	snap := Snapshot{
		Version:      Version,
		Level:        s.Level,
		LevelName:    levelName,
		Status:       s.Status,
		Branch:       s.CurrentBranch,
		Branches:     copyStrings(s.Branches),
		Inventory:    copyStrings(s.Inventory),
		Commits:      copyStrings(s.Commits),
		TutorialStep: s.TutorialStep,
		Objective:    s.Objective,
		Player:       s.Player,
		Shake:        s.Shake,
		Particles:    append([]types.Particle{}, s.Particles...),
		Minigame:     s.Minigame,
		Progress:     append([]types.LevelProgress{}, s.Progress...),
		Entities:     append([]types.VoxelEntity{}, ents...),
		Attempt:      s.Attempt,
	}
	if s.Target != nil {
		t := *s.Target
		snap.Target = &t
	}
	snap.Minigame.Sequence = append([]types.Arrow{}, s.Minigame.Sequence...)
	return snap
}

// Encode serializes a snapshot to indented JSON.
func Encode(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// Decode parses JSON produced by Encode.
func Decode(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.Version != Version {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, Version)
	}
	// Ensure slices are never nil after decode.
	if snap.Branches == nil {
		snap.Branches = []string{}
	}
	if snap.Inventory == nil {
		snap.Inventory = []string{}
	}
	if snap.Commits == nil {
		snap.Commits = []string{}
	}
	if snap.Particles == nil {
		snap.Particles = []types.Particle{}
	}
	if snap.Entities == nil {
		snap.Entities = []types.VoxelEntity{}
	}
	return &snap, nil
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
