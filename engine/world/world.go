// Package world is the mutable voxel store for the loaded level.
package world

import (
	"strings"

	"github.com/nathoo/gitquest/types"
)

// Store holds the entities of the current level attempt.
type Store struct {
	entities []types.VoxelEntity
}

// New deep-copies the template entities into a fresh store.
func New(template []types.VoxelEntity) *Store {
	ents := make([]types.VoxelEntity, len(template))
	copy(ents, template)
	return &Store{entities: ents}
}

// Entities returns a copy of all entities, hidden ones included.
func (w *Store) Entities() []types.VoxelEntity {
	out := make([]types.VoxelEntity, len(w.entities))
	copy(out, w.entities)
	return out
}

// Len returns the number of entities.
func (w *Store) Len() int {
	return len(w.entities)
}

// Get returns the entity with the given id.
func (w *Store) Get(id string) (types.VoxelEntity, bool) {
	if i := w.index(id); i >= 0 {
		return w.entities[i], true
	}
	return types.VoxelEntity{}, false
}

// At returns the first unhidden entity occupying pos.
func (w *Store) At(pos types.Vector3) (types.VoxelEntity, bool) {
	for _, e := range w.entities {
		if !e.Hidden && e.Position == pos {
			return e, true
		}
	}
	return types.VoxelEntity{}, false
}

// AtOfType returns the first unhidden entity of type t at pos.
func (w *Store) AtOfType(pos types.Vector3, t types.EntityType) (types.VoxelEntity, bool) {
	for _, e := range w.entities {
		if !e.Hidden && e.Type == t && e.Position == pos {
			return e, true
		}
	}
	return types.VoxelEntity{}, false
}

// Supports reports whether an unhidden solid entity sits directly below pos.
// Decorations, resources and obstacles are not walkable.
func (w *Store) Supports(pos types.Vector3) bool {
	below := types.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z - 1}
	for _, e := range w.entities {
		if e.Hidden || e.Position != below {
			continue
		}
		switch e.Type {
		case types.EntityBlock, types.EntityWall, types.EntityGoal:
			return true
		}
	}
	return false
}

// ResourceAt returns an unhidden resource in the same column as pos.
func (w *Store) ResourceAt(pos types.Vector3) (types.VoxelEntity, bool) {
	for _, e := range w.entities {
		if e.Type == types.EntityResource && !e.Hidden &&
			e.Position.X == pos.X && e.Position.Y == pos.Y {
			return e, true
		}
	}
	return types.VoxelEntity{}, false
}

// Goal returns the level's goal entity.
func (w *Store) Goal() (types.VoxelEntity, bool) {
	for _, e := range w.entities {
		if e.Type == types.EntityGoal {
			return e, true
		}
	}
	return types.VoxelEntity{}, false
}

// FindLabel returns the first entity whose label equals label, ignoring case.
func (w *Store) FindLabel(label string) (types.VoxelEntity, bool) {
	for _, e := range w.entities {
		if e.Label != "" && strings.EqualFold(e.Label, label) {
			return e, true
		}
	}
	return types.VoxelEntity{}, false
}

// OfType returns the ids of all entities of type t.
func (w *Store) OfType(t types.EntityType) []string {
	var ids []string
	for _, e := range w.entities {
		if e.Type == t {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Add appends an entity. An existing entity with the same id is replaced.
func (w *Store) Add(e types.VoxelEntity) {
	if i := w.index(e.ID); i >= 0 {
		w.entities[i] = e
		return
	}
	w.entities = append(w.entities, e)
}

// Remove deletes the entity with the given id. Returns false if absent.
func (w *Store) Remove(id string) bool {
	i := w.index(id)
	if i < 0 {
		return false
	}
	w.entities = append(w.entities[:i], w.entities[i+1:]...)
	return true
}

// Update applies fn to the entity with the given id.
func (w *Store) Update(id string, fn func(*types.VoxelEntity)) bool {
	i := w.index(id)
	if i < 0 {
		return false
	}
	fn(&w.entities[i])
	return true
}

func (w *Store) index(id string) int {
	for i := range w.entities {
		if w.entities[i].ID == id {
			return i
		}
	}
	return -1
}
