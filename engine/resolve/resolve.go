// Package resolve maps labels typed by the player to voxel entities.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/gitquest/types"
)

// Lookup is the read side of the world store that resolution needs.
type Lookup interface {
	Entities() []types.VoxelEntity
}

// AmbiguityError indicates multiple entities matched a label.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a label.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no block labelled %q", e.Name)
}

// Clean strips the bracket characters players copy from hint text
// ("[c1]" -> "c1") and surrounding whitespace.
func Clean(token string) string {
	token = strings.NewReplacer("[", "", "]", "").Replace(token)
	return strings.TrimSpace(token)
}

// Label resolves a typed token to a single unhidden entity. Labels match
// case-insensitively; an exact entity id is accepted as a fallback.
func Label(w Lookup, token string) (types.VoxelEntity, error) {
	name := Clean(token)
	if name == "" {
		return types.VoxelEntity{}, &NotFoundError{Name: token}
	}

	var matches []types.VoxelEntity
	for _, e := range w.Entities() {
		if e.Hidden || e.Label == "" {
			continue
		}
		if strings.EqualFold(e.Label, name) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		for _, e := range w.Entities() {
			if !e.Hidden && strings.EqualFold(e.ID, name) {
				return e, nil
			}
		}
		return types.VoxelEntity{}, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		return types.VoxelEntity{}, &AmbiguityError{Name: name, Candidates: ids}
	}
}
