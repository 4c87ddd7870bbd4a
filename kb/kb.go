// Package kb holds the git command reference shown on the knowledge base
// screen.
package kb

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed commands.yaml
var commandsYAML []byte

// Entry is one command in the reference.
type Entry struct {
	Category string `yaml:"category"`
	Cmd      string `yaml:"cmd"`
	Desc     string `yaml:"desc"`
}

// Section groups entries of one category, in file order.
type Section struct {
	Category string
	Entries  []Entry
}

// Parse decodes a reference document.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing command reference: %w", err)
	}
	for i, e := range entries {
		if e.Cmd == "" || e.Category == "" {
			return nil, fmt.Errorf("command reference entry %d: category and cmd are required", i+1)
		}
	}
	return entries, nil
}

// Commands returns the embedded reference. It panics if the embedded file
// is invalid, which the package tests rule out.
func Commands() []Entry {
	entries, err := Parse(commandsYAML)
	if err != nil {
		panic(err)
	}
	return entries
}

// Sections groups the embedded reference by category.
func Sections() []Section {
	var out []Section
	index := map[string]int{}
	for _, e := range Commands() {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, Section{Category: e.Category})
		}
		out[i].Entries = append(out[i].Entries, e)
	}
	return out
}
