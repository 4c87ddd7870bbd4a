// Package tuning holds gameplay constants loaded from YAML.
package tuning

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	Minigame  Minigame  `yaml:"minigame"`
	Particles Particles `yaml:"particles"`
	Shake     Shake     `yaml:"shake"`
	Penalties Penalties `yaml:"penalties"`
	Delays    Delays    `yaml:"delays"`

	InspectRange float64 `yaml:"inspect_range"`
}

type Minigame struct {
	Length  int     `yaml:"length"`
	Seconds float64 `yaml:"seconds"`
}

// Particles values are per 1/60 s frame.
type Particles struct {
	Gravity  float64 `yaml:"gravity"`
	Decay    float64 `yaml:"decay"`
	Spread   float64 `yaml:"spread"`
	Lift     float64 `yaml:"lift"`
	Burst    int     `yaml:"burst"`
	WinBurst int     `yaml:"win_burst"`
}

type Shake struct {
	Decay   float64 `yaml:"decay"`
	Epsilon float64 `yaml:"epsilon"`
}

type Penalties struct {
	UnknownCommand  float64 `yaml:"unknown_command"`
	UnknownGit      float64 `yaml:"unknown_git"`
	BadRevision     float64 `yaml:"bad_revision"`
	BadObject       float64 `yaml:"bad_object"`
	Branch          float64 `yaml:"branch"`
	Add             float64 `yaml:"add"`
	Commit          float64 `yaml:"commit"`
	Merge           float64 `yaml:"merge"`
	Swap            float64 `yaml:"swap"`
	Obstacle        float64 `yaml:"obstacle"`
	MinigameMiss    float64 `yaml:"minigame_miss"`
	MinigameTimeout float64 `yaml:"minigame_timeout"`
}

// Delays are in seconds.
type Delays struct {
	RebaseSuccess float64 `yaml:"rebase_success"`
	TrailStep     float64 `yaml:"trail_step"`
}

// Default returns the embedded tuning.
func Default() Tuning {
	var t Tuning
	if err := yaml.Unmarshal(defaultYAML, &t); err != nil {
		panic(fmt.Sprintf("tuning: embedded default.yaml: %v", err))
	}
	return t
}

// Load reads a YAML file and overlays it on the defaults. Keys missing from
// the file keep their default value.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate rejects values the engine cannot run with.
func (t Tuning) Validate() error {
	switch {
	case t.TickRateHz <= 0:
		return fmt.Errorf("tick_rate_hz must be positive, got %d", t.TickRateHz)
	case t.Minigame.Length <= 0:
		return fmt.Errorf("minigame.length must be positive, got %d", t.Minigame.Length)
	case t.Minigame.Seconds <= 0:
		return fmt.Errorf("minigame.seconds must be positive, got %g", t.Minigame.Seconds)
	case t.Particles.Decay <= 0:
		return fmt.Errorf("particles.decay must be positive, got %g", t.Particles.Decay)
	case t.Shake.Decay < 0 || t.Shake.Decay >= 1:
		return fmt.Errorf("shake.decay must be in [0,1), got %g", t.Shake.Decay)
	}
	return nil
}
