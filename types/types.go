// Package types defines the shared data structures for the gitquest engine.
// This package contains only type definitions — no logic, no methods.
package types

// Vector3 is an integer grid coordinate.
type Vector3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Point is a continuous coordinate used by particles and trails.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EntityType classifies a voxel for collision and interaction.
type EntityType string

const (
	EntityPlayer     EntityType = "player"
	EntityBlock      EntityType = "block" // walkable ground
	EntityWall       EntityType = "wall"
	EntityResource   EntityType = "resource" // something to stage
	EntityObstacle   EntityType = "obstacle" // needs a fix to clear
	EntityGoal       EntityType = "goal"
	EntityDecoration EntityType = "decoration"
)

// VoxelEntity is one cube in the level.
type VoxelEntity struct {
	ID       string     `json:"id"`
	Type     EntityType `json:"type"`
	Position Vector3    `json:"position"`
	Color    string     `json:"color"`
	Label    string     `json:"label,omitempty"` // commit hash, file name, slot name
	Hidden   bool       `json:"hidden,omitempty"`
}

// Particle is a short-lived visual spark.
type Particle struct {
	ID       string  `json:"id"`
	Position Point   `json:"position"`
	Velocity Point   `json:"velocity"`
	Color    string  `json:"color"`
	Life     float64 `json:"life"`
}

// Direction is an avatar movement intent.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Arrow is a minigame input token.
type Arrow string

const (
	ArrowUp    Arrow = "up"
	ArrowDown  Arrow = "down"
	ArrowLeft  Arrow = "left"
	ArrowRight Arrow = "right"
)

// Status is the overall screen/game state.
type Status string

const (
	StatusIntro         Status = "intro"
	StatusMap           Status = "map"
	StatusKnowledgeBase Status = "knowledge_base"
	StatusPlaying       Status = "playing"
	StatusWon           Status = "won"
	StatusLost          Status = "lost"
)

// Continuation names what happens when a minigame is won.
type Continuation struct {
	Kind    string `json:"kind"` // "merge"
	Branch  string `json:"branch,omitempty"`
	Attempt int    `json:"attempt"`
}

// MinigameState is the timed arrow-sequence challenge.
type MinigameState struct {
	Active    bool         `json:"active"`
	Sequence  []Arrow      `json:"sequence"`
	Index     int          `json:"index"`
	TimeLeft  float64      `json:"time_left"`
	MaxTime   float64      `json:"max_time"`
	OnSuccess Continuation `json:"on_success"`
}

// LevelProgress tracks unlock state and stars for a level.
type LevelProgress struct {
	LevelID  int  `json:"level_id"`
	Unlocked bool `json:"unlocked"`
	Stars    int  `json:"stars"`
}

// Session is the complete mutable game state outside the world store.
type Session struct {
	Level         int
	CurrentBranch string
	Branches      []string
	Inventory     []string // staged labels
	Commits       []string // history and milestone tokens
	Status        Status
	TutorialStep  int
	Objective     string
	Target        *Vector3 // guide target
	Player        Vector3
	Shake         float64
	Particles     []Particle
	Minigame      MinigameState
	Progress      []LevelProgress
	Attempt       int // bumped on every level load
	Message       string
}

// Intent is a parsed command line.
type Intent struct {
	Verb string   // lower-cased first word
	Sub  string   // lower-cased git subcommand, empty for other verbs
	Args []string // remaining words, case preserved
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// LineKind tags a log line for styling.
type LineKind string

const (
	LinePlain   LineKind = ""
	LineInfo    LineKind = "info"
	LineSuccess LineKind = "success"
	LineWarn    LineKind = "warn"
	LineError   LineKind = "error"
	LineInput   LineKind = "input"
)

// Line is one entry of the player-facing log feed.
type Line struct {
	Text string   `json:"text"`
	Kind LineKind `json:"kind,omitempty"`
}

// Cue is a named audio request for an external sound collaborator.
type Cue string

const (
	CueStep      Cue = "step"
	CueSuccess   Cue = "success"
	CueError     Cue = "error"
	CueObjective Cue = "objective"
	CueWin       Cue = "win"
	CueBranch    Cue = "branch"
	CueCommit    Cue = "commit"
	CueMerge     Cue = "merge"
	CueRevert    Cue = "revert"
	CueAlert     Cue = "alert"
	CueHit       Cue = "hit"
)

// Result is the output of a single engine call.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []Line
	Cues    []Cue
}

// Action is what the tutorial tracker matches against.
type Action struct {
	Kind    string // "move" or "command"
	At      Vector3
	Command string // normalized descriptor, e.g. "checkout -b"
	Arg     string
}

// Trigger is the expected action of a tutorial step.
type Trigger struct {
	Kind    string // "move" or "command"
	X, Y    int    // for move triggers
	Command string
	Arg     string // optional; empty matches any argument
}

// TutorialStep is one row of a level's tutorial table.
type TutorialStep struct {
	On        Trigger
	Objective string
	Target    *Vector3
	Effects   []Effect // extra side effects when the step fires
}

// Condition is a predicate over the session.
type Condition struct {
	Type   string         // "has_commit", "on_branch", "has_branch", "status_is", "not"
	Params map[string]any // condition-specific parameters
	Inner  *Condition     // for Not()
}

// EventHandler is a level rule triggered by an event rather than a command.
type EventHandler struct {
	EventType  string
	Conditions []Condition
	Effects    []Effect
}

// MergeScript configures the conflict-gated merge lesson.
type MergeScript struct {
	Token    string  // appended when the conflict is resolved
	Requires string  // fix commit token that must be in history
	Fix      Vector3 // where the bridge-fix block lands
	Color    string
	Missing  string // shown by git status while the fix is missing
}

// RevertScript configures the revert lesson.
type RevertScript struct {
	Hash     string
	Token    string
	Obstacle string // entity id removed on success
	Message  string
}

// CherryScript configures the cherry-pick lesson.
type CherryScript struct {
	Hash  string
	Token string
	Dest  Vector3
	Color string
}

// SwapScript configures the block-swap rebase lesson.
type SwapScript struct {
	Targets []string // labels that must all sit on Row
	Row     int
	Token   string
}

// GapScript is a cell with a dedicated "missing bridge" message.
type GapScript struct {
	At      Vector3
	Message string
}

// Script holds every level-specific constant the interpreter needs.
type Script struct {
	CommitToken   string // token appended by git commit
	CommitMessage string
	Merge         *MergeScript
	Revert        *RevertScript
	Cherry        *CherryScript
	Swap          *SwapScript
	Rebase        []string // git rebase -i guidance; nil disables the command
	Gap           *GapScript
	ObstacleHint  string // shown when inspecting an obstacle
}

// LevelDef is the immutable description of a level.
type LevelDef struct {
	ID          int
	Name        string
	Description string
	Start       Vector3
	Entities    []VoxelEntity
	Win         []Condition
	Branches    []string
	Branch      string
	Commits     []string
	Objective   string
	Target      *Vector3
	Hint        []string
	History     []string // git log output
	Tutorial    []TutorialStep
	Handlers    []EventHandler
	Script      Script
}

// Deferred is an effect batch scheduled for later.
type Deferred struct {
	At      float64 // scheduler clock, seconds
	Attempt int
	Tag     string
	Guard   []Condition
	Effects []Effect
}
