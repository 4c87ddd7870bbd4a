// GitQuest teaches git by guiding Keif the Kraken across a voxel repository.
// Usage: gitquest [--version] [--plain] [--script <file>] [--trace]
//
//	[--levels <dir>] [--tuning <file>] [--seed <n>] [--level <n>] [--log-file <file>]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/gitquest/cli"
	"github.com/nathoo/gitquest/engine"
	"github.com/nathoo/gitquest/engine/state"
	"github.com/nathoo/gitquest/levels"
	"github.com/nathoo/gitquest/loader"
	"github.com/nathoo/gitquest/tui"
	"github.com/nathoo/gitquest/tuning"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: gitquest [--version] [--plain] [--script <file>] [--trace] [--levels <dir>] [--tuning <file>] [--seed <n>] [--level <n>] [--log-file <file>]"

type options struct {
	plain      bool
	trace      bool
	scriptFile string
	levelsDir  string
	tuningFile string
	logFile    string
	seed       int64
	level      int
}

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	opts := options{
		tuningFile: os.Getenv("GITQUEST_TUNING"),
		levelsDir:  os.Getenv("GITQUEST_LEVELS"),
		logFile:    os.Getenv("LOG_FILE"),
	}

	args := os.Args[1:]
	value := func(i *int, flag string) string {
		if *i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
		*i++
		return args[*i]
	}
	number := func(i *int, flag string) int64 {
		n, err := strconv.ParseInt(value(i, flag), 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", flag, err)
			os.Exit(1)
		}
		return n
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("gitquest %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--script":
			opts.scriptFile = value(&i, "--script")
		case "--levels":
			opts.levelsDir = value(&i, "--levels")
		case "--tuning":
			opts.tuningFile = value(&i, "--tuning")
		case "--log-file":
			opts.logFile = value(&i, "--log-file")
		case "--seed":
			opts.seed = number(&i, "--seed")
		case "--level":
			opts.level = int(number(&i, "--level"))
		default:
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(1)
		}
	}

	if err := run(opts); err != nil {
		log.Error().Err(err).Msg("gitquest failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// The TUI owns the terminal, so its logs go to a file or nowhere.
	interactive := opts.scriptFile == "" && !opts.plain && isTerminal()
	logger, closeLog, err := setupLogger(opts.logFile, interactive)
	if err != nil {
		return err
	}
	defer closeLog()
	log.Logger = logger

	cat, err := loadCatalog(opts.levelsDir)
	if err != nil {
		return fmt.Errorf("loading levels: %w", err)
	}

	tu := tuning.Default()
	if opts.tuningFile != "" {
		if tu, err = tuning.Load(opts.tuningFile); err != nil {
			return err
		}
	}

	engOpts := []engine.Option{engine.WithLogger(logger), engine.WithTuning(tu)}
	if opts.seed != 0 {
		engOpts = append(engOpts, engine.WithSeed(opts.seed))
	}
	eng := engine.New(cat, engOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Script mode: open file, force plain, echo commands.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.Trace = opts.trace
		c.StartLevel = opts.level
		return c.Run(ctx)
	}

	if !interactive {
		c := cli.New(eng)
		c.Trace = opts.trace
		c.Realtime = true
		c.StartLevel = opts.level
		return c.Run(ctx)
	}

	eng.StartGame()
	if opts.level > 0 {
		if _, err := eng.LoadLevel(opts.level); err != nil {
			return err
		}
	}
	return tui.Run(eng)
}

func loadCatalog(dir string) (*state.Catalog, error) {
	if dir != "" {
		return loader.LoadDir(dir)
	}
	return loader.Load(levels.FS)
}

// setupLogger builds the process logger. LOG_LEVEL picks the level
// (default info). Output goes to path when set, otherwise to a console
// writer on stderr unless the TUI owns the terminal.
func setupLogger(path string, interactive bool) (zerolog.Logger, func(), error) {
	level := zerolog.InfoLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		l, err := zerolog.ParseLevel(s)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		level = l
	}

	var out io.Writer
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	case interactive:
		return zerolog.Nop(), closeFn, nil
	default:
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("component", "gitquest").Logger()
	return logger, closeFn, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
