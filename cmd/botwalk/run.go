package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nchukanov/botwalk/internal/command"
	"github.com/nchukanov/botwalk/internal/interp"
	"github.com/nchukanov/botwalk/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run <level> <program>",
	Short: "Run a program headlessly",
	Long: `Execute a program against a level without the TUI, printing the
signal stream and the final board. Steps run with no delay unless --delay
is given.

Examples:
  botwalk run 01-first-steps "F F F"
  botwalk run 03-the-switch "2[F F] F F" --delay 200`,
	Args: cobra.MinimumNArgs(2),
	Run:  runRun,
}

func runRun(cmd *cobra.Command, args []string) {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("config", "error", err)
	}
	// Headless runs pace at full speed unless asked otherwise.
	if flagDelayMS < 0 {
		cfg.StepDelayMS = 0
	}

	all, err := loadLevels(cfg, logger)
	if err != nil {
		logger.Fatal("loading levels", "error", err)
	}
	lvl, idx, err := findLevel(all, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	program, err := command.Parse(strings.Join(args[1:], " "))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tracer, stopTracing := setupTracing(cfg, logger)
	defer stopTracing()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open database, continuing without scores", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	b, err := lvl.Build(logger)
	if err != nil {
		logger.Fatal("building level", "error", err)
	}

	it := interp.New(b, lvl.StartPose(b), interp.Options{
		StepDelay:  cfg.StepDelay(),
		Logger:     logger,
		Tracer:     tracer,
		LevelID:    lvl.ID,
		LevelIndex: idx,
	})
	it.Subscribe(func(sig interp.Signal) { printSignal(sig) })

	fmt.Printf("level %s (%dx%d), program %q\n\n%s\n\n", lvl.ID, b.Width(), b.Height(), command.Format(program), b)
	if err := it.Run(program); err != nil {
		logger.Fatal("run", "error", err)
	}

	fmt.Printf("\n%s\n\nfinal: %s at (%d,%d) facing %s, %d steps\n",
		b, it.State(), it.Pose().Pos.X, it.Pose().Pos.Y, it.Pose().Facing, it.Steps())

	if store != nil {
		if _, err := store.SaveAttempt(lvl.ID, it.RunID(), it.State().String(), it.Steps()); err != nil {
			logger.Warn("could not save attempt", "error", err)
		}
		if it.State() == interp.Completed {
			if _, err := store.SaveCompletion(lvl.ID, it.RunID(), it.Steps()); err != nil {
				logger.Warn("could not save completion", "error", err)
			}
		}
	}

	if it.State() != interp.Completed {
		os.Exit(1)
	}
}

func printSignal(sig interp.Signal) {
	switch s := sig.(type) {
	case interp.SequenceStarted:
		fmt.Printf("sequence started (run %s, %d steps planned)\n", s.RunID, s.Planned)
	case interp.StepTaken:
		fmt.Printf("step %d: %s\n", s.Count, s.Step)
	case interp.PlayerMoved:
		fmt.Printf("  -> (%d,%d) facing %s\n", s.Pose.Pos.X, s.Pose.Pos.Y, s.Pose.Facing)
	case interp.MoveBlocked:
		fmt.Printf("  -> blocked at (%d,%d)\n", s.Target.X, s.Target.Y)
	case interp.TileChanged:
		fmt.Printf("  tile (%d,%d) -> %s\n", s.Pos.X, s.Pos.Y, s.Tile.Kind)
	case interp.SequenceCompleted:
		fmt.Printf("sequence completed in %d steps\n", s.Steps)
	case interp.SequenceFailed:
		fmt.Printf("sequence failed after %d steps: %s\n", s.Steps, s.Reason)
	case interp.LevelCompleted:
		fmt.Printf("level %s completed (%d steps)\n", s.LevelID, s.Steps)
	}
}
