package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nchukanov/botwalk/internal/level"
	"github.com/nchukanov/botwalk/internal/platform/tui"
	"github.com/nchukanov/botwalk/internal/storage"
)

var flagWatch bool

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play interactively",
	Long: `Play a level in the terminal. Without an argument, shows the level
picker.

Controls:
  type a program   F, L, R, and loops like 3[F F]
  enter            run the program
  esc              halt a running program
  ctrl+r           reset the level
  ctrl+n           next level (after completing)
  ctrl+b           back to the level picker
  ctrl+c           quit

Examples:
  botwalk play
  botwalk play 03-the-switch
  botwalk play 03-the-switch --delay 100
  botwalk play --levels ./mylevels --watch`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the level when its file changes (needs --levels)")
}

func runPlay(cmd *cobra.Command, args []string) {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("config", "error", err)
	}
	all, err := loadLevels(cfg, logger)
	if err != nil {
		logger.Fatal("loading levels", "error", err)
	}
	if len(all) == 0 {
		logger.Fatal("no levels available")
	}

	tracer, stopTracing := setupTracing(cfg, logger)
	defer stopTracing()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open database, continuing without scores", "error", err)
	} else {
		defer store.Close()
	}

	var watcher *level.Watcher
	if flagWatch {
		if cfg.LevelsDir == "" {
			logger.Warn("--watch needs a levels directory, ignoring")
		} else if w, watchErr := level.NewWatcher(cfg.LevelsDir); watchErr != nil {
			logger.Warn("could not watch levels directory", "error", watchErr)
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	deps := tui.PlayDeps{
		Store:   store,
		Logger:  logger,
		Tracer:  tracer,
		Config:  cfg,
		Watcher: watcher,
	}

	var model tea.Model
	if len(args) == 1 {
		_, idx, findErr := findLevel(all, args[0])
		if findErr != nil {
			fmt.Fprintln(os.Stderr, findErr)
			os.Exit(1)
		}
		model = tui.NewSessionModelAt(all, deps, idx)
	} else {
		model = tui.NewSessionModel(all, deps)
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Warn("stdout is not a terminal")
	}

	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		logger.Fatal("ui error", "error", err)
	}
}
