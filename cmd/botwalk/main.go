// botwalk is a terminal grid-puzzle game: program a bot with movement
// commands and bounded loops, then run the program against a board of
// walls, switches, toggle-bridges, and crumbling floors.
//
// Usage:
//
//	botwalk list                  - List available levels
//	botwalk play [level]          - Play interactively (level picker if omitted)
//	botwalk run <level> <program> - Run a program headlessly, printing signals
//	botwalk validate [dir]        - Validate level files
//	botwalk scores <level>        - Show best completions for a level
//	botwalk serve                 - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>  - Custom config YAML
//	--db <path>      - Database path (default: ~/.botwalk/botwalk.db)
//	--levels <dir>   - Extra directory of level files
//	--delay <ms>     - Step delay override in milliseconds
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/nchukanov/botwalk/internal/config"
	"github.com/nchukanov/botwalk/internal/level"
	"github.com/nchukanov/botwalk/internal/telemetry"
	"github.com/nchukanov/botwalk/levels"
)

var (
	// Global flags
	flagConfig    string
	flagDBPath    string
	flagLevelsDir string
	flagDelayMS   int
	flagTelemetry bool
)

func main() {
	// Load .env for local development; not fatal if absent.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "botwalk",
	Short: "botwalk - program a bot through grid puzzles in your terminal",
	Long: `botwalk is a terminal puzzle game where you write a small movement
program (forward, turns, bounded loops) and watch a bot execute it across a
board of walls, switches, toggle-bridges, and crumbling floors.

Program notation:
  F        move forward
  L / R    turn left / right
  3[F F]   repeat the bracketed commands 3 times (loops nest)

Examples:
  botwalk list
  botwalk play
  botwalk play 03-the-switch
  botwalk run 01-first-steps "F F F"
  botwalk scores 01-first-steps
  botwalk serve --ssh :23235`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLevelsDir, "levels", "", "Extra directory of level files (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagDelayMS, "delay", -1, "Step delay in milliseconds (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagTelemetry, "telemetry", false, "Enable OpenTelemetry tracing of runs")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger builds the CLI logger.
func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "botwalk",
	})
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagLevelsDir != "" {
		cfg.LevelsDir = flagLevelsDir
	}
	if flagDelayMS >= 0 {
		cfg.StepDelayMS = flagDelayMS
	}
	if flagTelemetry {
		cfg.Telemetry = true
	}
	return cfg, nil
}

// loadLevels merges the built-in levels with the configured directory.
// Directory levels override built-ins with the same ID.
func loadLevels(cfg config.Config, logger *log.Logger) ([]level.Level, error) {
	all, err := levels.All()
	if err != nil {
		return nil, err
	}

	if cfg.LevelsDir != "" {
		extra, err := level.NewLoader(cfg.LevelsDir, logger).LoadAll()
		if err != nil {
			return nil, err
		}
		byID := make(map[string]level.Level, len(all)+len(extra))
		for _, lvl := range all {
			byID[lvl.ID] = lvl
		}
		for _, lvl := range extra {
			byID[lvl.ID] = lvl
		}
		all = all[:0]
		for _, lvl := range byID {
			all = append(all, lvl)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	}
	return all, nil
}

// setupTracing initializes OTel when enabled. The returned tracer is nil
// when tracing is off; the shutdown func is always safe to call.
func setupTracing(cfg config.Config, logger *log.Logger) (trace.Tracer, func()) {
	if !cfg.Telemetry {
		return nil, func() {}
	}
	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Warn("telemetry setup failed, continuing without it", "error", err)
		return nil, func() {}
	}
	return telemetry.Tracer("interp"), func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}
}

// findLevel returns the level with the given ID and its index.
func findLevel(all []level.Level, id string) (level.Level, int, error) {
	for i, lvl := range all {
		if lvl.ID == id {
			return lvl, i, nil
		}
	}
	return level.Level{}, 0, fmt.Errorf("unknown level %q (run 'botwalk list')", id)
}
