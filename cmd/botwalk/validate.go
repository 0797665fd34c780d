package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nchukanov/botwalk/internal/level"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate level files",
	Long: `Parse and build every level file in a directory, reporting errors.
Without an argument, validates the configured levels directory.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("config", "error", err)
	}

	dir := cfg.LevelsDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "no directory given and no levels_dir configured")
		os.Exit(1)
	}

	loader := level.NewLoader(dir, logger)
	bad := 0
	total := 0
	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !level.IsLevelFile(path) {
			return nil
		}
		total++

		lvl, loadErr := loader.LoadFile(path)
		if loadErr != nil {
			bad++
			fmt.Printf("FAIL %s: %v\n", path, loadErr)
			return nil
		}
		if _, buildErr := lvl.Build(logger); buildErr != nil {
			bad++
			fmt.Printf("FAIL %s: %v\n", path, buildErr)
			return nil
		}
		fmt.Printf("ok   %s (%s)\n", path, lvl.ID)
		return nil
	})
	if walkErr != nil {
		logger.Fatal("walking directory", "error", walkErr)
	}

	fmt.Printf("\n%d level(s), %d invalid\n", total, bad)
	if bad > 0 {
		os.Exit(1)
	}
}
