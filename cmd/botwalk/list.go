package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available levels",
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
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
		fmt.Println("No levels found.")
		return
	}

	fmt.Println("Available levels:")
	for _, lvl := range all {
		name := lvl.Name
		if name == "" {
			name = lvl.ID
		}
		b, buildErr := lvl.Build(logger)
		if buildErr != nil {
			fmt.Printf("  %-18s %s (INVALID: %v)\n", lvl.ID, name, buildErr)
			continue
		}
		fmt.Printf("  %-18s %s (%dx%d)\n", lvl.ID, name, b.Width(), b.Height())
	}
	_ = os.Stdout.Sync()
}
