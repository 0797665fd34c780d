package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nchukanov/botwalk/internal/platform/tui"
	"github.com/nchukanov/botwalk/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores <level>",
	Short: "Show best completions for a level",
	Args:  cobra.ExactArgs(1),
	Run:   runScores,
}

func runScores(cmd *cobra.Command, args []string) {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("config", "error", err)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("opening database", "error", err)
	}
	defer store.Close()

	levelID := args[0]
	best, err := store.BestCompletions(levelID, 10)
	if err != nil {
		logger.Fatal("querying completions", "error", err)
	}
	if len(best) == 0 {
		fmt.Printf("No completions recorded for %s yet.\n", levelID)
	} else {
		fmt.Println(tui.ScoreTable(levelID, best))
	}

	counts, err := store.AttemptCounts(levelID)
	if err != nil {
		logger.Fatal("querying attempts", "error", err)
	}
	if len(counts) > 0 {
		fmt.Printf("\nAttempts: %d completed, %d failed, %d halted\n",
			counts["completed"], counts["failed"], counts["halted"])
	}
}
