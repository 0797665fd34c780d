package levels

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nchukanov/botwalk/internal/command"
	"github.com/nchukanov/botwalk/internal/interp"
)

func TestBuiltinLevelsLoad(t *testing.T) {
	all, err := All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("no built-in levels embedded")
	}
	logger := log.New(io.Discard)
	for _, lvl := range all {
		if _, err := lvl.Build(logger); err != nil {
			t.Errorf("level %s does not build: %v", lvl.ID, err)
		}
	}
}

// Every shipped level must be beatable; these are the intended solutions.
func TestBuiltinLevelsSolvable(t *testing.T) {
	solutions := map[string]string{
		"01-first-steps": "F F F",
		"02-the-corner":  "F F F L F F",
		"03-the-switch":  "4[F]",
		"04-crumbling":   "4[F]",
		"05-long-walk":   "14[F]",
	}

	all, err := All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	logger := log.New(io.Discard)

	for _, lvl := range all {
		src, ok := solutions[lvl.ID]
		if !ok {
			t.Errorf("no solution recorded for level %s", lvl.ID)
			continue
		}
		program, err := command.Parse(src)
		if err != nil {
			t.Fatalf("level %s: bad solution %q: %v", lvl.ID, src, err)
		}

		b, err := lvl.Build(logger)
		if err != nil {
			t.Fatalf("level %s: build: %v", lvl.ID, err)
		}
		it := interp.New(b, lvl.StartPose(b), interp.Options{Logger: logger, LevelID: lvl.ID})
		if err := it.Run(program); err != nil {
			t.Fatalf("level %s: run: %v", lvl.ID, err)
		}
		if it.State() != interp.Completed {
			t.Errorf("level %s: solution %q ends in state %v, want completed", lvl.ID, src, it.State())
		}
	}
}
