package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSaveAndRetrieveCompletions(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := store.SaveCompletion("bridges-1", "run-a", 12); err != nil {
		t.Fatalf("SaveCompletion() failed: %v", err)
	}
	if _, err := store.SaveCompletion("bridges-1", "run-b", 8); err != nil {
		t.Fatalf("SaveCompletion() failed: %v", err)
	}
	if _, err := store.SaveCompletion("bridges-1", "run-c", 20); err != nil {
		t.Fatalf("SaveCompletion() failed: %v", err)
	}
	// Different level
	if _, err := store.SaveCompletion("first-steps", "run-d", 3); err != nil {
		t.Fatalf("SaveCompletion() failed: %v", err)
	}

	best, err := store.BestCompletions("bridges-1", 10)
	if err != nil {
		t.Fatalf("BestCompletions() failed: %v", err)
	}
	if len(best) != 3 {
		t.Fatalf("Expected 3 completions, got %d", len(best))
	}

	// Fewest steps first
	if best[0].Steps != 8 {
		t.Errorf("Expected best to be 8 steps, got %d", best[0].Steps)
	}
	if best[1].Steps != 12 {
		t.Errorf("Expected second to be 12 steps, got %d", best[1].Steps)
	}
	if best[2].Steps != 20 {
		t.Errorf("Expected third to be 20 steps, got %d", best[2].Steps)
	}

	other, err := store.BestCompletions("first-steps", 10)
	if err != nil {
		t.Fatalf("BestCompletions() failed: %v", err)
	}
	if len(other) != 1 || other[0].Steps != 3 {
		t.Errorf("Expected one 3-step completion for first-steps, got %+v", other)
	}
}

func TestBestCompletionsLimit(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	for i := 0; i < 15; i++ {
		if _, err := store.SaveCompletion("lvl", "run", 10+i); err != nil {
			t.Fatalf("SaveCompletion() failed: %v", err)
		}
	}

	best, err := store.BestCompletions("lvl", 5)
	if err != nil {
		t.Fatalf("BestCompletions() failed: %v", err)
	}
	if len(best) != 5 {
		t.Errorf("Expected 5 completions with limit, got %d", len(best))
	}
}

func TestAttemptCounts(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	outcomes := []string{"failed", "failed", "completed", "halted", "failed"}
	for i, o := range outcomes {
		if _, err := store.SaveAttempt("lvl", "run", o, i+1); err != nil {
			t.Fatalf("SaveAttempt() failed: %v", err)
		}
	}

	counts, err := store.AttemptCounts("lvl")
	if err != nil {
		t.Fatalf("AttemptCounts() failed: %v", err)
	}
	if counts["failed"] != 3 {
		t.Errorf("Expected 3 failed attempts, got %d", counts["failed"])
	}
	if counts["completed"] != 1 {
		t.Errorf("Expected 1 completed attempt, got %d", counts["completed"])
	}
	if counts["halted"] != 1 {
		t.Errorf("Expected 1 halted attempt, got %d", counts["halted"])
	}
}
