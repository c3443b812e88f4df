package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timefill/config"
	"timefill/storage"
)

func TestConfirmDeletePrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "uppercase Y confirms", input: "Y\n", want: true},
		{name: "lowercase y does not confirm", input: "y\n", want: false},
		{name: "N does not confirm", input: "N\n", want: false},
		{name: "empty does not confirm", input: "\n", want: false},
		{name: "Y without newline confirms", input: "Y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirmDeletePrompt(bytes.NewBufferString(tt.input), &out, "./timefill.db")
			if err != nil {
				t.Fatalf("confirm prompt returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if !strings.Contains(out.String(), "./timefill.db") {
				t.Fatalf("expected prompt output naming the file, got %q", out.String())
			}
		})
	}
}

func TestRemoveDatabaseFile(t *testing.T) {
	t.Run("deletes existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "timefill.db")
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatalf("write temp db file: %v", err)
		}

		if err := removeDatabaseFile(path); err != nil {
			t.Fatalf("remove db file: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected file to be deleted")
		}
	})

	t.Run("fails for directory path", func(t *testing.T) {
		if err := removeDatabaseFile(t.TempDir()); err == nil {
			t.Fatalf("expected error for directory path")
		}
	})

	t.Run("fails for missing file", func(t *testing.T) {
		if err := removeDatabaseFile(filepath.Join(t.TempDir(), "missing.db")); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}

func TestResolveHistoryDBPath(t *testing.T) {
	if got := resolveHistoryDBPath("./flag.db", "./cfg.db"); got != "./flag.db" {
		t.Fatalf("expected flag path, got %q", got)
	}
	if got := resolveHistoryDBPath("", "./cfg.db"); got != "./cfg.db" {
		t.Fatalf("expected configured path, got %q", got)
	}
	if got := resolveHistoryDBPath(" ", ""); got != config.DefaultHistoryDBPath {
		t.Fatalf("expected default path, got %q", got)
	}
}

func TestWriteHistory(t *testing.T) {
	var empty bytes.Buffer
	if err := writeHistory(&empty, nil); err != nil {
		t.Fatalf("write empty history: %v", err)
	}
	if !strings.Contains(empty.String(), "No runs recorded yet.") {
		t.Fatalf("unexpected empty output: %q", empty.String())
	}

	var out bytes.Buffer
	runs := []storage.Run{{
		ID:         "run-1",
		StartedAt:  time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC),
		Mode:       "auto",
		Driver:     "firefox",
		StartDate:  "15/08/2024",
		EntryCount: 22,
		TotalUnits: "22",
		RowsAdded:  2,
		FinalState: "ready_for_manual_submit",
		Status:     storage.StatusReady,
	}}
	if err := writeHistory(&out, runs); err != nil {
		t.Fatalf("write history: %v", err)
	}
	for _, want := range []string{"15/08/2024", "firefox", "ready_for_manual_submit", "ready"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short  ", 10); got != "short" {
		t.Fatalf("unexpected value %q", got)
	}
	if got := truncate(strings.Repeat("x", 20), 10); got != "xxxxxxx..." {
		t.Fatalf("unexpected value %q", got)
	}
}
