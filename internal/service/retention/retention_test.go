package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func listDir(t *testing.T, dir string) map[string]bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.Name()] = true
	}
	return out
}

func TestSweepKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	var names []string
	for i := 1; i <= 5; i++ {
		names = append(names, fmt.Sprintf("2025081%d-0600_mentions.json", i))
	}
	writeFiles(t, dir, names...)

	c := NewCleaner(3, nil)
	deleted, err := c.Sweep(dir)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("want 2 deleted, got %d", deleted)
	}

	left := listDir(t, dir)
	if !left["20250815-0600_mentions.json"] || !left["20250814-0600_mentions.json"] || !left["20250813-0600_mentions.json"] {
		t.Fatalf("newest three must survive: %v", left)
	}
	if left["20250811-0600_mentions.json"] {
		t.Fatalf("oldest must be deleted: %v", left)
	}
}

func TestSweepIgnoresUnstampedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"index.html",
		"notes.txt",
		"20250811-0600_a.json",
		"20250812-0600_a.json",
		"20250813-0600_a.json",
	)

	c := NewCleaner(2, nil)
	deleted, err := c.Sweep(dir)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("want 1 deleted, got %d", deleted)
	}
	left := listDir(t, dir)
	if !left["index.html"] || !left["notes.txt"] {
		t.Fatalf("unstamped files must survive: %v", left)
	}
}

func TestSweepBelowLimitNoop(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "20250815-0600_a.json")

	c := NewCleaner(30, nil)
	deleted, err := c.Sweep(dir)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("want 0 deleted, got %d", deleted)
	}
}

func TestSweepMissingDir(t *testing.T) {
	c := NewCleaner(3, nil)
	if _, err := c.Sweep(filepath.Join(t.TempDir(), "does-not-exist")); err != nil {
		t.Fatalf("missing dir must not error: %v", err)
	}
}
