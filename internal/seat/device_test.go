package seat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasKeyRangeFindsMatch(t *testing.T) {
	keys := []int{1, 2, 100, 272}
	if !hasKeyRange(keys, 272, 280) {
		t.Fatalf("expected match for a key inside the range")
	}
}

func TestHasKeyRangeNoMatch(t *testing.T) {
	keys := []int{1, 2, 3}
	if hasKeyRange(keys, 272, 280) {
		t.Fatalf("expected no match when no key falls in range")
	}
}

func TestHasKeyRangeEmpty(t *testing.T) {
	if hasKeyRange(nil, 272, 280) {
		t.Fatalf("expected no match against an empty key list")
	}
}

func TestEventPrefixFilterMatchesOnlyEventNodes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"event0", "event1", "mouse0", "js0"} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("create fixture: %v", err)
		}
		f.Close()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var matched int
	for _, e := range entries {
		if len(e.Name()) >= 5 && e.Name()[:5] == "event" {
			matched++
		}
	}
	if matched != 2 {
		t.Fatalf("expected fixture to contain 2 event nodes, got %d (sanity check on test fixture itself)", matched)
	}
}
