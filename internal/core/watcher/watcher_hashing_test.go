package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_IdenticalContentSuppressed(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 10)
	w, err := New(50*time.Millisecond, nil, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tmpDir, "target.py")
	content := []byte("model = \"gpt-4o\"\n")

	if err := os.WriteFile(testFile, content, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changedFiles:
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for create event")
	}

	// Rewriting the same bytes must not fire again.
	if err := os.WriteFile(testFile, content, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changedFiles:
		t.Errorf("received unexpected event for identical content: %v", paths)
	case <-time.After(300 * time.Millisecond):
		// Expected
	}

	newContent := []byte("model = \"claude-sonnet-4\"\n")
	if err := os.WriteFile(testFile, newContent, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == testFile {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected event for %s, got %v", testFile, paths)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for content change")
	}
}
