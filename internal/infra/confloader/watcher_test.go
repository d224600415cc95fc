package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/dir/respkv.yaml"); err == nil {
		t.Fatal("Watch should fail for a missing directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.StartAsync()
	time.Sleep(20 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "respkv.yaml")
	otherFile := filepath.Join(dir, "other.yaml")
	writeFile(t, configFile, "log:\n  level: info\n")

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})

	w.StartAsync()
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	// Changes to a neighbour are ignored.
	writeFile(t, otherFile, "x: 1\n")
	select {
	case path := <-changed:
		t.Fatalf("unexpected notification for %s", path)
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(configFile, []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "respkv.yaml" {
			t.Errorf("notified for %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnChange callback was not triggered")
	}
}
