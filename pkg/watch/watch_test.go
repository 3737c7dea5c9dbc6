package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherBatchesChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(dir, dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batches := make(chan []string, 4)
	go w.Run(ctx, func(paths []string) { batches <- paths })

	a := filepath.Join(dir, "a.json")
	os.WriteFile(a, []byte(`{}`), 0644)
	os.WriteFile(a, []byte(`{"x": 1}`), 0644)
	os.WriteFile(filepath.Join(dir, ".a.json.swp"), []byte("x"), 0644)

	select {
	case paths := <-batches:
		if len(paths) != 1 || paths[0] != a {
			t.Errorf("paths = %v, want [%s]", paths, a)
		}
	case <-ctx.Done():
		t.Fatal("no change delivered")
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	w, err := New(0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func([]string) {}) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestIgnored(t *testing.T) {
	w := &Watcher{ignore: []string{"*.swp", "*~"}}
	tests := []struct {
		path string
		want bool
	}{
		{"/s/a.json", false},
		{"/s/.a.json.swp", true},
		{"/s/a.json~", true},
	}
	for _, tt := range tests {
		if got := w.ignored(tt.path); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
