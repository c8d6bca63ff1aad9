package mcp

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type countingTarget struct {
	n atomic.Int32
}

func (c *countingTarget) Reload() error {
	c.n.Add(1)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestReloaderSkipsMissingPaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(file, []byte("block: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := NewReloader(&countingTarget{}, []string{"", file, filepath.Join(dir, "absent.yaml")}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer r.watcher.Close()

	if got := r.Paths(); len(got) != 1 || got[0] != file {
		t.Errorf("expected only the existing file watched, got %v", got)
	}
}

func TestReloaderWatchesSkillSubdirectories(t *testing.T) {
	skills := t.TempDir()
	if err := os.MkdirAll(filepath.Join(skills, "crud"), 0755); err != nil {
		t.Fatal(err)
	}

	r, err := NewReloader(&countingTarget{}, []string{skills}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer r.watcher.Close()

	if len(r.Paths()) != 2 {
		t.Errorf("expected directory and one subdirectory watched, got %v", r.Paths())
	}
}

func TestReloaderDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(file, []byte("block: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	target := &countingTarget{}
	r, err := NewReloader(target, []string{file}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	r.Debounce = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(file, []byte("warn: []\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return target.n.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if n := target.n.Load(); n != 1 {
		t.Errorf("expected a single debounced reload, got %d", n)
	}
}

func TestReloaderStopsOnCancel(t *testing.T) {
	r, err := NewReloader(&countingTarget{}, nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reloader did not stop")
	}
}
