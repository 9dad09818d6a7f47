package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
}

func TestStale(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "run.trace")
	output := filepath.Join(dir, "run_filtered.trace")
	now := time.Now()

	t.Run("missing output", func(t *testing.T) {
		touch(t, input, now)
		stale, err := Stale(input, output)
		if err != nil {
			t.Fatalf("Stale() error = %v", err)
		}
		if !stale {
			t.Errorf("missing output must be stale")
		}
	})

	t.Run("output newer than input", func(t *testing.T) {
		touch(t, input, now.Add(-time.Minute))
		touch(t, output, now)
		stale, err := Stale(input, output)
		if err != nil {
			t.Fatalf("Stale() error = %v", err)
		}
		if stale {
			t.Errorf("fresh output reported stale")
		}
	})

	t.Run("input newer than output", func(t *testing.T) {
		touch(t, input, now)
		touch(t, output, now.Add(-time.Minute))
		stale, err := Stale(input, output)
		if err != nil {
			t.Fatalf("Stale() error = %v", err)
		}
		if !stale {
			t.Errorf("outdated output reported fresh")
		}
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := Stale(filepath.Join(dir, "missing.trace"), output)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stale() error = %v, want fs.ErrNotExist", err)
		}
	})
}

func TestRunInitialPass(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "run.trace")
	output := filepath.Join(dir, "run_filtered.trace")
	touch(t, input, time.Now())

	refiltered := 0
	w := New(Options{
		Targets: []Target{{
			Name:   "trace",
			Input:  input,
			Output: output,
			Refilter: func(ctx context.Context) error {
				refiltered++
				touch(t, output, time.Now().Add(time.Second))
				return nil
			},
		}},
		Debounce: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if refiltered != 1 {
		t.Errorf("initial pass refiltered %d times, want 1", refiltered)
	}
}

func TestRunRefiltersOnWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "run.trace")
	output := filepath.Join(dir, "run_filtered.trace")
	touch(t, input, time.Now().Add(-time.Minute))
	touch(t, output, time.Now()) // fresh, so the initial pass is a no-op

	refiltered := make(chan struct{}, 4)
	w := New(Options{
		Targets: []Target{{
			Name:   "trace",
			Input:  input,
			Output: output,
			Refilter: func(ctx context.Context) error {
				refiltered <- struct{}{}
				return nil
			},
		}},
		Debounce: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register, then append.
	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(input, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if _, err := f.WriteString("{\"type\":\"action\"}\n"); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	f.Close()

	select {
	case <-refiltered:
	case <-time.After(3 * time.Second):
		t.Fatalf("refilter did not fire after a write")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
