// Package watch keeps filtered outputs fresh while a test runner rewrites
// its trace and network logs.
//
// It watches the input files and refilters after each burst of writes. The
// filtering engine itself is stateless and never checks for pre-existing
// output, so the freshness policy (skip refiltering when the output is
// already newer than the input) lives here, on the caller's side.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long after the last write event a refilter fires.
// Test runners append traces in bursts; refiltering on every write would
// rework the whole file per line.
const DefaultDebounce = 500 * time.Millisecond

// reappearTimeout bounds how long a removed or renamed input may stay gone
// before the watcher gives up.
const reappearTimeout = 10 * time.Second

// Target binds one input file to the action that refilters it.
type Target struct {
	Name     string // short label used in log lines
	Input    string
	Output   string
	Refilter func(ctx context.Context) error
}

// Options configures the watcher behavior.
type Options struct {
	Targets  []Target
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher refilters targets whenever their inputs change.
type Watcher struct {
	opts     Options
	watcher  *fsnotify.Watcher
	byInput  map[string]*Target
	dirty    map[string]bool
	debounce *time.Timer
}

// New creates a Watcher with the given options.
func New(opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	byInput := make(map[string]*Target, len(opts.Targets))
	for i := range opts.Targets {
		t := &opts.Targets[i]
		byInput[t.Input] = t
	}

	return &Watcher{
		opts:    opts,
		byInput: byInput,
		dirty:   make(map[string]bool),
	}
}

// Run performs an initial freshness pass, then blocks watching the inputs
// until the context is cancelled or an error occurs.
func (w *Watcher) Run(ctx context.Context) error {
	for _, t := range w.opts.Targets {
		stale, err := Stale(t.Input, t.Output)
		if err != nil {
			return fmt.Errorf("checking %s: %w", t.Input, err)
		}
		if !stale {
			w.opts.Logger.Info("output up to date", "target", t.Name, "output", t.Output)
			continue
		}
		if err := t.Refilter(ctx); err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}
	w.watcher = watcher
	defer watcher.Close()

	for input := range w.byInput {
		if err := watcher.Add(input); err != nil {
			return fmt.Errorf("failed to watch %s: %w", input, err)
		}
	}

	w.debounce = time.NewTimer(w.opts.Debounce)
	if !w.debounce.Stop() {
		<-w.debounce.C
	}
	defer w.debounce.Stop()

	return w.watch(ctx)
}

func (w *Watcher) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if err := w.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)

		case <-w.debounce.C:
			if err := w.refilterDirty(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) error {
	target, ok := w.byInput[event.Name]
	if !ok {
		return nil
	}

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create:
		w.markDirty(target)
		return nil

	case event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename:
		// The runner replaced the file wholesale. Wait for it to reappear,
		// then treat it as changed.
		if err := w.awaitReappear(ctx, target); err != nil {
			return err
		}
		w.markDirty(target)
		return nil
	}

	return nil
}

func (w *Watcher) markDirty(t *Target) {
	w.dirty[t.Input] = true
	w.debounce.Reset(w.opts.Debounce)
}

func (w *Watcher) refilterDirty(ctx context.Context) error {
	for input, dirty := range w.dirty {
		if !dirty {
			continue
		}
		w.dirty[input] = false
		t := w.byInput[input]
		if err := t.Refilter(ctx); err != nil {
			return err
		}
	}
	return nil
}

// awaitReappear polls for a removed input to come back, re-adding it to the
// watch list once it does.
func (w *Watcher) awaitReappear(ctx context.Context, t *Target) error {
	timeout := time.After(reappearTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for %s to reappear", t.Input)
		case <-ticker.C:
			if _, err := os.Stat(t.Input); err != nil {
				continue
			}
			if err := w.watcher.Add(t.Input); err != nil {
				return fmt.Errorf("failed to rewatch %s: %w", t.Input, err)
			}
			w.opts.Logger.Info("input replaced, following new file", "target", t.Name)
			return nil
		}
	}
}

// Stale reports whether output is missing or older than input. A missing
// input is an error: there is nothing to filter.
func Stale(input, output string) (bool, error) {
	in, err := os.Stat(input)
	if err != nil {
		return false, err
	}
	out, err := os.Stat(output)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return out.ModTime().Before(in.ModTime()), nil
}
