// Package watch reports report files dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config selects the directory and the files reported from it.
type Config struct {
	Dir         string
	Accept      func(path string) bool // nil accepts everything
	Exclude     []string               // paths never emitted, e.g. files the caller writes
	InitialScan bool                   // emit files already present
	Debounce    time.Duration          // quiet period before a path is emitted
}

// Start watches cfg.Dir (not recursively) and emits each accepted path once
// it has been quiet for cfg.Debounce. The channel closes when ctx ends.
func Start(ctx context.Context, cfg Config, log *slog.Logger) (<-chan string, error) {
	accept := cfg.Accept
	if accept == nil {
		accept = func(string) bool { return true }
	}
	excluded := make(map[string]bool, len(cfg.Exclude))
	for _, p := range cfg.Exclude {
		excluded[absPath(p)] = true
	}
	cfg.Accept = func(p string) bool { return !excluded[absPath(p)] && accept(p) }

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(cfg.Dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}

	var initial []string
	if cfg.InitialScan {
		entries, err := os.ReadDir(cfg.Dir)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("scan %s: %w", cfg.Dir, err)
		}
		for _, e := range entries {
			p := filepath.Join(cfg.Dir, e.Name())
			if !e.IsDir() && cfg.Accept(p) {
				initial = append(initial, p)
			}
		}
	}

	out := make(chan string, 64)
	go func() {
		defer close(out)
		defer w.Close()

		emit := func(p string) bool {
			select {
			case out <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]time.Time{}
		tick := time.NewTicker(tickInterval(cfg.Debounce))
		defer tick.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&(fsnotify.Create|fsnotify.Write) == 0 || !cfg.Accept(e.Name) {
					continue
				}
				pending[e.Name] = time.Now()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("watcher error", "error", err)
			case now := <-tick.C:
				var ready []string
				for p, last := range pending {
					if now.Sub(last) >= cfg.Debounce {
						ready = append(ready, p)
					}
				}
				sort.Strings(ready)
				for _, p := range ready {
					delete(pending, p)
					if !emit(p) {
						return
					}
				}
			}
		}
	}()
	return out, nil
}

func tickInterval(debounce time.Duration) time.Duration {
	if d := debounce / 4; d >= 10*time.Millisecond {
		return d
	}
	return 10 * time.Millisecond
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
