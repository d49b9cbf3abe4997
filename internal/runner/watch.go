package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchPaths are the project paths whose changes trigger a rebuild.
var DefaultWatchPaths = []string{"slides", "src", "css", "index.html"}

const DefaultDebounce = 300 * time.Millisecond

// Watch rebuilds the project whenever a file under paths (relative to the
// project directory) changes, until ctx is done. Rapid changes are coalesced
// into one build. Build failures are reported and watching continues.
func (r *Runner) Watch(ctx context.Context, paths []string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	watched := 0
	for _, p := range paths {
		n, err := addTree(w, filepath.Join(r.opts.Dir, p))
		if err != nil {
			return err
		}
		watched += n
	}
	if watched == 0 {
		return fmt.Errorf("nothing to watch in %s", r.opts.Dir)
	}
	r.ui.VerboseLog("Watching %d paths for changes", watched)

	timer := time.NewTimer(debounce)
	timer.Stop()
	var pending bool

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if _, err := addTree(w, ev.Name); err != nil {
						r.ui.Warning("Could not watch %s: %v", ev.Name, err)
					}
				}
			}
			r.ui.VerboseLog("Changed: %s (%s)", ev.Name, ev.Op)
			timer.Reset(debounce)
			pending = true
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.ui.Warning("Watch error: %v", err)
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			r.ui.Info("Change detected, rebuilding...")
			if err := r.Build(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.ui.Error("%v", err)
			}
		}
	}
}

// addTree watches path and, if it is a directory, every directory below it.
// A missing path is skipped.
func addTree(w *fsnotify.Watcher, path string) (int, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 1, w.Add(path)
	}
	n := 0
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || d.Name() == "dist" {
				return filepath.SkipDir
			}
			n++
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("watch %s: %w", path, err)
	}
	return n, nil
}
