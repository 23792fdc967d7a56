package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long a burst of events must stay quiet before the
// change callback runs. Editors and restore write the same file several
// times in quick succession.
const watchDebounce = 200 * time.Millisecond

// watchFiles calls onChange after any of the files named by inputs is
// written, created, renamed or removed, until ctx is done.
//
// fsnotify watches directories, not files: the parent directory of every
// input is watched and events are filtered by path, so a file replaced via
// rename is still seen. inputs is re-read after every batch so that files
// added by the change (a new project in a solution) are picked up. Errors
// returned by onChange are logged and watching continues.
func watchFiles(ctx context.Context, logger *log.Logger, inputs func() []string, onChange func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	track := func() {
		clear(targets)
		for _, f := range inputs() {
			abs, err := filepath.Abs(f)
			if err != nil {
				continue
			}
			targets[abs] = true
			dir := filepath.Dir(abs)
			if dirs[dir] {
				continue
			}
			if err := w.Add(dir); err != nil {
				logger.Warn("cannot watch directory", "path", dir, "error", err)
				continue
			}
			dirs[dir] = true
		}
		logger.Debug("watching", "files", len(targets), "dirs", len(dirs))
	}
	track()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	var changed []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !targets[abs] {
				continue
			}
			changed = append(changed, abs)
			timer.Reset(watchDebounce)

		case <-timer.C:
			logger.Info("change detected", "files", changed)
			changed = nil
			if err := onChange(); err != nil {
				logger.Error("rebuild failed", "error", err)
			}
			track()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
