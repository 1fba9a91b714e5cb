// Package watch reruns a callback whenever a source image changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long the file must stay quiet before a rebuild.
const DefaultDelay = 500 * time.Millisecond

// Relevant reports whether ev touches target. Editors often save through a
// temp file plus rename, so Create counts as well as Write.
func Relevant(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(target) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// Watch blocks until ctx is done, calling run once per burst of changes to
// path. The parent directory is watched rather than the file so that a
// replaced file keeps being tracked.
func Watch(ctx context.Context, path string, delay time.Duration, run func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !Relevant(ev, abs) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		case <-fire:
			fire = nil
			run()
		}
	}
}
