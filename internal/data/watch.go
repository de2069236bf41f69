package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch signals on the returned channel whenever a compendium file in one of
// dirs is created, written, renamed or removed. Signals are coalesced: a slow
// consumer sees at most one pending signal. The watcher stops and the channel
// is closed when ctx is done. Directories that do not exist are skipped.
//
// The watcher only signals; callers reload the Store on their own goroutine.
func Watch(ctx context.Context, dirs []string, log *zap.Logger) (<-chan struct{}, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create compendium watcher: %w", err)
	}

	watched := 0
	for _, dir := range dirs {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			continue
		}
		if err := w.Add(dir); err != nil {
			log.Warn("cannot watch compendium dir", zap.String("dir", dir), zap.Error(err))
			continue
		}
		watched++
	}
	log.Debug("watching compendium dirs", zap.Int("dirs", watched))

	changed := make(chan struct{}, 1)
	go func() {
		defer close(changed)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op == fsnotify.Chmod || !isCompendiumFile(filepath.Base(ev.Name)) {
					continue
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("compendium watcher error", zap.Error(err))
			}
		}
	}()

	return changed, nil
}
