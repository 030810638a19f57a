package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/telik/webtv/internal/m3u"
)

// Watcher reloads the playlist when a local playlist file changes, so edits
// show up in the player without a restart. The parent directory is watched
// and events are filtered by base name: editors that replace the file via
// rename would otherwise drop the watch.
type Watcher struct {
	log   logrus.FieldLogger
	path  string
	store *Store

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a playlist file watcher.
func NewWatcher(log logrus.FieldLogger, path string, store *Store) *Watcher {
	return &Watcher{
		log:   log.WithField("component", "watcher"),
		path:  path,
		store: store,
	}
}

// Start begins watching the playlist file.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return nil // Already running
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()

		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(watchCtx, fsw, w.done)

	w.log.WithField("path", w.path).Info("Playlist watcher started")

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.done = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()

		if done != nil {
			<-done
		}
	}

	w.log.Info("Playlist watcher stopped")

	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer func() {
		_ = fsw.Close()
	}()

	target := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != target {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.reload()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}

			w.log.WithError(err).Warn("Playlist watcher error")
		}
	}
}

func (w *Watcher) reload() {
	content, err := os.ReadFile(w.path)
	if err != nil {
		w.log.WithError(err).Warn("Failed to reload playlist file")

		return
	}

	channels := m3u.Parse(string(content))
	w.store.SetChannels(channels)

	w.log.WithField("channels", len(channels)).Info("Playlist reloaded from file")
}
