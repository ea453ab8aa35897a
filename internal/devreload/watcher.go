// Package devreload tracks edits to template and content directories so dev mode can
// reparse only after something changed.
package devreload

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"waveify.dev/web/internal/observability"
)

// Watcher records whether any watched file changed since the last check.
type Watcher struct {
	watcher *fsnotify.Watcher
	dirty   atomic.Bool
	logger  *zap.Logger
	done    chan struct{}
}

// Watch starts watching roots recursively until ctx ends or Close is called. The first
// call to Changed reports true.
func Watch(ctx context.Context, logger *zap.Logger, roots ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("devreload: new watcher: %w", err)
	}
	w := &Watcher{watcher: fw, logger: observability.OrNop(logger), done: make(chan struct{})}
	w.dirty.Store(true)
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	go w.loop(ctx)
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(filepath.Clean(root), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("devreload: walk %s: %w", path, err)
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("devreload: watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("devreload: watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}
	w.logger.Debug("devreload: change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	w.dirty.Store(true)
}

// Changed reports whether a file changed since the previous call and resets the flag.
func (w *Watcher) Changed() bool {
	if w == nil {
		return true
	}
	return w.dirty.Swap(false)
}

// Close stops watching.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}
