package config

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"salesdesk/internal/commission"
)

// ColumnsWatcher serves the column aliases and reloads them when the file
// changes. A bad edit keeps the last good aliases.
type ColumnsWatcher struct {
	path    string
	current atomic.Pointer[commission.Columns]
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}
}

func WatchColumns(ctx context.Context, path string, logger *zap.Logger) (*ColumnsWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cols, err := LoadColumns(path)
	if err != nil {
		return nil, err
	}

	cw := &ColumnsWatcher{path: filepath.Clean(path), logger: logger, done: make(chan struct{})}
	cw.current.Store(&cols)
	if path == "" {
		close(cw.done)
		return cw, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(cw.path)); err != nil {
		watcher.Close()
		return nil, err
	}
	cw.watcher = watcher

	go cw.run(ctx)
	return cw, nil
}

func (cw *ColumnsWatcher) Columns() commission.Columns {
	return *cw.current.Load()
}

func (cw *ColumnsWatcher) run(ctx context.Context) {
	defer close(cw.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cols, err := LoadColumns(cw.path)
			if err != nil {
				cw.logger.Warn("Column aliases reload failed, keeping previous", zap.String("path", cw.path), zap.Error(err))
				continue
			}
			cw.current.Store(&cols)
			cw.logger.Info("Column aliases reloaded", zap.String("path", cw.path))
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("Column aliases watcher error", zap.Error(err))
		}
	}
}

// Close stops watching and waits for the reload loop to exit.
func (cw *ColumnsWatcher) Close() error {
	if cw.watcher == nil {
		return nil
	}
	err := cw.watcher.Close()
	<-cw.done
	return err
}
