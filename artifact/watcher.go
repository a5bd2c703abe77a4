package artifact

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the artifacts when either file changes on disk.
type Watcher struct {
	loader   *Loader
	debounce time.Duration
	log      *zap.Logger
	fs       *fsnotify.Watcher
	files    map[string]struct{}
}

// NewWatcher starts watching the directories holding the loader's files.
// Directories are watched rather than files so that atomic replacements
// by rename are seen.
func NewWatcher(loader *Loader, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		loader:   loader,
		debounce: debounce,
		log:      logger.Named("watcher"),
		fs:       fsw,
		files:    make(map[string]struct{}, 2),
	}
	dirs := make(map[string]struct{}, 2)
	for _, path := range []string{loader.opts.ColumnsPath, loader.opts.ModelPath} {
		path = filepath.Clean(path)
		w.files[path] = struct{}{}
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("artifact changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if _, err := w.loader.Load(); err != nil {
				w.log.Warn("reload completed with missing artifacts", zap.Error(err))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if _, ok := w.files[filepath.Clean(event.Name)]; !ok {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
