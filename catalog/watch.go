package catalog

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/shodgson/prosemirror-widgets/slash"
	"go.uber.org/zap"
)

// Update is a reloaded catalog, or the error that prevented the reload.
type Update struct {
	Items []slash.Item
	Err   error
}

// Watcher reloads a catalog file whenever it changes on disk. The
// directory is watched rather than the file so that editors which save by
// renaming a temporary file are picked up too.
type Watcher struct {
	path    string
	log     *zap.Logger
	watcher *fsnotify.Watcher
	updates chan Update

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Watch starts watching path. Updates are delivered on Updates() until ctx
// is done or Close is called.
func Watch(ctx context.Context, path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:    abs,
		log:     log.Named("catalog"),
		watcher: fw,
		updates: make(chan Update, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.run(ctx)
	w.log.Debug("watching catalog", zap.String("path", abs))
	return w, nil
}

// Updates returns the channel of reloads. It is closed when the watcher
// stops.
func (w *Watcher) Updates() <-chan Update { return w.updates }

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.updates)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			items, err := Load(w.path)
			if err != nil {
				w.log.Warn("catalog reload failed", zap.Error(err))
			} else {
				w.log.Info("catalog reloaded", zap.Int("items", len(items)))
			}
			if !w.send(ctx, Update{Items: items, Err: err}) {
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("catalog watcher error", zap.Error(err))
		}
	}
}

// send replaces a pending update with u so readers only see the latest.
func (w *Watcher) send(ctx context.Context, u Update) bool {
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- u:
		return true
	case <-ctx.Done():
		return false
	case <-w.stopCh:
		return false
	}
}
