package loadorder

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dshills/loadorder/game"
)

// Watcher flags external changes to a game's load-order state: writes
// under the plugins directory or to the active-plugin file. Callers
// poll HasChanged between operations to decide whether a Load is
// needed, since the on-disk state is single-writer by contract.
type Watcher struct {
	fsw      *fsnotify.Watcher
	log      *zap.Logger
	plugins  string
	active   string
	closeCh  chan struct{}
	closedWg sync.WaitGroup

	mu      sync.Mutex
	changed bool
	lastErr error
	closed  bool
}

// NewWatcher starts watching the game's plugins directory and
// active-plugin file. Paths that do not exist yet are skipped; the
// watcher still reports changes to whichever existed at start. A nil
// logger discards log output.
func NewWatcher(settings *game.Settings, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		log:     log,
		plugins: filepath.Clean(settings.PluginsDirectory()),
		active:  filepath.Clean(settings.ActivePluginsFile()),
		closeCh: make(chan struct{}),
	}

	for _, dir := range []string{w.plugins, filepath.Dir(w.active)} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// HasChanged reports whether a relevant filesystem change was seen
// since the watcher started or was last Reset.
func (w *Watcher) HasChanged() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changed
}

// Reset clears the change flag, typically right after a Load.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.changed = false
}

// Err returns the last error reported by the underlying watcher.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.closeCh)
	err := w.fsw.Close()
	w.closedWg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
			w.mu.Lock()
			w.lastErr = err
			w.mu.Unlock()
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	if filepath.Dir(name) != w.plugins && name != w.active {
		return
	}

	w.log.Debug("load order state changed on disk",
		zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
	w.mu.Lock()
	w.changed = true
	w.mu.Unlock()
}
