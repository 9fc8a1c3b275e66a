package daemon

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/cloudmirror/internal/logfields"
)

// configWatcher watches the configuration file and invokes onChange when it
// is rewritten. Editors replace files rather than write in place, so the
// watch is on the parent directory with a name filter.
type configWatcher struct {
	path     string
	onChange func()
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

func newConfigWatcher(path string, onChange func()) *configWatcher {
	return &configWatcher{path: path, onChange: onChange, done: make(chan struct{})}
}

func (w *configWatcher) start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher

	target := filepath.Base(w.path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				slog.Debug("Config file changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				w.onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("Config watcher error", logfields.Error(err))
			case <-w.done:
				return
			}
		}
	}()
	return nil
}

func (w *configWatcher) stop() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}
