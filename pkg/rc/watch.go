package rc

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a configuration file.
type Watcher struct {
	w       *fsnotify.Watcher
	path    string
	changed chan struct{}
	done    chan struct{}
}

// Watch starts watching the file at path. The directory containing the file
// is watched rather than the file itself, so that editors that replace the
// file by renaming are handled, and a file created later is noticed.
func Watch(path string) (*Watcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	watcher := &Watcher{w, path, make(chan struct{}, 1), make(chan struct{})}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path ||
				!event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}
			logger.Debug("configuration file changed", "path", w.path, "op", event.Op.String())
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			logger.Warn("watching configuration file", "path", w.path, "err", err)
		}
	}
}

// Changed returns a channel that receives a value after the file changes.
// Changes that happen before the value is received are coalesced.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string { return w.path }

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}
