package importer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/KianBaghai/fantasy-predictor/internal/logger"
)

// Watcher re-runs an import callback when projection CSVs change on disk.
// Editors and spreadsheet exports produce bursts of write events, so
// changes are debounced before the callback fires.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching dir for CSV changes. onChange runs on the
// watcher goroutine after the debounce window.
func Watch(dir string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w := &Watcher{fw: fw, done: make(chan struct{})}

	go func() {
		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if strings.ToLower(filepath.Ext(event.Name)) != ".csv" {
					continue
				}
				logger.Debug("Projection file changed", "path", event.Name, "op", event.Op.String())
				if timer == nil {
					timer = time.NewTimer(debounce)
					fire = timer.C
				} else {
					timer.Reset(debounce)
				}
			case <-fire:
				timer = nil
				fire = nil
				onChange()
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("Projection watcher error", "error", err)
			case <-w.done:
				return
			}
		}
	}()

	logger.Info("Watching projections directory", "dir", dir)
	return w, nil
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
