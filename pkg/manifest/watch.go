package manifest

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long a file must stay quiet before its change is
// reported. Each new event for the file restarts the wait.
const Debounce = 100 * time.Millisecond

// Watcher reports changes to a fixed set of files: a stage document and
// the images it references. Directories are watched so editors that
// replace files by rename are still seen.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	Events  chan string
	Errors  chan error
	fired   chan string
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches files.
func NewWatcher(files ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		files:   watched,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		fired:   make(chan string),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !w.files[name] {
				continue
			}
			if t, ok := timers[name]; ok {
				t.Reset(Debounce)
				continue
			}
			timers[name] = time.AfterFunc(Debounce, func() {
				select {
				case w.fired <- name:
				case <-w.closeCh:
				}
			})
		case name := <-w.fired:
			delete(timers, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
