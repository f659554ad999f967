package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceWindow drops repeat events for one file that arrive closer together
// than this. Editors tend to write a file more than once per save.
const DebounceWindow = 100 * time.Millisecond

// Watcher reports effect descriptions and advance scripts that change on
// disk. Events carries the changed path.
type Watcher struct {
	fs      *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	now     func() time.Time
}

func NewWatcher(paths ...string) (*Watcher, error) {
	return newWatcher(time.Now, paths...)
}

// newWatcher takes the clock the debouncer reads.
func newWatcher(now func() time.Time, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:      fw,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		now:     now,
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	go w.run()
	return w, nil
}

// Add watches one more path. A file path is watched through its directory so
// the watch survives editors that save by rename.
func (w *Watcher) Add(p string) error {
	if isSpecFile(p) || isScriptFile(p) {
		p = filepath.Dir(p)
	}
	return w.fs.Add(p)
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	d := debouncer{window: DebounceWindow, last: make(map[string]time.Time)}
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if !d.allow(event.Name, w.now()) {
				continue
			}
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.fs.Errors:
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

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	return isSpecFile(event.Name) || isScriptFile(event.Name)
}

type debouncer struct {
	window time.Duration
	last   map[string]time.Time
}

func (d *debouncer) allow(name string, now time.Time) bool {
	if t, ok := d.last[name]; ok && now.Sub(t) < d.window {
		return false
	}
	d.last[name] = now
	return true
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
