package assets

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports edited model files under the override directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// Watch starts watching the server's models directory.
func (s *Server) Watch() (*Watcher, error) {
	return NewWatcher(filepath.Join(s.dir, "models"))
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
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

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isModelFile(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
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

// ApplyChanges reloads every model the watcher reported since the last call
// without blocking. It returns the number of models reloaded.
func (s *Server) ApplyChanges(w *Watcher) int {
	if w == nil {
		return 0
	}

	reloaded := 0
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return reloaded
			}
			rel, ok := s.relative(name)
			if !ok {
				continue
			}
			if err := s.Reload(rel); err != nil {
				s.logger.Warn("model reload failed", "path", rel, "err", err)
				continue
			}
			s.logger.Info("model reloaded", "path", rel)
			reloaded++
		case err, ok := <-w.Errors:
			if ok {
				s.logger.Warn("asset watcher error", "err", err)
			}
		default:
			return reloaded
		}
	}
}

func isModelFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
