// Package assets loads the wireframe models drawn by the renderer.
//
// Models are addressed by slash-separated paths such as
// "models/arwing.yaml". The compiled-in copies can be overridden by files of
// the same path under a directory on disk, which can also be watched for
// edits.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/plus3/arwing/ecs"
)

//go:embed models/*.yaml
var builtin embed.FS

// Handle references a model by path. It is the component entities carry.
type Handle struct {
	Path string
}

// RegisterComponents registers the components owned by this package.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Handle](registry)
}

type entry struct {
	model *Model
	err   error
}

// Server caches loaded models. It is not safe for concurrent use; hot
// reloads are applied from the game loop through ApplyChanges.
type Server struct {
	dir     string
	entries map[string]*entry
	logger  *slog.Logger
}

// NewServer returns a server reading from dir before the built-in models.
// An empty dir uses the built-in models only.
func NewServer(dir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		dir:     dir,
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Dir returns the override directory.
func (s *Server) Dir() string {
	return s.dir
}

// Load returns a handle for p, loading the model the first time p is seen.
// Load failures are reported by Get.
func (s *Server) Load(p string) Handle {
	clean := cleanPath(p)
	if _, ok := s.entries[clean]; !ok {
		s.entries[clean] = s.read(clean)
	}
	return Handle{Path: clean}
}

// Get returns the model behind h.
func (s *Server) Get(h Handle) (*Model, error) {
	e, ok := s.entries[cleanPath(h.Path)]
	if !ok {
		e = s.read(cleanPath(h.Path))
		s.entries[cleanPath(h.Path)] = e
	}
	return e.model, e.err
}

// Reload reads p again. A failed reload keeps the previously loaded model.
func (s *Server) Reload(p string) error {
	clean := cleanPath(p)
	e := s.read(clean)
	if e.err != nil {
		if old, ok := s.entries[clean]; ok && old.model != nil {
			return e.err
		}
	}
	s.entries[clean] = e
	return e.err
}

// Loaded returns the paths that have been requested so far.
func (s *Server) Loaded() []string {
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	return paths
}

func (s *Server) read(clean string) *entry {
	data, err := s.readFile(clean)
	if err != nil {
		return &entry{err: fmt.Errorf("assets: load %s: %w", clean, err)}
	}
	model, err := ParseModel(data)
	if err != nil {
		return &entry{err: fmt.Errorf("assets: parse %s: %w", clean, err)}
	}
	if model.Name == "" {
		model.Name = strings.TrimSuffix(path.Base(clean), path.Ext(clean))
	}
	return &entry{model: model}
}

func (s *Server) readFile(clean string) ([]byte, error) {
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(clean)))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return builtin.ReadFile(clean)
}

// relative maps a file name reported by the watcher back to a model path.
func (s *Server) relative(name string) (string, bool) {
	if s.dir == "" {
		return "", false
	}
	rel, err := filepath.Rel(s.dir, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return cleanPath(rel), true
}

func cleanPath(p string) string {
	s := filepath.ToSlash(p)
	s = strings.TrimPrefix(s, "./")
	s = strings.TrimPrefix(s, "assets/")
	return path.Clean(s)
}
