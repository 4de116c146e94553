package assets

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangle = `
name: tri
color: "#ff000080"
vertices:
  - [0, 0, 0]
  - [1, 0, 0]
  - [0, 1, 0]
edges:
  - [0, 1]
  - [1, 2]
  - [2, 0]
`

func writeModel(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", name), []byte(body), 0o644))
}

func TestBuiltinModels(t *testing.T) {
	s := NewServer("", nil)
	for _, p := range []string{"models/arwing.yaml", "models/blaster_green.yaml", "models/drone.yaml"} {
		m, err := s.Get(s.Load(p))
		require.NoError(t, err, p)
		assert.NotEmpty(t, m.Vertices, p)
		assert.NotEmpty(t, m.Edges, p)
	}
}

func TestMissingModel(t *testing.T) {
	s := NewServer("", nil)
	h := s.Load("models/nope.yaml")
	_, err := s.Get(h)
	assert.ErrorContains(t, err, "assets: load models/nope.yaml")
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel([]byte(triangle))
	require.NoError(t, err)
	assert.Equal(t, "tri", m.Name)
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, m.Color)
	assert.Len(t, m.Vertices, 3)
	assert.Equal(t, [2]int{1, 2}, m.Edges[1])

	_, err = ParseModel([]byte("vertices: [[0, 0, 0]]\nedges: [[0, 3]]\n"))
	assert.ErrorContains(t, err, "out of range")

	_, err = ParseModel([]byte("vertices: [[0, 0]]\n"))
	assert.ErrorContains(t, err, "3 coordinates")

	_, err = ParseModel([]byte("color: \"#12\"\n"))
	assert.ErrorContains(t, err, "invalid color")
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "arwing.yaml", triangle)

	s := NewServer(dir, nil)
	assert.Equal(t, dir, s.Dir())
	m, err := s.Get(s.Load("models/arwing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tri", m.Name)

	// Files missing on disk fall back to the built-in copy.
	m, err = s.Get(s.Load("models/drone.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "drone", m.Name)
}

func TestReloadKeepsLastGoodModel(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "arwing.yaml", triangle)

	s := NewServer(dir, nil)
	h := s.Load("models/arwing.yaml")

	writeModel(t, dir, "arwing.yaml", "edges: [[0, 9]]\n")
	assert.Error(t, s.Reload(h.Path))

	m, err := s.Get(h)
	require.NoError(t, err)
	assert.Equal(t, "tri", m.Name)
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "drone.yaml", triangle)

	s := NewServer(dir, nil)
	h := s.Load("models/drone.yaml")

	w, err := s.Watch()
	require.NoError(t, err)
	defer w.Close()

	writeModel(t, dir, "drone.yaml", "name: edited\nvertices: [[0, 0, 0]]\n")

	require.Eventually(t, func() bool {
		s.ApplyChanges(w)
		m, err := s.Get(h)
		return err == nil && m.Name == "edited"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchMissingModelsDir(t *testing.T) {
	s := NewServer(filepath.Join(t.TempDir(), "nowhere"), nil)
	_, err := s.Watch()
	assert.Error(t, err)
}
