package assets

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Model is a wireframe: a set of vertices in model space joined by edges.
// The model's forward axis is +Z.
type Model struct {
	Name     string
	Color    color.NRGBA
	Vertices []mgl64.Vec3
	Edges    [][2]int
}

type modelFile struct {
	Name     string      `yaml:"name"`
	Color    HexColor    `yaml:"color"`
	Vertices [][]float64 `yaml:"vertices"`
	Edges    [][]int     `yaml:"edges"`
}

// ParseModel decodes a YAML wireframe and checks that every edge refers to
// an existing vertex.
func ParseModel(data []byte) (*Model, error) {
	var file modelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	m := &Model{
		Name:     file.Name,
		Color:    color.NRGBA(file.Color),
		Vertices: make([]mgl64.Vec3, 0, len(file.Vertices)),
		Edges:    make([][2]int, 0, len(file.Edges)),
	}
	if m.Color == (color.NRGBA{}) {
		m.Color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}

	for i, v := range file.Vertices {
		if len(v) != 3 {
			return nil, fmt.Errorf("vertex %d: want 3 coordinates, got %d", i, len(v))
		}
		m.Vertices = append(m.Vertices, mgl64.Vec3{v[0], v[1], v[2]})
	}
	for i, e := range file.Edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("edge %d: want 2 indices, got %d", i, len(e))
		}
		for _, idx := range e {
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, fmt.Errorf("edge %d: vertex %d out of range", i, idx)
			}
		}
		m.Edges = append(m.Edges, [2]int{e[0], e[1]})
	}
	return m, nil
}

// HexColor decodes "#rrggbb" or "#rrggbbaa".
type HexColor color.NRGBA

func (c *HexColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	var parts [4]uint8
	parts[3] = 255
	for i := 0; i*2 < len(s); i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return fmt.Errorf("invalid color format: %s", value.Value)
		}
		parts[i] = uint8(v)
	}

	*c = HexColor{R: parts[0], G: parts[1], B: parts[2], A: parts[3]}
	return nil
}
