package render

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/arwing/assets"
	"github.com/plus3/arwing/transform"
)

// Projector maps world space to pixel coordinates.
type Projector struct {
	eye           mgl64.Vec3
	viewProj      mgl64.Mat4
	width, height float64
}

// NewProjector builds the view-projection for a camera at eye rendering
// into a width x height target.
func NewProjector(eye mgl64.Vec3, cam Camera, width, height int) Projector {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	up := cam.Up
	if up == (mgl64.Vec3{}) {
		up = mgl64.Vec3{0, 1, 0}
	}
	view := mgl64.LookAtV(eye, cam.Target, up)
	proj := mgl64.Perspective(cam.FovY, aspect, cam.Near, cam.Far)
	return Projector{
		eye:      eye,
		viewProj: proj.Mul4(view),
		width:    float64(width),
		height:   float64(height),
	}
}

// Project returns the pixel position of p and its distance along the view
// axis. ok is false for points behind the camera.
func (p Projector) Project(point mgl64.Vec3) (x, y, depth float64, ok bool) {
	clip := p.viewProj.Mul4x1(point.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, 0, false
	}
	ndcX := clip.X() / w
	ndcY := clip.Y() / w
	x = (ndcX + 1) / 2 * p.width
	y = (1 - ndcY) / 2 * p.height
	return x, y, w, true
}

// Distance is the distance from the camera to point.
func (p Projector) Distance(point mgl64.Vec3) float64 {
	return point.Sub(p.eye).Len()
}

// Segment is a projected edge in pixel coordinates.
type Segment struct {
	X0, Y0, X1, Y1 float32
}

// Wireframe projects every edge of m placed by t. Edges with an endpoint
// behind the camera are dropped.
func Wireframe(p Projector, m *assets.Model, t transform.Transform) []Segment {
	matrix := t.Matrix()

	type projected struct {
		x, y float64
		ok   bool
	}
	points := make([]projected, len(m.Vertices))
	for i, v := range m.Vertices {
		x, y, _, ok := p.Project(mgl64.TransformCoordinate(v, matrix))
		points[i] = projected{x, y, ok}
	}

	segments := make([]Segment, 0, len(m.Edges))
	for _, e := range m.Edges {
		a, b := points[e[0]], points[e[1]]
		if !a.ok || !b.ok {
			continue
		}
		segments = append(segments, Segment{float32(a.x), float32(a.y), float32(b.x), float32(b.y)})
	}
	return segments
}

// Shade scales base by the ambient brightness plus every directional
// light's intensity, capped at full brightness.
func Shade(base color.NRGBA, ambient AmbientLight, lights []DirectionalLight) color.NRGBA {
	level := ambient.Brightness
	for _, l := range lights {
		level += l.Intensity
	}
	level = math.Max(0, math.Min(1, level))

	scale := func(c uint8) uint8 {
		return uint8(math.Round(float64(c) * level))
	}
	return color.NRGBA{R: scale(base.R), G: scale(base.G), B: scale(base.B), A: base.A}
}
