package render

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/arwing/assets"
	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/transform"
)

const lineWidth = 1.5

// RenderSystem draws every entity carrying a model handle into the Screen
// singleton, farthest first, followed by point light glows.
type RenderSystem struct {
	Assets *assets.Server
	Logger *slog.Logger

	Cameras ecs.Query[struct {
		*transform.Transform
		*Camera
	}]
	Models ecs.Query[struct {
		ecs.EntityId
		*transform.Transform
		*assets.Handle
	}]
	Lights ecs.Query[struct {
		*PointLight
		Local  *transform.Transform `ecs:"optional"`
		Parent *ecs.Parent          `ecs:"optional"`
	}]
	Directional ecs.Query[struct{ *DirectionalLight }]

	Screen  ecs.Singleton[Screen]
	Clear   ecs.Singleton[ClearColor]
	Ambient ecs.Singleton[AmbientLight]

	failed map[string]bool
}

type drawItem struct {
	distance float64
	model    *assets.Model
	t        transform.Transform
}

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get()
	if screen == nil || screen.Image == nil {
		return
	}
	if clear := s.Clear.Get(); clear != nil {
		screen.Fill(clear.NRGBA)
	}

	_, cam, ok := s.Cameras.Single()
	if !ok {
		return
	}
	bounds := screen.Bounds()
	projector := NewProjector(cam.Translation, *cam.Camera, bounds.Dx(), bounds.Dy())

	var ambient AmbientLight
	if a := s.Ambient.Get(); a != nil {
		ambient = *a
	}
	var lights []DirectionalLight
	for l := range s.Directional.Values() {
		lights = append(lights, *l.DirectionalLight)
	}

	var items []drawItem
	for item := range s.Models.Values() {
		model := s.model(*item.Handle)
		if model == nil {
			continue
		}
		items = append(items, drawItem{
			distance: projector.Distance(item.Translation),
			model:    model,
			t:        *item.Transform,
		})
	}
	slices.SortFunc(items, func(a, b drawItem) int {
		return cmp.Compare(b.distance, a.distance)
	})

	for _, item := range items {
		clr := Shade(item.model.Color, ambient, lights)
		for _, seg := range Wireframe(projector, item.model, item.t) {
			vector.StrokeLine(screen.Image, seg.X0, seg.Y0, seg.X1, seg.Y1, lineWidth, clr, true)
		}
	}

	for light := range s.Lights.Values() {
		pos, ok := s.lightPosition(frame.Storage, light.Local, light.Parent)
		if !ok {
			continue
		}
		x, y, depth, ok := projector.Project(pos)
		if !ok {
			continue
		}
		radius := light.Radius * light.Intensity * float64(bounds.Dy()) / depth
		if radius < 1 {
			radius = 1
		}
		glow := light.Color
		glow.A = 96
		vector.DrawFilledCircle(screen.Image, float32(x), float32(y), float32(radius), glow, true)
	}
}

func (s *RenderSystem) lightPosition(storage *ecs.Storage, local *transform.Transform, parent *ecs.Parent) (mgl64.Vec3, bool) {
	var offset mgl64.Vec3
	if local != nil {
		offset = local.Translation
	}
	if parent == nil {
		return offset, local != nil
	}
	id, ok := storage.ResolveEntityRef(parent.Ref)
	if !ok {
		return mgl64.Vec3{}, false
	}
	pt := ecs.ReadComponent[transform.Transform](storage, id)
	if pt == nil {
		return mgl64.Vec3{}, false
	}
	return pt.Apply(offset), true
}

func (s *RenderSystem) model(h assets.Handle) *assets.Model {
	if s.Assets == nil {
		return nil
	}
	m, err := s.Assets.Get(h)
	if err == nil {
		return m
	}
	if s.failed == nil {
		s.failed = make(map[string]bool)
	}
	if !s.failed[h.Path] {
		s.failed[h.Path] = true
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("skipping model", "path", h.Path, "err", err)
	}
	return nil
}
