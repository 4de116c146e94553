// Package render draws wireframe models with a perspective camera.
package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/arwing/ecs"
)

// Camera projects the scene from its entity's translation towards Target.
type Camera struct {
	Target mgl64.Vec3
	Up     mgl64.Vec3
	FovY   float64
	Near   float64
	Far    float64
}

// NewCamera returns a camera aimed at target with a 45 degree field of view.
func NewCamera(target mgl64.Vec3) Camera {
	return Camera{
		Target: target,
		Up:     mgl64.Vec3{0, 1, 0},
		FovY:   mgl64.DegToRad(45),
		Near:   0.1,
		Far:    1000,
	}
}

// DirectionalLight lights every model evenly. Direction is where the light
// travels.
type DirectionalLight struct {
	Color          color.NRGBA
	Intensity      float64
	Direction      mgl64.Vec3
	ShadowsEnabled bool
	ShadowHalfSize float64
}

// PointLight is drawn as a glow at its entity's world position. A point
// light with an ecs.Parent sits at the parent's translation plus its own.
type PointLight struct {
	Color     color.NRGBA
	Intensity float64
	Radius    float64
}

// ClearColor fills the screen before anything is drawn.
type ClearColor struct {
	color.NRGBA
}

// AmbientLight is the base brightness of every line.
type AmbientLight struct {
	Color      color.NRGBA
	Brightness float64
}

// Screen is the image the RenderSystem draws into.
type Screen struct {
	*ebiten.Image
}

// RegisterComponents registers the components owned by this package.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Camera](registry)
	ecs.RegisterComponent[DirectionalLight](registry)
	ecs.RegisterComponent[PointLight](registry)
}
