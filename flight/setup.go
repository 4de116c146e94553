package flight

import (
	"image/color"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/arwing/assets"
	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/physics"
	"github.com/plus3/arwing/render"
	"github.com/plus3/arwing/transform"
)

// Setup spawns the camera, the light, the ship and, for the drones
// variant, the drone field. Register it with RegisterStartup.
type Setup struct {
	Tuning  ecs.Singleton[Tuning]
	Variant ecs.Singleton[Variant]
}

func (s *Setup) Execute(frame *ecs.UpdateFrame) {
	tuning := DefaultTuning()
	if t := s.Tuning.Get(); t != nil {
		tuning = *t
	}
	variant := Classic
	if v := s.Variant.Get(); v != nil {
		variant = *v
	}

	cmds := frame.Commands
	cmds.Spawn(transform.FromXYZ(0, 1, -5), render.NewCamera(mgl64.Vec3{}))
	cmds.Spawn(transform.Identity(), render.DirectionalLight{
		Color:          color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Intensity:      0.6,
		Direction:      mgl64.Vec3{0, 0, -1},
		ShadowsEnabled: true,
		ShadowHalfSize: 1,
	})
	cmds.Spawn(
		transform.Identity().WithScale(tuning.ShipScale),
		Arwing{},
		assets.Handle{Path: ArwingModel},
	)

	if variant != Drones {
		return
	}
	for _, d := range tuning.Drones {
		cmds.Spawn(
			transform.FromXYZ(d.X, d.Y, d.Z).WithScale(d.Radius),
			Drone{},
			Destructible{},
			Spin{AxisRate: mgl64.Vec3{0, d.Spin, 0}},
			assets.Handle{Path: DroneModel},
			physics.Collider{Radius: d.Radius, HalfDepth: d.Radius, Sensor: true},
		)
	}
	slog.Debug("drone field spawned", "count", len(tuning.Drones))
}
