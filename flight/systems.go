package flight

import (
	"image/color"
	"math"
	"reflect"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/arwing/assets"
	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/input"
	"github.com/plus3/arwing/physics"
	"github.com/plus3/arwing/render"
	"github.com/plus3/arwing/transform"
)

var (
	laserType        = reflect.TypeFor[Laser]()
	droneType        = reflect.TypeFor[Drone]()
	destructibleType = reflect.TypeFor[Destructible]()
)

type ship = struct {
	*transform.Transform
	*Arwing
}

// RotateArwingSystem tilts the ship while direction keys are held. The x
// part of the rotation pitches, the z part rolls; each is clamped after
// every change.
type RotateArwingSystem struct {
	Ships    ecs.Query[ship]
	Keyboard ecs.Singleton[input.Keyboard]
	Tuning   ecs.Singleton[Tuning]
}

func (s *RotateArwingSystem) Execute(frame *ecs.UpdateFrame) {
	kb := s.Keyboard.Get()
	tuning := s.Tuning.Get()
	if kb == nil || tuning == nil {
		return
	}

	step := frame.DeltaTime * tuning.RotationSpeed
	for sh := range s.Ships.Values() {
		rot := &sh.Rotation.V
		if kb.ActionPressed(input.PitchUp) {
			rot[0] = clamp(rot[0]+step, -tuning.MaxRotX, tuning.MaxRotX)
		}
		if kb.ActionPressed(input.PitchDown) {
			rot[0] = clamp(rot[0]-step, -tuning.MaxRotX, tuning.MaxRotX)
		}
		if kb.ActionPressed(input.RollRight) {
			rot[2] = clamp(rot[2]+step, -tuning.MaxRotZ, tuning.MaxRotZ)
		}
		if kb.ActionPressed(input.RollLeft) {
			rot[2] = clamp(rot[2]-step, -tuning.MaxRotZ, tuning.MaxRotZ)
		}
	}
}

// RotationToMovementSystem slides the ship according to its tilt, keeping
// it inside the flight box.
type RotationToMovementSystem struct {
	Ships  ecs.Query[ship]
	Tuning ecs.Singleton[Tuning]
}

func (s *RotationToMovementSystem) Execute(frame *ecs.UpdateFrame) {
	tuning := s.Tuning.Get()
	if tuning == nil {
		return
	}

	k := frame.DeltaTime * tuning.Speed
	for sh := range s.Ships.Values() {
		pos := &sh.Translation
		rot := sh.Rotation.V
		pos[0] = clamp(pos[0]-rot[2]*k, tuning.MaxLeft, tuning.MaxRight)
		pos[1] = clamp(pos[1]-rot[0]*k, tuning.MaxBottom, tuning.MaxTop)
	}
}

// NormalizeRotationSystem decays the ship's tilt towards level flight.
type NormalizeRotationSystem struct {
	Ships  ecs.Query[ship]
	Tuning ecs.Singleton[Tuning]
}

func (s *NormalizeRotationSystem) Execute(frame *ecs.UpdateFrame) {
	tuning := s.Tuning.Get()
	if tuning == nil {
		return
	}

	factor := NormalizeFactor(tuning.NormalizeFactor, frame.DeltaTime)
	for sh := range s.Ships.Values() {
		sh.Rotation.V = sh.Rotation.V.Mul(factor)
	}
}

// NormalizeFactor is the share of rotation kept after dt seconds.
func NormalizeFactor(perSecond, dt float64) float64 {
	return math.Pow(perSecond, dt)
}

// FireLaserSystem spawns one laser per ship on the frame fire is pressed.
// Each laser carries a point light as a child so a recursive despawn takes
// the light with it.
type FireLaserSystem struct {
	Ships    ecs.Query[ship]
	Keyboard ecs.Singleton[input.Keyboard]
	Tuning   ecs.Singleton[Tuning]
	Variant  ecs.Singleton[Variant]
	Score    ecs.Singleton[Score]
}

func (s *FireLaserSystem) Execute(frame *ecs.UpdateFrame) {
	kb := s.Keyboard.Get()
	tuning := s.Tuning.Get()
	if kb == nil || tuning == nil || !kb.ActionJustPressed(input.Fire) {
		return
	}

	variant := Classic
	if v := s.Variant.Get(); v != nil {
		variant = *v
	}

	for sh := range s.Ships.Values() {
		t := sh.Transform.WithScale(tuning.LaserScale)
		laser := []any{t, Laser{}, assets.Handle{Path: LaserModel}}
		if variant == Drones {
			laser = append(laser, physics.Collider{
				Radius:    tuning.LaserRadius,
				HalfDepth: tuning.LaserHalfDepth,
				Sensor:    true,
			})
		}

		frame.Commands.SpawnWithChildren(laser, []any{
			transform.Identity(),
			render.PointLight{
				Color:     color.NRGBA{R: 60, G: 255, B: 90, A: 255},
				Intensity: 1,
				Radius:    0.08,
			},
		})

		if score := s.Score.Get(); score != nil {
			score.LasersFired++
		}
	}
}

// MoveLaserSystem flies lasers along their heading and despawns them once
// they pass the maximum distance.
type MoveLaserSystem struct {
	Lasers ecs.Query[struct {
		ecs.EntityId
		*transform.Transform
		*Laser
	}]
	Tuning ecs.Singleton[Tuning]
}

func (s *MoveLaserSystem) Execute(frame *ecs.UpdateFrame) {
	tuning := s.Tuning.Get()
	if tuning == nil {
		return
	}

	for l := range s.Lasers.Values() {
		heading := l.Forward()
		l.Translation = l.Translation.Add(heading.Mul(frame.DeltaTime * tuning.LaserSpeed))
		if l.Translation.Z() > tuning.MaxLaserDistance {
			frame.Commands.DespawnRecursive(l.EntityId)
		}
	}
}

// SpinSystem turns spinning entities.
type SpinSystem struct {
	Spinners ecs.Query[struct {
		*transform.Transform
		*Spin
	}]
}

func (s *SpinSystem) Execute(frame *ecs.UpdateFrame) {
	dt := frame.DeltaTime
	for sp := range s.Spinners.Values() {
		rate := sp.AxisRate
		delta := mgl64.AnglesToQuat(rate.X()*dt, rate.Y()*dt, rate.Z()*dt, mgl64.XYZ)
		sp.Rotation = sp.Orientation().Mul(delta).Normalize()
	}
}

// DespawnOnCollisionSystem removes destructible entities when a collision
// with them starts. A laser is removed as well when what it hit is
// destructible. Stopped events are ignored.
type DespawnOnCollisionSystem struct {
	Events ecs.Singleton[ecs.Events[physics.CollisionEvent]]
	Score  ecs.Singleton[Score]
}

func (s *DespawnOnCollisionSystem) Execute(frame *ecs.UpdateFrame) {
	events := s.Events.Get()
	if events == nil || events.Len() == 0 {
		return
	}

	removed := make(map[ecs.EntityId]bool)
	for ev := range events.Iter() {
		if ev.Kind != physics.Started {
			continue
		}
		s.hit(frame, ev.A, ev.B, removed)
		s.hit(frame, ev.B, ev.A, removed)
	}
}

func (s *DespawnOnCollisionSystem) hit(frame *ecs.UpdateFrame, self, other ecs.EntityId, removed map[ecs.EntityId]bool) {
	storage := frame.Storage
	if removed[self] || !storage.Alive(self) {
		return
	}

	destructible := storage.HasComponent(self, destructibleType)
	spent := storage.HasComponent(self, laserType) && storage.HasComponent(other, destructibleType)
	if !destructible && !spent {
		return
	}

	removed[self] = true
	frame.Commands.DespawnRecursive(self)
	if storage.HasComponent(self, droneType) {
		if score := s.Score.Get(); score != nil {
			score.DronesDestroyed++
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
