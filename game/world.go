// Package game assembles the ECS world for a variant and runs it inside an
// ebiten window.
package game

import (
	"image/color"
	"log/slog"

	"github.com/plus3/arwing/assets"
	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/ecs/debugui"
	"github.com/plus3/arwing/flight"
	"github.com/plus3/arwing/input"
	"github.com/plus3/arwing/physics"
	"github.com/plus3/arwing/render"
	"github.com/plus3/arwing/transform"
)

// Options configures a World. A nil Tuning uses flight.DefaultTuning.
type Options struct {
	Variant   flight.Variant
	Tuning    *flight.Tuning
	AssetsDir string
	Logger    *slog.Logger
}

// World is the storage plus the update scheduler for one run. It has no
// window and can be stepped headless.
type World struct {
	Storage   *ecs.Storage
	Scheduler *ecs.Scheduler
	Assets    *assets.Server
	Logger    *slog.Logger

	keyboard *ecs.Singleton[input.Keyboard]
	score    *ecs.Singleton[flight.Score]
}

// NewRegistry registers every component the game uses.
func NewRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[transform.Transform](registry)
	flight.RegisterComponents(registry)
	physics.RegisterComponents(registry)
	render.RegisterComponents(registry)
	assets.RegisterComponents(registry)
	debugui.RegisterComponents(registry)
	return registry
}

// NewWorld builds the storage, its singletons and the systems of
// opts.Variant. Nothing runs until the first Step.
func NewWorld(opts Options) *World {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	variant := opts.Variant
	if variant == "" {
		variant = flight.Classic
	}

	tuning := flight.DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}

	storage := ecs.NewStorage(NewRegistry())
	ecs.NewSingleton[flight.Tuning](storage, tuning)
	ecs.NewSingleton[flight.Variant](storage, variant)
	ecs.NewSingleton[render.ClearColor](storage, render.ClearColor{NRGBA: color.NRGBA{A: 255}})
	ecs.NewSingleton[render.AmbientLight](storage, render.AmbientLight{
		Color:      color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Brightness: 0.4,
	})
	physics.Install(storage)

	scheduler := ecs.NewScheduler(storage)
	scheduler.RegisterStartup(&flight.Setup{})
	scheduler.Register(&flight.RotateArwingSystem{})
	scheduler.Register(&flight.RotationToMovementSystem{})
	scheduler.Register(&flight.NormalizeRotationSystem{})
	scheduler.Register(&flight.FireLaserSystem{})
	scheduler.Register(&flight.MoveLaserSystem{})
	if variant == flight.Drones {
		scheduler.Register(&flight.SpinSystem{})
		scheduler.Register(&physics.SyncSystem{})
		scheduler.Register(&physics.StepSystem{})
		scheduler.Register(&flight.DespawnOnCollisionSystem{})
	}
	scheduler.Register(&flight.FlightLogSystem{Logger: logger})

	w := &World{
		Storage:   storage,
		Scheduler: scheduler,
		Assets:    assets.NewServer(opts.AssetsDir, logger),
		Logger:    logger,
		keyboard:  ecs.NewSingleton[input.Keyboard](storage),
		score:     ecs.NewSingleton[flight.Score](storage),
	}
	for _, p := range []string{flight.ArwingModel, flight.LaserModel, flight.DroneModel} {
		w.Assets.Load(p)
	}

	logger.Info("world ready", "variant", variant, "systems", scheduler.GetStats().SystemCount)
	return w
}

// Keyboard returns the keyboard singleton systems read from.
func (w *World) Keyboard() *input.Keyboard {
	return w.keyboard.Get()
}

// Score returns the running score.
func (w *World) Score() flight.Score {
	return *w.score.Get()
}

// Step runs one frame of dt seconds.
func (w *World) Step(dt float64) {
	w.Scheduler.Once(dt)
}

// Ship returns the ship's transform, if there is one.
func (w *World) Ship() (transform.Transform, bool) {
	for _, s := range ecs.NewView[struct {
		*transform.Transform
		*flight.Arwing
	}](w.Storage).Iter() {
		return *s.Transform, true
	}
	return transform.Transform{}, false
}
