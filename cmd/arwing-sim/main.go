package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/flight"
	"github.com/plus3/arwing/game"
)

type config struct {
	Variant   flight.Variant
	Tuning    *flight.Tuning
	Duration  time.Duration
	Step      time.Duration
	FireEvery time.Duration
	Seed      uint64
	Logger    *slog.Logger
}

func main() {
	variantName := flag.String("variant", string(flight.Drones), "Game variant: classic or drones.")
	tuningPath := flag.String("tuning", "", "Optional YAML file overriding the flight tuning.")
	duration := flag.Duration("duration", 30*time.Second, "Simulated time to run for.")
	step := flag.Duration("step", time.Second/60, "Simulated time per frame.")
	fireEvery := flag.Duration("fire-every", 400*time.Millisecond, "Interval between scripted laser shots.")
	seed := flag.Uint64("seed", 1, "Seed for the scripted steering.")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn or error.")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("invalid -log-level: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	variant, err := flight.ParseVariant(*variantName)
	if err != nil {
		log.Fatal(err)
	}

	cfg := config{
		Variant:   variant,
		Duration:  *duration,
		Step:      *step,
		FireEvery: *fireEvery,
		Seed:      *seed,
		Logger:    logger,
	}
	if *tuningPath != "" {
		tuning, err := flight.LoadTuning(*tuningPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Tuning = &tuning
	}
	if err := cfg.validate(); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	log.Printf("Simulating %s of the %s variant...\n", cfg.Duration, cfg.Variant)
	report := simulate(cfg)

	fmt.Println("\n--- Flight Simulation Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

func (c config) validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("-step must be positive, got %s", c.Step)
	}
	if c.Duration < 0 {
		return fmt.Errorf("-duration must not be negative, got %s", c.Duration)
	}
	if c.FireEvery <= 0 {
		return fmt.Errorf("-fire-every must be positive, got %s", c.FireEvery)
	}
	tuning := flight.DefaultTuning()
	if c.Tuning != nil {
		tuning = *c.Tuning
	}
	if c.Variant == flight.Drones {
		if err := tuning.CheckStep(c.Step.Seconds()); err != nil {
			return fmt.Errorf("-step %s: %w", c.Step, err)
		}
	}
	return nil
}

// steering is one scripted manoeuvre: the keys held while it lasts.
type steering []ebiten.Key

var manoeuvres = []steering{
	{},
	{ebiten.KeyArrowUp},
	{ebiten.KeyArrowDown},
	{ebiten.KeyArrowLeft},
	{ebiten.KeyArrowRight},
	{ebiten.KeyArrowUp, ebiten.KeyArrowLeft},
	{ebiten.KeyArrowDown, ebiten.KeyArrowRight},
}

func simulate(cfg config) *Report {
	w := game.NewWorld(game.Options{
		Variant: cfg.Variant,
		Tuning:  cfg.Tuning,
		Logger:  cfg.Logger,
	})
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	report := &Report{
		Variant:   cfg.Variant,
		Simulated: cfg.Duration,
		Envelope:  newEnvelope(),
	}

	dt := cfg.Step.Seconds()
	frames := int(cfg.Duration / cfg.Step)
	fireFrames := max(1, int(cfg.FireEvery/cfg.Step))
	holdFrames := max(1, int(1500*time.Millisecond/cfg.Step))

	var current steering
	start := time.Now()
	for frame := range frames {
		kb := w.Keyboard()
		if frame%holdFrames == 0 {
			for _, key := range current {
				kb.Release(key)
			}
			current = manoeuvres[rng.IntN(len(manoeuvres))]
		}
		for _, key := range current {
			kb.Press(key)
		}
		if frame%fireFrames == 0 {
			kb.Press(ebiten.KeySpace)
		} else {
			kb.Release(ebiten.KeySpace)
		}

		updateStart := time.Now()
		w.Step(dt)
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		kb.Advance()

		if ship, ok := w.Ship(); ok {
			report.Envelope.track(ship.Translation.X(), ship.Translation.Y(), ship.Rotation.V.X(), ship.Rotation.V.Z())
		}
		report.Frames++
	}
	report.WallTime = time.Since(start)
	report.UpdateTime.Finalize()

	report.Score = w.Score()
	report.Storage = w.Storage.CollectStats()
	report.Systems = w.Scheduler.GetStats().Systems
	for range ecs.NewView[struct{ *flight.Drone }](w.Storage).Iter() {
		report.DronesRemaining++
	}
	return report
}

// Envelope is the range the ship covered.
type Envelope struct {
	MinX, MaxX, MinY, MaxY float64
	MaxRotX, MaxRotZ       float64
}

func newEnvelope() Envelope {
	return Envelope{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
}

func (e *Envelope) track(x, y, rotX, rotZ float64) {
	e.MinX = math.Min(e.MinX, x)
	e.MaxX = math.Max(e.MaxX, x)
	e.MinY = math.Min(e.MinY, y)
	e.MaxY = math.Max(e.MaxY, y)
	e.MaxRotX = math.Max(e.MaxRotX, math.Abs(rotX))
	e.MaxRotZ = math.Max(e.MaxRotZ, math.Abs(rotZ))
}
