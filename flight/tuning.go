package flight

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every constant the flight systems use.
type Tuning struct {
	RotationSpeed float64 `yaml:"rotation_speed"`
	MaxRotX       float64 `yaml:"max_rot_x"`
	MaxRotZ       float64 `yaml:"max_rot_z"`

	Speed     float64 `yaml:"speed"`
	MaxTop    float64 `yaml:"max_top"`
	MaxBottom float64 `yaml:"max_bottom"`
	MaxLeft   float64 `yaml:"max_left"`
	MaxRight  float64 `yaml:"max_right"`

	// NormalizeFactor is how much of the ship's rotation is left after one
	// second without input.
	NormalizeFactor float64 `yaml:"normalize_factor"`

	LaserSpeed       float64 `yaml:"laser_speed"`
	MaxLaserDistance float64 `yaml:"max_laser_distance"`
	LaserRadius      float64 `yaml:"laser_radius"`
	LaserHalfDepth   float64 `yaml:"laser_half_depth"`

	ShipScale  float64 `yaml:"ship_scale"`
	LaserScale float64 `yaml:"laser_scale"`

	Drones []DroneSpec `yaml:"drones"`
}

// DroneSpec places one drone. Spin is the yaw rate in radians per second.
type DroneSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Radius float64 `yaml:"radius"`
	Spin   float64 `yaml:"spin"`
}

// DefaultTuning returns the stock flight model.
func DefaultTuning() Tuning {
	return Tuning{
		RotationSpeed:    1.5,
		MaxRotX:          0.4,
		MaxRotZ:          0.7,
		Speed:            5,
		MaxTop:           0.7,
		MaxBottom:        -1.5,
		MaxLeft:          -1.7,
		MaxRight:         1.7,
		NormalizeFactor:  0.2,
		LaserSpeed:       10,
		MaxLaserDistance: 50,
		LaserRadius:      0.15,
		LaserHalfDepth:   0.5,
		ShipScale:        0.4,
		LaserScale:       0.4,
		Drones: []DroneSpec{
			{X: -1.2, Y: 0.2, Z: 15, Radius: 0.5, Spin: 1.2},
			{X: 0, Y: -0.6, Z: 22, Radius: 0.5, Spin: -0.8},
			{X: 1.2, Y: 0.4, Z: 30, Radius: 0.6, Spin: 1.6},
			{X: -0.6, Y: -1.0, Z: 38, Radius: 0.6, Spin: 0.9},
			{X: 0.8, Y: -0.2, Z: 45, Radius: 0.7, Spin: -1.4},
		},
	}
}

// LoadTuning reads a YAML file over the defaults. Keys missing from the
// file keep their default; a drones list replaces the default layout.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("flight: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("flight: unmarshal %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("flight: %s: %w", path, err)
	}
	return t, nil
}

// Validate reports every setting the systems cannot work with.
func (t Tuning) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positive("rotation_speed", t.RotationSpeed)
	positive("speed", t.Speed)
	positive("laser_speed", t.LaserSpeed)
	positive("max_laser_distance", t.MaxLaserDistance)
	positive("ship_scale", t.ShipScale)
	positive("laser_scale", t.LaserScale)
	positive("laser_radius", t.LaserRadius)

	if t.MaxRotX < 0 {
		errs = append(errs, fmt.Errorf("max_rot_x must not be negative, got %v", t.MaxRotX))
	}
	// At a pitch of 1 the rotated +Z axis stops gaining depth.
	if t.MaxRotX >= 1 {
		errs = append(errs, fmt.Errorf("max_rot_x must be below 1, got %v", t.MaxRotX))
	}
	if t.MaxRotZ < 0 {
		errs = append(errs, fmt.Errorf("max_rot_z must not be negative, got %v", t.MaxRotZ))
	}
	if t.LaserHalfDepth < 0 {
		errs = append(errs, fmt.Errorf("laser_half_depth must not be negative, got %v", t.LaserHalfDepth))
	}
	if t.MaxLeft > t.MaxRight {
		errs = append(errs, fmt.Errorf("max_left %v is right of max_right %v", t.MaxLeft, t.MaxRight))
	}
	if t.MaxBottom > t.MaxTop {
		errs = append(errs, fmt.Errorf("max_bottom %v is above max_top %v", t.MaxBottom, t.MaxTop))
	}
	if t.NormalizeFactor <= 0 || t.NormalizeFactor > 1 {
		errs = append(errs, fmt.Errorf("normalize_factor must be in (0, 1], got %v", t.NormalizeFactor))
	}
	for i, d := range t.Drones {
		if d.Radius <= 0 {
			errs = append(errs, fmt.Errorf("drones[%d]: radius must be positive, got %v", i, d.Radius))
		}
	}
	if t.LaserSpeed > 0 {
		if err := t.CheckStep(FrameStep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FrameStep is the frame time of the windowed game.
const FrameStep = 1.0 / 60

// CheckStep returns an error when a laser advancing dt seconds per frame
// could jump over the depth window of the smallest drone.
func (t Tuning) CheckStep(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("step must be positive, got %v", dt)
	}
	radius := math.Inf(1)
	for _, d := range t.Drones {
		if d.Radius > 0 {
			radius = math.Min(radius, d.Radius)
		}
	}
	if math.IsInf(radius, 1) {
		return nil
	}

	travel := t.LaserSpeed * dt
	window := 2 * (t.LaserHalfDepth + radius)
	if travel > window {
		return fmt.Errorf("laser_speed %v moves %.3f per %v s step, more than the %.3f depth window of the smallest drone", t.LaserSpeed, travel, dt, window)
	}
	return nil
}
