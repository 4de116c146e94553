// Package flight holds the game rules: steering the ship, firing and moving
// lasers, spinning drones and removing what gets hit.
package flight

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/arwing/ecs"
)

const (
	ArwingModel = "models/arwing.yaml"
	LaserModel  = "models/blaster_green.yaml"
	DroneModel  = "models/drone.yaml"
)

// Arwing marks the player's ship.
type Arwing struct{}

// Laser marks a projectile.
type Laser struct{}

// Drone marks a target.
type Drone struct{}

// Destructible entities are removed when a collision with them starts.
type Destructible struct{}

// Spin rotates an entity continuously, in radians per second around each
// axis.
type Spin struct {
	AxisRate mgl64.Vec3
}

// Score counts what happened during a run.
type Score struct {
	LasersFired     int
	DronesDestroyed int
}

// Variant selects which rules are active.
type Variant string

const (
	// Classic has steering and lasers only.
	Classic Variant = "classic"
	// Drones adds spinning targets and collision-driven removal.
	Drones Variant = "drones"
)

// ParseVariant validates a variant name.
func ParseVariant(name string) (Variant, error) {
	switch v := Variant(name); v {
	case Classic, Drones:
		return v, nil
	default:
		return "", fmt.Errorf("flight: unknown variant %q", name)
	}
}

// RegisterComponents registers the components owned by this package.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Arwing](registry)
	ecs.RegisterComponent[Laser](registry)
	ecs.RegisterComponent[Drone](registry)
	ecs.RegisterComponent[Destructible](registry)
	ecs.RegisterComponent[Spin](registry)
}
