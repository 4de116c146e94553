package physics

import (
	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/transform"
)

// RegisterComponents registers the components owned by this package.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Collider](registry)
}

// Install adds the World and collision event singletons to storage.
func Install(storage *ecs.Storage) {
	storage.AddSingleton(NewWorld())
	storage.AddSingleton(ecs.Events[CollisionEvent]{})
}

// SyncSystem mirrors collider entities into the world: new colliders get a
// body, existing bodies follow their transform and bodies of despawned
// entities are removed.
type SyncSystem struct {
	Colliders ecs.Query[struct {
		Id ecs.EntityId
		*transform.Transform
		*Collider
	}]
	World ecs.Singleton[World]
}

func (s *SyncSystem) Execute(frame *ecs.UpdateFrame) {
	world := s.World.Get()
	if world == nil {
		return
	}

	world.beginSync()
	for item := range s.Colliders.Values() {
		ref := frame.Storage.CreateEntityRef(item.Id)
		if ref == nil {
			continue
		}
		t := item.Translation
		world.upsert(ref, t.X(), t.Y(), t.Z(), *item.Collider)
	}
	world.endSync()
}

// StepSystem advances the world and publishes collision events for the
// systems that run after it in the same frame.
type StepSystem struct {
	World  ecs.Singleton[World]
	Events ecs.Singleton[ecs.Events[CollisionEvent]]
}

func (s *StepSystem) Execute(frame *ecs.UpdateFrame) {
	world := s.World.Get()
	events := s.Events.Get()
	if world == nil || events == nil {
		return
	}
	world.Step(frame.DeltaTime, events)
}
