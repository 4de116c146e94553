package ecs_test

import (
	"fmt"

	"github.com/plus3/arwing/ecs"
)

type PhysicsSystem struct {
	Bodies ecs.Query[struct {
		*Position
		*Velocity
	}]
}

func (s *PhysicsSystem) Execute(frame *ecs.UpdateFrame) {
	for body := range s.Bodies.Values() {
		body.X += body.DX * float32(frame.DeltaTime)
		body.Y += body.DY * float32(frame.DeltaTime)
	}
}

type ExpireSystem struct {
	Bodies ecs.Query[struct {
		Id ecs.EntityId
		*Position
	}]
}

func (s *ExpireSystem) Execute(frame *ecs.UpdateFrame) {
	for id, body := range s.Bodies.Iter() {
		if body.X > 10 {
			frame.Commands.DespawnRecursive(id)
		}
	}
}

func Example() {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&PhysicsSystem{})
	scheduler.Register(&ExpireSystem{})

	fast := storage.CreateEntityRef(storage.Spawn(Position{}, Velocity{DX: 4}))
	storage.SpawnChild(fast.Id, Name{Value: "glow"})
	slow := storage.CreateEntityRef(storage.Spawn(Position{}, Velocity{DX: 1}))

	for range 2 {
		scheduler.Once(1)
	}
	fmt.Println(storage.CollectStats().TotalEntityCount)

	scheduler.Once(1)
	fmt.Println(fast.Id == 0, ecs.ReadComponent[Position](storage, slow.Id).X)
	fmt.Println(storage.CollectStats().TotalEntityCount)
	// Output:
	// 3
	// true 3
	// 1
}
