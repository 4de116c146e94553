package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/arwing/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSystem struct {
	name string
	log  *[]string
}

func (s *recordSystem) Execute(frame *ecs.UpdateFrame) {
	*s.log = append(*s.log, s.name)
}

type spawnerSystem struct{}

func (spawnerSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(Position{X: 1}, Velocity{DX: 1, DY: 2})
	frame.Commands.Spawn(Position{X: 5})
}

type movementSystem struct {
	Movers ecs.Query[struct {
		*Position
		*Velocity
	}]
	Count int
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	s.Count = s.Movers.Len()
	for m := range s.Movers.Values() {
		m.X += m.DX * float32(frame.DeltaTime)
		m.Y += m.DY * float32(frame.DeltaTime)
	}
}

type hitSender struct {
	Events ecs.Singleton[ecs.Events[Hit]]
}

func (s *hitSender) Execute(frame *ecs.UpdateFrame) {
	s.Events.Get().Send(Hit{A: 1, B: 2})
}

type hitCounter struct {
	Events ecs.Singleton[ecs.Events[Hit]]
	Seen   []int
}

func (s *hitCounter) Execute(frame *ecs.UpdateFrame) {
	s.Seen = append(s.Seen, s.Events.Get().Len())
}

func TestStartupRunsOnceFirst(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	var log []string
	scheduler.Register(&recordSystem{name: "update", log: &log})
	scheduler.RegisterStartup(&recordSystem{name: "startup", log: &log})

	scheduler.Once(0)
	scheduler.Once(0)
	assert.Equal(t, []string{"startup", "update", "update"}, log)
}

func TestStartupCommandsVisibleToFirstFrame(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	movement := &movementSystem{}
	scheduler.RegisterStartup(spawnerSystem{})
	scheduler.Register(movement)

	scheduler.Once(0.5)
	assert.Equal(t, 1, movement.Count)

	q := ecs.NewQuery[struct {
		*Position
		*Velocity
	}](storage)
	q.Execute()
	_, mover, ok := q.Single()
	require.True(t, ok)
	assert.Equal(t, Position{X: 1.5, Y: 1}, *mover.Position)
}

func TestQueriesRefreshEachFrame(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	movement := &movementSystem{}
	scheduler.Register(spawnerSystem{})
	scheduler.Register(movement)

	scheduler.Once(0)
	assert.Equal(t, 0, movement.Count, "spawns land after the frame")
	scheduler.Once(0)
	assert.Equal(t, 1, movement.Count)
	scheduler.Once(0)
	assert.Equal(t, 2, movement.Count)
}

func TestEventsLastOneFrame(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.AddSingleton(ecs.Events[Hit]{})
	scheduler := ecs.NewScheduler(storage)

	counter := &hitCounter{}
	scheduler.Register(counter)
	scheduler.Register(&hitSender{})
	scheduler.Register(counter)

	scheduler.Once(0)
	scheduler.Once(0)

	// Readers before the sender never see last frame's events.
	assert.Equal(t, []int{0, 1, 0, 1}, counter.Seen)
}

func TestEventsIter(t *testing.T) {
	var events ecs.Events[Hit]
	events.Send(Hit{A: 1})
	events.Send(Hit{A: 2})
	events.Send(Hit{A: 3})

	var got []ecs.EntityId
	for hit := range events.Iter() {
		if hit.A == 3 {
			break
		}
		got = append(got, hit.A)
	}
	assert.Equal(t, []ecs.EntityId{1, 2}, got)
}

func TestSchedulerStats(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	scheduler.RegisterStartup(spawnerSystem{})
	scheduler.Register(&movementSystem{})
	scheduler.Register(funcSystem(func(*ecs.UpdateFrame) {}))

	for range 3 {
		scheduler.Once(1.0 / 60)
	}

	stats := scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, int64(6), stats.TotalExecutions)
	assert.Equal(t, "movementSystem", stats.Systems[0].Name)
	for _, sys := range stats.Systems {
		assert.Equal(t, int64(3), sys.ExecutionCount)
		assert.LessOrEqual(t, sys.MinDuration, sys.MaxDuration)
	}
	assert.Same(t, storage, scheduler.Storage())
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	var log []string
	scheduler.Register(&recordSystem{name: "tick", log: &log})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NotEmpty(t, log)
}
