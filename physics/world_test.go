package physics

import (
	"testing"

	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder copies every collision event of a frame before they are cleared.
type recorder struct {
	Events ecs.Singleton[ecs.Events[CollisionEvent]]
	seen   []CollisionEvent
}

func (r *recorder) Execute(frame *ecs.UpdateFrame) {
	for ev := range r.Events.Get().Iter() {
		r.seen = append(r.seen, ev)
	}
}

func newTestWorld(t *testing.T) (*ecs.Storage, *ecs.Scheduler, *recorder) {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[transform.Transform](registry)
	RegisterComponents(registry)

	storage := ecs.NewStorage(registry)
	Install(storage)

	rec := &recorder{}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&SyncSystem{})
	scheduler.Register(&StepSystem{})
	scheduler.Register(rec)
	return storage, scheduler, rec
}

func worldOf(t *testing.T, storage *ecs.Storage) World {
	t.Helper()
	var w *World
	require.True(t, storage.ReadSingleton(&w))
	return *w
}

func TestStartedOnOverlap(t *testing.T) {
	storage, scheduler, rec := newTestWorld(t)

	a := storage.Spawn(transform.FromXYZ(0, 0, 10), Collider{Radius: 1, HalfDepth: 1, Sensor: true})
	b := storage.Spawn(transform.FromXYZ(0.5, 0, 10.5), Collider{Radius: 1, HalfDepth: 1, Sensor: true})

	scheduler.Once(1.0 / 60)

	require.Len(t, rec.seen, 1)
	ev := rec.seen[0]
	assert.Equal(t, Started, ev.Kind)
	assert.True(t, ev.Involves(a))
	assert.True(t, ev.Involves(b))

	// A continuing contact is not reported again.
	scheduler.Once(1.0 / 60)
	assert.Len(t, rec.seen, 1)
}

func TestDepthSeparatesColliders(t *testing.T) {
	storage, scheduler, rec := newTestWorld(t)

	storage.Spawn(transform.FromXYZ(0, 0, 0), Collider{Radius: 1, HalfDepth: 0.5, Sensor: true})
	far := storage.Spawn(transform.FromXYZ(0, 0, 5), Collider{Radius: 1, HalfDepth: 0.5, Sensor: true})
	ref := storage.CreateEntityRef(far)

	scheduler.Once(1.0 / 60)
	assert.Empty(t, rec.seen)

	ecs.ReadComponent[transform.Transform](storage, ref.Id).Translation[2] = 0.5
	scheduler.Once(1.0 / 60)
	require.Len(t, rec.seen, 1)
	assert.Equal(t, Started, rec.seen[0].Kind)

	ecs.ReadComponent[transform.Transform](storage, ref.Id).Translation[2] = 5
	scheduler.Once(1.0 / 60)
	require.Len(t, rec.seen, 2)
	assert.Equal(t, Stopped, rec.seen[1].Kind)
}

func TestStoppedOnSeparation(t *testing.T) {
	storage, scheduler, rec := newTestWorld(t)

	storage.Spawn(transform.FromXYZ(0, 0, 0), Collider{Radius: 1, HalfDepth: 1})
	mover := storage.Spawn(transform.FromXYZ(1, 0, 0), Collider{Radius: 1, HalfDepth: 1})
	ref := storage.CreateEntityRef(mover)

	scheduler.Once(1.0 / 60)
	require.Len(t, rec.seen, 1)

	ecs.ReadComponent[transform.Transform](storage, ref.Id).Translation[0] = 10
	scheduler.Once(1.0 / 60)
	require.Len(t, rec.seen, 2)
	assert.Equal(t, Stopped, rec.seen[1].Kind)
}

func TestBodiesFollowEntities(t *testing.T) {
	storage, scheduler, rec := newTestWorld(t)

	a := storage.Spawn(transform.FromXYZ(0, 0, 0), Collider{Radius: 1, HalfDepth: 1})
	storage.Spawn(transform.FromXYZ(5, 0, 0), Collider{Radius: 1, HalfDepth: 1})

	scheduler.Once(1.0 / 60)
	assert.Equal(t, 2, worldOf(t, storage).BodyCount())

	storage.Delete(a)
	scheduler.Once(1.0 / 60)
	assert.Equal(t, 1, worldOf(t, storage).BodyCount())
	assert.Empty(t, rec.seen)
}
