package ecs_test

import (
	"testing"

	"github.com/plus3/arwing/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcSystem func(frame *ecs.UpdateFrame)

func (f funcSystem) Execute(frame *ecs.UpdateFrame) { f(frame) }

func TestCommandsAreDeferred(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	var during int
	scheduler.Register(funcSystem(func(frame *ecs.UpdateFrame) {
		frame.Commands.Spawn(Position{X: 1})
		during = frame.Storage.CollectStats().TotalEntityCount
	}))

	scheduler.Once(0.1)
	assert.Equal(t, 0, during, "spawn waits for the end of the frame")
	assert.Equal(t, 1, storage.CollectStats().TotalEntityCount)
}

func TestCommandsDeleteOnce(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{})

	commands := &ecs.Commands{}
	commands.Delete(id)
	commands.Delete(id)
	commands.DespawnRecursive(id)
	commands.AddComponent(id, Velocity{})

	var deferred int
	commands.Defer(func() { deferred++ })
	commands.Flush(storage)

	assert.False(t, storage.Alive(id))
	assert.Equal(t, 0, storage.CollectStats().TotalEntityCount)
	assert.Equal(t, 1, deferred)

	// The buffer is empty after a flush.
	commands.Flush(storage)
	assert.Equal(t, 1, deferred)
}

func TestCommandsAddRemove(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{}, Marker{})
	ref := storage.CreateEntityRef(id)

	commands := &ecs.Commands{}
	commands.AddComponent(id, Velocity{DX: 4})
	commands.Flush(storage)
	require.NotZero(t, ref.Id)
	assert.Equal(t, float32(4), ecs.ReadComponent[Velocity](storage, ref.Id).DX)

	commands.RemoveComponent(ref.Id, reflectType[Marker]())
	commands.Flush(storage)
	assert.Nil(t, ecs.ReadComponent[Marker](storage, ref.Id))
	assert.NotNil(t, ecs.ReadComponent[Velocity](storage, ref.Id))
}

func TestCommandsSpawnWithChildren(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	commands := &ecs.Commands{}
	commands.SpawnWithChildren(
		[]any{Name{Value: "laser"}, Position{X: 1}},
		[]any{Name{Value: "glow"}},
		[]any{Name{Value: "trail"}},
	)
	commands.Flush(storage)

	q := ecs.NewQuery[struct {
		Id ecs.EntityId
		*Name
		*ecs.Children
	}](storage)
	q.Execute()
	id, parent, ok := q.Single()
	require.True(t, ok)
	assert.Equal(t, "laser", parent.Value)

	var names []string
	for _, child := range storage.ChildrenOf(id) {
		names = append(names, ecs.ReadComponent[Name](storage, child).Value)
		p := ecs.ReadComponent[ecs.Parent](storage, child)
		require.NotNil(t, p)
		assert.Equal(t, id, p.Ref.Id)
	}
	assert.ElementsMatch(t, []string{"glow", "trail"}, names)
}

func TestCommandsDespawnRecursive(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	root := storage.CreateEntityRef(storage.Spawn(Name{Value: "root"}))
	child := storage.CreateEntityRef(storage.SpawnChild(root.Id, Name{Value: "child"}))
	grandchild := storage.CreateEntityRef(storage.SpawnChild(child.Id, Name{Value: "grandchild"}))
	other := storage.Spawn(Name{Value: "other"})

	commands := &ecs.Commands{}
	commands.DespawnRecursive(root.Id)
	commands.Delete(child.Id)
	commands.Flush(storage)

	assert.Zero(t, root.Id)
	assert.Zero(t, child.Id)
	assert.Zero(t, grandchild.Id)
	assert.True(t, storage.Alive(other))
	assert.Equal(t, 1, storage.CollectStats().TotalEntityCount)
}
