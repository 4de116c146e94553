package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/arwing/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reflectType[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func TestSpawnChild(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	parent := storage.CreateEntityRef(storage.Spawn(Position{X: 1}))
	first := storage.SpawnChild(parent.Id, Name{Value: "first"})
	second := storage.SpawnChild(parent.Id, Name{Value: "second"})

	assert.True(t, storage.HasComponent(parent.Id, reflectType[ecs.Children]()))
	assert.Equal(t, []ecs.EntityId{first, second}, storage.ChildrenOf(parent.Id))

	p := ecs.ReadComponent[ecs.Parent](storage, second)
	require.NotNil(t, p)
	assert.Same(t, parent, p.Ref)

	// The parent moved archetype but kept its data.
	assert.Equal(t, float32(1), ecs.ReadComponent[Position](storage, parent.Id).X)
}

func TestSpawnChildOfMissingParentPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	assert.Panics(t, func() {
		storage.SpawnChild(ecs.NewEntityId(7, 7), Name{})
	})
}

func TestChildrenOfSkipsDeleted(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	parent := storage.CreateEntityRef(storage.Spawn(Position{}))
	gone := storage.SpawnChild(parent.Id, Name{Value: "gone"})
	kept := storage.SpawnChild(parent.Id, Name{Value: "kept"})
	storage.Delete(gone)

	assert.Equal(t, []ecs.EntityId{kept}, storage.ChildrenOf(parent.Id))
	assert.Nil(t, storage.ChildrenOf(kept))
}

func TestDespawnRecursive(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	root := storage.CreateEntityRef(storage.Spawn(Name{Value: "root"}))
	child := storage.CreateEntityRef(storage.SpawnChild(root.Id, Name{Value: "child"}))
	leaf := storage.CreateEntityRef(storage.SpawnChild(child.Id, Name{Value: "leaf"}))
	sibling := storage.Spawn(Name{Value: "sibling"})

	storage.DespawnRecursive(root.Id)

	assert.Zero(t, root.Id)
	assert.Zero(t, child.Id)
	assert.Zero(t, leaf.Id)
	assert.True(t, storage.Alive(sibling))

	// Despawning a dead entity does nothing.
	storage.DespawnRecursive(ecs.NewEntityId(1, 1))
}

func TestDeletingChildKeepsParent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	parent := storage.CreateEntityRef(storage.Spawn(Name{Value: "parent"}))
	child := storage.SpawnChild(parent.Id, Name{Value: "child"})
	storage.DespawnRecursive(child)

	assert.True(t, storage.Alive(parent.Id))
	assert.Empty(t, storage.ChildrenOf(parent.Id))
}
