package ecs_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/plus3/arwing/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	tests := []struct {
		archetypeId uint32
		index       uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("archetype=%d,index=%d", tt.archetypeId, tt.index), func(t *testing.T) {
			entityId := ecs.NewEntityId(tt.archetypeId, tt.index)
			assert.Equal(t, tt.archetypeId, entityId.ArchetypeId())
			assert.Equal(t, tt.index, entityId.Index())
		})
	}
}

func TestSpawnAndGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 3, Y: 4}, Name{Value: "ship"}, Score(7))
	assert.NotZero(t, id)
	assert.True(t, storage.Alive(id))

	pos := ecs.ReadComponent[Position](storage, id)
	require.NotNil(t, pos)
	assert.Equal(t, Position{X: 3, Y: 4}, *pos)
	assert.Equal(t, Score(7), *ecs.ReadComponent[Score](storage, id))

	assert.Nil(t, ecs.ReadComponent[Velocity](storage, id))
	assert.True(t, storage.HasComponent(id, reflect.TypeFor[Name]()))
	assert.False(t, storage.HasComponent(id, reflect.TypeFor[Velocity]()))
}

func TestSpawnWithoutComponentsPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	assert.Panics(t, func() { storage.Spawn() })
}

func TestDelete(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1})
	ref := storage.CreateEntityRef(id)
	storage.Delete(id)

	assert.False(t, storage.Alive(id))
	assert.Nil(t, ecs.ReadComponent[Position](storage, id))
	_, ok := storage.ResolveEntityRef(ref)
	assert.False(t, ok)

	// Deleting twice is harmless.
	storage.Delete(id)
	assert.False(t, storage.Alive(ecs.EntityId(0)))
}

func TestAddComponentMovesEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1, Y: 2})
	ref := storage.CreateEntityRef(id)

	moved := storage.AddComponent(id, Velocity{DX: 3})
	assert.NotEqual(t, id, moved)
	assert.False(t, storage.Alive(id))
	assert.Equal(t, moved, ref.Id, "refs follow the entity")

	assert.Equal(t, Position{X: 1, Y: 2}, *ecs.ReadComponent[Position](storage, moved))
	assert.Equal(t, Velocity{DX: 3}, *ecs.ReadComponent[Velocity](storage, moved))
}

func TestAddExistingComponentOverwrites(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1}, Health{Current: 5, Max: 10})
	same := storage.AddComponent(id, Health{Current: 9, Max: 10})

	assert.Equal(t, id, same)
	assert.Equal(t, 9, ecs.ReadComponent[Health](storage, id).Current)
}

func TestRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1}, Velocity{DX: 2})
	ref := storage.CreateEntityRef(id)

	id = storage.RemoveComponent(id, reflect.TypeFor[Velocity]())
	assert.Equal(t, id, ref.Id)
	assert.Nil(t, ecs.ReadComponent[Velocity](storage, id))
	assert.NotNil(t, ecs.ReadComponent[Position](storage, id))

	// Removing the last component deletes the entity.
	assert.Zero(t, storage.RemoveComponent(id, reflect.TypeFor[Position]()))
	assert.Zero(t, ref.Id)
}

func TestEntityRefIsShared(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{})
	a := storage.CreateEntityRef(id)
	b := storage.CreateEntityRef(id)
	assert.Same(t, a, b)

	assert.True(t, storage.InvalidateEntityRef(a))
	assert.False(t, storage.InvalidateEntityRef(a))
	assert.True(t, storage.Alive(id), "invalidating a ref keeps the entity")

	assert.Nil(t, storage.CreateEntityRef(ecs.NewEntityId(99, 0)))
}

func TestSingletons(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	var h *Health
	assert.False(t, storage.ReadSingleton(&h))

	storage.AddSingleton(Health{Current: 1, Max: 3})
	require.True(t, storage.ReadSingleton(&h))
	assert.Equal(t, 1, h.Current)

	// Replacing keeps the same address so cached pointers stay valid.
	storage.AddSingleton(&Health{Current: 2, Max: 3})
	assert.Equal(t, 2, h.Current)

	single := ecs.NewSingleton[Health](storage)
	assert.Same(t, h, single.Get())
	assert.True(t, single.Exists())

	assert.Panics(t, func() { storage.ReadSingleton(h) })
}

func TestNewSingletonInitializer(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	s := ecs.NewSingleton[Score](storage, Score(5))
	assert.Equal(t, Score(5), *s.Get())

	// An existing singleton wins over the initializer.
	again := ecs.NewSingleton[Score](storage, Score(9))
	assert.Equal(t, Score(5), *again.Get())
}

func TestCollectStats(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{})
	storage.Spawn(Position{})
	gone := storage.Spawn(Position{}, Velocity{})
	storage.Delete(gone)
	storage.AddSingleton(Score(1))

	stats := storage.CollectStats()
	assert.Equal(t, 2, stats.ArchetypeCount)
	assert.Equal(t, 2, stats.TotalEntityCount)
	assert.Equal(t, 1, stats.SingletonCount)
	assert.Equal(t, []string{"ecs_test.Score"}, stats.SingletonTypes)

	counts := map[int]int{}
	for _, arch := range stats.ArchetypeBreakdown {
		counts[len(arch.ComponentTypes)] += arch.EntityCount
	}
	assert.Equal(t, map[int]int{1: 2, 2: 0}, counts)
}

func TestArchetypeCompactKeepsRefs(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	storage.Spawn(Position{X: 1})
	middle := storage.Spawn(Position{X: 2})
	last := storage.CreateEntityRef(storage.Spawn(Position{X: 3}))
	storage.Delete(middle)

	arch := storage.GetArchetype(Position{})
	require.NotNil(t, arch)
	arch.Compact()

	assert.Equal(t, 2, arch.Len())
	assert.Equal(t, uint32(1), last.Id.Index())
	assert.Equal(t, float32(3), ecs.ReadComponent[Position](storage, last.Id).X)

	var ids []ecs.EntityId
	for id := range arch.Iter() {
		ids = append(ids, id)
	}
	assert.Len(t, ids, 2)
}
