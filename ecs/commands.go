package ecs

import "reflect"

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the ECS storage during system execution.
type Commands struct {
	spawns   []spawnCommand
	deletes  []EntityId
	despawns []EntityId
	adds     []addComponentCommand
	removes  []removeComponentCommand
	defers   []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
	children   [][]any
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// SpawnWithChildren queues a spawn of an entity and one child per entry of
// children.
func (c *Commands) SpawnWithChildren(components []any, children ...[]any) {
	c.spawns = append(c.spawns, spawnCommand{components: components, children: children})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// DespawnRecursive queues deletion of an entity and all of its children.
func (c *Commands) DespawnRecursive(entity EntityId) {
	c.despawns = append(c.despawns, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Flush flushes all commands to the provided storage, reseting the buffer state.
// An entity queued for deletion more than once in a frame is deleted once.
func (c *Commands) Flush(storage *Storage) {
	deletedEntities := make(map[EntityId]bool)

	for _, id := range c.despawns {
		if deletedEntities[id] {
			continue
		}
		markDescendants(storage, id, deletedEntities)
		storage.DespawnRecursive(id)
	}

	for _, id := range c.deletes {
		if deletedEntities[id] {
			continue
		}
		storage.Delete(id)
		deletedEntities[id] = true
	}

	for _, cmd := range c.removes {
		if !deletedEntities[cmd.entity] {
			storage.RemoveComponent(cmd.entity, cmd.compType)
		}
	}

	for _, cmd := range c.adds {
		if !deletedEntities[cmd.entity] {
			storage.AddComponent(cmd.entity, cmd.component)
		}
	}

	for _, cmd := range c.spawns {
		id := storage.Spawn(cmd.components...)
		if len(cmd.children) == 0 {
			continue
		}
		ref := storage.CreateEntityRef(id)
		for _, child := range cmd.children {
			storage.SpawnChild(ref.Id, child...)
		}
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.despawns = c.despawns[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}

func markDescendants(storage *Storage, id EntityId, marked map[EntityId]bool) {
	marked[id] = true
	for _, child := range storage.ChildrenOf(id) {
		markDescendants(storage, child, marked)
	}
}
