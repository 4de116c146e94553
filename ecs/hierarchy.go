package ecs

import "reflect"

// Parent is attached to entities spawned with SpawnChild.
type Parent struct {
	Ref *EntityRef
}

// Children lists the entities spawned under a parent. Refs of despawned
// children resolve to false and are skipped.
type Children struct {
	Refs []*EntityRef
}

var (
	parentType   = reflect.TypeFor[Parent]()
	childrenType = reflect.TypeFor[Children]()
)

// SpawnChild spawns an entity under parent. The parent gains (or extends) a
// Children component, which moves it to another archetype; callers holding
// the parent's EntityId should use an EntityRef instead.
func (s *Storage) SpawnChild(parent EntityId, components ...any) EntityId {
	parentRef := s.CreateEntityRef(parent)
	if parentRef == nil {
		panic("SpawnChild: parent entity does not exist")
	}

	child := s.Spawn(append(components, Parent{Ref: parentRef})...)
	childRef := s.CreateEntityRef(child)

	if children := ReadComponent[Children](s, parentRef.Id); children != nil {
		children.Refs = append(children.Refs, childRef)
	} else {
		s.AddComponent(parentRef.Id, Children{Refs: []*EntityRef{childRef}})
	}

	return childRef.Id
}

// DespawnRecursive deletes an entity and, depth first, all of its children.
func (s *Storage) DespawnRecursive(id EntityId) {
	if !s.Alive(id) {
		return
	}
	if children := ReadComponent[Children](s, id); children != nil {
		refs := append([]*EntityRef(nil), children.Refs...)
		for _, ref := range refs {
			if childId, ok := s.ResolveEntityRef(ref); ok {
				s.DespawnRecursive(childId)
			}
		}
	}
	s.Delete(id)
}

// ChildrenOf returns the live children of id.
func (s *Storage) ChildrenOf(id EntityId) []EntityId {
	children := ReadComponent[Children](s, id)
	if children == nil {
		return nil
	}
	ids := make([]EntityId, 0, len(children.Refs))
	for _, ref := range children.Refs {
		if childId, ok := s.ResolveEntityRef(ref); ok {
			ids = append(ids, childId)
		}
	}
	return ids
}
