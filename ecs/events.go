package ecs

import "iter"

// Events is a frame-scoped buffer of T. Store it as a singleton: producers
// Send during a frame, later systems of the same frame Iter, and the
// Scheduler clears it once commands have been flushed.
type Events[T any] struct {
	items []T
}

// Send appends an event to the current frame.
func (e *Events[T]) Send(event T) {
	e.items = append(e.items, event)
}

// Iter yields the events sent so far this frame, oldest first.
func (e *Events[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range e.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Len returns the number of pending events.
func (e *Events[T]) Len() int {
	return len(e.items)
}

func (e *Events[T]) clear() {
	clear(e.items)
	e.items = e.items[:0]
}

type frameEvents interface {
	clear()
}

// clearEvents empties every Events singleton.
func (s *Storage) clearEvents() {
	for _, entry := range s.singletons {
		if events, ok := entry.ptr.(frameEvents); ok {
			events.clear()
		}
	}
}
