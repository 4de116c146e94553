// Package physics detects overlaps between colliders using chipmunk.
//
// The space is two dimensional: every collider is a circle in the x/y plane
// on a body that follows its entity's transform. Depth is handled in the
// pre-solve callback, where two colliders only count as touching when their
// z slabs overlap as well.
package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/plus3/arwing/ecs"
)

const collisionTypeCollider cp.CollisionType = 1

// Collider is a collision volume centred on the entity's translation.
type Collider struct {
	Radius    float64
	HalfDepth float64
	Sensor    bool
}

// EventKind tells whether a contact began or ended.
type EventKind int

const (
	Started EventKind = iota
	Stopped
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// CollisionEvent reports a change of contact between two entities.
type CollisionEvent struct {
	Kind EventKind
	A, B ecs.EntityId
}

// Involves reports whether id is one of the participants.
func (e CollisionEvent) Involves(id ecs.EntityId) bool {
	return e.A == id || e.B == id
}

type body struct {
	serial    uint64
	ref       *ecs.EntityRef
	body      *cp.Body
	shape     *cp.Shape
	radius    float64
	z         float64
	halfDepth float64
	seen      bool
}

type pairKey struct {
	lo, hi uint64
}

func keyOf(a, b *body) pairKey {
	if a.serial < b.serial {
		return pairKey{a.serial, b.serial}
	}
	return pairKey{b.serial, a.serial}
}

type worldState struct {
	space    *cp.Space
	bodies   map[*ecs.EntityRef]*body
	shapes   map[*cp.Shape]*body
	touching map[pairKey]bool
	pending  []CollisionEvent
	serial   uint64
}

// World owns the chipmunk space. It is stored as a singleton; copies share
// the same space.
type World struct {
	state *worldState
}

// NewWorld creates an empty, gravity-free world.
func NewWorld() World {
	st := &worldState{
		space:    cp.NewSpace(),
		bodies:   make(map[*ecs.EntityRef]*body),
		shapes:   make(map[*cp.Shape]*body),
		touching: make(map[pairKey]bool),
	}

	handler := st.space.NewCollisionHandler(collisionTypeCollider, collisionTypeCollider)
	handler.UserData = st
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		userData.(*worldState).preSolve(arb)
		// Overlap only; bodies never push each other.
		return false
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		userData.(*worldState).separate(arb)
	}

	return World{state: st}
}

// BodyCount returns the number of colliders in the space.
func (w World) BodyCount() int {
	return len(w.state.bodies)
}

// Step advances the space by dt and moves the contact changes it produced
// into events.
func (w World) Step(dt float64, events *ecs.Events[CollisionEvent]) {
	st := w.state
	if dt > 0 {
		st.space.Step(dt)
	}
	for _, ev := range st.pending {
		events.Send(ev)
	}
	st.pending = st.pending[:0]
}

// beginSync clears the seen marks; upsert sets them again and endSync drops
// every body that was not upserted.
func (w World) beginSync() {
	for _, b := range w.state.bodies {
		b.seen = false
	}
}

func (w World) upsert(ref *ecs.EntityRef, x, y, z float64, c Collider) {
	st := w.state
	b, ok := st.bodies[ref]
	if ok && b.radius != c.Radius {
		st.remove(b)
		ok = false
	}
	if !ok {
		b = st.add(ref, c)
	}
	b.body.SetPosition(cp.Vector{X: x, Y: y})
	b.z = z
	b.halfDepth = c.HalfDepth
	b.seen = true
}

func (w World) endSync() {
	st := w.state
	for ref, b := range st.bodies {
		if !b.seen || ref.Id == 0 {
			st.remove(b)
		}
	}
}

func (st *worldState) add(ref *ecs.EntityRef, c Collider) *body {
	st.serial++
	cpBody := cp.NewBody(1, cp.MomentForCircle(1, 0, c.Radius, cp.Vector{}))
	shape := cp.NewCircle(cpBody, c.Radius, cp.Vector{})
	shape.SetSensor(c.Sensor)
	shape.SetCollisionType(collisionTypeCollider)

	st.space.AddBody(cpBody)
	st.space.AddShape(shape)

	b := &body{serial: st.serial, ref: ref, body: cpBody, shape: shape, radius: c.Radius}
	st.bodies[ref] = b
	st.shapes[shape] = b
	return b
}

func (st *worldState) remove(b *body) {
	// RemoveShape runs the separate callback for live contacts, which needs
	// the shape still mapped.
	st.space.RemoveShape(b.shape)
	st.space.RemoveBody(b.body)
	delete(st.shapes, b.shape)
	delete(st.bodies, b.ref)
	for key := range st.touching {
		if key.lo == b.serial || key.hi == b.serial {
			delete(st.touching, key)
		}
	}
}

func (st *worldState) pair(arb *cp.Arbiter) (*body, *body, bool) {
	shapeA, shapeB := arb.Shapes()
	a, okA := st.shapes[shapeA]
	b, okB := st.shapes[shapeB]
	return a, b, okA && okB
}

func (st *worldState) preSolve(arb *cp.Arbiter) {
	a, b, ok := st.pair(arb)
	if !ok {
		return
	}

	key := keyOf(a, b)
	overlap := math.Abs(a.z-b.z) <= a.halfDepth+b.halfDepth
	switch {
	case overlap && !st.touching[key]:
		st.touching[key] = true
		st.emit(Started, a, b)
	case !overlap && st.touching[key]:
		delete(st.touching, key)
		st.emit(Stopped, a, b)
	}
}

func (st *worldState) separate(arb *cp.Arbiter) {
	a, b, ok := st.pair(arb)
	if !ok {
		return
	}
	key := keyOf(a, b)
	if !st.touching[key] {
		return
	}
	delete(st.touching, key)
	st.emit(Stopped, a, b)
}

func (st *worldState) emit(kind EventKind, a, b *body) {
	// Contacts of despawned entities produce no events.
	if a.ref.Id == 0 || b.ref.Id == 0 {
		return
	}
	st.pending = append(st.pending, CollisionEvent{Kind: kind, A: a.ref.Id, B: b.ref.Id})
}
