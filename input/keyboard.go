// Package input exposes keyboard state to systems as an ECS singleton.
package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a game command bound to one or more keys.
type Action int

const (
	PitchUp Action = iota
	PitchDown
	RollRight
	RollLeft
	Fire
)

// Bindings are fixed; there is no remapping.
var Bindings = map[Action][]ebiten.Key{
	PitchUp:   {ebiten.KeyArrowUp, ebiten.KeyW},
	PitchDown: {ebiten.KeyArrowDown, ebiten.KeyS},
	RollRight: {ebiten.KeyArrowRight, ebiten.KeyD},
	RollLeft:  {ebiten.KeyArrowLeft, ebiten.KeyA},
	Fire:      {ebiten.KeySpace},
}

// Keyboard is the per-tick keyboard state. The zero value has no keys down.
type Keyboard struct {
	pressed     map[ebiten.Key]bool
	justPressed map[ebiten.Key]bool
}

// Pressed reports whether any of keys is held.
func (k *Keyboard) Pressed(keys ...ebiten.Key) bool {
	for _, key := range keys {
		if k.pressed[key] {
			return true
		}
	}
	return false
}

// JustPressed reports whether any of keys went down this tick.
func (k *Keyboard) JustPressed(keys ...ebiten.Key) bool {
	for _, key := range keys {
		if k.justPressed[key] {
			return true
		}
	}
	return false
}

// ActionPressed reports whether a key bound to a is held.
func (k *Keyboard) ActionPressed(a Action) bool {
	return k.Pressed(Bindings[a]...)
}

// ActionJustPressed reports whether a key bound to a went down this tick.
func (k *Keyboard) ActionJustPressed(a Action) bool {
	return k.JustPressed(Bindings[a]...)
}

// Press marks key as held. The first Press after a release also marks it
// just pressed until the next Advance.
func (k *Keyboard) Press(key ebiten.Key) {
	k.init()
	if !k.pressed[key] {
		k.justPressed[key] = true
	}
	k.pressed[key] = true
}

// Release marks key as up.
func (k *Keyboard) Release(key ebiten.Key) {
	k.init()
	delete(k.pressed, key)
	delete(k.justPressed, key)
}

// Advance starts a new tick: held keys stay held, edges are forgotten.
func (k *Keyboard) Advance() {
	clear(k.justPressed)
}

func (k *Keyboard) init() {
	if k.pressed == nil {
		k.pressed = make(map[ebiten.Key]bool)
	}
	if k.justPressed == nil {
		k.justPressed = make(map[ebiten.Key]bool)
	}
}

// Poll copies ebiten's state of every bound key into k. Call once per tick
// from the game's Update.
func Poll(k *Keyboard) {
	k.init()
	k.Advance()
	for _, keys := range Bindings {
		for _, key := range keys {
			if !ebiten.IsKeyPressed(key) {
				delete(k.pressed, key)
				continue
			}
			k.pressed[key] = true
			if inpututil.IsKeyJustPressed(key) {
				k.justPressed[key] = true
			}
		}
	}
}
