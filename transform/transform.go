// Package transform holds the spatial component shared by the game, the
// renderer and the collision layer.
package transform

import "github.com/go-gl/mathgl/mgl64"

// Transform places an entity in world space. Rotation is not kept
// normalised: the flight systems edit its x, y and z parts directly, so
// consumers that need a pure rotation use Orientation.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// Identity is a transform at the origin with unit scale.
func Identity() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// FromXYZ returns an identity transform translated to (x, y, z).
func FromXYZ(x, y, z float64) Transform {
	t := Identity()
	t.Translation = mgl64.Vec3{x, y, z}
	return t
}

// WithScale returns t with a uniform scale s.
func (t Transform) WithScale(s float64) Transform {
	t.Scale = mgl64.Vec3{s, s, s}
	return t
}

// Orientation returns the normalised rotation, or identity when the
// rotation has zero length.
func (t Transform) Orientation() mgl64.Quat {
	if t.Rotation.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return t.Rotation.Normalize()
}

// Forward is the unit +Z axis rotated by Orientation.
func (t Transform) Forward() mgl64.Vec3 {
	return t.Orientation().Rotate(mgl64.Vec3{0, 0, 1})
}

// Matrix is the model matrix: translate * rotate * scale.
func (t Transform) Matrix() mgl64.Mat4 {
	scale := t.Scale
	if scale == (mgl64.Vec3{}) {
		scale = mgl64.Vec3{1, 1, 1}
	}
	return mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Orientation().Mat4()).
		Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Apply maps a model-space point into world space.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, t.Matrix())
}
