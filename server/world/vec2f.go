// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"github.com/chewxy/math32"
	"math"
)

// Vec2f is a position or direction on the ground plane (world X and Z).
type Vec2f struct {
	X float32 `json:"x"`
	Z float32 `json:"z"`
}

func (vec Vec2f) Mul(factor float32) Vec2f {
	vec.X *= factor
	vec.Z *= factor
	return vec
}

func (vec Vec2f) Div(divisor float32) Vec2f {
	return vec.Mul(1.0 / divisor)
}

func (vec Vec2f) AddScaled(otherVec Vec2f, factor float32) Vec2f {
	vec.X += otherVec.X * factor
	vec.Z += otherVec.Z * factor
	return vec
}

func (vec Vec2f) Add(otherVec Vec2f) Vec2f {
	vec.X += otherVec.X
	vec.Z += otherVec.Z
	return vec
}

func (vec Vec2f) Sub(otherVec Vec2f) Vec2f {
	vec.X -= otherVec.X
	vec.Z -= otherVec.Z
	return vec
}

func (vec Vec2f) Dot(otherVec Vec2f) float32 {
	return vec.X*otherVec.X + vec.Z*otherVec.Z
}

// Rot90 rotates 90 degrees clockwise when viewed from above.
func (vec Vec2f) Rot90() Vec2f {
	return Vec2f{X: -vec.Z, Z: vec.X}
}

func (vec Vec2f) Distance(otherVec Vec2f) float32 {
	return vec.Sub(otherVec).Length()
}

func (vec Vec2f) DistanceSquared(otherVec Vec2f) float32 {
	x := vec.X - otherVec.X
	z := vec.Z - otherVec.Z
	return x*x + z*z
}

func (vec Vec2f) Length() float32 {
	return math32.Hypot(vec.X, vec.Z)
}

func (vec Vec2f) LengthSquared() float32 {
	return vec.X*vec.X + vec.Z*vec.Z
}

func Lerp(a, b, factor float32) float32 {
	return a + (b-a)*factor
}

func (vec Vec2f) Lerp(otherVec Vec2f, factor float32) Vec2f {
	vec.X = Lerp(vec.X, otherVec.X, factor)
	vec.Z = Lerp(vec.Z, otherVec.Z, factor)
	return vec
}

func (vec Vec2f) Floor() Vec2f {
	// Use math.Floor instead because it uses assembly
	vec.X = float32(math.Floor(float64(vec.X)))
	vec.Z = float32(math.Floor(float64(vec.Z)))
	return vec
}

// Norm returns the unit vector, or the zero vector if vec has no length.
func (vec Vec2f) Norm() Vec2f {
	length := vec.Length()
	if length == 0 {
		return Vec2f{}
	}
	return vec.Div(length)
}

// Vec3f lifts vec into 3D at height y.
func (vec Vec2f) Vec3f(y float32) Vec3f {
	return Vec3f{X: vec.X, Y: y, Z: vec.Z}
}

// DistanceToSegmentSquared returns the squared distance from vec to the segment a-b.
func (vec Vec2f) DistanceToSegmentSquared(a, b Vec2f) float32 {
	ab := b.Sub(a)
	lengthSquared := ab.LengthSquared()
	if lengthSquared == 0 {
		return vec.DistanceSquared(a)
	}
	t := clamp(vec.Sub(a).Dot(ab)/lengthSquared, 0, 1)
	return vec.DistanceSquared(a.AddScaled(ab, t))
}
