// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "github.com/chewxy/math32"

// Vec3f is a world position. Y is up.
type Vec3f struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (vec Vec3f) Add(otherVec Vec3f) Vec3f {
	vec.X += otherVec.X
	vec.Y += otherVec.Y
	vec.Z += otherVec.Z
	return vec
}

func (vec Vec3f) Sub(otherVec Vec3f) Vec3f {
	vec.X -= otherVec.X
	vec.Y -= otherVec.Y
	vec.Z -= otherVec.Z
	return vec
}

func (vec Vec3f) Mul(factor float32) Vec3f {
	vec.X *= factor
	vec.Y *= factor
	vec.Z *= factor
	return vec
}

func (vec Vec3f) AddScaled(otherVec Vec3f, factor float32) Vec3f {
	vec.X += otherVec.X * factor
	vec.Y += otherVec.Y * factor
	vec.Z += otherVec.Z * factor
	return vec
}

func (vec Vec3f) Length() float32 {
	return math32.Sqrt(vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z)
}

func (vec Vec3f) DistanceSquared(otherVec Vec3f) float32 {
	x := vec.X - otherVec.X
	y := vec.Y - otherVec.Y
	z := vec.Z - otherVec.Z
	return x*x + y*y + z*z
}

// Planar drops the height.
func (vec Vec3f) Planar() Vec2f {
	return Vec2f{X: vec.X, Z: vec.Z}
}

func (vec Vec3f) Lerp(otherVec Vec3f, factor float32) Vec3f {
	vec.X = Lerp(vec.X, otherVec.X, factor)
	vec.Y = Lerp(vec.Y, otherVec.Y, factor)
	vec.Z = Lerp(vec.Z, otherVec.Z, factor)
	return vec
}
