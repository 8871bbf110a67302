// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

// AABB is an axis aligned rectangle on the ground plane.
// Vec2f is the minimum corner.
type AABB struct {
	Vec2f
	Width float32 `json:"width"`
	Depth float32 `json:"depth"`
}

func AABBFrom(x, z, width, depth float32) AABB {
	return AABB{
		Vec2f: Vec2f{X: x, Z: z},
		Width: width,
		Depth: depth,
	}
}

// Intersects a and b are intersecting
func (a AABB) Intersects(b AABB) bool {
	return a.X+a.Width >= b.X && a.X <= b.X+b.Width && a.Z+a.Depth >= b.Z && a.Z <= b.Depth+b.Z
}

// Contains a fully contains b
func (a AABB) Contains(b AABB) bool {
	return a.X <= b.X && a.Z <= b.Z && a.X+a.Width >= b.X+b.Width && a.Z+a.Depth >= b.Z+b.Depth
}

// ContainsPoint includes the minimum edges and excludes the maximum edges.
func (a AABB) ContainsPoint(p Vec2f) bool {
	return p.X >= a.X && p.Z >= a.Z && p.X < a.X+a.Width && p.Z < a.Z+a.Depth
}

// Grow expands a by margin on every side.
func (a AABB) Grow(margin float32) AABB {
	a.X -= margin
	a.Z -= margin
	a.Width += margin * 2
	a.Depth += margin * 2
	return a
}

// Union returns the smallest AABB containing a and b.
func (a AABB) Union(b AABB) AABB {
	minX := min(a.X, b.X)
	minZ := min(a.Z, b.Z)
	maxX := max(a.X+a.Width, b.X+b.Width)
	maxZ := max(a.Z+a.Depth, b.Z+b.Depth)
	return AABBFrom(minX, minZ, maxX-minX, maxZ-minZ)
}

func (a AABB) Center() Vec2f {
	return Vec2f{X: a.X + a.Width*0.5, Z: a.Z + a.Depth*0.5}
}
