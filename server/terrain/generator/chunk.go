// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/terrain/mesh"
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
)

// Chunk is one built tile of terrain.
type Chunk struct {
	Coord    terrain.ChunkCoord
	Mesh     *mesh.Mesh
	Collider Collider

	// Visible and Collidable are set while the chunk is placed in the world.
	Visible    bool
	Collidable bool
}

// Collider is the collision representation of a chunk: the vertex grid plus
// vertical extents for cheap rejection.
type Collider struct {
	Bounds    world.AABB
	MinHeight float32
	MaxHeight float32
}

func newChunk(m *mesh.Mesh) *Chunk {
	c := &Chunk{
		Coord: m.Coord,
		Mesh:  m,
	}
	c.refreshCollider()
	return c
}

func (c *Chunk) refreshCollider() {
	c.Mesh.MinHeight = math32.Inf(1)
	c.Mesh.MaxHeight = math32.Inf(-1)
	for i := range c.Mesh.Positions {
		y := c.Mesh.Positions[i].Y
		c.Mesh.MinHeight = math32.Min(c.Mesh.MinHeight, y)
		c.Mesh.MaxHeight = math32.Max(c.Mesh.MaxHeight, y)
	}

	c.Collider = Collider{
		Bounds:    c.Mesh.Bounds(),
		MinHeight: c.Mesh.MinHeight,
		MaxHeight: c.Mesh.MaxHeight,
	}
}

// SetActive shows or hides the chunk and enables or disables its collider.
func (c *Chunk) SetActive(active bool) {
	c.Visible = active
	c.Collidable = active
}

// HeightAt is the ground height at (x, z). ok is false if the chunk is not
// collidable or (x, z) is outside of it.
func (c *Chunk) HeightAt(x, z float32) (float32, bool) {
	if !c.Collidable {
		return 0, false
	}
	return c.Mesh.HeightAt(x, z)
}

// Deformer modifies the vertices with the given indices in place, for a
// deformation centered at point.
type Deformer func(positions []world.Vec3f, indices []int, point world.Vec3f, radius float32)

// Deform hands every vertex within radius (on the ground plane) of point to
// deformer, and returns how many there were.
func (c *Chunk) Deform(point world.Vec3f, radius float32, deformer Deformer) int {
	if deformer == nil || c.Mesh == nil || !(radius > 0) {
		return 0
	}
	if !c.Collider.Bounds.Grow(radius).Intersects(world.AABB{Vec2f: point.Planar()}) {
		return 0
	}

	center := point.Planar()
	r2 := radius * radius
	var indices []int
	for i := range c.Mesh.Positions {
		if c.Mesh.Positions[i].Planar().DistanceSquared(center) <= r2 {
			indices = append(indices, i)
		}
	}

	if len(indices) > 0 {
		deformer(c.Mesh.Positions, indices, point, radius)
		c.refreshCollider()
	}
	return len(indices)
}

// Release returns the chunk's mesh buffers for reuse.
func (c *Chunk) Release() {
	if c.Mesh != nil {
		c.Mesh.Release()
		c.Mesh = nil
	}
	c.SetActive(false)
}
