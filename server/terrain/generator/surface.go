// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
)

// HeightAt implements terrain.Ground over the placed, collidable chunks.
func (g *Generator) HeightAt(x, z float32) (float32, bool) {
	coord := terrain.ChunkCoordOf(world.Vec2f{X: x, Z: z}, g.config.SizePerChunk)

	g.mutex.RLock()
	chunk := g.chunks[coord]
	g.mutex.RUnlock()

	if chunk == nil {
		return 0, false
	}
	return chunk.HeightAt(x, z)
}

// Raycast implements terrain.Surface over the placed chunks and the roads.
func (g *Generator) Raycast(x, z float32) (terrain.Hit, bool) {
	hit, ok := raycastRoads(g.Roads(), x, z)
	if h, terrainOk := g.HeightAt(x, z); terrainOk {
		hit, ok = higher(hit, ok, terrain.Hit{Height: h, Class: terrain.SurfaceTerrain})
	}
	return hit, ok
}

// Snapshot returns a surface of the current roads over the height field
// itself, covering the whole chunk grid whether or not chunks are placed. It
// does not change when the generator does, so it is safe to use from another
// goroutine.
func (g *Generator) Snapshot() terrain.Surface {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return &snapshot{
		field:  g.field,
		roads:  g.roads,
		bounds: g.config.Bounds(),
	}
}

type snapshot struct {
	field  *terrain.Field
	roads  []*RoadMesh
	bounds world.AABB
}

func (s *snapshot) Raycast(x, z float32) (terrain.Hit, bool) {
	hit, ok := raycastRoads(s.roads, x, z)
	if s.bounds.ContainsPoint(world.Vec2f{X: x, Z: z}) {
		hit, ok = higher(hit, ok, terrain.Hit{Height: s.field.Height(x, z), Class: terrain.SurfaceTerrain})
	}
	return hit, ok
}

func raycastRoads(roads []*RoadMesh, x, z float32) (hit terrain.Hit, ok bool) {
	for _, road := range roads {
		if h, roadOk := road.Raycast(x, z); roadOk {
			hit, ok = higher(hit, ok, terrain.Hit{Height: h, Class: road.Class})
		}
	}
	return
}

// higher picks the higher hit, and the more specific class if equal.
func higher(best terrain.Hit, ok bool, hit terrain.Hit) (terrain.Hit, bool) {
	if !ok || hit.Height > best.Height || (hit.Height == best.Height && hit.Class > best.Class) {
		return hit, true
	}
	return best, true
}

// DeformAt routes a deformation to every placed chunk within radius of point
// and returns how many vertices were affected.
func (g *Generator) DeformAt(point world.Vec3f, radius float32) int {
	if g.Deformer == nil {
		return 0
	}

	size := g.config.SizePerChunk
	min := terrain.ChunkCoordOf(point.Planar().Sub(world.Vec2f{X: radius, Z: radius}), size)
	max := terrain.ChunkCoordOf(point.Planar().Add(world.Vec2f{X: radius, Z: radius}), size)

	count := 0
	for z := min.Z; z <= max.Z; z++ {
		for x := min.X; x <= max.X; x++ {
			chunk := g.Chunk(terrain.ChunkCoord{X: x, Z: z})
			if chunk != nil && chunk.Collidable {
				count += chunk.Deform(point, radius, g.Deformer)
			}
		}
	}
	return count
}
