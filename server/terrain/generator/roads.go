// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/flywave/go3d/float64/vec3"
)

// RoadMesh is a triangle strip laid along a curve.
type RoadMesh struct {
	Class     terrain.SurfaceClass
	Positions []world.Vec3f
	Indices   []uint32
	bounds    world.AABB
}

// Bounds is the planar rectangle containing the mesh.
func (r *RoadMesh) Bounds() world.AABB {
	return r.bounds
}

// BuildRoads replaces the road meshes with new ones along every cached curve.
// Each curve gets a center strip mesh and a shoulder mesh. ground snaps
// vertices, falling back to DefaultGroundHeight where it misses. It returns
// the new meshes.
func (g *Generator) BuildRoads(ground terrain.Ground) []*RoadMesh {
	config := &g.config
	if !config.Roads {
		g.setRoads(nil)
		return nil
	}

	curves := g.Field().Curves()
	if curves.Len() == 0 {
		g.logger.Println("warning: roads enabled without any curves")
		g.setRoads(nil)
		return nil
	}

	halfWidth := config.RoadWidth * 0.5
	halfCenter := config.RoadCenterWidth * 0.5

	var roads []*RoadMesh
	for i := range curves.Curves() {
		frames := roadFrames(&curves.Curves()[i], config.RoadMeshStep)

		if halfCenter > 0 {
			center := &RoadMesh{Class: terrain.SurfaceRoadCenter}
			center.addStrip(frames, -halfCenter, halfCenter, g.snapper(ground))
			roads = append(roads, center)
		}

		if halfWidth > halfCenter {
			shoulders := &RoadMesh{Class: terrain.SurfaceRoad}
			shoulders.addStrip(frames, -halfWidth, -halfCenter, g.snapper(ground))
			shoulders.addStrip(frames, halfCenter, halfWidth, g.snapper(ground))
			roads = append(roads, shoulders)
		}
	}

	g.setRoads(roads)
	return roads
}

// Roads returns the current road meshes. They must not be modified.
func (g *Generator) Roads() []*RoadMesh {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.roads
}

func (g *Generator) setRoads(roads []*RoadMesh) {
	g.mutex.Lock()
	g.roads = roads
	g.mutex.Unlock()
}

func (g *Generator) snapper(ground terrain.Ground) func(x, z float32) float32 {
	fallback := g.config.DefaultGroundHeight
	raise := g.config.RoadRaiseHeight
	return func(x, z float32) float32 {
		if ground != nil {
			if h, ok := ground.HeightAt(x, z); ok {
				return h + raise
			}
		}
		return fallback + raise
	}
}

// roadFrame is a position on a curve and the horizontal unit vector to its
// right.
type roadFrame struct {
	position world.Vec3f
	right    world.Vec2f
}

var up = vec3.T{0, 1, 0}

// roadFrames walks curve every step of arc length, including both ends.
func roadFrames(curve *terrain.Curve, step float32) []roadFrame {
	length := curve.Length()
	var frames []roadFrame
	for d := float32(0); ; d += step {
		if d > length {
			d = length
		}

		position, tangent := curve.PointAt(d)
		t := vec3.T{float64(tangent.X), 0, float64(tangent.Z)}
		right := vec3.Cross(&t, &up)
		right = right.Normalized()

		frames = append(frames, roadFrame{
			position: position,
			right:    world.Vec2f{X: float32(right[0]), Z: float32(right[2])},
		})

		if d >= length {
			return frames
		}
	}
}

// addStrip appends a strip between two signed offsets to the right of the
// curve. Triangles wind counter-clockwise seen from above.
func (r *RoadMesh) addStrip(frames []roadFrame, left, right float32, snap func(x, z float32) float32) {
	base := uint32(len(r.Positions))
	for i, frame := range frames {
		center := frame.position.Planar()
		a := center.AddScaled(frame.right, left)
		b := center.AddScaled(frame.right, right)
		r.Positions = append(r.Positions, a.Vec3f(snap(a.X, a.Z)), b.Vec3f(snap(b.X, b.Z)))

		box := world.AABB{Vec2f: a}.Union(world.AABB{Vec2f: b})
		if i == 0 && base == 0 {
			r.bounds = box
		} else {
			r.bounds = r.bounds.Union(box)
		}

		if i > 0 {
			i0 := base + uint32(i-1)*2
			i1 := i0 + 2
			r.Indices = append(r.Indices, i0, i0+1, i1, i0+1, i1+1, i1)
		}
	}
}

// Raycast finds the height of the mesh at (x, z).
func (r *RoadMesh) Raycast(x, z float32) (float32, bool) {
	p := world.Vec2f{X: x, Z: z}
	if !r.bounds.Intersects(world.AABB{Vec2f: p}) {
		return 0, false
	}

	found := false
	var best float32
	for i := 0; i+2 < len(r.Indices); i += 3 {
		a := r.Positions[r.Indices[i]]
		b := r.Positions[r.Indices[i+1]]
		c := r.Positions[r.Indices[i+2]]
		if h, ok := triangleHeight(p, a, b, c); ok && (!found || h > best) {
			best = h
			found = true
		}
	}
	return best, found
}

// triangleHeight interpolates the height of triangle abc at p, if p is inside
// it on the ground plane.
func triangleHeight(p world.Vec2f, a, b, c world.Vec3f) (float32, bool) {
	v0 := b.Planar().Sub(a.Planar())
	v1 := c.Planar().Sub(a.Planar())
	v2 := p.Sub(a.Planar())

	denominator := v0.X*v1.Z - v1.X*v0.Z
	if denominator == 0 {
		return 0, false
	}
	u := (v2.X*v1.Z - v1.X*v2.Z) / denominator
	v := (v0.X*v2.Z - v2.X*v0.Z) / denominator

	const epsilon = 1e-5
	if u < -epsilon || v < -epsilon || u+v > 1+epsilon {
		return 0, false
	}
	return a.Y + u*(b.Y-a.Y) + v*(c.Y-a.Y), true
}
