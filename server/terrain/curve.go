// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
	"sort"
)

// curveSubdivisions is how many polyline segments approximate each
// spline segment between two control points.
const curveSubdivisions = 8

// Curve is an immutable path centerline. It passes through its control
// points (Catmull-Rom) and is stored as a dense polyline.
type Curve struct {
	points  []world.Vec3f
	lengths []float32 // lengths[i] is the arc length at points[i].
	bounds  world.AABB
}

// NewCurve samples a Catmull-Rom spline through control. The endpoints are
// duplicated so the curve starts and ends on the first and last points.
func NewCurve(control []world.Vec3f) Curve {
	var points []world.Vec3f
	switch len(control) {
	case 0:
	case 1:
		points = []world.Vec3f{control[0]}
	default:
		points = make([]world.Vec3f, 0, (len(control)-1)*curveSubdivisions+1)
		for i := 0; i < len(control)-1; i++ {
			p0 := control[max(i-1, 0)]
			p1 := control[i]
			p2 := control[i+1]
			p3 := control[min(i+2, len(control)-1)]

			for s := 0; s < curveSubdivisions; s++ {
				points = append(points, catmullRom(p0, p1, p2, p3, float32(s)/curveSubdivisions))
			}
		}
		points = append(points, control[len(control)-1])
	}

	curve := Curve{points: points, lengths: make([]float32, len(points))}
	for i := range points {
		if i > 0 {
			curve.lengths[i] = curve.lengths[i-1] + math32.Sqrt(points[i].DistanceSquared(points[i-1]))
		}
		box := world.AABB{Vec2f: points[i].Planar()}
		if i == 0 {
			curve.bounds = box
		} else {
			curve.bounds = curve.bounds.Union(box)
		}
	}
	return curve
}

func catmullRom(p0, p1, p2, p3 world.Vec3f, t float32) world.Vec3f {
	t2 := t * t
	t3 := t2 * t
	return p1.Mul(2).
		AddScaled(p2.Sub(p0), t).
		AddScaled(p0.Mul(2).Sub(p1.Mul(5)).Add(p2.Mul(4)).Sub(p3), t2).
		AddScaled(p1.Mul(3).Sub(p0).Sub(p2.Mul(3)).Add(p3), t3).
		Mul(0.5)
}

// Empty is true for a curve with no points.
func (curve *Curve) Empty() bool {
	return len(curve.points) == 0
}

// Points returns the sampled polyline. It must not be modified.
func (curve *Curve) Points() []world.Vec3f {
	return curve.points
}

// Length is the total arc length.
func (curve *Curve) Length() float32 {
	if len(curve.lengths) == 0 {
		return 0
	}
	return curve.lengths[len(curve.lengths)-1]
}

// Bounds is the planar rectangle containing the polyline.
func (curve *Curve) Bounds() world.AABB {
	return curve.bounds
}

// PointAt returns the position and unit tangent at arc length distance,
// clamped to the curve. The tangent of a single point curve is +X.
func (curve *Curve) PointAt(distance float32) (position, tangent world.Vec3f) {
	switch len(curve.points) {
	case 0:
		return world.Vec3f{}, world.Vec3f{X: 1}
	case 1:
		return curve.points[0], world.Vec3f{X: 1}
	}

	distance = world.Clamp(distance, 0, curve.Length())
	i := sort.Search(len(curve.lengths), func(i int) bool {
		return curve.lengths[i] > distance
	})
	if i >= len(curve.lengths) {
		i = len(curve.lengths) - 1
	}
	if i < 1 {
		i = 1
	}

	a, b := curve.points[i-1], curve.points[i]
	segment := curve.lengths[i] - curve.lengths[i-1]
	var f float32
	if segment > 0 {
		f = (distance - curve.lengths[i-1]) / segment
	}

	delta := b.Sub(a)
	if length := delta.Length(); length > 0 {
		tangent = delta.Mul(1 / length)
	} else {
		tangent = world.Vec3f{X: 1}
	}
	return a.Lerp(b, f), tangent
}

// DistanceSquared is the squared planar distance from p to the polyline.
func (curve *Curve) DistanceSquared(p world.Vec2f) float32 {
	switch len(curve.points) {
	case 0:
		return math32.Inf(1)
	case 1:
		return p.DistanceSquared(curve.points[0].Planar())
	}

	best := math32.Inf(1)
	for i := 1; i < len(curve.points); i++ {
		d := p.DistanceToSegmentSquared(curve.points[i-1].Planar(), curve.points[i].Planar())
		if d < best {
			best = d
		}
	}
	return best
}

// CurveCache holds the curves of one generation pass. It is immutable, a
// regeneration builds a new cache.
type CurveCache struct {
	curves []Curve
}

// NewCurveCache populates a cache from source, which may be nil.
func NewCurveCache(source CurveSource) *CurveCache {
	cache := &CurveCache{}
	if source == nil {
		return cache
	}
	for _, curve := range source.Curves() {
		if !curve.Empty() {
			cache.curves = append(cache.curves, curve)
		}
	}
	return cache
}

// Len is the number of cached curves. A nil cache is empty.
func (cache *CurveCache) Len() int {
	if cache == nil {
		return 0
	}
	return len(cache.curves)
}

// Curves returns the cached curves. They must not be modified.
func (cache *CurveCache) Curves() []Curve {
	if cache == nil {
		return nil
	}
	return cache.curves
}

// NearestDistance is the planar distance from p to the nearest curve. Curves
// farther than within are skipped by their bounds, and if every curve is,
// the result is +Inf.
func (cache *CurveCache) NearestDistance(p world.Vec2f, within float32) float32 {
	best := math32.Inf(1)
	for i := range cache.Curves() {
		curve := &cache.curves[i]
		if !curve.bounds.Grow(within).Intersects(world.AABB{Vec2f: p}) {
			continue
		}
		if d := curve.DistanceSquared(p); d < best {
			best = d
		}
	}
	return math32.Sqrt(best)
}
