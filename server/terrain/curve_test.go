// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
	"testing"
)

func TestCurve_PassesThroughControlPoints(t *testing.T) {
	control := []world.Vec3f{{X: 0, Z: 0}, {X: 10, Y: 2, Z: 5}, {X: 20, Z: 0}, {X: 30, Y: 1, Z: 10}}
	curve := NewCurve(control)

	points := curve.Points()
	for i, p := range control {
		if q := points[i*curveSubdivisions]; q.DistanceSquared(p) > 1e-6 {
			t.Errorf("control point %d: expected %v got %v", i, p, q)
		}
	}

	if curve.Length() < 30 {
		t.Errorf("expected length at least 30 got %f", curve.Length())
	}
}

func TestCurve_PointAt(t *testing.T) {
	curve := NewCurve([]world.Vec3f{{X: 0}, {X: 100}})

	tests := []struct {
		distance float32
		expected float32
	}{
		{-5, 0},
		{0, 0},
		{25, 25},
		{100, 100},
		{150, 100},
	}

	for _, test := range tests {
		p, tangent := curve.PointAt(test.distance)
		if math32.Abs(p.X-test.expected) > 1e-3 {
			t.Errorf("at %f expected x=%f got %f", test.distance, test.expected, p.X)
		}
		if math32.Abs(tangent.X-1) > 1e-4 {
			t.Errorf("expected +X tangent got %v", tangent)
		}
	}
}

func TestCurve_Degenerate(t *testing.T) {
	empty := NewCurve(nil)
	if !empty.Empty() || empty.Length() != 0 {
		t.Errorf("expected empty curve")
	}
	if d := empty.DistanceSquared(world.Vec2f{}); !math32.IsInf(d, 1) {
		t.Errorf("expected +Inf got %f", d)
	}

	single := NewCurve([]world.Vec3f{{X: 3, Z: 4}})
	if d := single.DistanceSquared(world.Vec2f{}); d != 25 {
		t.Errorf("expected 25 got %f", d)
	}
	if p, _ := single.PointAt(10); p.X != 3 || p.Z != 4 {
		t.Errorf("expected the only point got %v", p)
	}
}

func TestCurveCache_NearestDistance(t *testing.T) {
	cache := NewCurveCache(StaticCurves{
		{{X: 0, Z: 0}, {X: 100, Z: 0}},
		{{X: 0, Z: 50}, {X: 100, Z: 50}},
		{},
	})

	if cache.Len() != 2 {
		t.Fatalf("expected empty curves to be skipped, got %d curves", cache.Len())
	}

	if d := cache.NearestDistance(world.Vec2f{X: 50, Z: 40}, 100); math32.Abs(d-10) > 1e-3 {
		t.Errorf("expected nearest 10 got %f", d)
	}
	if d := cache.NearestDistance(world.Vec2f{X: 50, Z: 25}, 5); !math32.IsInf(d, 1) {
		t.Errorf("expected curves out of range to be skipped got %f", d)
	}

	var nilCache *CurveCache
	if nilCache.Len() != 0 || nilCache.Curves() != nil {
		t.Errorf("expected nil cache to be empty")
	}
	if NewCurveCache(nil).Len() != 0 {
		t.Errorf("expected nil source to give an empty cache")
	}
}
