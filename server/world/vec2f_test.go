// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"github.com/chewxy/math32"
	"math/rand"
	"testing"
)

func BenchmarkVec2f_DistanceToSegmentSquared(b *testing.B) {
	const count = 1024
	vectors := make([]Vec2f, count)
	for i := range vectors {
		vectors[i] = Vec2f{X: rand.Float32()*100 - 50, Z: rand.Float32()*100 - 50}
	}
	b.ResetTimer()

	var acc float32
	for i := 0; i < b.N; i++ {
		v := vectors[i&(count-1)]
		acc += v.DistanceToSegmentSquared(vectors[(i+1)&(count-1)], vectors[(i+2)&(count-1)])
	}
	_ = acc
}

func approx(a, b float32) bool {
	return math32.Abs(a-b) < 0.0001
}

func TestVec2f_DistanceToSegmentSquared(t *testing.T) {
	a := Vec2f{X: 0, Z: 0}
	b := Vec2f{X: 10, Z: 0}

	tests := []struct {
		vec      Vec2f
		expected float32
	}{
		{Vec2f{X: 5, Z: 3}, 9},      // Above middle
		{Vec2f{X: -4, Z: 3}, 25},    // Before a
		{Vec2f{X: 13, Z: -4}, 25},   // After b
		{Vec2f{X: 10, Z: 0}, 0},     // On b
		{Vec2f{X: 2.5, Z: 0}, 0},    // On segment
		{Vec2f{X: 0, Z: -0.5}, .25}, // Below a
	}

	for _, test := range tests {
		if got := test.vec.DistanceToSegmentSquared(a, b); !approx(got, test.expected) {
			t.Errorf("expected %v.DistanceToSegmentSquared: %f, got %f", test.vec, test.expected, got)
		}
	}

	// Degenerate segment
	if got := (Vec2f{X: 3, Z: 4}).DistanceToSegmentSquared(a, a); !approx(got, 25) {
		t.Errorf("expected 25 got %f", got)
	}
}

func TestVec2f_Norm(t *testing.T) {
	if n := (Vec2f{}).Norm(); n != (Vec2f{}) {
		t.Errorf("expected zero vector got %v", n)
	}
	if n := (Vec2f{X: 3, Z: 4}).Norm(); !approx(n.Length(), 1) {
		t.Errorf("expected unit length got %f", n.Length())
	}
}

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		edge0, edge1, x, expected float32
	}{
		{0, 1, -1, 0},
		{0, 1, 0, 0},
		{0, 1, 0.5, 0.5},
		{0, 1, 1, 1},
		{0, 1, 2, 1},
		{1, 0, 0.25, 0.84375}, // Reversed edges
		{2, 2, 1, 0},
		{2, 2, 3, 1},
	}

	for _, test := range tests {
		if got := Smoothstep(test.edge0, test.edge1, test.x); !approx(got, test.expected) {
			t.Errorf("expected Smoothstep(%f, %f, %f): %f, got %f", test.edge0, test.edge1, test.x, test.expected, got)
		}
	}
}

func TestAABB_ContainsPoint(t *testing.T) {
	aabb := AABBFrom(0, 0, 10, 10)
	if !aabb.ContainsPoint(Vec2f{}) {
		t.Errorf("expected minimum corner to be contained")
	}
	if aabb.ContainsPoint(Vec2f{X: 10, Z: 5}) {
		t.Errorf("expected maximum edge to be excluded")
	}
	if u := aabb.Union(AABBFrom(-5, 2, 1, 20)); u != AABBFrom(-5, 0, 15, 22) {
		t.Errorf("expected union %v got %v", AABBFrom(-5, 0, 15, 22), u)
	}
}
