// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
	"testing"
)

type flatGround float32

func (g flatGround) HeightAt(x, z float32) (float32, bool) {
	return float32(g), true
}

type noGround struct{}

func (noGround) HeightAt(x, z float32) (float32, bool) {
	return 0, false
}

func TestGenerator_BuildRoads(t *testing.T) {
	config := testConfig()
	config.RoadRaiseHeight = 0.25
	g, _ := testGenerator(t, config, terrain.StaticCurves{{{X: -20, Z: 0}, {X: 20, Z: 0}}})

	roads := g.BuildRoads(flatGround(3))
	if len(roads) != 2 {
		t.Fatalf("expected center and shoulder meshes got %d", len(roads))
	}
	if roads[0].Class != terrain.SurfaceRoadCenter || roads[1].Class != terrain.SurfaceRoad {
		t.Errorf("expected center then shoulders got %s and %s", roads[0].Class, roads[1].Class)
	}
	if len(roads[0].Indices)*2 != len(roads[1].Indices) {
		t.Errorf("expected shoulders to have two strips")
	}

	tests := []struct {
		x, z  float32
		class terrain.SurfaceClass
		ok    bool
	}{
		{0, 0, terrain.SurfaceRoadCenter, true},
		{0.5, 0.5, terrain.SurfaceRoadCenter, true},
		{0, 1.5, terrain.SurfaceRoad, true},
		{0, -1.5, terrain.SurfaceRoad, true},
		{0, 5, terrain.SurfaceNone, false},
		{30, 0, terrain.SurfaceNone, false},
	}

	for _, test := range tests {
		hit, ok := g.Raycast(test.x, test.z)
		if ok != test.ok {
			t.Errorf("(%f, %f) expected ok=%t", test.x, test.z, test.ok)
			continue
		}
		if !ok {
			continue
		}
		if hit.Class != test.class {
			t.Errorf("(%f, %f) expected %s got %s", test.x, test.z, test.class, hit.Class)
		}
		if math32.Abs(hit.Height-3.25) > 1e-4 {
			t.Errorf("(%f, %f) expected height 3.25 got %f", test.x, test.z, hit.Height)
		}
	}

	// Snapshot falls back to the field away from roads.
	snapshot := g.Snapshot()
	if hit, ok := snapshot.Raycast(0, 5); !ok || hit.Class != terrain.SurfaceTerrain {
		t.Errorf("expected terrain got %v %t", hit, ok)
	}
	if _, ok := snapshot.Raycast(-25, 5); ok {
		t.Errorf("expected a miss outside of the grid")
	}
}

func TestGenerator_BuildRoadsFallback(t *testing.T) {
	config := testConfig()
	config.DefaultGroundHeight = 7
	config.RoadRaiseHeight = 0
	config.RoadCenterWidth = 0
	g, _ := testGenerator(t, config, terrain.StaticCurves{{{X: -20, Z: 0}, {X: 20, Z: 0}}})

	roads := g.BuildRoads(noGround{})
	if len(roads) != 1 || roads[0].Class != terrain.SurfaceRoad {
		t.Fatalf("expected only a shoulder mesh got %d", len(roads))
	}
	for _, p := range roads[0].Positions {
		if p.Y != 7 {
			t.Fatalf("expected default height 7 got %f", p.Y)
		}
	}

	config.Roads = false
	g, _ = testGenerator(t, config, terrain.StaticCurves{{{X: -20, Z: 0}, {X: 20, Z: 0}}})
	if roads := g.BuildRoads(noGround{}); roads != nil {
		t.Errorf("expected roads to be disabled")
	}
}

func TestRoadFrames(t *testing.T) {
	curve := terrain.NewCurve([]world.Vec3f{{X: 0}, {X: 10}})
	frames := roadFrames(&curve, 3)
	if len(frames) != 5 {
		t.Fatalf("expected 5 frames got %d", len(frames))
	}
	if last := frames[len(frames)-1].position; math32.Abs(last.X-10) > 1e-4 {
		t.Errorf("expected last frame at the end got %v", last)
	}
	for _, frame := range frames {
		if math32.Abs(frame.right.Z-1) > 1e-4 || math32.Abs(frame.right.X) > 1e-4 {
			t.Errorf("expected right to be +Z got %v", frame.right)
		}
	}
}
