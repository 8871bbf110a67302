// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"github.com/SoftbearStudios/offroad/server/task"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/terrain/generator"
	"github.com/SoftbearStudios/offroad/server/world"
	"log"
	"strings"
	"testing"
	"time"
)

type fakeGenerator struct {
	steps     int  // Steps per build.
	duplicate bool // Deliver every build twice.
	builds    map[terrain.ChunkCoord]int
	placed    map[terrain.ChunkCoord]*generator.Chunk
}

func newFakeGenerator(steps int) *fakeGenerator {
	return &fakeGenerator{
		steps:  steps,
		builds: make(map[terrain.ChunkCoord]int),
		placed: make(map[terrain.ChunkCoord]*generator.Chunk),
	}
}

func (f *fakeGenerator) NewChunkTask(coord terrain.ChunkCoord, done func(*generator.Chunk, error)) task.Task {
	f.builds[coord]++
	remaining := f.steps
	return task.Func(func() bool {
		remaining--
		if remaining > 0 {
			return false
		}
		done(&generator.Chunk{Coord: coord}, nil)
		if f.duplicate {
			done(&generator.Chunk{Coord: coord}, nil)
		}
		return true
	})
}

func (f *fakeGenerator) Place(chunk *generator.Chunk) {
	chunk.SetActive(true)
	f.placed[chunk.Coord] = chunk
}

func (f *fakeGenerator) Remove(coord terrain.ChunkCoord) *generator.Chunk {
	chunk := f.placed[coord]
	delete(f.placed, coord)
	if chunk != nil {
		chunk.SetActive(false)
	}
	return chunk
}

type entity struct {
	position world.Vec2f
}

func (e *entity) Position() world.Vec2f {
	return e.position
}

func testConfig(radius int) terrain.Config {
	config := terrain.DefaultConfig()
	config.ChunksX = 16
	config.ChunksZ = 16
	config.SizePerChunk = 10
	config.LoadRadius = radius
	config.TickInterval = 0
	config.MaxChunksPerTick = 100
	config.BuildStepsPerTick = 1000
	config.MaxPooledChunks = 0
	return config
}

func testStreamer(t *testing.T, config terrain.Config, gen *fakeGenerator) (*Streamer, *bytes.Buffer) {
	var logs bytes.Buffer
	s, err := New(config, gen, log.New(&logs, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	return s, &logs
}

// checkMembership fails if a coordinate is in more than one of active, pool
// and loading, or if active and placed chunks differ.
func checkMembership(t *testing.T, s *Streamer, gen *fakeGenerator) {
	t.Helper()
	for coord := range s.active {
		if _, ok := s.pool[coord]; ok {
			t.Fatalf("%s is active and pooled", coord)
		}
		if _, ok := s.loading[coord]; ok {
			t.Fatalf("%s is active and loading", coord)
		}
		if gen.placed[coord] != s.active[coord] {
			t.Fatalf("%s is active but not placed", coord)
		}
	}
	for coord := range s.pool {
		if _, ok := s.loading[coord]; ok {
			t.Fatalf("%s is pooled and loading", coord)
		}
		if s.pool[coord].Visible || s.pool[coord].Collidable {
			t.Fatalf("%s is pooled but still active", coord)
		}
	}
	if len(gen.placed) != len(s.active) {
		t.Fatalf("expected %d placed got %d", len(s.active), len(gen.placed))
	}
}

func coordSet(coords []terrain.ChunkCoord) map[terrain.ChunkCoord]bool {
	set := make(map[terrain.ChunkCoord]bool, len(coords))
	for _, coord := range coords {
		set[coord] = true
	}
	return set
}

func square(center terrain.ChunkCoord, radius int32) map[terrain.ChunkCoord]bool {
	set := make(map[terrain.ChunkCoord]bool)
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			set[center.Add(dx, dz)] = true
		}
	}
	return set
}

func TestStreamer_RadiusOne(t *testing.T) {
	gen := newFakeGenerator(1)
	s, _ := testStreamer(t, testConfig(1), gen)

	var deactivated []terrain.ChunkCoord
	s.OnDeactivate = func(coord terrain.ChunkCoord) {
		deactivated = append(deactivated, coord)
	}

	e := &entity{}
	s.Track(e)
	s.Step()
	checkMembership(t, s, gen)

	required := coordSet(s.Required())
	if len(required) != 9 {
		t.Fatalf("expected 9 required got %d", len(required))
	}
	for coord := range square(terrain.ChunkCoord{}, 1) {
		if !required[coord] {
			t.Errorf("expected %s to be required", coord)
		}
		if s.State(coord) != StateActive {
			t.Errorf("expected %s to be active got %s", coord, s.State(coord))
		}
	}

	// One chunk over in +X.
	e.position = world.Vec2f{X: 15, Z: 5}
	s.Step()
	checkMembership(t, s, gen)

	required = coordSet(s.Required())
	shifted := square(terrain.ChunkCoord{X: 1}, 1)
	if len(required) != 9 {
		t.Fatalf("expected 9 required got %d", len(required))
	}
	for coord := range shifted {
		if !required[coord] {
			t.Errorf("expected %s to be required", coord)
		}
	}

	if len(deactivated) != 3 {
		t.Fatalf("expected 3 deactivations got %v", deactivated)
	}
	for _, coord := range deactivated {
		if coord.X != -1 {
			t.Errorf("expected only the x=-1 column to be deactivated got %s", coord)
		}
		if s.State(coord) != StatePooled {
			t.Errorf("expected %s to be pooled got %s", coord, s.State(coord))
		}
	}

	for coord := range shifted {
		if coord.X == 2 && gen.builds[coord] != 1 {
			t.Errorf("expected new column %s to be built once got %d", coord, gen.builds[coord])
		}
		if coord.X < 2 && gen.builds[coord] != 1 {
			t.Errorf("expected kept chunk %s not to be rebuilt", coord)
		}
	}

	// Moving back reactivates pooled chunks without building.
	e.position = world.Vec2f{X: 5, Z: 5}
	s.Step()
	checkMembership(t, s, gen)
	for coord := range square(terrain.ChunkCoord{}, 1) {
		if gen.builds[coord] != 1 {
			t.Errorf("expected %s to come from the pool got %d builds", coord, gen.builds[coord])
		}
		if s.State(coord) != StateActive {
			t.Errorf("expected %s to be active got %s", coord, s.State(coord))
		}
	}
}

func TestStreamer_StationaryIsNoop(t *testing.T) {
	gen := newFakeGenerator(1)
	s, _ := testStreamer(t, testConfig(3), gen)

	e := &entity{position: world.Vec2f{X: 3, Z: 4}}
	s.Track(e)
	s.Step()

	active, _, _ := s.Counts()
	if active != 49 {
		t.Fatalf("expected 49 active got %d", active)
	}

	before := s.Stats()
	e.position = world.Vec2f{X: 7, Z: 1} // Same chunk.
	s.Step()
	after := s.Stats()

	if after.NoopSteps != before.NoopSteps+1 {
		t.Errorf("expected a no-op step")
	}
	if after.Activations != before.Activations || after.Deactivations != before.Deactivations || after.BuildsStarted != before.BuildsStarted {
		t.Errorf("expected no work got %+v then %+v", before, after)
	}
}

func TestStreamer_Bounds(t *testing.T) {
	gen := newFakeGenerator(1)
	config := testConfig(2)
	config.ChunksX = 4
	config.ChunksZ = 4
	s, _ := testStreamer(t, config, gen)

	s.Track(&entity{position: world.Vec2f{X: -15, Z: -15}})
	s.Step()

	// Chunk (-2, -2) is the corner, so only x, z in [-2, 0] remain.
	if required := s.Required(); len(required) != 9 {
		t.Errorf("expected 9 in bounds got %v", required)
	}
	for coord := range gen.builds {
		if !config.InBounds(coord) {
			t.Errorf("expected no build outside of bounds got %s", coord)
		}
	}
}

func TestStreamer_Budget(t *testing.T) {
	gen := newFakeGenerator(1)
	config := testConfig(1)
	config.MaxChunksPerTick = 2
	s, _ := testStreamer(t, config, gen)

	e := &entity{}
	s.Track(e)
	s.Step()

	// Jump far away then back so the original chunks are pooled.
	e.position = world.Vec2f{X: 55, Z: 55}
	for i := 0; i < 10; i++ {
		s.Step()
		checkMembership(t, s, gen)
	}
	if _, pooled, _ := s.Counts(); pooled != 9 {
		t.Fatalf("expected 9 pooled got %d", pooled)
	}

	e.position = world.Vec2f{}
	before := s.Stats()
	s.Step()
	after := s.Stats()
	if work := after.Activations + after.Deactivations - before.Activations - before.Deactivations; work != 2 {
		t.Errorf("expected 2 queued chunks moved in one step got %d", work)
	}

	for i := 0; i < 20; i++ {
		s.Step()
		checkMembership(t, s, gen)
	}
	if activations, deactivations := s.Queued(); activations != 0 || deactivations != 0 {
		t.Errorf("expected queues to drain got %d and %d", activations, deactivations)
	}
	for coord := range square(terrain.ChunkCoord{}, 1) {
		if s.State(coord) != StateActive || gen.builds[coord] != 1 {
			t.Errorf("expected %s to be reactivated from the pool", coord)
		}
	}
}

func TestStreamer_LateCompletion(t *testing.T) {
	gen := newFakeGenerator(3)
	config := testConfig(0)
	config.BuildStepsPerTick = 1
	s, _ := testStreamer(t, config, gen)

	e := &entity{position: world.Vec2f{X: 5, Z: 5}}
	s.Track(e)
	s.Step()
	if s.State(terrain.ChunkCoord{}) != StateLoading {
		t.Fatalf("expected loading got %s", s.State(terrain.ChunkCoord{}))
	}

	// Leave before the build finishes.
	e.position = world.Vec2f{X: 25, Z: 5}
	for i := 0; i < 10; i++ {
		s.Step()
		checkMembership(t, s, gen)
	}

	if state := s.State(terrain.ChunkCoord{}); state != StatePooled {
		t.Errorf("expected the abandoned build to be pooled got %s", state)
	}
	if state := s.State(terrain.ChunkCoord{X: 2}); state != StateActive {
		t.Errorf("expected the new chunk to be active got %s", state)
	}
}

func TestStreamer_DuplicateBuild(t *testing.T) {
	gen := newFakeGenerator(1)
	gen.duplicate = true
	s, logs := testStreamer(t, testConfig(0), gen)

	s.Track(&entity{})
	s.Step()
	checkMembership(t, s, gen)

	if s.Stats().DuplicateBuilds != 1 {
		t.Errorf("expected 1 duplicate got %d", s.Stats().DuplicateBuilds)
	}
	if !strings.Contains(logs.String(), "duplicate") {
		t.Errorf("expected a warning got %q", logs.String())
	}
	if active, pooled, _ := s.Counts(); active != 1 || pooled != 0 {
		t.Errorf("expected the first chunk to be kept got %d active %d pooled", active, pooled)
	}
}

func TestStreamer_Untrack(t *testing.T) {
	gen := newFakeGenerator(1)
	s, _ := testStreamer(t, testConfig(1), gen)

	a := &entity{}
	b := &entity{position: world.Vec2f{X: 45}}
	s.Track(a)
	s.Track(b)
	s.Step()
	if active, _, _ := s.Counts(); active != 18 {
		t.Fatalf("expected 18 active got %d", active)
	}

	s.Untrack(b)
	s.Step()
	checkMembership(t, s, gen)
	if active, pooled, _ := s.Counts(); active != 9 || pooled != 9 {
		t.Errorf("expected 9 active and 9 pooled got %d and %d", active, pooled)
	}
}

func TestStreamer_Evict(t *testing.T) {
	gen := newFakeGenerator(1)
	config := testConfig(0)
	config.MaxPooledChunks = 2
	s, _ := testStreamer(t, config, gen)

	e := &entity{}
	s.Track(e)
	for x := float32(0); x < 50; x += 10 {
		e.position = world.Vec2f{X: x}
		s.Step()
		checkMembership(t, s, gen)
	}

	// Chunks 0 through 3 were left behind, the 2 nearest are kept.
	if _, pooled, _ := s.Counts(); pooled != 2 {
		t.Fatalf("expected 2 pooled got %d", pooled)
	}
	if s.State(terrain.ChunkCoord{X: 3}) != StatePooled || s.State(terrain.ChunkCoord{X: 2}) != StatePooled {
		t.Errorf("expected the nearest chunks to be kept")
	}
	if s.Stats().Evictions != 2 {
		t.Errorf("expected 2 evictions got %d", s.Stats().Evictions)
	}
}

func TestStreamer_Tick(t *testing.T) {
	gen := newFakeGenerator(1)
	config := testConfig(0)
	config.TickInterval = 0.25
	s, _ := testStreamer(t, config, gen)
	s.Track(&entity{})

	if s.Tick(100 * time.Millisecond) {
		t.Errorf("expected no step before the interval")
	}
	if !s.Tick(200 * time.Millisecond) {
		t.Errorf("expected a step after the interval")
	}
	if s.Tick(10 * time.Millisecond) {
		t.Errorf("expected the remainder to carry over without a step")
	}
	if s.Stats().Steps != 1 {
		t.Errorf("expected 1 step got %d", s.Stats().Steps)
	}

	// A stall steps once and is then forgotten.
	if !s.Tick(5 * time.Second) {
		t.Errorf("expected a step after a stall")
	}
	if s.Tick(time.Millisecond) {
		t.Errorf("expected no backlog after a stall")
	}
	if s.Stats().Steps != 2 {
		t.Errorf("expected 2 steps got %d", s.Stats().Steps)
	}
}

func TestStreamer_Clear(t *testing.T) {
	gen := newFakeGenerator(1)
	s, _ := testStreamer(t, testConfig(1), gen)
	s.Track(&entity{})
	s.Step()

	s.Clear()
	if active, pooled, loading := s.Counts(); active+pooled+loading != 0 || len(gen.placed) != 0 {
		t.Fatalf("expected nothing left got %d %d %d", active, pooled, loading)
	}

	s.Step()
	if active, _, _ := s.Counts(); active != 9 {
		t.Errorf("expected chunks to be requested again got %d", active)
	}
}
