// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream keeps the chunks near tracked entities in the world.
package stream

import (
	"github.com/SoftbearStudios/offroad/server/task"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/terrain/generator"
	"github.com/SoftbearStudios/offroad/server/world"
	"log"
	"sort"
	"time"
)

// Entity is anything that moves and needs the terrain around it.
type Entity interface {
	Position() world.Vec2f
}

// Generator builds chunks and places them in the world. *generator.Generator
// implements it.
type Generator interface {
	NewChunkTask(coord terrain.ChunkCoord, done func(*generator.Chunk, error)) task.Task
	Place(chunk *generator.Chunk)
	Remove(coord terrain.ChunkCoord) *generator.Chunk
}

// State is where a coordinate is in the chunk lifecycle.
type State uint8

const (
	StateUnrequested State = iota
	StateLoading
	StateActive
	StatePooled
)

func (state State) String() string {
	switch state {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StatePooled:
		return "pooled"
	default:
		return "unrequested"
	}
}

// Stats are cumulative counters of a Streamer.
type Stats struct {
	Steps           int
	NoopSteps       int
	Activations     int
	Deactivations   int
	BuildsStarted   int
	BuildsCompleted int
	BuildsFailed    int
	DuplicateBuilds int
	Evictions       int
}

type tracked struct {
	coord terrain.ChunkCoord
	known bool
}

// queue is a FIFO of coordinates without duplicates.
type queue struct {
	items   []terrain.ChunkCoord
	members map[terrain.ChunkCoord]struct{}
}

func newQueue() queue {
	return queue{members: make(map[terrain.ChunkCoord]struct{})}
}

func (q *queue) push(coord terrain.ChunkCoord) {
	if _, ok := q.members[coord]; ok {
		return
	}
	q.members[coord] = struct{}{}
	q.items = append(q.items, coord)
}

func (q *queue) pop() (terrain.ChunkCoord, bool) {
	if len(q.items) == 0 {
		return terrain.ChunkCoord{}, false
	}
	coord := q.items[0]
	q.items = q.items[1:]
	delete(q.members, coord)
	return coord, true
}

func (q *queue) contains(coord terrain.ChunkCoord) bool {
	_, ok := q.members[coord]
	return ok
}

func (q *queue) len() int {
	return len(q.items)
}

// Streamer tracks entities and keeps the chunks within LoadRadius of each of
// them active, building missing ones a bounded amount per step and pooling
// the ones left behind. It is not safe for concurrent use: Tick and every
// other method must be called from the same goroutine.
type Streamer struct {
	// OnActivate is called after a chunk is placed in the world.
	OnActivate func(chunk *generator.Chunk)
	// OnDeactivate is called after a chunk is taken out of the world.
	OnDeactivate func(coord terrain.ChunkCoord)

	config    terrain.Config
	generator Generator
	logger    *log.Logger
	scheduler task.Scheduler

	entities map[Entity]*tracked
	dirty    bool // An entity was untracked.

	active   map[terrain.ChunkCoord]*generator.Chunk
	pool     map[terrain.ChunkCoord]*generator.Chunk
	loading  map[terrain.ChunkCoord]struct{}
	required map[terrain.ChunkCoord]struct{}

	activations   queue
	deactivations queue

	elapsed time.Duration
	stats   Stats
}

// New creates a streamer. logger may be nil to use the standard logger.
func New(config terrain.Config, gen Generator, logger *log.Logger) (*Streamer, error) {
	if err := config.ValidateStreaming(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Streamer{
		config:        config,
		generator:     gen,
		logger:        logger,
		entities:      make(map[Entity]*tracked),
		active:        make(map[terrain.ChunkCoord]*generator.Chunk),
		pool:          make(map[terrain.ChunkCoord]*generator.Chunk),
		loading:       make(map[terrain.ChunkCoord]struct{}),
		required:      make(map[terrain.ChunkCoord]struct{}),
		activations:   newQueue(),
		deactivations: newQueue(),
	}, nil
}

// Track starts keeping the terrain around e loaded.
func (s *Streamer) Track(e Entity) {
	if _, ok := s.entities[e]; !ok {
		s.entities[e] = &tracked{}
	}
}

// Untrack stops following e. Its chunks are released on the next step
// unless another entity needs them.
func (s *Streamer) Untrack(e Entity) {
	if _, ok := s.entities[e]; ok {
		delete(s.entities, e)
		s.dirty = true
	}
}

// Tracked is the number of tracked entities.
func (s *Streamer) Tracked() int {
	return len(s.entities)
}

// Tick advances time by elapsed and runs a step once per TickInterval. It
// returns whether a step ran.
func (s *Streamer) Tick(elapsed time.Duration) bool {
	interval := s.config.TickInterval.Duration()
	s.elapsed += elapsed
	if s.elapsed < interval {
		return false
	}

	// At most one step per Tick, without accumulating a backlog.
	s.elapsed -= interval
	if s.elapsed > interval {
		s.elapsed = 0
	}

	s.Step()
	return true
}

// Step runs one streaming step immediately.
func (s *Streamer) Step() {
	s.stats.Steps++

	moved := s.dirty
	s.dirty = false
	for e, t := range s.entities {
		coord := terrain.ChunkCoordOf(e.Position(), s.config.SizePerChunk)
		if !t.known || coord != t.coord {
			t.coord = coord
			t.known = true
			moved = true
		}
	}

	if !moved && s.activations.len() == 0 && s.deactivations.len() == 0 {
		s.stats.NoopSteps++
	} else {
		if moved {
			s.updateRequired()
		}
		s.drain(s.config.MaxChunksPerTick)
	}

	s.scheduler.Run(s.config.BuildStepsPerTick)
	s.evict()
}

// updateRequired recomputes the required set and queues the differences.
func (s *Streamer) updateRequired() {
	required := make(map[terrain.ChunkCoord]struct{}, len(s.required))
	radius := int32(s.config.LoadRadius)
	for _, t := range s.entities {
		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				coord := t.coord.Add(dx, dz)
				if s.config.InBounds(coord) {
					required[coord] = struct{}{}
				}
			}
		}
	}
	s.required = required

	for _, coord := range sortedKeys(s.active) {
		if _, ok := required[coord]; !ok {
			if _, loading := s.loading[coord]; !loading && !s.deactivations.contains(coord) {
				s.deactivations.push(coord)
			}
		}
	}

	for _, coord := range sortedKeys(required) {
		if _, ok := s.active[coord]; ok {
			continue
		}
		if _, ok := s.loading[coord]; ok || s.activations.contains(coord) {
			continue
		}
		if _, ok := s.pool[coord]; ok {
			s.activations.push(coord)
		} else {
			s.startBuild(coord)
		}
	}
}

func (s *Streamer) startBuild(coord terrain.ChunkCoord) {
	s.loading[coord] = struct{}{}
	s.stats.BuildsStarted++
	s.scheduler.Add(s.generator.NewChunkTask(coord, func(chunk *generator.Chunk, err error) {
		s.complete(coord, chunk, err)
	}))
}

// complete handles a finished build. The chunk only becomes active if its
// coordinate is still required.
func (s *Streamer) complete(coord terrain.ChunkCoord, chunk *generator.Chunk, err error) {
	delete(s.loading, coord)

	if err != nil {
		s.stats.BuildsFailed++
		s.logger.Printf("chunk %s build failed: %v", coord, err)
		return
	}
	s.stats.BuildsCompleted++

	_, isActive := s.active[coord]
	_, isPooled := s.pool[coord]
	if isActive || isPooled {
		s.stats.DuplicateBuilds++
		s.logger.Printf("warning: duplicate build of chunk %s discarded", coord)
		chunk.Release()
		return
	}

	if _, ok := s.required[coord]; ok {
		s.activate(coord, chunk)
	} else {
		chunk.SetActive(false)
		s.pool[coord] = chunk
	}
}

// drain moves up to budget queued chunks between pool and active. Entries that
// became stale since being queued are dropped without using budget.
func (s *Streamer) drain(budget int) {
	for budget > 0 {
		coord, ok := s.activations.pop()
		if !ok {
			break
		}
		chunk := s.pool[coord]
		if _, required := s.required[coord]; chunk == nil || !required {
			continue
		}
		delete(s.pool, coord)
		s.activate(coord, chunk)
		budget--
	}

	for budget > 0 {
		coord, ok := s.deactivations.pop()
		if !ok {
			break
		}
		if _, required := s.required[coord]; required || s.active[coord] == nil {
			continue
		}
		s.deactivate(coord)
		budget--
	}
}

func (s *Streamer) activate(coord terrain.ChunkCoord, chunk *generator.Chunk) {
	s.active[coord] = chunk
	s.generator.Place(chunk)
	s.stats.Activations++
	if s.OnActivate != nil {
		s.OnActivate(chunk)
	}
}

func (s *Streamer) deactivate(coord terrain.ChunkCoord) {
	chunk := s.active[coord]
	delete(s.active, coord)

	if removed := s.generator.Remove(coord); removed != nil && removed != chunk {
		s.logger.Printf("warning: chunk %s placed by someone else", coord)
	}
	chunk.SetActive(false)

	if _, ok := s.pool[coord]; ok {
		s.stats.DuplicateBuilds++
		s.logger.Printf("warning: chunk %s already pooled, discarding", coord)
		chunk.Release()
	} else {
		s.pool[coord] = chunk
	}

	s.stats.Deactivations++
	if s.OnDeactivate != nil {
		s.OnDeactivate(coord)
	}
}

// evict releases the pooled chunks farthest from every entity while the pool
// is over MaxPooledChunks.
func (s *Streamer) evict() {
	limit := s.config.MaxPooledChunks
	if limit <= 0 || len(s.pool) <= limit {
		return
	}

	coords := sortedKeys(s.pool)
	distance := func(coord terrain.ChunkCoord) int32 {
		best := int32(-1)
		for _, t := range s.entities {
			if d := coord.Chebyshev(t.coord); best < 0 || d < best {
				best = d
			}
		}
		return best
	}
	sort.SliceStable(coords, func(i, j int) bool {
		return distance(coords[i]) > distance(coords[j])
	})

	for _, coord := range coords[:len(coords)-limit] {
		s.pool[coord].Release()
		delete(s.pool, coord)
		s.stats.Evictions++
	}
}

// State returns where coord is in the lifecycle.
func (s *Streamer) State(coord terrain.ChunkCoord) State {
	if _, ok := s.loading[coord]; ok {
		return StateLoading
	}
	if _, ok := s.active[coord]; ok {
		return StateActive
	}
	if _, ok := s.pool[coord]; ok {
		return StatePooled
	}
	return StateUnrequested
}

// Chunk returns the active chunk at coord, or nil.
func (s *Streamer) Chunk(coord terrain.ChunkCoord) *generator.Chunk {
	return s.active[coord]
}

// ForActive calls fn for each active chunk in coordinate order.
func (s *Streamer) ForActive(fn func(chunk *generator.Chunk)) {
	for _, coord := range sortedKeys(s.active) {
		fn(s.active[coord])
	}
}

// Required returns the required coordinates in order.
func (s *Streamer) Required() []terrain.ChunkCoord {
	return sortedKeys(s.required)
}

// Counts returns the sizes of the active, pooled and loading sets.
func (s *Streamer) Counts() (active, pooled, loading int) {
	return len(s.active), len(s.pool), len(s.loading)
}

// Queued returns the lengths of the activation and deactivation queues.
func (s *Streamer) Queued() (activations, deactivations int) {
	return s.activations.len(), s.deactivations.len()
}

func (s *Streamer) Stats() Stats {
	return s.stats
}

// Clear releases every chunk and forgets pending work. Tracked entities are
// kept and their chunks are requested again on the next step.
func (s *Streamer) Clear() {
	for coord, chunk := range s.active {
		s.generator.Remove(coord)
		chunk.Release()
	}
	for _, chunk := range s.pool {
		chunk.Release()
	}
	s.scheduler.Clear()

	s.active = make(map[terrain.ChunkCoord]*generator.Chunk)
	s.pool = make(map[terrain.ChunkCoord]*generator.Chunk)
	s.loading = make(map[terrain.ChunkCoord]struct{})
	s.required = make(map[terrain.ChunkCoord]struct{})
	s.activations = newQueue()
	s.deactivations = newQueue()
	for _, t := range s.entities {
		t.known = false
	}
}

func sortedKeys[V any](m map[terrain.ChunkCoord]V) []terrain.ChunkCoord {
	keys := make([]terrain.ChunkCoord, 0, len(m))
	for coord := range m {
		keys = append(keys, coord)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}
