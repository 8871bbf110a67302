// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"context"
	"errors"
	"fmt"
	"github.com/SoftbearStudios/offroad/server/task"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/terrain/mesh"
	"log"
	"sync"
)

var (
	ErrCancelled   = errors.New("generation cancelled")
	ErrOutOfBounds = errors.New("chunk out of bounds")
)

// Observer is notified once after every completed batch generation.
type Observer interface {
	ChunksRegenerated()
}

// Generator builds chunks from a height field and keeps the chunks that are
// placed in the world.
type Generator struct {
	// Deformer receives DeformAt calls. Nil disables deformation.
	Deformer Deformer
	// OnProgress, if set, is called after each chunk of a batch.
	OnProgress func(built, total int)

	config  terrain.Config
	source  terrain.CurveSource
	builder mesh.Builder
	logger  *log.Logger

	mutex     sync.RWMutex
	field     *terrain.Field
	chunks    map[terrain.ChunkCoord]*Chunk
	roads     []*RoadMesh
	observers []Observer
}

// New validates config and creates a generator. source supplies path curves
// and may be nil. logger may be nil to use the standard logger.
func New(config terrain.Config, source terrain.CurveSource, logger *log.Logger) (*Generator, error) {
	if err := config.ValidateGeneration(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	g := &Generator{
		config: config,
		source: source,
		logger: logger,
		chunks: make(map[terrain.ChunkCoord]*Chunk),
	}
	if err := g.RefreshCurves(); err != nil {
		return nil, err
	}
	return g, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() *terrain.Config {
	return &g.config
}

// Field returns the current height field. It is replaced by RefreshCurves.
func (g *Generator) Field() *terrain.Field {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.field
}

// RefreshCurves repopulates the curve cache from the curve source. Chunks
// built afterwards are carved along the new curves.
func (g *Generator) RefreshCurves() error {
	cache := terrain.NewCurveCache(g.source)
	if cache.Len() == 0 && (g.config.PathValleys || g.config.Roads) {
		g.logger.Println("warning: path valleys or roads enabled without any curves")
	}

	field, err := terrain.NewField(g.config, cache)
	if err != nil {
		return err
	}

	g.mutex.Lock()
	g.field = field
	g.mutex.Unlock()
	return nil
}

// AddObserver registers o for regeneration notifications.
func (g *Generator) AddObserver(o Observer) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.observers = append(g.observers, o)
}

// RemoveObserver unregisters o.
func (g *Generator) RemoveObserver(o Observer) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for i, other := range g.observers {
		if other == o {
			g.observers = append(g.observers[:i], g.observers[i+1:]...)
			return
		}
	}
}

func (g *Generator) notifyRegenerated() {
	g.mutex.RLock()
	observers := append([]Observer(nil), g.observers...)
	g.mutex.RUnlock()

	for _, o := range observers {
		o.ChunksRegenerated()
	}
}

// BuildChunk builds the chunk at coord synchronously. It is not placed.
func (g *Generator) BuildChunk(coord terrain.ChunkCoord) (chunk *Chunk, err error) {
	task.Run(g.NewChunkTask(coord, func(c *Chunk, e error) {
		chunk, err = c, e
	}))
	return
}

// Place puts chunk in the world, making it visible and collidable. A chunk
// previously placed at the same coordinate is released.
func (g *Generator) Place(chunk *Chunk) {
	chunk.SetActive(true)

	g.mutex.Lock()
	old := g.chunks[chunk.Coord]
	g.chunks[chunk.Coord] = chunk
	g.mutex.Unlock()

	if old != nil && old != chunk {
		old.Release()
	}
}

// Remove takes the chunk at coord out of the world, hiding it, and returns it
// to the caller, who then owns it. It returns nil if there was none.
func (g *Generator) Remove(coord terrain.ChunkCoord) *Chunk {
	g.mutex.Lock()
	chunk := g.chunks[coord]
	delete(g.chunks, coord)
	g.mutex.Unlock()

	if chunk != nil {
		chunk.SetActive(false)
	}
	return chunk
}

// ClearChunk removes and releases the chunk at coord.
func (g *Generator) ClearChunk(coord terrain.ChunkCoord) {
	if chunk := g.Remove(coord); chunk != nil {
		chunk.Release()
	}
}

// ClearChunks removes and releases every placed chunk.
func (g *Generator) ClearChunks() {
	g.mutex.Lock()
	chunks := g.chunks
	g.chunks = make(map[terrain.ChunkCoord]*Chunk, len(chunks))
	g.mutex.Unlock()

	for _, chunk := range chunks {
		chunk.Release()
	}
}

// Chunk returns the placed chunk at coord, or nil.
func (g *Generator) Chunk(coord terrain.ChunkCoord) *Chunk {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.chunks[coord]
}

// ChunkCount is the number of placed chunks.
func (g *Generator) ChunkCount() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.chunks)
}

// GenerateAll builds and places every chunk of the grid, blocking until done.
// It checks ctx between chunks. If ctx is done, every chunk built by this
// call is removed again and the returned error wraps ErrCancelled.
func (g *Generator) GenerateAll(ctx context.Context) error {
	coords := g.gridCoords()
	built := make([]terrain.ChunkCoord, 0, len(coords))

	rollback := func() {
		for _, coord := range built {
			g.ClearChunk(coord)
		}
	}

	for i, coord := range coords {
		if err := ctx.Err(); err != nil {
			rollback()
			g.logger.Printf("generation cancelled after %d/%d chunks", i, len(coords))
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		chunk, err := g.BuildChunk(coord)
		if err != nil {
			rollback()
			return fmt.Errorf("chunk %s: %w", coord, err)
		}
		g.Place(chunk)
		built = append(built, coord)

		if g.OnProgress != nil {
			g.OnProgress(i+1, len(coords))
		}
	}

	g.notifyRegenerated()
	return nil
}

// NewBatchTask returns a task that builds and places one chunk of the grid
// per Step, and notifies observers after the last one.
func (g *Generator) NewBatchTask() task.Task {
	return &batchTask{
		generator: g,
		coords:    g.gridCoords(),
	}
}

type batchTask struct {
	generator *Generator
	coords    []terrain.ChunkCoord
	next      int
}

func (b *batchTask) Step() bool {
	g := b.generator
	if b.next < len(b.coords) {
		coord := b.coords[b.next]
		b.next++

		chunk, err := g.BuildChunk(coord)
		if err != nil {
			g.logger.Printf("batch chunk %s: %v", coord, err)
		} else {
			g.Place(chunk)
		}

		if g.OnProgress != nil {
			g.OnProgress(b.next, len(b.coords))
		}
		if b.next < len(b.coords) {
			return false
		}
	}

	g.notifyRegenerated()
	return true
}

// gridCoords lists every coordinate of the chunk grid row by row.
func (g *Generator) gridCoords() []terrain.ChunkCoord {
	min := g.config.MinChunk()
	coords := make([]terrain.ChunkCoord, 0, g.config.ChunksX*g.config.ChunksZ)
	for z := 0; z < g.config.ChunksZ; z++ {
		for x := 0; x < g.config.ChunksX; x++ {
			coords = append(coords, min.Add(int32(x), int32(z)))
		}
	}
	return coords
}
