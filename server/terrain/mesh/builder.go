// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package mesh

import (
	"errors"
	"fmt"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	ErrInvalidResolution = errors.New("resolution must be positive")
	ErrInvalidSize       = errors.New("chunk size must be positive")
	ErrCarveLength       = errors.New("one carve factor per vertex is required")
)

// HeightFunc returns the uncarved height at a world position. It is called
// from multiple goroutines at once.
type HeightFunc func(x, z float32) float32

// Builder turns a height function into chunk meshes.
type Builder struct {
	// Workers is the number of goroutines evaluating heights, at most
	// runtime.NumCPU() when zero.
	Workers int
}

// Build evaluates the (R+1)^2 vertices of the chunk at coord in parallel and
// returns once all of them are done. carve holds the path carve factor of each
// vertex (nil for none), and each vertex is terrain.Carve(heights(x, z),
// carve[i], depth).
func (builder *Builder) Build(coord terrain.ChunkCoord, resolution int, size float32, heights HeightFunc, carve []float32, depth float32) (*Mesh, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResolution, resolution)
	}
	if !(size > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}

	grid := NewGrid(coord, resolution, size)
	stride := grid.Stride
	n := grid.Len()
	if carve != nil && len(carve) != n {
		return nil, fmt.Errorf("%w: expected %d got %d", ErrCarveLength, n, len(carve))
	}

	m := &Mesh{
		Coord:      coord,
		Resolution: resolution,
		Size:       size,
		Positions:  allocPositions(n),
		UVs:        allocUVs(n),
	}

	row := func(j int) {
		for i := 0; i < stride; i++ {
			index := i + j*stride
			x, z := grid.At(i, j)

			var factor float32
			if carve != nil {
				factor = carve[index]
			}

			m.Positions[index] = world.Vec3f{X: x, Y: terrain.Carve(heights(x, z), factor, depth), Z: z}
			m.UVs[index] = UV{U: float32(i) / float32(resolution), V: float32(j) / float32(resolution)}
		}
	}

	workers := builder.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > stride {
		workers = stride
	}

	if workers <= 1 {
		for j := 0; j < stride; j++ {
			row(j)
		}
	} else {
		var next int64
		var wg sync.WaitGroup
		wg.Add(workers)

		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for {
					j := int(atomic.AddInt64(&next, 1) - 1)
					if j >= stride {
						return
					}
					row(j)
				}
			}()
		}

		// Join before assembly.
		wg.Wait()
	}

	m.MinHeight = math32.Inf(1)
	m.MaxHeight = math32.Inf(-1)
	for i := range m.Positions {
		y := m.Positions[i].Y
		if y < m.MinHeight {
			m.MinHeight = y
		}
		if y > m.MaxHeight {
			m.MaxHeight = y
		}
	}
	m.Indices = Indices(resolution)

	return m, nil
}
