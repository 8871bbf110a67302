// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"fmt"
	"github.com/SoftbearStudios/offroad/server/task"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/terrain/mesh"
)

type buildStage uint8

const (
	stageCarve buildStage = iota
	stageHeights
	stageDone
)

// chunkTask builds one chunk in steps: the carve factors a bounded number of
// vertices per step, then every height in one parallel step.
type chunkTask struct {
	generator *Generator
	field     *terrain.Field
	coord     terrain.ChunkCoord
	done      func(*Chunk, error)

	stage buildStage
	grid  mesh.Grid
	carve []float32
	next  int
}

// NewChunkTask returns a task that builds the chunk at coord and then calls
// done exactly once with the result. The chunk is not placed. The task uses
// the height field current at the time of the call.
func (g *Generator) NewChunkTask(coord terrain.ChunkCoord, done func(*Chunk, error)) task.Task {
	t := &chunkTask{
		generator: g,
		field:     g.Field(),
		coord:     coord,
		done:      done,
	}

	if !g.config.InBounds(coord) {
		return task.Func(func() bool {
			done(nil, fmt.Errorf("%w: %s", ErrOutOfBounds, coord))
			return true
		})
	}

	config := &g.config
	t.grid = mesh.NewGrid(coord, config.ResolutionPerChunk, config.SizePerChunk)
	if config.PathValleys && t.field.Curves().Len() > 0 {
		t.carve = make([]float32, config.VerticesPerChunk())
	} else {
		t.stage = stageHeights
	}
	return t
}

func (t *chunkTask) Step() bool {
	switch t.stage {
	case stageCarve:
		end := t.next + t.generator.config.CarveStepVertices
		if end > len(t.carve) {
			end = len(t.carve)
		}
		for ; t.next < end; t.next++ {
			x, z := t.grid.Vertex(t.next)
			t.carve[t.next] = t.field.CarveFactor(x, z)
		}
		if t.next == len(t.carve) {
			t.stage = stageHeights
		}
		return false
	case stageHeights:
		t.stage = stageDone
		config := &t.generator.config
		m, err := t.generator.builder.Build(
			t.coord,
			config.ResolutionPerChunk,
			config.SizePerChunk,
			t.field.BaseHeight,
			t.carve,
			config.PathValleyDepth,
		)
		if err != nil {
			t.done(nil, err)
		} else {
			t.done(newChunk(m), nil)
		}
		return true
	default:
		return true
	}
}
