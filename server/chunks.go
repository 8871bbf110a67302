// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"github.com/SoftbearStudios/offroad/server/cloud/db"
	"github.com/SoftbearStudios/offroad/server/path"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/terrain/compressed"
	"github.com/SoftbearStudios/offroad/server/terrain/generator"
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
	"image/png"
	"time"
)

const (
	// craterDepth is the depth of a crater relative to its radius.
	craterDepth = 0.5
	// snapshotWidth is the width in pixels of uploaded terrain snapshots.
	snapshotWidth = 512
)

func (h *Hub) chunkActivated(chunk *generator.Chunk) {
	data := h.encodeChunk(chunk)
	h.chunkData[chunk.Coord] = data
	h.activated = append(h.activated, ChunkData{Coord: chunk.Coord, Data: data})
}

func (h *Hub) chunkDeactivated(coord terrain.ChunkCoord) {
	delete(h.chunkData, coord)
	h.deactivated = append(h.deactivated, coord)
}

func (h *Hub) encodeChunk(chunk *generator.Chunk) *terrain.Data {
	m := chunk.Mesh
	h.heights = m.Heights(h.heights[:0])
	return compressed.Encode(m.Bounds(), h.heights, m.Stride(), h.config.MaxHeight)
}

// appendActiveChunks appends the data of every active chunk to buf.
func (h *Hub) appendActiveChunks(buf []ChunkData) []ChunkData {
	h.streamer.ForActive(func(chunk *generator.Chunk) {
		if data, ok := h.chunkData[chunk.Coord]; ok {
			buf = append(buf, ChunkData{Coord: chunk.Coord, Data: data})
		}
	})
	return buf
}

// deform presses a crater into the active chunks around point and queues the
// changed chunks to be sent again. It returns how many vertices moved.
func (h *Hub) deform(point world.Vec3f, radius float32) int {
	count := h.generator.DeformAt(point, radius)
	if count == 0 {
		return 0
	}

	size := h.config.SizePerChunk
	margin := world.Vec2f{X: radius, Z: radius}
	low := terrain.ChunkCoordOf(point.Planar().Sub(margin), size)
	high := terrain.ChunkCoordOf(point.Planar().Add(margin), size)
	for z := low.Z; z <= high.Z; z++ {
		for x := low.X; x <= high.X; x++ {
			if chunk := h.streamer.Chunk(terrain.ChunkCoord{X: x, Z: z}); chunk != nil {
				h.chunkActivated(chunk)
			}
		}
	}
	return count
}

// craterDeformer lowers vertices by up to radius*craterDepth at point,
// falling off quadratically to nothing at radius. Heights stay non-negative.
func craterDeformer(positions []world.Vec3f, indices []int, point world.Vec3f, radius float32) {
	center := point.Planar()
	for _, i := range indices {
		d := positions[i].Planar().Distance(center) / radius
		depth := radius * craterDepth * (1 - d*d)
		positions[i].Y = math32.Max(0, positions[i].Y-math32.Max(depth, 0))
	}
}

// costMapRebuilt runs on the cost observer's goroutine, so it only touches
// what is safe to share.
func (h *Hub) costMapRebuilt(m *path.CostMap, took time.Duration) {
	if h.cloud == nil {
		return
	}

	run := db.NewRun(h.cloud.Region(), h.config.Seed)
	run.Chunks = h.config.ChunksX * h.config.ChunksZ
	run.Curves = h.generator.Field().Curves().Len()
	run.Cells = m.Width() * m.Depth()
	run.Passable = m.Passable()
	run.Millis = took.Milliseconds()
	if err := h.cloud.RecordRun(run); err != nil {
		h.logger.Println("error recording run:", err)
	}

	h.SnapshotTerrain()
}

// SnapshotTerrain uploads a render of the terrain.
func (h *Hub) SnapshotTerrain() {
	if h.cloud == nil {
		return
	}

	img := terrain.Render(h.generator.Snapshot(), h.config.Bounds(), snapshotWidth, h.config.MaxHeight)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		h.logger.Println("error encoding snapshot:", err)
		return
	}
	if err := h.cloud.UploadTerrainSnapshot(buf.Bytes()); err != nil {
		h.logger.Println("error uploading snapshot:", err)
	}
}
