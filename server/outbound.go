// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
	"sync"
)

type (
	// ChunkData is the compressed heightmap of an active chunk. Data is shared
	// between clients and must not be modified or pooled.
	ChunkData struct {
		Coord terrain.ChunkCoord
		Data  *terrain.Data
	}

	// ChunkUpdate lists the chunks that entered the world or changed, and
	// then the ones that left it, since the last update. It is dependant on a
	// special marshaller to marshal Activated as a map keyed by chunk
	// coordinate.
	ChunkUpdate struct {
		Activated   []ChunkData          `json:"activated,omitempty"`
		Deactivated []terrain.ChunkCoord `json:"deactivated,omitempty"`
	}

	// PathResult answers FindPath. Path is empty if there is no route.
	PathResult struct {
		Path []world.Vec3f `json:"path"`
	}

	// Status summarizes the state of the hub's world.
	Status struct {
		Active   int `json:"active"`
		Pooled   int `json:"pooled"`
		Loading  int `json:"loading"`
		Tracked  int `json:"tracked"`
		Clients  int `json:"clients"`
		Agents   int `json:"agents"`
		Passable int `json:"passable"`
	}
)

func init() {
	registerOutbound(
		&ChunkUpdate{},
		PathResult{},
		Status{},
	)
}

const poolChunksCap = 16

var chunkUpdatePool = sync.Pool{
	New: func() interface{} {
		return &ChunkUpdate{
			Activated: make([]ChunkData, 0, poolChunksCap),
		}
	},
}

func NewChunkUpdate() *ChunkUpdate {
	return chunkUpdatePool.Get().(*ChunkUpdate)
}

// Empty reports whether there is nothing to send.
func (update *ChunkUpdate) Empty() bool {
	return len(update.Activated) == 0 && len(update.Deactivated) == 0
}

// Pool Uses pointers for reuse in pool
func (update *ChunkUpdate) Pool() {
	// Chunk data is shared so only the references are cleared.
	for i := range update.Activated {
		update.Activated[i] = ChunkData{}
	}
	*update = ChunkUpdate{
		Activated:   update.Activated[:0],
		Deactivated: update.Deactivated[:0],
	}
	chunkUpdatePool.Put(update)
}

func (result PathResult) Pool() {}

func (status Status) Pool() {}
