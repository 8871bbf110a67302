// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package path

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
	"log"
	"sync"
	"time"
)

// CostObserver rebuilds a pathfinder's cost map whenever terrain is
// regenerated.
type CostObserver struct {
	// Async rebuilds on a new goroutine. The old map stays in use until the
	// new one is complete.
	Async bool
	// OnRebuilt, if set, is called after each rebuild.
	OnRebuilt func(m *CostMap, took time.Duration)

	pathfinder *Pathfinder
	surface    func() terrain.Surface
	bounds     world.AABB
	cellSize   float32
	costs      Costs
	logger     *log.Logger
	mutex      sync.Mutex
}

// NewCostObserver validates the pathing options of config. surface is called
// at the start of every rebuild to get the surface to sample.
func NewCostObserver(pathfinder *Pathfinder, surface func() terrain.Surface, config *terrain.Config, logger *log.Logger) (*CostObserver, error) {
	if err := config.ValidatePathing(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CostObserver{
		pathfinder: pathfinder,
		surface:    surface,
		bounds:     config.Bounds(),
		cellSize:   config.CellSize,
		costs:      CostsOf(config),
		logger:     logger,
	}, nil
}

// ChunksRegenerated implements generator.Observer.
func (o *CostObserver) ChunksRegenerated() {
	if o.Async {
		go o.Rebuild()
	} else {
		o.Rebuild()
	}
}

// Rebuild samples the surface and swaps the new map into the pathfinder.
func (o *CostObserver) Rebuild() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	start := time.Now()
	m := BuildCostMap(o.surface(), o.bounds, o.cellSize, o.costs)
	o.pathfinder.SetCostMap(m)
	took := time.Since(start)

	o.logger.Printf("cost map rebuilt: %dx%d cells, %d passable, took %s", m.Width(), m.Depth(), m.Passable(), took)
	if o.OnRebuilt != nil {
		o.OnRebuilt(m, took)
	}
}
