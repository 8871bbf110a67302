// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package path finds ground routes over a grid of traversal costs.
package path

import (
	"container/heap"
	"github.com/SoftbearStudios/offroad/server/world"
	"log"
	"sync/atomic"
)

// Pathfinder runs A* over the current CostMap. The map can be replaced at any
// time from any goroutine, and each Find uses the map current when it starts.
type Pathfinder struct {
	costs              atomic.Pointer[CostMap]
	minDistanceSquared float32
	logger             *log.Logger
}

// New creates a pathfinder without a cost map. Simplified paths keep points
// at least minPointDistance apart. logger may be nil to use the standard
// logger.
func New(minPointDistance float32, logger *log.Logger) *Pathfinder {
	if logger == nil {
		logger = log.Default()
	}
	return &Pathfinder{
		minDistanceSquared: minPointDistance * minPointDistance,
		logger:             logger,
	}
}

// SetCostMap atomically replaces the cost map.
func (p *Pathfinder) SetCostMap(m *CostMap) {
	p.costs.Store(m)
}

// CostMap returns the current cost map, or nil.
func (p *Pathfinder) CostMap() *CostMap {
	return p.costs.Load()
}

// Find returns a simplified path from start to end, or nil if there is none.
// The first point is start itself and the rest are cell centers. Entering a
// cell costs that cell's cost, so the start cell is never charged.
func (p *Pathfinder) Find(start, end world.Vec3f) []world.Vec3f {
	m := p.costs.Load()
	if m == nil {
		return nil
	}

	sx, sz, ok := m.Cell(start.Planar())
	if !ok || m.Cost(sx, sz) == Impassable {
		return nil
	}
	ex, ez, ok := m.Cell(end.Planar())
	if !ok || m.Cost(ex, ez) == Impassable {
		return nil
	}

	path, _ := p.search(m, m.index(sx, sz), m.index(ex, ez), start)
	return Simplify(path, p.minDistanceSquared)
}

var neighbors = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// search is A* with a Manhattan heuristic scaled by the cheapest cell, so it
// never overestimates. It also returns the total cost of the path.
func (p *Pathfinder) search(m *CostMap, startCell, goalCell int, start world.Vec3f) ([]world.Vec3f, float32) {
	n := m.width * m.depth
	g := make([]float32, n)
	came := make([]int32, n)
	closed := make([]bool, n)
	for i := range g {
		g[i] = Impassable
		came[i] = -1
	}

	minCost := m.minCost()
	gx, gz := goalCell%m.width, goalCell/m.width
	heuristic := func(cell int) float32 {
		dx := cell%m.width - gx
		dz := cell/m.width - gz
		if dx < 0 {
			dx = -dx
		}
		if dz < 0 {
			dz = -dz
		}
		return float32(dx+dz) * minCost
	}

	var seq uint32
	frontier := open{{cell: int32(startCell), priority: heuristic(startCell)}}
	g[startCell] = 0
	found := false

	for frontier.Len() > 0 {
		current := int(heap.Pop(&frontier).(openNode).cell)
		if closed[current] {
			continue
		}
		closed[current] = true
		if current == goalCell {
			found = true
			break
		}

		cx, cz := current%m.width, current/m.width
		for _, offset := range neighbors {
			nx, nz := cx+offset[0], cz+offset[1]
			if !m.InBounds(nx, nz) {
				continue
			}
			next := m.index(nx, nz)
			cost := m.costs[next]
			if cost == Impassable || closed[next] {
				continue
			}

			if tentative := g[current] + cost; tentative < g[next] {
				g[next] = tentative
				came[next] = int32(current)
				seq++
				heap.Push(&frontier, openNode{cell: int32(next), priority: tentative + heuristic(next), seq: seq})
			}
		}
	}

	if !found {
		return nil, Impassable
	}
	return p.reconstruct(m, came, startCell, goalCell, start), g[goalCell]
}

// reconstruct walks from goal back to start. If the chain is broken, the
// part found so far is returned.
func (p *Pathfinder) reconstruct(m *CostMap, came []int32, startCell, goalCell int, start world.Vec3f) []world.Vec3f {
	var path []world.Vec3f
	for cell := goalCell; cell != startCell; {
		x, z := cell%m.width, cell/m.width
		path = append(path, m.Center(x, z).Vec3f(m.Height(x, z)))

		prev := came[cell]
		if prev < 0 || len(path) > len(came) {
			p.logger.Printf("warning: path chain broken at cell (%d, %d)", x, z)
			reverse(path)
			return path
		}
		cell = int(prev)
	}

	path = append(path, start)
	reverse(path)
	return path
}

func reverse(path []world.Vec3f) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}

// Simplify drops every point closer than sqrt(minDistanceSquared) to the
// last kept point, always keeping the first and last points.
func Simplify(path []world.Vec3f, minDistanceSquared float32) []world.Vec3f {
	if len(path) <= 2 {
		return path
	}

	simplified := make([]world.Vec3f, 1, len(path))
	simplified[0] = path[0]
	last := path[0]
	for _, point := range path[1 : len(path)-1] {
		if point.DistanceSquared(last) >= minDistanceSquared {
			simplified = append(simplified, point)
			last = point
		}
	}
	return append(simplified, path[len(path)-1])
}
