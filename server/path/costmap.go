// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package path

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
)

// Impassable is the cost of a cell that cannot be entered. Any sum involving
// it stays Impassable.
var Impassable = math32.Inf(1)

// CostMap is a grid of traversal costs. It is not modified after being built,
// so it may be shared between goroutines.
type CostMap struct {
	origin   world.Vec2f
	cellSize float32
	width    int
	depth    int
	costs    []float32
	heights  []float32
	min      float32 // cheapest cost, for the A* heuristic
}

// NewCostMap creates a map of width by depth cells, every one Impassable.
func NewCostMap(origin world.Vec2f, cellSize float32, width, depth int) *CostMap {
	m := &CostMap{
		origin:   origin,
		cellSize: cellSize,
		width:    width,
		depth:    depth,
		costs:    make([]float32, width*depth),
		heights:  make([]float32, width*depth),
		min:      Impassable,
	}
	for i := range m.costs {
		m.costs[i] = Impassable
	}
	return m
}

// Costs are the traversal cost of each surface class.
type Costs struct {
	CenterStrip   float32
	Road          float32
	Terrain       float32
	HeightPenalty float32
}

// CostsOf returns the costs configured in config.
func CostsOf(config *terrain.Config) Costs {
	return Costs{
		CenterStrip:   config.CenterStripCost,
		Road:          config.RoadCost,
		Terrain:       config.TerrainCost,
		HeightPenalty: config.HeightPenalty,
	}
}

// Of is the cost of entering a cell with hit under its center.
func (costs Costs) Of(hit terrain.Hit, ok bool) float32 {
	if !ok {
		return Impassable
	}
	switch hit.Class {
	case terrain.SurfaceRoadCenter:
		return costs.CenterStrip
	case terrain.SurfaceRoad:
		return costs.Road
	case terrain.SurfaceTerrain:
		return costs.Terrain + math32.Max(hit.Height, 0)*costs.HeightPenalty
	default:
		return Impassable
	}
}

// BuildCostMap samples surface at the center of every cellSize cell of
// bounds.
func BuildCostMap(surface terrain.Surface, bounds world.AABB, cellSize float32, costs Costs) *CostMap {
	width := int(math32.Ceil(bounds.Width / cellSize))
	depth := int(math32.Ceil(bounds.Depth / cellSize))
	m := NewCostMap(bounds.Vec2f, cellSize, width, depth)

	for z := 0; z < depth; z++ {
		for x := 0; x < width; x++ {
			center := m.Center(x, z)
			hit, ok := surface.Raycast(center.X, center.Z)
			m.Set(x, z, costs.Of(hit, ok), hit.Height)
		}
	}
	return m
}

// Set sets the cost and height of a cell. It is only for use while building.
func (m *CostMap) Set(x, z int, cost, height float32) {
	i := m.index(x, z)
	m.costs[i] = cost
	m.heights[i] = height
	if cost < m.min {
		m.min = cost
	}
}

func (m *CostMap) index(x, z int) int {
	return x + z*m.width
}

// Width is the number of cells along X.
func (m *CostMap) Width() int {
	return m.width
}

// Depth is the number of cells along Z.
func (m *CostMap) Depth() int {
	return m.depth
}

func (m *CostMap) CellSize() float32 {
	return m.cellSize
}

// InBounds reports whether (x, z) is a cell of the map.
func (m *CostMap) InBounds(x, z int) bool {
	return x >= 0 && z >= 0 && x < m.width && z < m.depth
}

// Cost returns the cost of entering cell (x, z), Impassable if out of bounds.
func (m *CostMap) Cost(x, z int) float32 {
	if !m.InBounds(x, z) {
		return Impassable
	}
	return m.costs[m.index(x, z)]
}

// Height returns the surface height sampled for cell (x, z).
func (m *CostMap) Height(x, z int) float32 {
	if !m.InBounds(x, z) {
		return 0
	}
	return m.heights[m.index(x, z)]
}

// Cell returns the cell containing pos. ok is false if pos is outside of the
// map. Positions on the far edges belong to the last cells.
func (m *CostMap) Cell(pos world.Vec2f) (x, z int, ok bool) {
	u := (pos.X - m.origin.X) / m.cellSize
	v := (pos.Z - m.origin.Z) / m.cellSize
	if !(u >= 0 && v >= 0 && u <= float32(m.width) && v <= float32(m.depth)) {
		return 0, 0, false
	}
	x, z = clampInt(int(u), m.width-1), clampInt(int(v), m.depth-1)
	return x, z, m.InBounds(x, z)
}

// Center is the world position of the center of cell (x, z).
func (m *CostMap) Center(x, z int) world.Vec2f {
	return world.Vec2f{
		X: m.origin.X + (float32(x)+0.5)*m.cellSize,
		Z: m.origin.Z + (float32(z)+0.5)*m.cellSize,
	}
}

// Passable is the number of cells that are not Impassable.
func (m *CostMap) Passable() int {
	n := 0
	for _, cost := range m.costs {
		if cost != Impassable {
			n++
		}
	}
	return n
}

// minCost never exceeds the cheapest cell, so the A* heuristic stays
// admissible even if Set raised a cell after lowering it.
func (m *CostMap) minCost() float32 {
	return m.min
}

func clampInt(i, maximum int) int {
	if i > maximum {
		return maximum
	}
	return i
}
