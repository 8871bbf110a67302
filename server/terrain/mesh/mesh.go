// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package mesh

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
	"sync"
)

// UV is a texture coordinate in [0, 1].
type UV struct {
	U float32 `json:"u"`
	V float32 `json:"v"`
}

// Mesh is the vertex grid of one chunk. Positions are row-major, (R+1) per
// row, rows going +Z.
type Mesh struct {
	Coord      terrain.ChunkCoord
	Resolution int
	Size       float32
	Positions  []world.Vec3f
	UVs        []UV
	Indices    []uint32 // Shared between meshes of the same resolution, read only.
	MinHeight  float32
	MaxHeight  float32
}

// Stride is the number of vertices per row.
func (m *Mesh) Stride() int {
	return m.Resolution + 1
}

// Bounds is the planar rectangle covered by the mesh.
func (m *Mesh) Bounds() world.AABB {
	return m.Coord.Bounds(m.Size)
}

// TriangleCount is R*R*2.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Heights appends the height of every vertex to buf.
func (m *Mesh) Heights(buf []float32) []float32 {
	for i := range m.Positions {
		buf = append(buf, m.Positions[i].Y)
	}
	return buf
}

// HeightAt bi-linearly interpolates the vertex grid. ok is false outside of
// the mesh's bounds.
func (m *Mesh) HeightAt(x, z float32) (height float32, ok bool) {
	bounds := m.Bounds()
	if x < bounds.X || z < bounds.Z || x > bounds.X+bounds.Width || z > bounds.Z+bounds.Depth {
		return 0, false
	}

	step := m.Size / float32(m.Resolution)
	u := (x - bounds.X) / step
	v := (z - bounds.Z) / step

	i := int(u)
	j := int(v)
	if i >= m.Resolution {
		i = m.Resolution - 1
	}
	if j >= m.Resolution {
		j = m.Resolution - 1
	}

	stride := m.Stride()
	c00 := m.Positions[i+j*stride].Y
	c10 := m.Positions[i+1+j*stride].Y
	c01 := m.Positions[i+(j+1)*stride].Y
	c11 := m.Positions[i+1+(j+1)*stride].Y

	tx := u - float32(i)
	tz := v - float32(j)
	return world.Lerp(world.Lerp(c00, c10, tx), world.Lerp(c01, c11, tx), tz), true
}

// VertexIndex returns the index of the vertex nearest to (x, z), clamped to
// the grid.
func (m *Mesh) VertexIndex(x, z float32) int {
	bounds := m.Bounds()
	step := m.Size / float32(m.Resolution)
	i := clampInt(int((x-bounds.X)/step+0.5), 0, m.Resolution)
	j := clampInt(int((z-bounds.Z)/step+0.5), 0, m.Resolution)
	return i + j*m.Stride()
}

// Grid locates the vertices of one chunk.
type Grid struct {
	Origin world.Vec2f
	Step   float32
	Stride int
}

func NewGrid(coord terrain.ChunkCoord, resolution int, size float32) Grid {
	return Grid{
		Origin: coord.Origin(size),
		Step:   size / float32(resolution),
		Stride: resolution + 1,
	}
}

// Len is the number of vertices.
func (g Grid) Len() int {
	return g.Stride * g.Stride
}

// At is the world position of column i of row j. The products are rounded
// before adding so every caller gets bit-identical positions.
func (g Grid) At(i, j int) (x, z float32) {
	return g.Origin.X + float32(float32(i)*g.Step), g.Origin.Z + float32(float32(j)*g.Step)
}

// Vertex is the world position of a vertex index.
func (g Grid) Vertex(index int) (x, z float32) {
	return g.At(index%g.Stride, index/g.Stride)
}

// Release returns the mesh's buffers for reuse. The mesh must not be used
// afterwards.
func (m *Mesh) Release() {
	if m.Positions != nil {
		positionsPool.Put(m.Positions[:0])
	}
	if m.UVs != nil {
		uvsPool.Put(m.UVs[:0])
	}
	*m = Mesh{}
}

var (
	positionsPool sync.Pool
	uvsPool       sync.Pool
	indicesCache  sync.Map // resolution -> []uint32
)

func allocPositions(n int) []world.Vec3f {
	if buf, ok := positionsPool.Get().([]world.Vec3f); ok && cap(buf) >= n {
		return buf[:n]
	}
	return make([]world.Vec3f, n)
}

func allocUVs(n int) []UV {
	if buf, ok := uvsPool.Get().([]UV); ok && cap(buf) >= n {
		return buf[:n]
	}
	return make([]UV, n)
}

// Indices returns the triangle list of a grid of resolution quads per edge,
// two counter-clockwise (seen from above) triangles per quad.
func Indices(resolution int) []uint32 {
	if cached, ok := indicesCache.Load(resolution); ok {
		return cached.([]uint32)
	}

	stride := uint32(resolution + 1)
	indices := make([]uint32, 0, resolution*resolution*6)
	for j := uint32(0); j < uint32(resolution); j++ {
		for i := uint32(0); i < uint32(resolution); i++ {
			a := i + j*stride
			b := a + 1
			c := a + stride
			d := c + 1
			indices = append(indices, a, c, b, b, c, d)
		}
	}

	cached, _ := indicesCache.LoadOrStore(resolution, indices)
	return cached.([]uint32)
}

func clampInt(i, minimum, maximum int) int {
	if i < minimum {
		return minimum
	}
	if i > maximum {
		return maximum
	}
	return i
}
