// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"github.com/SoftbearStudios/offroad/server/world"
	"math"
	"strconv"
	"sync"
)

// ChunkCoord identifies one square chunk of the terrain grid.
type ChunkCoord struct {
	X int32 `json:"x"`
	Z int32 `json:"z"`
}

// ChunkCoordOf returns the chunk containing pos for chunks of size world units.
func ChunkCoordOf(pos world.Vec2f, size float32) ChunkCoord {
	return ChunkCoord{
		X: int32(math.Floor(float64(pos.X / size))),
		Z: int32(math.Floor(float64(pos.Z / size))),
	}
}

func (c ChunkCoord) Add(dx, dz int32) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// Chebyshev is the chessboard distance between two chunks.
func (c ChunkCoord) Chebyshev(other ChunkCoord) int32 {
	dx := world.AbsInt32(c.X - other.X)
	dz := world.AbsInt32(c.Z - other.Z)
	if dx > dz {
		return dx
	}
	return dz
}

// Origin is the world position of the chunk's minimum corner.
func (c ChunkCoord) Origin(size float32) world.Vec2f {
	return world.Vec2f{X: float32(c.X) * size, Z: float32(c.Z) * size}
}

// Bounds is the world space rectangle covered by the chunk.
func (c ChunkCoord) Bounds(size float32) world.AABB {
	return world.AABB{Vec2f: c.Origin(size), Width: size, Depth: size}
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}

// AppendText appends "x,z", used as a compact map key.
func (c ChunkCoord) AppendText(buf []byte) []byte {
	buf = appendInt(buf, c.X)
	buf = append(buf, ',')
	return appendInt(buf, c.Z)
}

func appendInt(buf []byte, i int32) []byte {
	return strconv.AppendInt(buf, int64(i), 10)
}

// Less orders coordinates row by row.
func (c ChunkCoord) Less(other ChunkCoord) bool {
	if c.Z != other.Z {
		return c.Z < other.Z
	}
	return c.X < other.X
}

// Ground answers vertical height queries against generated terrain.
// ok is false when nothing is under the point.
type Ground interface {
	HeightAt(x, z float32) (height float32, ok bool)
}

// Hit is the result of a vertical query against the built surface.
type Hit struct {
	Height float32
	Class  SurfaceClass
}

// Surface answers vertical queries with a surface classification.
// It returns the highest relevant hit under (x, z).
type Surface interface {
	Raycast(x, z float32) (hit Hit, ok bool)
}

// CurveSource supplies the path curves at cache population time.
type CurveSource interface {
	Curves() []Curve
}

// Data describes part of a heightmap.
// It may be in a compressed format.
type Data struct {
	world.AABB
	Data   []byte  `json:"data"`   // Data is a possibly compressed terrain heightmap.
	Stride int     `json:"stride"` // Stride is width of Data.
	Length int     `json:"length"` // Length is uncompressed length of Data for faster reading.
	Scale  float32 `json:"scale"`  // Scale converts a heightmap byte to world units.
}

var dataPool = sync.Pool{
	New: func() interface{} {
		return &Data{
			Data: make([]byte, 0, 2048),
		}
	},
}

func NewData() *Data {
	return dataPool.Get().(*Data)
}

func (data *Data) Pool() {
	*data = Data{
		Data: data.Data[:0],
	}
	dataPool.Put(data)
}
