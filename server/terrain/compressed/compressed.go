// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import (
	"errors"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
)

var ErrCorrupt = errors.New("compressed terrain data is corrupt")

// Encode quantizes a row-major grid of heights to 4 bits per sample and run
// length encodes it. stride is the width of the grid. Heights are relative to
// maxHeight, anything above is saturated.
func Encode(bounds world.AABB, heights []float32, stride int, maxHeight float32) *terrain.Data {
	data := terrain.NewData()
	buffer := Buffer{
		runs: data.Data,
	}
	buffer.Grow(len(heights))

	var scale float32
	if maxHeight > 0 {
		scale = maxHeight / 255
	}

	for _, h := range heights {
		var b byte
		if scale > 0 {
			b = clampToByte(h / scale)
		}
		_ = buffer.WriteByte(b)
	}

	data.AABB = bounds
	data.Data = buffer.Buffer()
	data.Stride = stride
	data.Length = len(heights)
	data.Scale = scale
	return data
}

// Decode returns the quantized bytes of data. data is not modified. It is
// the reference for clients decoding ChunkUpdate heightmaps.
func Decode(data *terrain.Data) ([]byte, error) {
	if data.Length == 0 {
		return nil, nil
	}
	if data.Stride <= 0 || data.Length%data.Stride != 0 {
		return nil, ErrCorrupt
	}

	// Reading consumes run counts in place.
	var buffer Buffer
	buffer.Reset(append([]byte(nil), data.Data...))

	raw := make([]byte, data.Length)
	n, _ := buffer.Read(raw)
	if n != data.Length || len(buffer.Buffer()) != 0 {
		return nil, ErrCorrupt
	}
	return raw, nil
}

// Sample bi-linearly interpolates decoded bytes at a world position, in world
// units, the way clients sample a received chunk. Positions outside of
// data's bounds are clamped to its edges.
func Sample(data *terrain.Data, raw []byte, pos world.Vec2f) float32 {
	if data.Stride <= 0 || len(raw) == 0 {
		return 0
	}
	rows := len(raw) / data.Stride

	u, v := float32(0), float32(0)
	if data.Stride > 1 && data.Width > 0 {
		u = world.Clamp01((pos.X-data.X)/data.Width) * float32(data.Stride-1)
	}
	if rows > 1 && data.Depth > 0 {
		v = world.Clamp01((pos.Z-data.Z)/data.Depth) * float32(rows-1)
	}

	x0, z0 := int(u), int(v)
	x1, z1 := minInt(x0+1, data.Stride-1), minInt(z0+1, rows-1)

	b := blerp(
		raw[x0+z0*data.Stride],
		raw[x1+z0*data.Stride],
		raw[x0+z1*data.Stride],
		raw[x1+z1*data.Stride],
		u-float32(x0),
		v-float32(z0),
	)
	return float32(b) * data.Scale
}
