// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/offroad/server/terrain/noise"
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
)

// Salts of the independent noise fields derived from Config.Seed.
const (
	saltBase = iota + 1
	saltWarpX
	saltWarpZ
	saltValley
)

// Field is the height field function. It holds no mutable state after
// NewField returns, so every method is safe to call concurrently.
type Field struct {
	config Config
	remap  *RemapCurve
	curves *CurveCache

	base   *noise.Layer
	warpX  *noise.Layer
	warpZ  *noise.Layer
	valley *noise.Layer
}

// NewField creates a height field from config. curves may be nil when path
// carving is unused.
func NewField(config Config, curves *CurveCache) (*Field, error) {
	remap, err := NewRemapCurve(config.HeightCurve)
	if err != nil {
		return nil, &ConfigError{Field: "heightCurve", Reason: err.Error()}
	}

	return &Field{
		config: config,
		remap:  remap,
		curves: curves,
		base:   noise.NewLayer(noise.SubSeed(config.Seed, saltBase)),
		warpX:  noise.NewLayer(noise.SubSeed(config.Seed, saltWarpX)),
		warpZ:  noise.NewLayer(noise.SubSeed(config.Seed, saltWarpZ)),
		valley: noise.NewLayer(noise.SubSeed(config.Seed, saltValley)),
	}, nil
}

// Config returns the configuration the field was built with.
func (f *Field) Config() *Config {
	return &f.config
}

// Curves returns the curve cache used for path carving.
func (f *Field) Curves() *CurveCache {
	return f.curves
}

// warp perturbs (x, z) by low frequency noise, before any other sampling.
func (f *Field) warp(x, z float32) (float64, float64) {
	if !f.config.DomainWarp {
		return float64(x), float64(z)
	}
	scale := float64(f.config.WarpScale)
	wx := (float64(x) + float64(f.config.WarpOffsetX)) / scale
	wz := (float64(z) + float64(f.config.WarpOffsetZ)) / scale
	dx := (f.warpX.Sample(wx, wz)*2 - 1) * f.config.WarpStrength
	dz := (f.warpZ.Sample(wx, wz)*2 - 1) * f.config.WarpStrength
	return float64(x + dx), float64(z + dz)
}

// BaseHeight is the height before path carving and before clamping.
func (f *Field) BaseHeight(x, z float32) float32 {
	c := &f.config
	sx, sz := f.warp(x, z)

	scale := float64(c.NoiseScale)
	n := f.base.Fractal(
		(sx+float64(c.OffsetX))/scale,
		(sz+float64(c.OffsetZ))/scale,
		c.Octaves,
		float64(c.Persistence),
		float64(c.Lacunarity),
	)
	height := f.remap.Evaluate(n) * c.MaxHeight

	if c.Valleys {
		vScale := float64(c.ValleyScale)
		v := f.valley.Sample((sx+float64(c.ValleyOffsetX))/vScale, (sz+float64(c.ValleyOffsetZ))/vScale)
		ridge := 1 - math32.Abs(2*v-1)
		height -= math32.Pow(ridge, c.ValleyWidthExponent) * c.ValleyDepth
	}
	return height
}

// CarveFactor is the path carve factor at (x, z) from the nearest cached
// curve, in [0, 1].
func (f *Field) CarveFactor(x, z float32) float32 {
	c := &f.config
	if !c.PathValleys || f.curves.Len() == 0 {
		return 0
	}
	halfWidth := c.PathValleyWidth * 0.5
	d := f.curves.NearestDistance(world.Vec2f{X: x, Z: z}, halfWidth+c.PathValleyFalloff)
	return CarveFactor(d, halfWidth, c.PathValleyFalloff)
}

// Height is the final, non-negative height at (x, z).
func (f *Field) Height(x, z float32) float32 {
	return Carve(f.BaseHeight(x, z), f.CarveFactor(x, z), f.config.PathValleyDepth)
}

// HeightAt implements Ground. The field is defined everywhere.
func (f *Field) HeightAt(x, z float32) (float32, bool) {
	return f.Height(x, z), true
}

// CarveFactor is 1 within halfWidth of a curve, then falls to 0 by a
// smoothstep across falloff.
func CarveFactor(distance, halfWidth, falloff float32) float32 {
	if distance <= halfWidth {
		return 1
	}
	if falloff <= 0 {
		return 0
	}
	return 1 - world.Smoothstep(halfWidth, halfWidth+falloff, distance)
}

// Carve subtracts factor*depth from base and clamps at 0. Both the field and
// the mesh builder use it so their heights are bit-identical.
func Carve(base, factor, depth float32) float32 {
	height := base - float32(factor*depth)
	if height < 0 {
		return 0
	}
	return height
}
