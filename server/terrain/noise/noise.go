// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"github.com/aquilax/go-perlin"
)

const (
	// A single go-perlin octave, the fractal sum is done by Fractal so
	// each octave can be normalized and offset independently.
	layerAlpha  = 2.0
	layerBeta   = 2.0
	layerOctave = 1

	// octaveShift decorrelates octaves that would otherwise share lattice
	// points at the origin.
	octaveShift = 17.31
)

// Layer is one seeded 2D gradient noise field.
// Sample is read-only and safe to call concurrently.
type Layer struct {
	perlin *perlin.Perlin
}

// NewLayer creates a new Layer with a seed.
func NewLayer(seed int64) *Layer {
	return &Layer{
		perlin: perlin.NewPerlin(layerAlpha, layerBeta, layerOctave, seed),
	}
}

// Sample returns noise in [0, 1] at (x, z).
func (l *Layer) Sample(x, z float64) float32 {
	return clamp01(float32(l.perlin.Noise2D(x, z)*0.5 + 0.5))
}

// Fractal sums octaves layers of l, multiplying frequency by lacunarity and
// amplitude by persistence each octave. The result is normalized by the sum
// of amplitudes so it stays in [0, 1].
func (l *Layer) Fractal(x, z float64, octaves int, persistence, lacunarity float64) float32 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0

	for i := 0; i < octaves; i++ {
		shift := float64(i) * octaveShift
		sum += float64(l.Sample(x*frequency+shift, z*frequency+shift)) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}

	if norm == 0 {
		return 0
	}
	return clamp01(float32(sum / norm))
}
