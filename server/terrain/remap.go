// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"errors"
	"github.com/SoftbearStudios/offroad/server/world"
	"sort"
)

// remapSamples is the lookup table size of a RemapCurve.
const remapSamples = 256

// CurveKey is one authored point of a height remapping curve.
type CurveKey struct {
	T float32 `json:"t"` // Input in [0, 1].
	V float32 `json:"v"` // Output in [0, 1].
}

var (
	errRemapOrder     = errors.New("keys must have increasing t")
	errRemapMonotonic = errors.New("values must not decrease")
	errRemapRange     = errors.New("keys must be in [0, 1]")
)

// RemapCurve reshapes normalized noise. It is sampled once into a lookup
// table, and Evaluate linearly interpolates between samples.
type RemapCurve struct {
	table [remapSamples]float32
}

// NewRemapCurve pre-samples keys. Keys are eased between with a smoothstep,
// which keeps a monotonic key list monotonic. No keys is the identity.
func NewRemapCurve(keys []CurveKey) (*RemapCurve, error) {
	sorted := make([]CurveKey, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].T < sorted[j].T
	})

	for i, key := range sorted {
		if key.T < 0 || key.T > 1 || key.V < 0 || key.V > 1 {
			return nil, errRemapRange
		}
		if i > 0 {
			if key.T == sorted[i-1].T {
				return nil, errRemapOrder
			}
			if key.V < sorted[i-1].V {
				return nil, errRemapMonotonic
			}
		}
	}

	curve := &RemapCurve{}
	for i := range curve.table {
		t := float32(i) / (remapSamples - 1)
		curve.table[i] = evaluateKeys(sorted, t)
	}
	return curve, nil
}

func evaluateKeys(keys []CurveKey, t float32) float32 {
	if len(keys) == 0 {
		return t
	}
	if t <= keys[0].T {
		return keys[0].V
	}

	last := keys[len(keys)-1]
	if t >= last.T {
		return last.V
	}

	i := sort.Search(len(keys), func(i int) bool {
		return keys[i].T > t
	})
	a, b := keys[i-1], keys[i]
	return world.Lerp(a.V, b.V, world.Smoothstep(a.T, b.T, t))
}

// Evaluate maps x in [0, 1] through the curve.
func (curve *RemapCurve) Evaluate(x float32) float32 {
	f := world.Clamp01(x) * (remapSamples - 1)
	i := int(f)
	if i >= remapSamples-1 {
		return curve.table[remapSamples-1]
	}
	return world.Lerp(curve.table[i], curve.table[i+1], f-float32(i))
}
