// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

func min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clamp(val, minimum, maximum float32) float32 {
	return min(max(val, minimum), maximum)
}

// Clamp restricts val to [minimum, maximum].
func Clamp(val, minimum, maximum float32) float32 {
	return clamp(val, minimum, maximum)
}

// Clamp01 restricts val to [0, 1].
func Clamp01(val float32) float32 {
	return clamp(val, 0, 1)
}

// Smoothstep is the cubic Hermite step between edge0 and edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// MapRanges maps number from [oldMin, oldMax] to [newMin, newMax].
func MapRanges(number, oldMin, oldMax, newMin, newMax float32, clampToRange bool) float32 {
	oldRange := oldMax - oldMin
	newRange := newMax - newMin
	numberNormalized := (number - oldMin) / oldRange
	mapped := newMin + numberNormalized*newRange
	if clampToRange {
		mapped = clamp(mapped, min(newMin, newMax), max(newMin, newMax))
	}
	return mapped
}

func AbsInt32(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}
