// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// hash32 mixes 32-bit input into a well-distributed 32-bit output
// (murmur3 finalizer).
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// SubSeed derives an independent, stable seed for one noise field from the
// world seed. Different salts give uncorrelated fields.
func SubSeed(seed int64, salt uint32) int64 {
	lo := hash32(uint32(seed) ^ salt*0x9e3779b1)
	hi := hash32(uint32(seed>>32) ^ lo ^ salt*0x85ebca6b)
	return int64(uint64(hi)<<32 | uint64(lo))
}
