// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"math/rand"
	"testing"
)

func TestLayer_Fractal(t *testing.T) {
	a := NewLayer(56)
	b := NewLayer(56)

	for i := 0; i < 1000; i++ {
		x := rand.Float64()*2000 - 1000
		z := rand.Float64()*2000 - 1000

		va := a.Fractal(x*0.01, z*0.01, 5, 0.5, 2)
		vb := b.Fractal(x*0.01, z*0.01, 5, 0.5, 2)
		if va != vb {
			t.Fatalf("expected identical layers to agree at (%f, %f): %f != %f", x, z, va, vb)
		}
		if va < 0 || va > 1 {
			t.Fatalf("expected [0, 1] got %f", va)
		}
	}

	if v := a.Fractal(1.5, 2.5, 0, 0.5, 2); v != 0 {
		t.Errorf("expected 0 octaves to give 0 got %f", v)
	}
}

func TestSubSeed(t *testing.T) {
	seen := make(map[int64]uint32)
	for salt := uint32(0); salt < 64; salt++ {
		s := SubSeed(56, salt)
		if other, ok := seen[s]; ok {
			t.Errorf("salts %d and %d collide", salt, other)
		}
		seen[s] = salt

		if s != SubSeed(56, salt) {
			t.Errorf("expected SubSeed to be stable")
		}
	}
}

func BenchmarkLayer_Fractal(b *testing.B) {
	layer := NewLayer(1)
	var acc float32
	for i := 0; i < b.N; i++ {
		acc += layer.Fractal(float64(i)*0.013, float64(i)*0.007, 6, 0.5, 2)
	}
	_ = acc
}
