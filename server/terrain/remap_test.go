// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/chewxy/math32"
	"testing"
)

func TestRemapCurve_Identity(t *testing.T) {
	curve, err := NewRemapCurve(nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 100; i++ {
		x := float32(i) / 100
		if y := curve.Evaluate(x); math32.Abs(y-x) > 1e-5 {
			t.Errorf("expected %f got %f", x, y)
		}
	}
	if y := curve.Evaluate(-1); y != 0 {
		t.Errorf("expected input to be clamped got %f", y)
	}
	if y := curve.Evaluate(2); y != 1 {
		t.Errorf("expected input to be clamped got %f", y)
	}
}

func TestRemapCurve_Monotonic(t *testing.T) {
	curve, err := NewRemapCurve([]CurveKey{{T: 1, V: 1}, {T: 0, V: 0}, {T: 0.5, V: 0.1}})
	if err != nil {
		t.Fatal(err)
	}

	if y := curve.Evaluate(0.5); math32.Abs(y-0.1) > 1e-3 {
		t.Errorf("expected key value 0.1 got %f", y)
	}

	last := curve.Evaluate(0)
	for i := 1; i <= 1000; i++ {
		y := curve.Evaluate(float32(i) / 1000)
		if y < last {
			t.Fatalf("expected monotonic output at %d: %f < %f", i, y, last)
		}
		last = y
	}
}

func TestNewRemapCurve_Invalid(t *testing.T) {
	tests := [][]CurveKey{
		{{T: 0, V: 0.5}, {T: 1, V: 0.4}},
		{{T: 0.5, V: 0}, {T: 0.5, V: 1}},
		{{T: -0.1, V: 0}},
		{{T: 0, V: 1.5}},
	}

	for i, keys := range tests {
		if _, err := NewRemapCurve(keys); err == nil {
			t.Errorf("case %d: expected an error", i)
		}
	}
}
