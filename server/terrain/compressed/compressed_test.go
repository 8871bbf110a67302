// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import (
	"github.com/SoftbearStudios/offroad/server/world"
	"testing"
)

func TestEncode(t *testing.T) {
	const stride = 9
	heights := make([]float32, stride*stride)
	for i := range heights {
		heights[i] = float32(i/stride) * 5
	}

	bounds := world.AABBFrom(10, 20, 10, 10)
	data := Encode(bounds, heights, stride, 40)
	defer data.Pool()

	if data.Length != len(heights) || data.Stride != stride {
		t.Fatalf("expected %d/%d got %d/%d", len(heights), stride, data.Length, data.Stride)
	}
	if len(data.Data) >= len(heights) {
		t.Errorf("expected compression, got %d bytes", len(data.Data))
	}

	raw, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	for i, h := range heights {
		if actual := float32(raw[i]) * data.Scale; actual > h || h-actual > 16*data.Scale+0.01 {
			t.Errorf("%d: expected about %f got %f", i, h, actual)
		}
	}

	// Decoding twice must give the same result.
	again, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	for i := range raw {
		if raw[i] != again[i] {
			t.Fatalf("expected Decode not to modify data")
		}
	}

	corner := Sample(data, raw, world.Vec2f{X: 10, Z: 20})
	if corner != float32(raw[0])*data.Scale {
		t.Errorf("expected corner sample %f got %f", float32(raw[0])*data.Scale, corner)
	}
	far := Sample(data, raw, world.Vec2f{X: 100, Z: 100})
	if far != float32(raw[len(raw)-1])*data.Scale {
		t.Errorf("expected clamped sample %f got %f", float32(raw[len(raw)-1])*data.Scale, far)
	}
}

func TestDecode_Corrupt(t *testing.T) {
	data := Encode(world.AABBFrom(0, 0, 1, 1), make([]float32, 32), 8, 10)
	data.Length = 40
	if _, err := Decode(data); err != ErrCorrupt {
		t.Errorf("expected ErrCorrupt got %v", err)
	}
	data.Length = 30
	if _, err := Decode(data); err != ErrCorrupt {
		t.Errorf("expected ErrCorrupt for bad stride got %v", err)
	}
}
