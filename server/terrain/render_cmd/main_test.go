// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"github.com/SoftbearStudios/offroad/server/terrain"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	config := terrain.DefaultConfig()
	config.ChunksX = 2
	config.ChunksZ = 2
	config.ResolutionPerChunk = 4
	config.SizePerChunk = 10
	config.Roads = false
	config.PathValleys = false

	for _, all := range []bool{false, true} {
		out := filepath.Join(t.TempDir(), "out.png")
		if err := run(config, all, 20, out); err != nil {
			t.Fatalf("all=%t: %v", all, err)
		}

		file, err := os.Open(out)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(file)
		file.Close()
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
			t.Errorf("all=%t: expected 20x20 got %dx%d", all, b.Dx(), b.Dy())
		}
	}
}

func TestRenderSurface(t *testing.T) {
	config := terrain.DefaultConfig()
	config.ChunksX = 2
	config.ChunksZ = 2
	config.ResolutionPerChunk = 4
	config.SizePerChunk = 10

	gen, surface, err := renderSurface(config, true)
	if err != nil {
		t.Fatal(err)
	}
	if gen.ChunkCount() != 4 {
		t.Errorf("expected 4 chunks got %d", gen.ChunkCount())
	}
	// Built meshes only exist where placed, so the surface must be the
	// generator rather than the analytic snapshot.
	if surface != terrain.Surface(gen) {
		t.Errorf("expected the placed meshes to be rendered")
	}

	if _, surface, err = renderSurface(config, false); err != nil {
		t.Fatal(err)
	}
	if _, ok := surface.(interface{ ChunkCount() int }); ok {
		t.Errorf("expected the analytic field to be rendered")
	}
}
