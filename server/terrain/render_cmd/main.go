// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/terrain/generator"
	"image/png"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
)

func main() {
	var (
		all        bool
		configFile string
		cpuProfile string
		out        string
		width      int
	)
	flag.BoolVar(&all, "all", false, "build every chunk mesh and render the meshes instead of the field")
	flag.StringVar(&configFile, "config", "", "terrain config json, empty for defaults")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	flag.StringVar(&out, "out", "out.png", "output png")
	flag.IntVar(&width, "width", 1024, "image width in pixels")
	flag.Parse()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	config := terrain.DefaultConfig()
	if configFile != "" {
		var err error
		if config, err = terrain.LoadConfig(configFile); err != nil {
			log.Fatal(err)
		}
	}

	if err := run(config, all, width, out); err != nil {
		log.Fatal(err)
	}
}

func run(config terrain.Config, all bool, width int, out string) error {
	_, surface, err := renderSurface(config, all)
	if err != nil {
		return err
	}
	img := terrain.Render(surface, config.Bounds(), width, config.MaxHeight)

	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// renderSurface generates the terrain of config. It returns the analytic
// field, or with all, the placed chunk meshes.
func renderSurface(config terrain.Config, all bool) (*generator.Generator, terrain.Surface, error) {
	gen, err := generator.New(config, terrain.StaticCurves(config.Curves), nil)
	if err != nil {
		return nil, nil, err
	}
	gen.BuildRoads(gen.Field())

	if !all {
		return gen, gen.Snapshot(), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gen.OnProgress = func(built, total int) {
		if built%64 == 0 || built == total {
			log.Printf("built %d/%d chunks", built, total)
		}
	}
	if err = gen.GenerateAll(ctx); err != nil {
		return nil, nil, err
	}
	// Built chunks are placed, so roads follow the meshes.
	gen.BuildRoads(gen)
	return gen, gen, nil
}
