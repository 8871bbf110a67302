// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"runtime"
	"sort"
	"time"
)

// Debug prints debugging info to console and tmp files.
func (h *Hub) Debug() {
	fmt.Printf("Debug [%v] %s\n", time.Now().Format(time.UnixDate), h.cloud)
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	fmt.Printf(" - memstats: %dM/%dM\n", stats.HeapInuse/1e6, stats.NextGC/1e6)

	var (
		drivers  []*Vehicle
		fps      float32
		fpsCount int // Can be less than len(drivers) for drivers that haven't sent a trace yet
	)

	for client := h.clients.First; client != nil; client = client.Data().Next {
		if !client.Agent() {
			vehicle := &client.Data().Vehicle
			drivers = append(drivers, vehicle)
			if vehicle.FPS != 0 {
				fps += vehicle.FPS
				fpsCount++
			}
		}
	}

	sort.Slice(drivers, func(i, j int) bool {
		return drivers[i].Name < drivers[j].Name
	})

	fmt.Printf(" - clients: %d, agents: %d\n", len(drivers), h.agents)
	for _, driver := range drivers {
		fmt.Printf("   - %s", driver.String())
		if !driver.Joined {
			fmt.Print(" {joining}")
		}
		fmt.Println()
	}

	if fpsCount > 0 {
		// Average
		fps /= float32(fpsCount)
		fmt.Printf(" - fps: %.1f\n", fps)
	}

	active, pooled, loading := h.streamer.Counts()
	activations, deactivations := h.streamer.Queued()
	streamStats := h.streamer.Stats()
	fmt.Printf(" - chunks: %d active, %d pooled, %d loading, %d/%d queued, %d placed\n",
		active, pooled, loading, activations, deactivations, h.generator.ChunkCount())
	fmt.Printf(" - streamer: %+v\n", streamStats)

	if m := h.pathfinder.CostMap(); m != nil {
		fmt.Printf(" - cost map: %dx%d, %d passable\n", m.Width(), m.Depth(), m.Passable())
	} else {
		fmt.Println(" - cost map: none")
	}

	// Function benchmarks
	var totalDuration time.Duration

	fmt.Print(" - ")
	for i := range h.funcBenches {
		bench := &h.funcBenches[i]

		duration := bench.reset()
		totalDuration += duration

		fmt.Print(bench.name, ": ", duration, ", ")
	}
	fmt.Println("total:", totalDuration)

	_ = AppendLog("/tmp/offroad.log", []interface{}{
		unixMillis(),
		len(drivers),
		h.agents,
		fps,
		active,
		pooled,
		streamStats.DuplicateBuilds,
	})
}

// funcBench is a benchmark of a core function.
type funcBench struct {
	name     string
	duration time.Duration
	runs     int
}

// reset resets the benchmark and returns the average duration
func (bench *funcBench) reset() time.Duration {
	if bench.runs == 0 {
		return 0
	}
	average := bench.duration / time.Duration(bench.runs)
	bench.duration = 0
	bench.runs = 0
	return average
}

// timeFunction times a function.
// defer timeFunction("name", time.Now())
func (h *Hub) timeFunction(name string, start time.Time) {
	end := time.Now()

	var bench *funcBench
	for i := range h.funcBenches {
		b := &h.funcBenches[i]
		if name == b.name {
			bench = b
			break
		}
	}

	if bench == nil {
		h.funcBenches = append(h.funcBenches, funcBench{name: name})
		bench = &h.funcBenches[len(h.funcBenches)-1]
	}

	bench.duration += end.Sub(start)
	bench.runs++
}
