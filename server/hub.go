// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/offroad/server/cloud"
	"github.com/SoftbearStudios/offroad/server/path"
	"github.com/SoftbearStudios/offroad/server/stream"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/terrain/generator"
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/gorilla/websocket"
	"log"
	"math/rand"
	"os"
	"sync/atomic"
	"time"
)

const (
	agentPeriod  = time.Second / 4
	debugPeriod  = time.Second * 5
	statusPeriod = time.Second
	updatePeriod = world.TickPeriod

	// encodeAgentMessages makes AgentClient.Send marshal json and check for errors.
	// Only useful for testing/benchmarking (drops performance significantly).
	encodeAgentMessages = false
)

// HubOptions configure a Hub.
type HubOptions struct {
	Config terrain.Config
	// Cloud may be nil to run offline.
	Cloud *cloud.Cloud
	// MinAgents is how many AI agents are kept driving.
	MinAgents int
	// Origin is the host websockets are accepted from, empty for any.
	Origin string
	// Logger may be nil to use the standard logger.
	Logger *log.Logger
}

// Hub owns the terrain and drives it: it ticks the streamer around every
// client's vehicle, answers path requests and sends chunk updates.
type Hub struct {
	// Terrain
	config     terrain.Config
	generator  *generator.Generator
	streamer   *stream.Streamer
	pathfinder *path.Pathfinder
	costs      *path.CostObserver // nil if pathing is disabled

	// Encoded heightmap of every active chunk, and changes not yet sent.
	chunkData   map[terrain.ChunkCoord]*terrain.Data
	activated   []ChunkData
	deactivated []terrain.ChunkCoord
	heights     []float32 // scratch for encoding

	clients   ClientList // implemented as double-linked list
	agents    int
	minAgents int
	logger    *log.Logger
	upgrader  *websocket.Upgrader

	// Cloud (and things that are served atomically by HTTP)
	cloud      *cloud.Cloud
	statusJSON atomic.Value

	// funcBenches are benchmarks of core Hub functions.
	funcBenches []funcBench

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Timer based events
	cloudTicker  *time.Ticker
	updateTicker *time.Ticker
	updateTime   time.Time
	statusTicker *time.Ticker
	debugTicker  *time.Ticker
	agentsTicker *time.Ticker
}

// NewHub creates the terrain of options.Config. Misconfigured pathing is
// logged and disabled, any other configuration error is returned.
func NewHub(options HubOptions) (*Hub, error) {
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}
	config := options.Config

	gen, err := generator.New(config, terrain.StaticCurves(config.Curves), logger)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	gen.Deformer = craterDeformer
	gen.BuildRoads(gen.Field())

	streamer, err := stream.New(config, gen, logger)
	if err != nil {
		return nil, fmt.Errorf("streaming: %w", err)
	}

	h := &Hub{
		config:       config,
		generator:    gen,
		streamer:     streamer,
		pathfinder:   path.New(config.MinPathPointDistance, logger),
		chunkData:    make(map[terrain.ChunkCoord]*terrain.Data),
		minAgents:    options.MinAgents,
		logger:       logger,
		upgrader:     newUpgrader(options.Origin),
		cloud:        options.Cloud,
		inbound:      make(chan SignedInbound, 16+options.MinAgents*2),
		register:     make(chan Client, 8+options.MinAgents/32),
		unregister:   make(chan Client, 16+options.MinAgents/16),
		cloudTicker:  time.NewTicker(cloud.UpdatePeriod),
		updateTicker: time.NewTicker(updatePeriod),
		updateTime:   time.Now(),
		statusTicker: time.NewTicker(statusPeriod),
		debugTicker:  time.NewTicker(debugPeriod),
		agentsTicker: time.NewTicker(agentPeriod),
	}

	streamer.OnActivate = h.chunkActivated
	streamer.OnDeactivate = h.chunkDeactivated

	if h.costs, err = path.NewCostObserver(h.pathfinder, gen.Snapshot, &config, logger); err != nil {
		logger.Println("pathing disabled:", err)
	} else {
		h.costs.Async = true
		h.costs.OnRebuilt = h.costMapRebuilt
		gen.AddObserver(h.costs)
	}

	return h, nil
}

func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		println("That's it, I'm out -hub") // Don't waste time debugging hub exists
		os.Exit(1)
	}()

	// The initial cost map, later ones follow regeneration.
	if h.costs != nil {
		h.costs.ChunksRegenerated()
	}
	h.Cloud()

	for {
		select {
		case client := <-h.register:
			h.clients.Add(client)
			data := client.Data()
			data.Hub = h
			data.registered = true
			if client.Agent() {
				h.agents++
			}
			client.Init()
		case client := <-h.unregister:
			data := client.Data()
			if !data.registered {
				break
			}
			client.Close()
			h.streamer.Untrack(client)
			data.registered = false
			data.Vehicle.Joined = false
			if client.Agent() {
				h.agents--
			}
			h.clients.Remove(client)
		case in := <-h.inbound:
			// Read all messages currently in the channel
			n := len(h.inbound)

			for {
				// If not registered the message is old
				data := in.Client.Data()
				if h == data.Hub && data.registered {
					in.Inbound(h, in.Client, &data.Vehicle)
				}

				if n--; n <= 0 {
					break
				}

				in = <-h.inbound
			}
		case <-h.updateTicker.C:
			now := time.Now()
			timeDelta := now.Sub(h.updateTime) + updatePeriod/10 // Kludge factor
			h.updateTime = now

			// Falling behind skip tick
			if timeDelta%updatePeriod > updatePeriod/5 {
				break
			}

			ticks := world.Ticks(timeDelta / updatePeriod)
			h.Drive(ticks)
			h.Stream(ticks)
			h.Update()
		case <-h.statusTicker.C:
			h.Status()
		case <-h.debugTicker.C:
			h.Debug()
		case <-h.agentsTicker.C:
			// Add as many as fit in the channel but don't block because it would deadlock
			for i := h.agents + len(h.register); i < h.minAgents; i++ {
				select {
				case h.register <- &AgentClient{}:
				default:
					break
				}
			}
		case <-h.cloudTicker.C:
			h.Cloud()
		}
	}
}

// Stream ticks the streamer, which activates and deactivates chunks through
// chunkActivated and chunkDeactivated.
func (h *Hub) Stream(ticks world.Ticks) {
	defer h.timeFunction("stream", time.Now())
	h.streamer.Tick(ticks.Duration())
}

// spawnPosition is a random point on the terrain away from its edges.
func (h *Hub) spawnPosition(r *rand.Rand) world.Vec3f {
	bounds := h.config.Bounds()
	const margin = 0.1
	x := bounds.X + bounds.Width*(margin+r.Float32()*(1-2*margin))
	z := bounds.Z + bounds.Depth*(margin+r.Float32()*(1-2*margin))
	return world.Vec3f{X: x, Y: h.groundHeight(x, z), Z: z}
}

// groundHeight prefers the built chunks, which may be deformed, over the
// height field.
func (h *Hub) groundHeight(x, z float32) float32 {
	if height, ok := h.generator.HeightAt(x, z); ok {
		return height
	}
	return h.generator.Field().Height(x, z)
}
