// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/offroad/server/world"
	"io"
)

const (
	// agentSpeed is in world units per second.
	agentSpeed = 12
	// agentRetry is how long an agent waits after failing to find a path.
	agentRetry = world.TicksPerSecond * 2
)

// AgentClient is an AI driven vehicle. It picks random destinations and
// follows the paths the hub's pathfinder gives it.
type AgentClient struct {
	ClientData
	path       []world.Vec3f // Remaining waypoints.
	waiting    bool          // A FindPath is outstanding.
	retry      world.Ticks
	destroying bool
}

func (agent *AgentClient) Agent() bool {
	return true
}

func (agent *AgentClient) Close() {}

func (agent *AgentClient) Data() *ClientData {
	return &agent.ClientData
}

func (agent *AgentClient) Destroy() {
	if agent.destroying {
		return // In case goroutine hasn't run yet
	}

	agent.destroying = true
	hub := agent.Hub

	// Needs to go through always.
	select {
	case hub.unregister <- agent:
	default:
		go func() {
			hub.unregister <- agent
		}()
	}
}

func (agent *AgentClient) Init() {
	r := getRand()
	agent.receiveAsync(Join{Name: randomAgentName(r)})
	poolRand(r)
}

func (agent *AgentClient) Send(out outbound) {
	if agent.destroying {
		out.Pool()
		return
	}

	if encodeAgentMessages {
		// Discard output
		if err := json.NewEncoder(io.Discard).Encode(Message{Data: out}); err != nil {
			panic("agent test marshal: " + err.Error())
		}
	}

	if result, ok := out.(PathResult); ok {
		agent.waiting = false
		if len(result.Path) > 1 {
			// The first point is where the agent already is.
			agent.path = append(agent.path[:0], result.Path[1:]...)
		} else {
			agent.retry = agentRetry
		}
	}

	out.Pool()
}

// Drive advances the agent along its path, or asks for a new one when it has
// arrived. It must be called on the hub goroutine.
func (agent *AgentClient) Drive(ticks world.Ticks) {
	vehicle := &agent.Vehicle
	if !vehicle.Joined || agent.waiting {
		return
	}

	if len(agent.path) == 0 {
		if agent.retry > ticks {
			agent.retry -= ticks
			return
		}
		agent.retry = 0

		r := getRand()
		agent.receiveAsync(FindPath{
			Start: vehicle.Position,
			End:   agent.Hub.spawnPosition(r),
		})
		agent.waiting = true
		poolRand(r)
		return
	}

	vehicle.Position, agent.path = advance(vehicle.Position, agent.path, agentSpeed*ticks.Float())
}

// advance moves position distance along path, returning the new position
// and the waypoints not yet reached.
func advance(position world.Vec3f, path []world.Vec3f, distance float32) (world.Vec3f, []world.Vec3f) {
	for distance > 0 && len(path) > 0 {
		delta := path[0].Sub(position)
		length := delta.Length()
		if length <= distance {
			position = path[0]
			path = path[1:]
			distance -= length
		} else {
			position = position.AddScaled(delta, distance/length)
			distance = 0
		}
	}
	return position, path
}

// receiveAsync Doesn't deadlock the hub
func (agent *AgentClient) receiveAsync(in inbound) {
	select {
	case agent.Hub.inbound <- SignedInbound{Client: agent, inbound: in}:
	default:
		// Drop agent messages to avoid downfall of server
		if _, ok := in.(FindPath); ok {
			agent.waiting = false
			agent.retry = agentRetry
		}
	}
}
