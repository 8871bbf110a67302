// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/offroad/server/world"
	"time"
)

// Drive moves every agent along its path.
func (h *Hub) Drive(ticks world.Ticks) {
	defer h.timeFunction("drive", time.Now())

	for client := h.clients.First; client != nil; client = client.Data().Next {
		if agent, ok := client.(*AgentClient); ok {
			agent.Drive(ticks)
		}
	}
}

// Update sends the chunk changes since the last Update to each joined Client.
func (h *Hub) Update() {
	if len(h.activated) == 0 && len(h.deactivated) == 0 {
		return
	}
	defer h.timeFunction("update", time.Now())

	for client := h.clients.First; client != nil; client = client.Data().Next {
		if !client.Data().Vehicle.Joined || client.Agent() {
			continue
		}

		update := NewChunkUpdate()
		update.Activated = append(update.Activated, h.activated...)
		update.Deactivated = append(update.Deactivated, h.deactivated...)
		client.Send(update)
	}

	for i := range h.activated {
		h.activated[i] = ChunkData{}
	}
	h.activated = h.activated[:0]
	h.deactivated = h.deactivated[:0]
}

// Status sends a Status to each joined Client and makes it available to
// HTTP.
func (h *Hub) Status() {
	status := h.status()

	for client := h.clients.First; client != nil; client = client.Data().Next {
		if client.Data().Vehicle.Joined && !client.Agent() {
			client.Send(status)
		}
	}

	statusJSON, err := json.Marshal(status)
	if err == nil {
		h.statusJSON.Store(statusJSON)
	} else {
		h.logger.Println("error marshaling status:", err)
	}
}

func (h *Hub) status() Status {
	active, pooled, loading := h.streamer.Counts()
	status := Status{
		Active:  active,
		Pooled:  pooled,
		Loading: loading,
		Tracked: h.streamer.Tracked(),
		Clients: h.clients.Len - h.agents,
		Agents:  h.agents,
	}
	if m := h.pathfinder.CostMap(); m != nil {
		status.Passable = m.Passable()
	}
	return status
}
