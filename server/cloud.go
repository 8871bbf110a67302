// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/offroad/server/cloud/db"
)

// Cloud publishes the hub's counters. A nil cloud makes it a no-op.
func (h *Hub) Cloud() {
	if h.cloud == nil {
		return
	}
	h.logger.Println("Updating cloud")

	status := h.status()
	server := db.Server{
		Clients: status.Clients,
		Agents:  status.Agents,
		Chunks:  status.Active,
	}

	go func() {
		if err := h.cloud.UpdateServer(server); err != nil {
			h.logger.Println("Error updating server:", err)
		}
	}()
}
