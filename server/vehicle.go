// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/offroad/server/world"
)

const (
	vehicleNameLengthMin = 1
	vehicleNameLengthMax = 16
)

// Vehicle is the hub's view of a client's vehicle.
type Vehicle struct {
	Name     string
	Position world.Vec3f
	Joined   bool
	FPS      float32
	Paths    int // Path requests answered.
	Deforms  int // Deform requests that changed terrain.
}

func (vehicle *Vehicle) String() string {
	return fmt.Sprintf("%s at (%.1f, %.1f, %.1f), paths: %d, deforms: %d",
		vehicle.Name, vehicle.Position.X, vehicle.Position.Y, vehicle.Position.Z, vehicle.Paths, vehicle.Deforms)
}
