// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

// SurfaceClass classifies what a vertical query hit.
type SurfaceClass uint8

const (
	SurfaceNone SurfaceClass = iota
	SurfaceTerrain
	SurfaceRoad
	SurfaceRoadCenter
)

func (class SurfaceClass) String() string {
	switch class {
	case SurfaceTerrain:
		return "terrain"
	case SurfaceRoad:
		return "road"
	case SurfaceRoadCenter:
		return "roadCenter"
	default:
		return "none"
	}
}

// Height bands as fractions of Config.MaxHeight, for rendering.
const (
	LowlandLevel = 0.15
	GrassLevel   = 0.45
	RockLevel    = 0.75
	SnowLevel    = 1.0
)
