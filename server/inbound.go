// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/offroad/server/world"
	"github.com/chewxy/math32"
	"github.com/finnbear/moderation"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Make sure to register in init function
type (
	// Deform presses a crater into the terrain around Position.
	Deform struct {
		Position world.Vec3f `json:"position"`
		Radius   float32     `json:"radius"`
	}

	// FindPath requests a ground route. It is answered with a PathResult.
	FindPath struct {
		Start world.Vec3f `json:"start"`
		End   world.Vec3f `json:"end"`
	}

	// InvalidInbound means invalid message type from client (possibly out of date).
	// NOTE: Do not register, otherwise client could send type "invalidInbound"
	InvalidInbound struct {
		messageType messageType
	}

	// Join puts the client's vehicle into the world.
	Join struct {
		Name string `json:"name"`
	}

	// Move reports the client's vehicle position.
	Move struct {
		Position world.Vec3f `json:"position"`
	}

	// Trace sends debug info.
	Trace struct {
		FPS float32 `json:"fps"`
	}
)

func init() {
	registerInbound(
		Deform{},
		FindPath{},
		Join{},
		Move{},
		Trace{},
	)
}

const maxDeformRadius = 8

var reservedNames = [...]string{
	"admin",
	"administrator",
	"agent",
	"console",
	"dev",
	"developer",
	"mod",
	"moderator",
	"npc",
	"owner",
	"root",
	"server",
	"system",
}

func (data Deform) Inbound(h *Hub, _ Client, vehicle *Vehicle) {
	if !vehicle.Joined || !(data.Radius > 0) || !h.config.Bounds().ContainsPoint(data.Position.Planar()) {
		return
	}

	// Only deform near your own vehicle.
	if vehicle.Position.Planar().DistanceSquared(data.Position.Planar()) > square(h.config.SizePerChunk) {
		return
	}

	if h.deform(data.Position, math32.Min(data.Radius, maxDeformRadius)) > 0 {
		vehicle.Deforms++
	}
}

func (data FindPath) Inbound(h *Hub, client Client, vehicle *Vehicle) {
	if !vehicle.Joined {
		return
	}
	defer h.timeFunction("findPath", time.Now())

	path := h.pathfinder.Find(data.Start, data.End)
	if path == nil {
		path = []world.Vec3f{}
	}
	vehicle.Paths++
	client.Send(PathResult{Path: path})
}

func (data Join) Inbound(h *Hub, client Client, vehicle *Vehicle) {
	if vehicle.Joined {
		return // can only have one vehicle
	}

	name, ok := sanitize(data.Name, true, vehicleNameLengthMin, vehicleNameLengthMax)
	// Invalid name
	if !ok {
		return
	}

	if !client.Agent() {
		// Moderate name
		lower := strings.ToLower(name)
		for _, reservedName := range reservedNames {
			if lower == reservedName {
				h.logger.Println("blocked reserved name", name)
				return // reserved
			}
		}
	}

	r := getRand()
	vehicle.Name = name
	vehicle.Position = h.spawnPosition(r)
	vehicle.Joined = true
	poolRand(r)

	h.streamer.Track(client)

	// Everything already active, later updates only carry changes.
	update := NewChunkUpdate()
	update.Activated = h.appendActiveChunks(update.Activated)
	client.Send(update)
}

func (data Move) Inbound(h *Hub, _ Client, vehicle *Vehicle) {
	if !vehicle.Joined {
		return
	}

	// Keep the vehicle within the terrain.
	bounds := h.config.Bounds()
	position := data.Position
	position.X = clamp(position.X, bounds.X, bounds.X+bounds.Width)
	position.Z = clamp(position.Z, bounds.Z, bounds.Z+bounds.Depth)
	vehicle.Position = position
}

func (trace Trace) Inbound(h *Hub, _ Client, vehicle *Vehicle) {
	// Clamp to 60 for people possibly playing above to not pollute average
	if trace.FPS > 60 {
		trace.FPS = 60
	}

	vehicle.FPS = trace.FPS

	_ = AppendLog("/tmp/offroad-trace.log", []interface{}{
		unixMillis(),
		vehicle.Name,
		trace.FPS,
	})
}

func (data InvalidInbound) Inbound(_ *Hub, _ Client, _ *Vehicle) {}

func trimUtf8(in string, low, high int) (str string, ok bool) {
	if !utf8.ValidString(in) {
		return "", false
	}

	// Remove spaces
	str = strings.TrimSpace(in)
	str = strings.TrimFunc(str, func(r rune) bool {
		// NOTE: The following characters are not detected by
		// unicode.IsSpace() but show up as blank

		// https://www.compart.com/en/unicode/U+2800
		// https://www.compart.com/en/unicode/U+200B
		return r == 0x2800 || r == 0x200B
	})

	// Too long but can resize down
	if len(str) > high {
		var builder strings.Builder
		for _, r := range str {
			if builder.Len()+utf8.RuneLen(r) > high {
				break
			}
			builder.WriteRune(r)
		}
		str = builder.String()
	}

	// Too short
	if len(str) < low {
		return "", false
	}
	ok = true
	return
}

func sanitize(text string, name bool, low, high int) (string, bool) {
	if name {
		// Remove these characters
		// Brackets are used in formatting
		// * is used for censoring
		const removals = "()[]{}*"
		for i := 0; i < len(removals); i++ {
			text = strings.ReplaceAll(text, removals[i:i+1], "")
		}
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, text)

	text, ok := trimUtf8(text, low, high)
	if !ok {
		return "", false
	}

	if name {
		// Censor name
		result := moderation.Scan(text)

		if result.Is(moderation.Inappropriate) {
			if result.Is(moderation.Inappropriate & moderation.Moderate) {
				return "", false
			}
			text, _ = moderation.Censor(text, moderation.Inappropriate)
		}
	}

	return text, true
}
