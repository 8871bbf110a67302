// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"github.com/SoftbearStudios/offroad/server/terrain"
	"github.com/SoftbearStudios/offroad/server/world"
	"testing"
)

func TestJsonIter(t *testing.T) {
	testUpdate := Message{Data: &ChunkUpdate{
		Activated: []ChunkData{
			{
				Coord: terrain.ChunkCoord{X: 1, Z: 0},
				Data:  &terrain.Data{AABB: world.AABBFrom(64, 0, 64, 64), Data: []byte{1, 2}, Stride: 2, Length: 2, Scale: 0.5},
			},
			{
				Coord: terrain.ChunkCoord{X: -1, Z: 0},
				Data:  &terrain.Data{AABB: world.AABBFrom(-64, 0, 64, 64), Data: []byte{3}, Stride: 1, Length: 1, Scale: 0.5},
			},
		},
		Deactivated: []terrain.ChunkCoord{{X: 2, Z: -3}},
	}}

	const testUpdateString = `{"data":{"activated":{"-1,0":{"x":-64,"z":0,"width":64,"depth":64,"data":"Aw==","stride":1,"length":1,"scale":0.5},"1,0":{"x":64,"z":0,"width":64,"depth":64,"data":"AQI=","stride":2,"length":2,"scale":0.5}},"deactivated":["2,-3"]},"type":"chunkUpdate"}`
	checkMarshal(t, testUpdate, testUpdateString)

	checkMarshal(t, Message{Data: &ChunkUpdate{Deactivated: []terrain.ChunkCoord{{X: 0, Z: 0}}}}, `{"data":{"deactivated":["0,0"]},"type":"chunkUpdate"}`)

	testPath := Message{Data: PathResult{Path: []world.Vec3f{{X: 1, Y: 0.5, Z: -2}}}}
	checkMarshal(t, testPath, `{"data":{"path":[{"x":1,"y":0.5,"z":-2}]},"type":"pathResult"}`)
}

func checkMarshal(t *testing.T, message Message, expected string) {
	t.Helper()

	buf, err := json.Marshal(message)
	if err != nil {
		t.Error("error marshaling:", err.Error())
		return
	}
	if !bytes.Equal(buf, []byte(expected)) {
		j := 0
		for j < len(buf) && j < len(expected) && buf[j] == expected[j] {
			j++
		}
		t.Error("different output:\none:", expected, "\ntwo:", string(buf), "\none len:", len(expected),
			"\ntwo len:", len(buf), "\ndiff:", j, "\none:", expected[j:], "\ntwo:", string(buf[j:]))
	}
}

func TestJsonIterInbound(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{
			`{"type":"findPath","data":{"start":{"x":1,"y":2,"z":3},"end":{"x":4,"y":5,"z":6}}}`,
			FindPath{Start: world.Vec3f{X: 1, Y: 2, Z: 3}, End: world.Vec3f{X: 4, Y: 5, Z: 6}},
		},
		{
			// Type after data has to be read twice.
			`{"data":{"name":"bob"},"type":"join"}`,
			Join{Name: "bob"},
		},
		{
			`{"type":"move","data":{"position":{"x":-1,"y":0,"z":7.5}}}`,
			Move{Position: world.Vec3f{X: -1, Z: 7.5}},
		},
		{
			`{"type":"deform","data":{"position":{"x":0,"y":0,"z":0},"radius":3}}`,
			Deform{Radius: 3},
		},
		{
			`{"type":"launchMissile","data":{}}`,
			InvalidInbound{messageType: "launchMissile"},
		},
	}

	for _, test := range tests {
		var message Message
		if err := json.Unmarshal([]byte(test.input), &message); err != nil {
			t.Errorf("%s: error unmarshaling: %v", test.input, err)
			continue
		}
		if message.Data != test.expected {
			t.Errorf("%s: expected %#v got %#v", test.input, test.expected, message.Data)
		}
	}

	var message Message
	if err := json.Unmarshal([]byte(`{"data":{}}`), &message); err == nil {
		t.Errorf("expected an error without a message type")
	}
}
