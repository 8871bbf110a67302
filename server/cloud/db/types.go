// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"github.com/google/uuid"
	"net"
	"time"
)

// Run records one cost map build over a generated terrain.
type Run struct {
	ID       string `dynamo:"id"`
	Region   string `dynamo:"region"`
	Seed     int64  `dynamo:"seed"`
	Chunks   int    `dynamo:"chunks"`
	Curves   int    `dynamo:"curves"`
	Cells    int    `dynamo:"cells"`
	Passable int    `dynamo:"passable"`
	Millis   int64  `dynamo:"millis"`
	Created  int64  `dynamo:"created"`
	TTL      int64  `dynamo:"ttl,omitempty"`
}

// NewRun creates a run with a new random ID, created now.
func NewRun(region string, seed int64) Run {
	return Run{
		ID:      uuid.NewString(),
		Region:  region,
		Seed:    seed,
		Created: time.Now().Unix(),
	}
}

type Server struct {
	Region  string `dynamo:"region"`
	IP      net.IP `dynamo:"ip"`
	Clients int    `dynamo:"clients"`
	Agents  int    `dynamo:"agents"`
	Chunks  int    `dynamo:"chunks"`
	TTL     int64  `dynamo:"ttl,omitempty"`
}
