// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// TickPeriod is the period of the hub's simulation tick.
	TickPeriod     = time.Second / 20
	TicksPerSecond = Ticks(time.Second / TickPeriod)
)

// Ticks is a time measured in simulation updates.
type Ticks uint32

func ToTicks(seconds float32) Ticks {
	return Ticks(seconds * float32(float64(time.Second)/float64(TickPeriod)))
}

func (ticks Ticks) Float() float32 {
	return float32(ticks) * float32(float64(TickPeriod)/float64(time.Second))
}

func (ticks Ticks) Duration() time.Duration {
	return time.Duration(ticks) * TickPeriod
}

// Seconds is a configurable interval, marshaled as seconds.
type Seconds float32

func (seconds Seconds) Duration() time.Duration {
	return time.Duration(float64(seconds) * float64(time.Second))
}

func (seconds *Seconds) UnmarshalJSON(b []byte) error {
	var f float32
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f < 0 {
		return fmt.Errorf("negative interval: %f", f)
	}
	*seconds = Seconds(f)
	return nil
}
