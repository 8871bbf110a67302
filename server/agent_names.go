// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	_ "embed"
	"math/rand"
	"strings"
)

//go:embed agent-names.txt
var agentNamesRaw string

var agentNames = strings.Split(strings.ToLower(agentNamesRaw), "\n")

func randomAgentName(r *rand.Rand) (name string) {
	for name == "" {
		name = agentNames[r.Intn(len(agentNames))]
	}

	if prob(r, 0.1) {
		name = strings.ToUpper(name)
	}
	return
}
