// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package fs

import "testing"

func TestContentType(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"terrain.png", "image/png"},
		{"status.json", "application/json"},
		{"notes.txt", ""},
	}

	for _, test := range tests {
		actual := ContentType(test.filename)
		if test.expected == "" {
			if actual != nil {
				t.Errorf("%s: expected nil got %s", test.filename, *actual)
			}
		} else if actual == nil || *actual != test.expected {
			t.Errorf("%s: expected %s got %v", test.filename, test.expected, actual)
		}
	}
}
