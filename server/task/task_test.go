// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package task

import "testing"

type counter struct {
	name  string
	steps int
	log   *[]string
}

func (c *counter) Step() bool {
	*c.log = append(*c.log, c.name)
	c.steps--
	return c.steps <= 0
}

func TestRun(t *testing.T) {
	var log []string
	if steps := Run(&counter{name: "a", steps: 4, log: &log}); steps != 4 {
		t.Errorf("expected 4 steps got %d", steps)
	}
	if steps := Run(Func(func() bool { return true })); steps != 1 {
		t.Errorf("expected 1 step got %d", steps)
	}
}

func TestScheduler_Run(t *testing.T) {
	var log []string
	var s Scheduler
	s.Add(&counter{name: "a", steps: 2, log: &log})
	s.Add(&counter{name: "b", steps: 3, log: &log})

	if steps := s.Run(3); steps != 3 {
		t.Errorf("expected 3 steps got %d", steps)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 task left got %d", s.Len())
	}

	if steps := s.Run(10); steps != 2 {
		t.Errorf("expected 2 steps got %d", steps)
	}
	if s.Len() != 0 {
		t.Errorf("expected no tasks left got %d", s.Len())
	}

	expected := []string{"a", "b", "a", "b", "b"}
	if len(log) != len(expected) {
		t.Fatalf("expected %v got %v", expected, log)
	}
	for i := range expected {
		if log[i] != expected[i] {
			t.Fatalf("expected %v got %v", expected, log)
		}
	}

	if steps := s.Run(5); steps != 0 {
		t.Errorf("expected idle scheduler to do nothing got %d", steps)
	}
}

func TestScheduler_Clear(t *testing.T) {
	var log []string
	var s Scheduler
	s.Add(&counter{name: "a", steps: 5, log: &log})
	s.Run(1)
	s.Clear()
	if s.Len() != 0 || s.Run(5) != 0 {
		t.Errorf("expected cleared scheduler to be empty")
	}
}
