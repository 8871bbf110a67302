// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package task runs resumable units of work a bounded number of steps at a
// time from a single goroutine.
package task

// Task is a resumable state machine. Each Step does a bounded amount of work
// and reports whether the task has finished. Step is never called again
// after it returns true.
type Task interface {
	Step() (done bool)
}

// Func adapts a function to a Task.
type Func func() bool

func (f Func) Step() bool {
	return f()
}

// Run steps t until it finishes and returns how many steps it took.
func Run(t Task) int {
	steps := 1
	for !t.Step() {
		steps++
	}
	return steps
}

// Scheduler steps its tasks round robin. It is not safe for concurrent use.
type Scheduler struct {
	tasks []Task
	next  int
}

// Add queues t to be stepped by later calls to Run.
func (s *Scheduler) Add(t Task) {
	s.tasks = append(s.tasks, t)
}

// Len is the number of unfinished tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Run performs at most budget steps, one task at a time in turn, and returns
// the number of steps performed.
func (s *Scheduler) Run(budget int) int {
	steps := 0
	for steps < budget && len(s.tasks) > 0 {
		if s.next >= len(s.tasks) {
			s.next = 0
		}

		t := s.tasks[s.next]
		steps++
		if t.Step() {
			s.remove(s.next)
		} else {
			s.next++
		}
	}
	return steps
}

func (s *Scheduler) remove(i int) {
	copy(s.tasks[i:], s.tasks[i+1:])
	s.tasks[len(s.tasks)-1] = nil
	s.tasks = s.tasks[:len(s.tasks)-1]
}

// Clear drops all unfinished tasks.
func (s *Scheduler) Clear() {
	for i := range s.tasks {
		s.tasks[i] = nil
	}
	s.tasks = s.tasks[:0]
	s.next = 0
}
