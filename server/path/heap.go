// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package path

// open is the A* open set. It implements heap.Interface, lowest priority
// first, and among equal priorities the earliest pushed first.
type open []openNode

type openNode struct {
	cell     int32
	priority float32
	seq      uint32
}

func (o open) Len() int {
	return len(o)
}

func (o open) Less(i, j int) bool {
	if o[i].priority != o[j].priority {
		return o[i].priority < o[j].priority
	}
	return o[i].seq < o[j].seq
}

func (o open) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
}

func (o *open) Push(x interface{}) {
	*o = append(*o, x.(openNode))
}

func (o *open) Pop() interface{} {
	old := *o
	n := len(old) - 1
	node := old[n]
	*o = old[:n]
	return node
}
