// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import "io"

const (
	sampleMask = 0b11110000
	runMask    = 0b00001111
)

// Buffer run length encodes the high nibble of each byte written to it. Each
// encoded byte is one run: the nibble in the high bits and the run length
// minus one in the low bits, so a run covers up to 16 samples. Chunk
// heightmaps are smooth, so most rows are a few runs.
type Buffer struct {
	runs []byte
	off  int // First unread run.
}

// Reset replaces the runs. Reading consumes runs in place, so they must not
// be shared with anything else.
func (buffer *Buffer) Reset(runs []byte) {
	buffer.runs = runs
	buffer.off = 0
}

// WriteByte appends b, quantized to its high nibble.
func (buffer *Buffer) WriteByte(b byte) error {
	sample := b & sampleMask
	if n := len(buffer.runs); n > 0 {
		last := buffer.runs[n-1]
		if last&sampleMask == sample && last&runMask < runMask {
			buffer.runs[n-1]++
			return nil
		}
	}
	buffer.runs = append(buffer.runs, sample)
	return nil
}

func (buffer *Buffer) Write(p []byte) (int, error) {
	for _, b := range p {
		_ = buffer.WriteByte(b)
	}
	return len(p), nil
}

// Read decodes quantized samples into p.
func (buffer *Buffer) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && buffer.off < len(buffer.runs) {
		run := buffer.runs[buffer.off]
		p[n] = run & sampleMask
		n++
		if run&runMask > 0 {
			buffer.runs[buffer.off]--
		} else {
			buffer.off++
		}
	}

	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Grow reserves space for encoding about n more samples.
func (buffer *Buffer) Grow(n int) {
	if need := n / 2; cap(buffer.runs)-len(buffer.runs) < need {
		runs := make([]byte, len(buffer.runs), len(buffer.runs)+need)
		copy(runs, buffer.runs)
		buffer.runs = runs
	}
}

// Buffer returns the unread runs.
func (buffer *Buffer) Buffer() []byte {
	return buffer.runs[buffer.off:]
}
