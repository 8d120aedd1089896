// Package lifo provides a frame-disciplined scratch arena.
//
// Allocation is strictly stack-ordered: a caller pushes a frame, takes
// as many allocations as it needs, and pops the frame to release them
// all at once. Frames nest. The arena is for short-lived scratch
// buffers inside one call chain; it is not safe for concurrent use.
package lifo

import (
	"errors"

	"github.com/chazu/tether/diag"
)

const alignment = 8

// ErrNoFrame is returned by PopFrame when no frame is open.
var ErrNoFrame = errors.New("lifo: no open frame")

// Arena is a growable scratch buffer with nested mark/restore.
type Arena struct {
	buf   []byte
	off   int
	marks []int
	limit int // hard cap in bytes; 0 means unlimited
}

// New creates an arena with the given initial capacity and hard cap.
// A limit of 0 means the arena grows without bound.
func New(capacity, limit int) *Arena {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{
		buf:   make([]byte, capacity),
		marks: make([]int, 0, 8),
		limit: limit,
	}
}

// PushFrame opens a new allocation frame.
func (a *Arena) PushFrame() {
	a.marks = append(a.marks, a.off)
}

// PopFrame releases every allocation made since the matching
// PushFrame.
func (a *Arena) PopFrame() error {
	if len(a.marks) == 0 {
		return ErrNoFrame
	}
	a.off = a.marks[len(a.marks)-1]
	a.marks = a.marks[:len(a.marks)-1]
	return nil
}

// Alloc returns n zeroed bytes from the current frame, aligned to 8
// bytes. Exceeding the arena's hard cap fails with
// diag.CodeAllocation.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, diag.Allocation("negative-size block")
	}
	start := align(a.off)
	end := start + n
	if a.limit > 0 && end > a.limit {
		return nil, diag.Allocation("arena block")
	}
	if end > len(a.buf) {
		grown := make([]byte, nextSize(len(a.buf), end))
		copy(grown, a.buf[:a.off])
		a.buf = grown
	}
	a.off = end
	b := a.buf[start:end:end]
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// Depth returns the number of open frames.
func (a *Arena) Depth() int { return len(a.marks) }

// Used returns the bytes currently allocated across all frames.
func (a *Arena) Used() int { return a.off }

// Reset discards every frame and allocation. Capacity is retained.
func (a *Arena) Reset() {
	a.off = 0
	a.marks = a.marks[:0]
}

func align(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

func nextSize(have, need int) int {
	if have == 0 {
		have = 64
	}
	for have < need {
		have *= 2
	}
	return have
}
