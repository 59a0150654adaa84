// Package intstream provides pooled, growable blocks of 32-bit words. Mesh
// streams store all polygon data in these blocks.
//
// A Pool and every Stream claimed from it are confined to one goroutine.
// There is no locking; callers that bake meshes concurrently give each
// worker its own Pool.
package intstream

import (
	"fmt"
	"math"
	mbits "math/bits"
)

// DefaultCapacity is the capacity in words of a stream claimed without an
// explicit size.
const DefaultCapacity = 512

// Stream is an owned, resizable block of words with a reference count.
// Bounds on Get are the caller's responsibility; an out-of-range read is a
// programming error and fails with the runtime bounds panic.
type Stream struct {
	data []uint32
	// high is one past the highest index written since the last Clear.
	high int
	refs int
	pool *Pool
}

// Capacity returns the number of words that can be stored without growing.
func (s *Stream) Capacity() int {
	return len(s.data)
}

// Len returns one past the highest index written since the last Clear.
func (s *Stream) Len() int {
	return s.high
}

// Get returns the word at index.
func (s *Stream) Get(index int) uint32 {
	return s.data[index]
}

// Set stores value at index, growing the stream if needed.
func (s *Stream) Set(index int, value uint32) {
	if index >= len(s.data) {
		s.Grow(index + 1)
	}
	s.data[index] = value
	if index >= s.high {
		s.high = index + 1
	}
}

// GetFloat returns the word at index reinterpreted as a float32.
func (s *Stream) GetFloat(index int) float32 {
	return math.Float32frombits(s.data[index])
}

// SetFloat stores the bits of value at index.
func (s *Stream) SetFloat(index int, value float32) {
	s.Set(index, math.Float32bits(value))
}

// Grow reallocates the stream so that it holds at least required words.
// Capacity at least doubles; existing words keep their offsets.
func (s *Stream) Grow(required int) {
	if required <= len(s.data) {
		return
	}
	newCap := len(s.data) * 2
	if newCap < required {
		newCap = roundUpPow2(required)
	}
	data := make([]uint32, newCap)
	copy(data, s.data[:s.high])
	s.data = data
}

// CopyFrom copies length words from src starting at srcOffset into this
// stream starting at dstOffset.
func (s *Stream) CopyFrom(dstOffset int, src *Stream, srcOffset, length int) {
	if length <= 0 {
		return
	}
	end := dstOffset + length
	if end > len(s.data) {
		s.Grow(end)
	}
	srcEnd := srcOffset + length
	if srcEnd > len(src.data) {
		// Words past the source capacity have never been written and read
		// back as zero.
		n := copy(s.data[dstOffset:end], src.data[srcOffset:])
		clear(s.data[dstOffset+n : end])
	} else {
		copy(s.data[dstOffset:end], src.data[srcOffset:srcEnd])
	}
	if end > s.high {
		s.high = end
	}
}

// Clear logically empties the stream. Every word that was written is
// zeroed; capacity is retained.
func (s *Stream) Clear() {
	clear(s.data[:s.high])
	s.high = 0
}

// Compact shrinks capacity to the written length.
func (s *Stream) Compact() {
	if len(s.data) == s.high {
		return
	}
	data := make([]uint32, s.high)
	copy(data, s.data)
	s.data = data
}

// Retain adds a reference. Each Retain must be matched by a Release.
func (s *Stream) Retain() {
	if s.refs <= 0 {
		panic("intstream: retain of released stream")
	}
	s.refs++
}

// Release drops a reference. When the last reference is gone the stream
// goes back to its pool and must not be used again.
func (s *Stream) Release() {
	if s.refs <= 0 {
		panic("intstream: release of released stream")
	}
	s.refs--
	if s.refs == 0 && s.pool != nil {
		s.pool.put(s)
	}
}

// Refs returns the current reference count.
func (s *Stream) Refs() int {
	return s.refs
}

// String implements fmt.Stringer for debugging.
func (s *Stream) String() string {
	return fmt.Sprintf("intstream(len=%d cap=%d refs=%d)", s.high, len(s.data), s.refs)
}

func roundUpPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << mbits.Len(uint(n-1))
}
