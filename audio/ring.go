// SPDX-License-Identifier: EPL-2.0

package audio

import "sync/atomic"

// Ring is a fixed-capacity single-producer, single-consumer queue of int16
// samples.
//
// Capacity is a power of two and one slot is always left unused, so the ring
// holds at most Cap()-1 samples: empty when readPos == writePos, full when
// advancing writePos would reach readPos.
//
// Thread assignment:
//   - Push, AvailableForWrite: producer only
//   - Pop, AvailableForRead: consumer only
//
// The indices are atomics so each side observes the other's progress and the
// sample written before a writePos store. No locks are taken.
type Ring struct {
	writePos atomic.Uint32
	_pad1    [60]byte
	readPos  atomic.Uint32
	_pad2    [60]byte

	buf  []int16
	mask uint32
}

// NewRing creates a ring with capacity rounded up to the next power of two.
// The minimum capacity is 2.
func NewRing(minSize int) *Ring {
	size := 2
	for size < minSize {
		size <<= 1
	}
	return &Ring{
		buf:  make([]int16, size),
		mask: uint32(size - 1),
	}
}

// Cap returns the ring capacity N. At most N-1 samples are stored.
func (r *Ring) Cap() int { return len(r.buf) }

// Push appends one sample. It returns false and drops the sample when the
// ring is full; queued data is never overwritten.
func (r *Ring) Push(s int16) bool {
	w := r.writePos.Load()
	next := (w + 1) & r.mask
	if next == r.readPos.Load() {
		return false
	}

	r.buf[w] = s
	r.writePos.Store(next)
	return true
}

// PushSlice pushes as many samples from src as fit and returns the count.
func (r *Ring) PushSlice(src []int16) int {
	for i, s := range src {
		if !r.Push(s) {
			return i
		}
	}
	return len(src)
}

// Pop removes and returns the oldest sample. The caller must check
// AvailableForRead first; popping an empty ring returns stale data.
func (r *Ring) Pop() int16 {
	rp := r.readPos.Load()
	s := r.buf[rp]
	r.readPos.Store((rp + 1) & r.mask)
	return s
}

// AvailableForRead returns the number of queued samples.
func (r *Ring) AvailableForRead() int {
	return int((r.writePos.Load() - r.readPos.Load()) & r.mask)
}

// AvailableForWrite returns how many samples can be pushed before Push fails.
func (r *Ring) AvailableForWrite() int {
	return len(r.buf) - 1 - r.AvailableForRead()
}

// Clear resets both indices. Stale samples stay in memory but are invisible.
// Only call while neither side is using the ring.
func (r *Ring) Clear() {
	r.readPos.Store(0)
	r.writePos.Store(0)
}
