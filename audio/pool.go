// SPDX-License-Identifier: EPL-2.0

package audio

import "sync"

// DecoderPool is a fixed set of reusable decoder instances with one in-use
// flag per instance. A stream borrows an index for its whole lifetime and
// hands it back on stop.
type DecoderPool[T any] struct {
	mu    sync.Mutex
	items []T
	inUse []bool
}

// NewDecoderPool allocates n decoders up front with newFn.
func NewDecoderPool[T any](n int, newFn func() T) *DecoderPool[T] {
	p := &DecoderPool[T]{
		items: make([]T, n),
		inUse: make([]bool, n),
	}
	for i := range n {
		p.items[i] = newFn()
	}
	return p
}

// Acquire returns the first free index and its decoder. ok is false when
// every instance is borrowed; Acquire never waits.
func (p *DecoderPool[T]) Acquire() (idx int, dec T, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, used := range p.inUse {
		if !used {
			p.inUse[i] = true
			return i, p.items[i], true
		}
	}

	var zero T
	return -1, zero, false
}

// Release marks idx free again. Out-of-range indices are ignored.
func (p *DecoderPool[T]) Release(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx < 0 || idx >= len(p.inUse) {
		return
	}
	p.inUse[idx] = false
}

// InUse reports whether idx is currently borrowed.
func (p *DecoderPool[T]) InUse(idx int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx < 0 || idx >= len(p.inUse) {
		return false
	}
	return p.inUse[idx]
}

// Free returns the number of instances available for borrowing.
func (p *DecoderPool[T]) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, used := range p.inUse {
		if !used {
			n++
		}
	}
	return n
}

// Len returns the pool size.
func (p *DecoderPool[T]) Len() int { return len(p.items) }
