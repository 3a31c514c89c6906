// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"io"
	"time"
)

// DefaultFillInterval is the control loop period used by Run.
const DefaultFillInterval = 2 * time.Millisecond

// Fill tops up the ring of every active slot from its source. It reads at
// most what each ring can take, in whole frames, and never waits for the
// output side. A source that ends marks its slot finished; a source that
// fails marks it for stopping.
func (e *Engine) Fill() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range e.slots {
		if !s.active.Load() || s.finished.Load() || s.stopReq.Load() {
			continue
		}
		e.fillSlot(s)
	}
}

func (e *Engine) fillSlot(s *slot) {
	ch := s.channels
	for {
		space := s.ring.AvailableForWrite()
		space -= space % ch
		if space == 0 {
			return
		}

		want := min(space, len(s.scratch)-len(s.scratch)%ch)
		n, err := s.src.ReadSamples(s.scratch[:want])
		if n > 0 {
			pushed := s.ring.PushSlice(s.scratch[:n])
			if pushed < n {
				e.samplesDrop.Add(uint64(n - pushed))
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			s.finished.Store(true)
			s.setState(StateDraining)
			return
		case err != nil:
			e.log.Warn("decode failed, stopping", "slot", s.index, "path", s.name, "error", err)
			s.stopReq.Store(true)
			return
		case n == 0:
			return
		}
	}
}

// Reap stops slots that asked to stop and slots whose source ended and whose
// ring the output side has emptied. It returns the number of slots stopped.
func (e *Engine) Reap() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, s := range e.slots {
		if !s.active.Load() {
			continue
		}
		if s.stopReq.Load() || (s.finished.Load() && s.drained()) {
			e.stopLocked(s)
			n++
		}
	}
	return n
}

// Run drives Fill and Reap every interval and flushes counters to the
// metrics until ctx is done. A non-positive interval uses
// DefaultFillInterval.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFillInterval
	}

	e.log.Debug("control loop started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	flush := time.NewTicker(time.Second)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			e.FlushMetrics(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			e.Fill()
			e.Reap()
		case <-flush.C:
			e.FlushMetrics(ctx)
		}
	}
}
