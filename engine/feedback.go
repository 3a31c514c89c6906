// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"time"
)

// feedbackSlot is the slot taken by PlayBlocking.
const feedbackSlot = 0

// PlayBlocking plays path on slot 0 and returns when it has been fully heard,
// pumping Fill and Reap itself so it works without a running control loop.
// A missing file is skipped without error. The mute gate is opened for the
// duration and restored afterwards.
//
// Cancelling ctx stops the clip and returns ctx.Err().
func (e *Engine) PlayBlocking(ctx context.Context, path string) error {
	if !e.store.Exists(path) {
		e.log.Debug("feedback clip missing, skipped", "path", path)
		return nil
	}

	prev := e.audible.Swap(true)
	defer e.audible.Store(prev)

	if err := e.Start(feedbackSlot, path); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		e.Fill()
		e.Reap()
		if !e.IsActive(feedbackSlot) {
			return nil
		}

		select {
		case <-ctx.Done():
			e.mu.Lock()
			e.stopLocked(e.slots[feedbackSlot])
			e.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
