// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/ik5/audtrig/internal/observe"
)

// MixFrame produces one stereo output frame. Each active slot contributes
// one frame from its ring (mono is duplicated to both sides) scaled by its
// gain; a slot with nothing buffered contributes silence. With the mute gate
// closed slots still drain but the result is silent.
//
// MixFrame is the output side of every ring. Only one goroutine may call it
// and it never blocks.
func (e *Engine) MixFrame() (l, r int16) {
	var accL, accR int32

	for _, s := range e.slots {
		s.mixing.Add(1)
		if !s.active.Load() {
			s.mixing.Add(-1)
			continue
		}

		ch := s.channels
		if s.ring.AvailableForRead() >= ch {
			a := int32(s.ring.Pop())
			b := a
			if ch == 2 {
				b = int32(s.ring.Pop())
			}
			g := int32(s.gain.Load())
			accL += a * g >> 16
			accR += b * g >> 16
		} else if !s.finished.Load() {
			e.underruns.Add(1)
		}
		s.mixing.Add(-1)
	}

	e.framesMixed.Add(1)

	if !e.audible.Load() {
		return 0, 0
	}
	return clamp16(accL), clamp16(accR)
}

func clamp16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Read fills p with interleaved stereo signed 16-bit little-endian frames
// from MixFrame, so a pull-based audio device can drive the mixer. It always
// fills whole frames and never returns an error.
func (e *Engine) Read(p []byte) (int, error) {
	frames := len(p) / 4
	for i := range frames {
		l, r := e.MixFrame()
		binary.LittleEndian.PutUint16(p[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(r))
	}
	return frames * 4, nil
}

// MixInto fills dst with interleaved stereo samples from MixFrame and
// returns the number of frames written.
func (e *Engine) MixInto(dst []int16) int {
	frames := len(dst) / 2
	for i := range frames {
		dst[2*i], dst[2*i+1] = e.MixFrame()
	}
	return frames
}

// Counts returns the hot-path counters accumulated so far.
func (e *Engine) Counts() observe.Counts {
	return observe.Counts{
		Underruns:      e.underruns.Load(),
		SamplesDropped: e.samplesDrop.Load(),
		FramesDecoded:  e.framesMixed.Load(),
	}
}

// FlushMetrics records the counter deltas since the previous flush.
func (e *Engine) FlushMetrics(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.Counts()
	e.metrics.RecordCounts(ctx, cur.Sub(e.lastFlushed))
	e.lastFlushed = cur
}
