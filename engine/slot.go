// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ik5/audtrig/audio"
	"github.com/ik5/audtrig/formats/mp4"
	"github.com/ik5/audtrig/storage"
)

// State is the lifecycle position of a slot.
type State int32

const (
	StateInactive State = iota
	StateOpening
	StateStreaming
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// unityGain is gain 1.0 in the 16.16 fixed point used by the mixer.
const unityGain = 1 << 16

// slot is one playback stream. Fields in the first group are shared with the
// output goroutine and are atomics; the rest belong to the control side and
// are only touched under the engine mutex.
type slot struct {
	active   atomic.Bool
	gain     atomic.Uint32
	mixing   atomic.Int32
	finished atomic.Bool
	stopReq  atomic.Bool
	state    atomic.Int32
	ring     *audio.Ring
	channels int

	index      int
	name       string
	format     audio.Format
	device     storage.Device
	sampleRate int
	codec      audio.Codec
	decIdx     int
	file       *storage.Handle
	parser     *mp4.Parser
	src        audio.Source
	scratch    []int16
}

func newSlot(index, ringSize int) *slot {
	s := &slot{
		index:   index,
		ring:    audio.NewRing(ringSize),
		decIdx:  -1,
		scratch: make([]int16, 4096),
	}
	s.gain.Store(unityGain)
	return s
}

func (s *slot) setState(st State) { s.state.Store(int32(st)) }
func (s *slot) getState() State   { return State(s.state.Load()) }

// drained reports that the consumer cannot pop another whole frame.
func (s *slot) drained() bool {
	return s.ring.AvailableForRead() < s.channels
}

func gainToFixed(g float64) uint32 {
	switch {
	case math.IsNaN(g) || g <= 0:
		return 0
	case g >= 1:
		return unityGain
	default:
		return uint32(math.Round(g * unityGain))
	}
}

func fixedToGain(v uint32) float64 { return float64(v) / unityGain }

// GainFromLevel converts a 0..99 volume level into a gain in [0, 1].
// Levels outside the range are clamped.
func GainFromLevel(level int) float64 {
	level = min(max(level, 0), 99)
	return float64(level) / 99
}

// Status describes a slot for reporting.
type Status struct {
	Index  int
	Name   string
	Format audio.Format
	Device storage.Device
	Gain   float64
	State  State
}

func (s Status) String() string {
	if s.State == StateInactive {
		return fmt.Sprintf("%d: idle", s.Index)
	}
	return fmt.Sprintf("%d: %s (%s, %s) gain=%.2f %s",
		s.Index, s.Name, s.Format, s.Device, s.Gain, s.State)
}
