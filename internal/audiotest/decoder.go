// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ik5/audtrig/audio"
)

// FailMagic at the start of a file makes Decoder.Decode fail.
const FailMagic = "FAIL"

// Decoder is a stand-in for a pooled codec. Decode reads the whole input and
// returns a constant source with one frame per input byte; DecodeFrames
// counts container frames and emits FrameSamples frames per input frame.
type Decoder struct {
	Rate         int
	Chans        int
	Value        int16
	FrameSamples int
	// FailAfter, when non-zero, makes the returned source fail after that
	// many frames.
	FailAfter int

	mu      sync.Mutex
	sources []*MockSource
}

// NewDecoder returns a stereo 44.1 kHz decoder emitting value.
func NewDecoder(value int16) *Decoder {
	return &Decoder{Rate: 44100, Chans: 2, Value: value, FrameSamples: 4}
}

func (d *Decoder) Decode(r io.Reader) (audio.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte(FailMagic)) {
		return nil, ErrInjected
	}
	if len(data) == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	return d.track(NewConstantSource(d.Rate, d.Chans, len(data), d.Value)), nil
}

func (d *Decoder) DecodeFrames(fs audio.FrameSource) (audio.Source, error) {
	buf := make([]byte, 8192)
	frames := 0
	for {
		_, err := fs.ReadNextFrame(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", frames, err)
		}
		frames++
	}
	if frames == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	return d.track(NewConstantSource(d.Rate, d.Chans, frames*d.FrameSamples, d.Value)), nil
}

func (d *Decoder) track(src *MockSource) *MockSource {
	if d.FailAfter > 0 {
		src.FailAfter(d.FailAfter)
	}

	d.mu.Lock()
	d.sources = append(d.sources, src)
	d.mu.Unlock()

	return src
}

// Sources returns every source handed out so far.
func (d *Decoder) Sources() []*MockSource {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]*MockSource(nil), d.sources...)
}

var (
	_ audio.Decoder      = (*Decoder)(nil)
	_ audio.FrameDecoder = (*Decoder)(nil)
)
