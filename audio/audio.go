// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved signed 16-bit samples.
	// Returns number of int16 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []int16) (n int, err error)

	// Close releases any resources held by the decoder. It never closes the
	// underlying file; the stream slot owns that.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// FrameSource yields one self-describing compressed frame per call.
// It returns 0 and an error (io.EOF at end of track) when no frame is produced.
type FrameSource interface {
	ReadNextFrame(buf []byte) (int, error)
}

// FrameDecoder is implemented by decoders that can consume frames extracted
// from a container instead of a raw byte stream.
type FrameDecoder interface {
	DecodeFrames(fs FrameSource) (Source, error)
}

// Registry for stateless decoders by format (raw PCM formats).
type Registry struct {
	codecs map[Format]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[Format]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format Format, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format Format) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}
