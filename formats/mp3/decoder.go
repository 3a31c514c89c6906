// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audtrig/audio"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

func openGoMP3(r io.Reader) (mp3Reader, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return dec, nil
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        *[]byte
	done       bool
}

func (s *source) SampleRate() int { return s.sampleRate }

// Channels is always 2: go-mp3 upmixes mono streams.
func (s *source) Channels() int { return 2 }
func (s *source) Close() error  { return nil }

func (s *source) ReadSamples(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	// go-mp3 returns 16-bit little-endian PCM bytes (stereo interleaved)
	bytesNeeded := len(dst) * 2
	if cap(*s.buf) < bytesNeeded {
		*s.buf = make([]byte, bytesNeeded)
	}
	buf := (*s.buf)[:bytesNeeded]

	n, err := io.ReadFull(s.dec, buf)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		s.done = true
	default:
		return 0, fmt.Errorf("%w", err)
	}

	samples := n / 2
	for i := range samples {
		dst[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
	}

	if samples == 0 && s.done {
		return 0, io.EOF
	}

	return samples, nil
}

// Decoder decodes MPEG-1/2 Layer III streams. It keeps one PCM byte buffer
// that the stream it is serving reads through, so a Decoder serves one
// stream at a time; pool them with audio.DecoderPool. The zero value is
// ready to use.
type Decoder struct {
	open func(io.Reader) (mp3Reader, error)
	buf  []byte
}

func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 8192)}
}

func (d *Decoder) Decode(r io.Reader) (audio.Source, error) {
	open := d.open
	if open == nil {
		open = openGoMP3
	}

	dec, err := open(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        &d.buf,
	}, nil
}
