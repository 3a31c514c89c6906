// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audtrig/audio"
	"github.com/ik5/audtrig/utils"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

func openOggVorbis(r io.Reader) (oggReader, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec, nil
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	floatBuf   *[]float32
	done       bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []int16) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	// Whole frames only, so a read never splits a channel group.
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	if cap(*s.floatBuf) < want {
		*s.floatBuf = make([]float32, want)
	}
	buf := (*s.floatBuf)[:want]

	// oggvorbis returns the number of float values written
	n, err := s.dec.Read(buf)
	utils.Float32sToInt16(dst[:n], buf[:n])

	if err != nil {
		if err == io.EOF {
			s.done = true
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		return n, fmt.Errorf("%w", err)
	}

	return n, nil
}

// Decoder decodes Ogg Vorbis streams and keeps a float scratch buffer
// between them, so a Decoder serves one stream at a time. The zero value is
// ready to use.
type Decoder struct {
	open     func(io.Reader) (oggReader, error)
	floatBuf []float32
}

func NewDecoder() *Decoder {
	return &Decoder{floatBuf: make([]float32, 4096)}
}

func (d *Decoder) Decode(r io.Reader) (audio.Source, error) {
	open := d.open
	if open == nil {
		open = openOggVorbis
	}

	dec, err := open(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	channels := dec.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoChannels, channels)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   channels,
		floatBuf:   &d.floatBuf,
	}, nil
}
