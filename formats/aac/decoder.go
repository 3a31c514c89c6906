// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"errors"
	"fmt"
	"io"

	goaac "github.com/llehouerou/go-aac"

	"github.com/ik5/audtrig/audio"
)

// codec is the subset of *goaac.Decoder used here, to allow testing.
type codec interface {
	SimpleInit(data []byte) (sampleRate uint32, channels uint8, err error)
	DecodeInt16(frame []byte) ([]int16, error)
	Close()
}

// Decoder decodes AAC-LC carried as ADTS frames. A Decoder serves one stream
// at a time and is meant to be borrowed from an audio.DecoderPool: the frame
// buffer is allocated once and reused by every stream it decodes.
type Decoder struct {
	newCodec func() codec
	codec    codec
	frame    []byte
}

func NewDecoder() *Decoder {
	return &Decoder{
		newCodec: func() codec { return goaac.NewDecoder() },
		frame:    make([]byte, MaxFrameSize),
	}
}

// Decode reads a raw ADTS stream such as an .aac file.
func (d *Decoder) Decode(r io.Reader) (audio.Source, error) {
	return d.DecodeFrames(NewADTSReader(r))
}

// DecodeFrames decodes frames produced by fs, each carrying its own ADTS
// header. Any previous stream on d is abandoned.
func (d *Decoder) DecodeFrames(fs audio.FrameSource) (audio.Source, error) {
	d.reset()

	n, err := fs.ReadNextFrame(d.frame)
	if err != nil {
		return nil, fmt.Errorf("reading first frame: %w", err)
	}

	d.codec = d.newCodec()
	rate, channels, err := d.codec.SimpleInit(d.frame[:n])
	if err != nil {
		d.reset()
		return nil, fmt.Errorf("initializing AAC decoder: %w", err)
	}
	if channels == 0 {
		d.reset()
		return nil, fmt.Errorf("initializing AAC decoder: %w", ErrShortFrame)
	}

	return &source{
		dec:        d,
		codec:      d.codec,
		fs:         fs,
		sampleRate: int(rate),
		channels:   int(channels),
		pendingLen: n,
	}, nil
}

func (d *Decoder) reset() {
	if d.codec != nil {
		d.codec.Close()
		d.codec = nil
	}
}

type source struct {
	dec        *Decoder
	codec      codec
	fs         audio.FrameSource
	sampleRate int
	channels   int

	pcm []int16
	pos int

	// pendingLen is the size of the first frame, still in dec.frame and not
	// yet decoded.
	pendingLen int
	eof        bool
	closed     bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

// Close releases the codec unless the Decoder already moved on to another
// stream.
func (s *source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pcm = nil
	if s.dec.codec == s.codec {
		s.dec.reset()
	}
	return nil
}

func (s *source) ReadSamples(dst []int16) (int, error) {
	if s.closed {
		return 0, io.EOF
	}

	written := 0
	for written < len(dst) {
		if s.pos < len(s.pcm) {
			c := copy(dst[written:], s.pcm[s.pos:])
			written += c
			s.pos += c
			continue
		}
		if s.eof {
			break
		}

		if err := s.decodeNext(); err != nil {
			if errors.Is(err, io.EOF) {
				s.eof = true
				break
			}
			return written, err
		}
	}

	if written == 0 && s.eof {
		return 0, io.EOF
	}

	return written, nil
}

func (s *source) decodeNext() error {
	n := s.pendingLen
	s.pendingLen = 0
	if n == 0 {
		var err error
		n, err = s.fs.ReadNextFrame(s.dec.frame)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("reading frame: %w", err)
		}
	}

	pcm, err := s.codec.DecodeInt16(s.dec.frame[:n])
	if err != nil {
		return fmt.Errorf("decoding frame: %w", err)
	}
	s.pcm = pcm
	s.pos = 0

	return nil
}
