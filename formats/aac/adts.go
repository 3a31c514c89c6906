// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"bufio"
	"fmt"
	"io"
)

const (
	// HeaderLen is the size of an ADTS header without CRC.
	HeaderLen = 7

	// MaxFrameSize bounds one ADTS frame: the length field is 13 bits wide.
	MaxFrameSize = 1<<13 - 1

	// ProfileLC is the MPEG-4 audio object type for AAC Low Complexity.
	ProfileLC = 2

	// maxResync bounds how many bytes are skipped looking for a sync word.
	maxResync = 64 * 1024
)

// sampleRates is the ADTS sampling frequency table indexed by sampling index.
var sampleRates = [...]int{96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000, 12000, 11025, 8000, 7350}

// SampleRateIndex maps a sample rate to its ADTS sampling index using a
// descending threshold ladder. Rates below 12 kHz fall through to index 9.
func SampleRateIndex(rate int) int {
	for i, threshold := range sampleRates[:9] {
		if rate >= threshold {
			return i
		}
	}
	return 9
}

// SampleRateFromIndex returns the rate for an ADTS sampling index, or 0.
func SampleRateFromIndex(idx int) int {
	if idx < 0 || idx >= len(sampleRates) {
		return 0
	}
	return sampleRates[idx]
}

// WriteADTSHeader writes a 7-byte ADTS header into dst[:7].
// frameLen is the full frame length including the header. The profile is
// always AAC-LC; the container's object type is not consulted.
func WriteADTSHeader(dst []byte, frameLen, sampleRate, channels int) {
	idx := SampleRateIndex(sampleRate)

	dst[0] = 0xFF
	dst[1] = 0xF1 // MPEG-4, layer 0, no CRC
	dst[2] = byte((ProfileLC-1)<<6) | byte(idx<<2) | byte((channels>>2)&0x01)
	dst[3] = byte((channels&0x03)<<6) | byte(frameLen>>11)
	dst[4] = byte(frameLen >> 3)
	dst[5] = byte((frameLen&0x07)<<5) | 0x1F
	dst[6] = 0xFC
}

// Header holds the fields of a parsed ADTS header.
type Header struct {
	Profile     int // MPEG-4 audio object type
	SampleIndex int
	Channels    int
	FrameLen    int // header + payload
	HeaderLen   int // 7, or 9 with CRC
}

// SampleRate returns the rate encoded by the sampling index.
func (h Header) SampleRate() int { return SampleRateFromIndex(h.SampleIndex) }

// ParseHeader decodes the ADTS header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, io.ErrUnexpectedEOF
	}
	if b[0] != 0xFF || b[1]&0xF6 != 0xF0 {
		return Header{}, ErrNoSync
	}

	h := Header{
		Profile:     int(b[2]>>6) + 1,
		SampleIndex: int(b[2]>>2) & 0x0F,
		Channels:    int(b[2]&0x01)<<2 | int(b[3]>>6),
		FrameLen:    int(b[3]&0x03)<<11 | int(b[4])<<3 | int(b[5]>>5),
		HeaderLen:   HeaderLen,
	}
	if b[1]&0x01 == 0 {
		h.HeaderLen = 9
	}
	if h.FrameLen < h.HeaderLen {
		return Header{}, ErrShortFrame
	}

	return h, nil
}

// ADTSReader splits a raw ADTS byte stream (.aac file) into frames.
// A leading ID3v2 tag is skipped.
type ADTSReader struct {
	r       *bufio.Reader
	started bool
}

func NewADTSReader(r io.Reader) *ADTSReader {
	return &ADTSReader{r: bufio.NewReaderSize(r, 16*1024)}
}

// ReadNextFrame copies the next complete frame, header included, into buf.
// It returns io.EOF at a clean end of stream.
func (a *ADTSReader) ReadNextFrame(buf []byte) (int, error) {
	if !a.started {
		a.started = true
		if err := a.skipID3(); err != nil {
			return 0, err
		}
	}

	hdr, err := a.sync()
	if err != nil {
		return 0, err
	}
	if hdr.FrameLen > len(buf) {
		return 0, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, hdr.FrameLen, len(buf))
	}

	if _, err := io.ReadFull(a.r, buf[:hdr.FrameLen]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("reading ADTS frame: %w", err)
	}

	return hdr.FrameLen, nil
}

// sync advances to the next valid header without consuming it.
func (a *ADTSReader) sync() (Header, error) {
	for skipped := 0; skipped < maxResync; skipped++ {
		peek, err := a.r.Peek(HeaderLen)
		if len(peek) < HeaderLen {
			if err == nil || err == io.EOF {
				return Header{}, io.EOF
			}
			return Header{}, fmt.Errorf("%w", err)
		}

		hdr, err := ParseHeader(peek)
		if err == nil {
			return hdr, nil
		}
		if _, err := a.r.Discard(1); err != nil {
			return Header{}, fmt.Errorf("%w", err)
		}
	}

	return Header{}, ErrNoSync
}

func (a *ADTSReader) skipID3() error {
	peek, _ := a.r.Peek(10)
	if len(peek) < 10 || string(peek[:3]) != "ID3" {
		return nil
	}

	// Tag size is a 28-bit syncsafe integer excluding the 10-byte header.
	size := int(peek[6]&0x7F)<<21 | int(peek[7]&0x7F)<<14 | int(peek[8]&0x7F)<<7 | int(peek[9]&0x7F)
	if peek[5]&0x10 != 0 {
		size += 10 // footer present
	}
	if _, err := a.r.Discard(10 + size); err != nil && err != io.EOF {
		return fmt.Errorf("skipping ID3 tag: %w", err)
	}

	return nil
}
