// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audtrig/formats/aac"
)

// TrackInfo describes the audio track selected by Open.
type TrackInfo struct {
	SampleRate int
	Channels   int
	// SampleCount is the number of AAC access units in the track.
	SampleCount int
	ChunkCount  int
	// SharedSampleSize is non-zero when every sample has the same size.
	SharedSampleSize int
}

// track holds the sample-table locations of one accepted trak.
type track struct {
	info TrackInfo

	sizes   int64 // first stsz entry; unused when shared != 0
	shared  uint32
	total   uint32
	offsets int64 // first stco entry
	chunks  uint32
	runs    int64 // first stsc entry
	nruns   uint32

	firstPerChunk uint32
	firstOffset   uint32
}

// Parser extracts AAC frames from the first audio track of an MP4/M4A file.
// Sample tables are not loaded into memory; each frame costs a few small
// reads. A Parser is not safe for concurrent use.
type Parser struct {
	r          io.ReaderAt
	trk        track
	mdatOffset int64

	sample   uint32
	chunk    uint32 // 1-based
	inChunk  uint32
	perChunk uint32
	offset   int64
}

// Open scans the box tree of an MP4 file of the given size and positions the
// parser on the first sample of the first AAC audio track.
//
// Open fails with ErrNoMovie when the file has no moov box and with
// ErrNoAudioTrack when no trak qualifies. A malformed box before the track is
// found yields ErrCorrupt.
func Open(r io.ReaderAt, size int64) (*Parser, error) {
	p := &Parser{r: r, mdatOffset: -1}

	var foundMoov, foundTrack bool
	var trackErr error

	err := walk(r, 0, size, maxTopBoxes, func(b box) (bool, error) {
		switch b.typ {
		case typeMdat:
			if p.mdatOffset < 0 {
				p.mdatOffset = b.content
			}
		case typeMoov:
			if foundTrack {
				return false, nil
			}
			foundMoov = true
			foundTrack, trackErr = p.scanMoov(b)
		}
		return false, nil
	})

	switch {
	case foundTrack:
		p.rewind()
		return p, nil
	case err != nil:
		return nil, err
	case !foundMoov:
		return nil, ErrNoMovie
	case trackErr != nil:
		return nil, fmt.Errorf("%w: %w", ErrNoAudioTrack, trackErr)
	default:
		return nil, ErrNoAudioTrack
	}
}

// scanMoov returns true once a trak has been accepted. Errors from rejected
// traks are only reported when no trak qualifies.
func (p *Parser) scanMoov(moov box) (bool, error) {
	found := false
	var lastErr error

	err := walk(p.r, moov.content, moov.end, maxMoovBoxes, func(b box) (bool, error) {
		if b.typ != typeTrak {
			return false, nil
		}

		t, ok, err := scanTrak(p.r, b)
		if err != nil {
			lastErr = err
			return false, nil
		}
		if ok {
			p.trk = t
			found = true
		}
		return found, nil
	})

	if found {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, lastErr
}

func scanTrak(r io.ReaderAt, trak box) (track, bool, error) {
	mdia, ok, err := findChild(r, trak, typeMdia, maxTrakBoxes)
	if err != nil || !ok {
		return track{}, false, err
	}

	var handler uint32
	var stbl box
	haveStbl := false

	err = walk(r, mdia.content, mdia.end, maxMdiaBoxes, func(b box) (bool, error) {
		switch b.typ {
		case typeHdlr:
			v, err := readU32(r, b.content+8)
			if err != nil {
				return false, err
			}
			handler = v
		case typeMinf:
			s, ok, err := findChild(r, b, typeStbl, maxMinfBoxes)
			if err != nil {
				return false, err
			}
			stbl, haveStbl = s, ok
		}
		return false, nil
	})
	if err != nil {
		return track{}, false, err
	}
	if handler != typeSoun || !haveStbl {
		return track{}, false, nil
	}

	return loadSampleTable(r, stbl)
}

func loadSampleTable(r io.ReaderAt, stbl box) (track, bool, error) {
	var stsd, stsz, stco, stsc *box

	err := walk(r, stbl.content, stbl.end, maxStblBoxes, func(b box) (bool, error) {
		switch b.typ {
		case typeStsd:
			stsd = &b
		case typeStsz:
			stsz = &b
		case typeStco:
			stco = &b
		case typeStsc:
			stsc = &b
		}
		return false, nil
	})
	if err != nil {
		return track{}, false, err
	}
	if stsd == nil || stsz == nil || stco == nil || stsc == nil {
		return track{}, false, nil
	}

	var t track

	// stsd: version/flags, entry count, then the first sample entry.
	c := stsd.content
	if c+44 > stsd.end {
		return track{}, false, fmt.Errorf("%w: stsd too short", ErrCorrupt)
	}
	format, err := readU32(r, c+12)
	if err != nil {
		return track{}, false, err
	}
	if format != typeMp4a {
		return track{}, false, nil
	}
	ch, err := readU32(r, c+32)
	if err != nil {
		return track{}, false, err
	}
	rate, err := readU32(r, c+40)
	if err != nil {
		return track{}, false, err
	}
	t.info.Channels = int(ch >> 16)
	t.info.SampleRate = int(rate >> 16)
	if t.info.Channels == 0 || t.info.SampleRate == 0 {
		return track{}, false, fmt.Errorf("%w: mp4a entry has %d channels at %d Hz", ErrCorrupt, t.info.Channels, t.info.SampleRate)
	}

	// stsz: version/flags, shared size, count, sizes.
	c = stsz.content
	if t.shared, err = readU32(r, c+4); err != nil {
		return track{}, false, err
	}
	if t.total, err = readU32(r, c+8); err != nil {
		return track{}, false, err
	}
	t.sizes = c + 12
	if t.shared == 0 && t.sizes+int64(t.total)*4 > stsz.end {
		return track{}, false, fmt.Errorf("%w: stsz holds fewer than %d entries", ErrCorrupt, t.total)
	}

	// stco: version/flags, count, 32-bit offsets.
	c = stco.content
	if t.chunks, err = readU32(r, c+4); err != nil {
		return track{}, false, err
	}
	t.offsets = c + 8
	if t.offsets+int64(t.chunks)*4 > stco.end {
		return track{}, false, fmt.Errorf("%w: stco holds fewer than %d entries", ErrCorrupt, t.chunks)
	}

	// stsc: version/flags, count, (first chunk, samples per chunk, description).
	c = stsc.content
	if t.nruns, err = readU32(r, c+4); err != nil {
		return track{}, false, err
	}
	t.runs = c + 8
	if t.nruns == 0 {
		return track{}, false, fmt.Errorf("%w: empty stsc", ErrCorrupt)
	}
	if t.runs+int64(t.nruns)*12 > stsc.end {
		return track{}, false, fmt.Errorf("%w: stsc holds fewer than %d entries", ErrCorrupt, t.nruns)
	}
	if t.firstPerChunk, err = readU32(r, t.runs+4); err != nil {
		return track{}, false, err
	}

	if t.total > 0 {
		if t.chunks == 0 {
			return track{}, false, fmt.Errorf("%w: %d samples but no chunks", ErrCorrupt, t.total)
		}
		if t.firstOffset, err = readU32(r, t.offsets); err != nil {
			return track{}, false, err
		}
	}

	t.info.SampleCount = int(t.total)
	t.info.ChunkCount = int(t.chunks)
	t.info.SharedSampleSize = int(t.shared)

	return t, true, nil
}

func (p *Parser) rewind() {
	p.sample = 0
	p.chunk = 1
	p.inChunk = 0
	p.perChunk = p.trk.firstPerChunk
	p.offset = int64(p.trk.firstOffset)
}

// Rewind repositions the parser on the first sample.
func (p *Parser) Rewind() { p.rewind() }

// ReadNextFrame writes the next sample into buf behind a synthesized ADTS
// header and returns the frame length (sample size + 7). At the end of the
// track it returns 0 and io.EOF.
func (p *Parser) ReadNextFrame(buf []byte) (int, error) {
	if p.sample >= p.trk.total {
		return 0, io.EOF
	}

	if p.inChunk >= p.perChunk {
		if err := p.nextChunk(); err != nil {
			return 0, err
		}
		if p.perChunk == 0 {
			return 0, fmt.Errorf("%w: chunk %d has no samples", ErrCorrupt, p.chunk)
		}
	}

	size := p.trk.shared
	if size == 0 {
		v, err := readU32(p.r, p.trk.sizes+int64(p.sample)*4)
		if err != nil {
			return 0, fmt.Errorf("reading size of sample %d: %w", p.sample, err)
		}
		size = v
	}

	n := int(size) + aac.HeaderLen
	if n > len(buf) || n > aac.MaxFrameSize {
		return 0, fmt.Errorf("%w: sample %d needs %d bytes, have %d", ErrFrameTooLarge, p.sample, n, len(buf))
	}

	if err := readAt(p.r, buf[aac.HeaderLen:n], p.offset); err != nil {
		return 0, fmt.Errorf("reading sample %d at %d: %w", p.sample, p.offset, err)
	}
	aac.WriteADTSHeader(buf, n, p.trk.info.SampleRate, p.trk.info.Channels)

	p.offset += int64(size)
	p.sample++
	p.inChunk++

	return n, nil
}

// nextChunk moves to the following chunk and looks up its samples-per-chunk
// by scanning every stsc run.
func (p *Parser) nextChunk() error {
	p.chunk++
	p.inChunk = 0

	if p.chunk > p.trk.chunks {
		return fmt.Errorf("%w: chunk %d of %d", ErrChunkOutOfRange, p.chunk, p.trk.chunks)
	}

	off, err := readU32(p.r, p.trk.offsets+int64(p.chunk-1)*4)
	if err != nil {
		return fmt.Errorf("reading offset of chunk %d: %w", p.chunk, err)
	}
	p.offset = int64(off)

	var run [12]byte
	for i := range p.trk.nruns {
		if err := readAt(p.r, run[:], p.trk.runs+int64(i)*12); err != nil {
			return fmt.Errorf("reading stsc run %d: %w", i, err)
		}
		first := binary.BigEndian.Uint32(run[0:4])
		if first > p.chunk {
			break
		}
		p.perChunk = binary.BigEndian.Uint32(run[4:8])
	}

	return nil
}

// Track returns the selected track's parameters.
func (p *Parser) Track() TrackInfo { return p.trk.info }

func (p *Parser) SampleRate() int   { return p.trk.info.SampleRate }
func (p *Parser) Channels() int     { return p.trk.info.Channels }
func (p *Parser) TotalSamples() int { return p.trk.info.SampleCount }

// MediaDataOffset returns the first byte of mdat content, or -1.
func (p *Parser) MediaDataOffset() int64 { return p.mdatOffset }

// Profile returns the MPEG-4 audio object type written into frame headers.
// It is always AAC-LC; the esds descriptor is not consulted.
func (p *Parser) Profile() int { return aac.ProfileLC }

// SampleIndex returns the index of the next sample to be read.
func (p *Parser) SampleIndex() int { return int(p.sample) }
