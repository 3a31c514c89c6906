// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"encoding/binary"
	"fmt"
	"io"
)

func fourCC(s string) uint32 { return binary.BigEndian.Uint32([]byte(s)) }

var (
	typeMoov = fourCC("moov")
	typeMdat = fourCC("mdat")
	typeTrak = fourCC("trak")
	typeMdia = fourCC("mdia")
	typeMinf = fourCC("minf")
	typeStbl = fourCC("stbl")
	typeHdlr = fourCC("hdlr")
	typeStsd = fourCC("stsd")
	typeStsz = fourCC("stsz")
	typeStco = fourCC("stco")
	typeStsc = fourCC("stsc")
	typeMp4a = fourCC("mp4a")
	typeSoun = fourCC("soun")
)

// Per-level iteration caps, so a hostile file cannot keep the scan busy.
const (
	maxTopBoxes  = 1000
	maxMoovBoxes = 500
	maxTrakBoxes = 500
	maxMdiaBoxes = 100
	maxMinfBoxes = 100
	maxStblBoxes = 100
)

// box is a located box: content spans [content, end).
type box struct {
	typ     uint32
	start   int64
	content int64
	end     int64
}

func typeString(t uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], t)
	return string(b[:])
}

// walk visits at most limit sibling boxes inside [start, end). The next
// sibling offset is fixed before visit runs. visit returns true to stop.
//
// A 64-bit size keeps only its low word. A size of zero extends the box to
// end and makes it the last sibling. A size smaller than its header is
// ErrCorrupt and ends the walk.
func walk(r io.ReaderAt, start, end int64, limit int, visit func(b box) (bool, error)) error {
	var hdr [16]byte
	pos := start

	for range limit {
		if pos+8 > end {
			return nil
		}
		if err := readAt(r, hdr[:8], pos); err != nil {
			return fmt.Errorf("reading box header at %d: %w", pos, err)
		}

		size := int64(binary.BigEndian.Uint32(hdr[0:4]))
		typ := binary.BigEndian.Uint32(hdr[4:8])
		headerLen := int64(8)
		last := false

		switch size {
		case 0:
			size = end - pos
			last = true
		case 1:
			if pos+16 > end {
				return fmt.Errorf("%w: truncated %q header at %d", ErrCorrupt, typeString(typ), pos)
			}
			if err := readAt(r, hdr[8:16], pos+8); err != nil {
				return fmt.Errorf("reading extended size at %d: %w", pos, err)
			}
			size = int64(binary.BigEndian.Uint32(hdr[12:16]))
			headerLen = 16
		}

		if size < headerLen {
			return fmt.Errorf("%w: %q at %d has size %d", ErrCorrupt, typeString(typ), pos, size)
		}

		next := pos + size
		b := box{typ: typ, start: pos, content: pos + headerLen, end: min(next, end)}

		stop, err := visit(b)
		if err != nil {
			return err
		}
		if stop || last {
			return nil
		}
		pos = next
	}

	return nil
}

// findChild returns the first child of parent with type typ.
func findChild(r io.ReaderAt, parent box, typ uint32, limit int) (box, bool, error) {
	var found box
	ok := false
	err := walk(r, parent.content, parent.end, limit, func(b box) (bool, error) {
		if b.typ == typ {
			found, ok = b, true
			return true, nil
		}
		return false, nil
	})
	return found, ok, err
}

// readAt fills buf from off. A full read is success even when the reader
// also reports io.EOF.
func readAt(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func readU32(r io.ReaderAt, off int64) (uint32, error) {
	var b [4]byte
	if err := readAt(r, b[:], off); err != nil {
		return 0, fmt.Errorf("reading at %d: %w", off, err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
