// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
)

// MP4Track describes a synthetic single-track M4A file.
type MP4Track struct {
	SampleRate int
	Channels   int
	// Handler is the hdlr subtype; "soun" when empty.
	Handler string
	// Chunks lists the number of samples stored in each chunk.
	Chunks []int
	// SharedSize, when non-zero, is written as the stsz shared sample size.
	// Otherwise Sizes holds one size per sample.
	SharedSize int
	Sizes      []int
	// ChunkGap inserts padding bytes between consecutive chunks in mdat.
	ChunkGap int
	// MoovFirst places moov before mdat, as fast-start encoders do.
	MoovFirst bool
	// ExtendedMdat writes mdat with the 64-bit size form.
	ExtendedMdat bool
	// Omit drops one sample-table child ("stsz", "stco", "stsc" or "stsd").
	Omit string
	// ExtraTracks are emitted before the audio track (e.g. a video track).
	ExtraTracks []string
}

// MP4File is a built fixture.
type MP4File struct {
	Data         []byte
	ChunkOffsets []uint32
	// Frames holds each sample's payload in decode order.
	Frames [][]byte
}

// FrameByte is the payload byte j of sample i.
func FrameByte(i, j int) byte { return byte(i*31 + j + 1) }

// BuildMP4 serializes t into an ftyp/moov/mdat file.
func BuildMP4(t MP4Track) MP4File {
	total := 0
	for _, n := range t.Chunks {
		total += n
	}

	sizes := make([]int, total)
	for i := range sizes {
		if t.SharedSize > 0 {
			sizes[i] = t.SharedSize
		} else if i < len(t.Sizes) {
			sizes[i] = t.Sizes[i]
		}
	}

	frames := make([][]byte, total)
	for i, sz := range sizes {
		f := make([]byte, sz)
		for j := range f {
			f[j] = FrameByte(i, j)
		}
		frames[i] = f
	}

	ftyp := box("ftyp", []byte("M4A "), u32(0), []byte("M4A isom"))

	// mdat payload and chunk offsets relative to the payload start.
	var payload bytes.Buffer
	rel := make([]int, len(t.Chunks))
	sample := 0
	for c, n := range t.Chunks {
		if c > 0 {
			payload.Write(make([]byte, t.ChunkGap))
		}
		rel[c] = payload.Len()
		for range n {
			payload.Write(frames[sample])
			sample++
		}
	}

	mdatHeader := 8
	if t.ExtendedMdat {
		mdatHeader = 16
	}

	// The moov length does not depend on offset values, so size it first.
	moovLen := len(buildMoov(t, sizes, make([]uint32, len(t.Chunks))))

	var payloadStart int
	if t.MoovFirst {
		payloadStart = len(ftyp) + moovLen + mdatHeader
	} else {
		payloadStart = len(ftyp) + mdatHeader
	}

	offsets := make([]uint32, len(t.Chunks))
	for c := range rel {
		offsets[c] = uint32(payloadStart + rel[c])
	}

	moov := buildMoov(t, sizes, offsets)
	mdat := mdatBox(payload.Bytes(), t.ExtendedMdat)

	var out bytes.Buffer
	out.Write(ftyp)
	if t.MoovFirst {
		out.Write(moov)
		out.Write(mdat)
	} else {
		out.Write(mdat)
		out.Write(moov)
	}

	return MP4File{Data: out.Bytes(), ChunkOffsets: offsets, Frames: frames}
}

func buildMoov(t MP4Track, sizes []int, offsets []uint32) []byte {
	handler := t.Handler
	if handler == "" {
		handler = "soun"
	}

	var stblChildren [][]byte
	if t.Omit != "stsd" {
		stblChildren = append(stblChildren, stsd(t.SampleRate, t.Channels))
	}
	stblChildren = append(stblChildren, fullBox("stts", u32(1), u32(uint32(len(sizes))), u32(1024)))
	if t.Omit != "stsc" {
		stblChildren = append(stblChildren, stsc(t.Chunks))
	}
	if t.Omit != "stsz" {
		stblChildren = append(stblChildren, stsz(t.SharedSize, sizes))
	}
	if t.Omit != "stco" {
		var entries [][]byte
		entries = append(entries, u32(uint32(len(offsets))))
		for _, o := range offsets {
			entries = append(entries, u32(o))
		}
		stblChildren = append(stblChildren, fullBox("stco", entries...))
	}

	stbl := box("stbl", stblChildren...)
	minf := box("minf", fullBox("smhd", u32(0)), box("dinf", fullBox("dref", u32(0))), stbl)
	mdia := box("mdia",
		fullBox("mdhd", u32(0), u32(0), u32(uint32(t.SampleRate)), u32(0), u32(0)),
		hdlr(handler),
		minf,
	)
	trak := box("trak", fullBox("tkhd", make([]byte, 80)), mdia)

	children := [][]byte{fullBox("mvhd", make([]byte, 96))}
	for _, h := range t.ExtraTracks {
		children = append(children, box("trak",
			box("mdia", hdlr(h), box("minf", box("stbl", fullBox("stco", u32(0))))),
		))
	}
	children = append(children, trak)

	return box("moov", children...)
}

func hdlr(subtype string) []byte {
	return fullBox("hdlr", u32(0), []byte(subtype), make([]byte, 12), []byte("SoundHandler\x00"))
}

func stsd(rate, channels int) []byte {
	esds := fullBox("esds", []byte{0x03, 0x19, 0x00, 0x00, 0x00, 0x04, 0x11, 0x40, 0x15})
	entry := box("mp4a",
		make([]byte, 6), u16(1), // reserved + data reference index
		u16(0), u16(0), u32(0), // version, revision, vendor
		u16(uint16(channels)), u16(16), // channel count, sample size
		u16(0), u16(0), // compression id, packet size
		u32(uint32(rate)<<16),
		esds,
	)
	return fullBox("stsd", u32(1), entry)
}

func stsc(chunks []int) []byte {
	var entries [][]byte
	count := 0
	prev := -1
	for c, n := range chunks {
		if n == prev {
			continue
		}
		entries = append(entries, u32(uint32(c+1)), u32(uint32(n)), u32(1))
		prev = n
		count++
	}
	return fullBox("stsc", append([][]byte{u32(uint32(count))}, entries...)...)
}

func stsz(shared int, sizes []int) []byte {
	parts := [][]byte{u32(uint32(shared)), u32(uint32(len(sizes)))}
	if shared == 0 {
		for _, s := range sizes {
			parts = append(parts, u32(uint32(s)))
		}
	}
	return fullBox("stsz", parts...)
}

func mdatBox(payload []byte, extended bool) []byte {
	var b bytes.Buffer
	if extended {
		b.Write(u32(1))
		b.WriteString("mdat")
		b.Write(u32(0))
		b.Write(u32(uint32(16 + len(payload))))
	} else {
		b.Write(u32(uint32(8 + len(payload))))
		b.WriteString("mdat")
	}
	b.Write(payload)
	return b.Bytes()
}

func box(typ string, children ...[]byte) []byte {
	size := 8
	for _, c := range children {
		size += len(c)
	}
	b := make([]byte, 0, size)
	b = append(b, u32(uint32(size))...)
	b = append(b, typ...)
	for _, c := range children {
		b = append(b, c...)
	}
	return b
}

func fullBox(typ string, children ...[]byte) []byte {
	return box(typ, append([][]byte{u32(0)}, children...)...)
}

func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func u16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }

// Box exposes the box serializer for tests that hand-craft malformed files.
func Box(typ string, children ...[]byte) []byte { return box(typ, children...) }

// U32 encodes v big-endian.
func U32(v uint32) []byte { return u32(v) }
