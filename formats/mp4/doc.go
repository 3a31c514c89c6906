// SPDX-License-Identifier: EPL-2.0

// Package mp4 extracts AAC audio frames from MP4/M4A files.
//
// The parser understands the subset of ISO base media boxes needed to stream
// the first AAC audio track: moov/trak/mdia/minf/stbl with stsd, stsz, stco
// and stsc. Tables are read on demand through an io.ReaderAt, so memory use
// does not grow with file length.
//
// Each frame returned by ReadNextFrame is a raw access unit prefixed with a
// synthesized 7-byte ADTS header (see formats/aac). A Parser is therefore an
// audio.FrameSource and feeds aac.Decoder directly:
//
//	p, err := mp4.Open(file, size)
//	if err != nil {
//	    // ErrNoMovie, ErrNoAudioTrack, ErrCorrupt
//	}
//	src, err := aacDecoder.DecodeFrames(p)
//
// # Limits
//
//   - Only 32-bit chunk offsets (stco); co64 tracks are rejected.
//   - A 64-bit box size keeps its low 32 bits.
//   - A box of size 0 extends to the end of its parent and ends that level.
//   - Box iteration is capped per level (1000 top-level, 500 in moov and
//     trak, 100 below).
//   - Frames are always labelled AAC-LC.
package mp4
