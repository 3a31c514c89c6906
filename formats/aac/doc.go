// SPDX-License-Identifier: EPL-2.0

// Package aac decodes AAC-LC audio carried in ADTS frames.
//
// Decoding is done by github.com/llehouerou/go-aac. This package adds the
// framing around it:
//
//   - ADTSReader splits a raw .aac byte stream into frames, skipping a
//     leading ID3v2 tag and resynchronizing on garbage.
//   - WriteADTSHeader synthesizes the 7-byte header that container parsers
//     (see formats/mp4) prepend to each raw access unit, so the decoder sees
//     the same input for .aac and .m4a files.
//   - Decoder implements both audio.Decoder and audio.FrameDecoder.
//
// # Pooling
//
// A Decoder keeps its frame buffer between streams and serves one stream at
// a time. The engine holds a fixed number of them in an audio.DecoderPool:
//
//	pool := audio.NewDecoderPool(2, aac.NewDecoder)
//	idx, dec, ok := pool.Acquire()
//	if !ok {
//	    // every decoder is busy
//	}
//	defer pool.Release(idx)
//	src, err := dec.Decode(file)
//
// # Output Format
//
//   - Sample format: interleaved int16
//   - Channels: from the first frame's channel configuration
//   - Sample rate: from the first frame's sampling index
//
// # Header Layout
//
// Synthesized headers always declare MPEG-4, no CRC, profile AAC-LC and a
// buffer fullness of 0x7FF. The sampling index is chosen with a descending
// ladder (96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000);
// anything lower maps to index 9.
package aac
