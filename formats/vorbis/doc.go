// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis files.
// Vorbis is a free, open-source lossy audio compression format.
//
// # Supported Formats
//
// The decoder supports:
//   - Ogg Vorbis (.ogg files)
//   - Variable bitrates
//   - Mono and stereo
//   - Various sample rates
//
// # Decoding Vorbis Files
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.NewDecoder().Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]int16, 4096)
//	n, err := source.ReadSamples(buf)
//
// # Output Format
//
//   - Sample format: interleaved int16, converted from the decoder's float
//     output with clamping
//   - Channels: as declared by the identification header
//   - Sample rate: as declared by the identification header
//
// Reads are rounded down to whole frames.
//
// # Channel Layout
//
// For stereo files, samples are interleaved:
//
//	[L0, R0, L1, R1, L2, R2, ...]
//
// Stream slots carry mono or stereo only. Wrap surround sources:
//
//	mono := audio.NewMonoMixer(vorbisSource)
//
// # Limitations
//
//   - Vorbis encoding is not supported (decoding only)
//   - A Decoder keeps its scratch buffer between streams and serves one
//     stream at a time
package vorbis
