// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
// AIFF is Apple's standard audio file format, commonly used on macOS.
//
// # Supported Formats
//
//   - Uncompressed PCM at 8, 16, 24 or 32 bits
//   - Any channel count; the engine folds more than two channels to mono
//   - Any sample rate
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]int16, 4096)
//	n, err := source.ReadSamples(buf)
//
// # Output Format
//
//   - Sample format: interleaved int16; deeper samples keep their top 16 bits
//   - Channels and sample rate: as stored in the COMM chunk
//
// A read that returns fewer samples than requested also returns io.EOF.
//
// # AIFF vs. WAV
//
// AIFF is similar to WAV but:
//   - Uses big-endian byte order (WAV uses little-endian)
//   - Stores sample rate as 80-bit float (WAV uses 32-bit int)
//   - Stores 8-bit samples signed (WAV stores them unsigned)
//
// # Limitations
//
//   - AIFF-C compressed variants are not decoded
//   - go-audio needs an io.ReadSeeker; plain readers are buffered in memory
package aiff
