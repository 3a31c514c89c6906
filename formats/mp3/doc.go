// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("audio.mp3")
//	source, err := mp3.NewDecoder().Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]int16, 4096)
//	n, err := source.ReadSamples(buf)
//
// # Output Format
//
//   - Sample format: interleaved int16
//   - Channels: always 2; go-mp3 duplicates mono streams
//   - Sample rate: as encoded in the first frame header
//
// # Pooling
//
// A Decoder owns the byte buffer its current stream reads through, so it
// must only serve one stream at a time. The playback engine keeps a small
// audio.DecoderPool of them and refuses new MP3 streams when the pool is
// empty.
//
// # Limitations
//
//   - MP3 writing is not supported (decoding only)
//   - No seeking; streams play from the start
package mp3
