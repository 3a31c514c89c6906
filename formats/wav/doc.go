// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Both directions use github.com/go-audio/wav.
//
// # Supported Formats
//
// The decoder accepts integer PCM (format 1, or WAVE_FORMAT_EXTENSIBLE) at
// 8, 16, 24 or 32 bits, any channel count and any sample rate. Samples are
// delivered as interleaved int16: wider samples are truncated to their top
// 16 bits and unsigned 8-bit samples are re-centered.
//
// # Decoding WAV Files
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // ErrNotWavFile, ErrNotPCM, ErrUnsupportedBitDepth, ...
//	}
//
//	buf := make([]int16, 4096)
//	n, err := source.ReadSamples(buf)
//
// go-audio needs an io.ReadSeeker. Other readers are buffered into memory
// first.
//
// # Writing WAV Files
//
// WriteWAV16 writes a whole buffer; Writer streams chunks and patches the
// header sizes on Close:
//
//	w := wav.NewWriter(file, 44100, 2)
//	for chunk := range chunks {
//	    w.Write(chunk)
//	}
//	w.Close()
//
// The output is always 16-bit PCM and the target must be an io.WriteSeeker.
package wav
