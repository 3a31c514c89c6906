// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks of the playback
// engine.
//
//   - Source: a decoded stream of interleaved int16 samples
//   - Ring: a lock-free single-producer, single-consumer sample queue
//   - DecoderPool: a fixed set of reusable decoders with in-use flags
//   - Format and Classify: extension-based format detection
//   - Registry: stateless decoders for raw PCM formats
//   - MonoMixer: channel fold-down for sources with more than two channels
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []int16) (int, error)
//	    Close() error
//	}
//
// ReadSamples returns the number of int16 values written, not frames.
// A return of (0, io.EOF) ends the stream. Close releases decoder state but
// never the underlying file; the stream slot that opened the file closes it.
//
// # Ring Buffer
//
// Each stream slot owns one Ring. The fill loop is the only producer and the
// output callback the only consumer:
//
//	r := audio.NewRing(256 * 1024)
//	// producer
//	pushed := r.PushSlice(decoded)
//	// consumer
//	if r.AvailableForRead() >= 2 {
//	    l, rr := r.Pop(), r.Pop()
//	}
//
// Capacity is rounded up to a power of two and one slot stays empty, so a
// ring of capacity N holds N-1 samples. Neither side blocks or allocates.
//
// # Decoder Pools
//
// Compressed formats borrow a decoder for the lifetime of a stream:
//
//	pool := audio.NewDecoderPool(2, mp3.NewDecoder)
//	idx, dec, ok := pool.Acquire()
//	if !ok {
//	    // every decoder is busy; the stream is refused
//	}
//	defer pool.Release(idx)
//
// # Format Detection
//
// Classify looks only at the extension, case-insensitively:
//
//	audio.Classify("Intro.M4A")  // FormatM4A
//	audio.FormatM4A.Codec()      // CodecAAC
//
// # Thread Safety
//
// Registry and DecoderPool are safe for concurrent use. A Ring is safe for
// exactly one producer goroutine and one consumer goroutine. Sources are not
// safe for concurrent use.
package audio
