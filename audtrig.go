// SPDX-License-Identifier: EPL-2.0

package audtrig

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audtrig/audio"
	"github.com/ik5/audtrig/engine"
	"github.com/ik5/audtrig/storage"
)

// ErrNoFiles is returned by MixFiles when called without paths.
var ErrNoFiles = errors.New("no files to mix")

// DecodeToInt16 reads src to the end and returns every interleaved sample
// together with the source's rate and channel count.
//
// bufferSize is the read size in samples (e.g. 4096); it is rounded down to
// whole frames.
//
// Example:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	pcm, rate, ch, err := audtrig.DecodeToInt16(src, 4096)
func DecodeToInt16(src audio.Source, bufferSize int) ([]int16, int, int, error) {
	channels := max(src.Channels(), 1)
	bufferSize = max(bufferSize-bufferSize%channels, channels)

	// Start with about two seconds and grow as needed
	pcm16 := make([]int16, 0, src.SampleRate()*channels*2)
	buf := make([]int16, bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		pcm16 = append(pcm16, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pcm16, src.SampleRate(), channels, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	return pcm16, src.SampleRate(), channels, nil
}

// MixFiles plays every path on its own slot of a fresh engine and returns the
// whole stereo mix as interleaved samples. It is the in-memory counterpart of
// output.Render, meant for tests and tools.
func MixFiles(st *storage.Storage, cfg engine.Config, paths ...string) ([]int16, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	if cfg.Slots < len(paths) {
		cfg.Slots = len(paths)
	}
	eng := engine.New(st, cfg)
	defer eng.Close()

	for i, p := range paths {
		if err := eng.Start(i, p); err != nil {
			return nil, fmt.Errorf("starting %s: %w", p, err)
		}
	}

	// Mix at most a quarter ring per fill so a chunk never outruns its buffer
	chunk := max(eng.RingCapacity()/4, 1)
	buf := make([]int16, chunk*2)

	var mix []int16
	for eng.ActiveCount() > 0 {
		eng.Fill()
		n := eng.MixInto(buf)
		mix = append(mix, buf[:n*2]...)
		eng.Reap()
	}

	return mix, nil
}
