// SPDX-License-Identifier: EPL-2.0

package output

import (
	"context"
	"io"

	"github.com/ik5/audtrig/formats/wav"
)

// Mixer is the control and output surface Render drives.
type Mixer interface {
	Fill()
	Reap() int
	MixInto(dst []int16) int
	ActiveCount() int
}

// DefaultRenderChunk is the number of frames mixed between two fills.
const DefaultRenderChunk = 1024

// RenderOptions bounds an offline render.
type RenderOptions struct {
	SampleRate int
	// ChunkFrames is mixed per Fill. It must fit in a stream buffer or the
	// output gets gaps. Zero uses DefaultRenderChunk.
	ChunkFrames int
	// MaxFrames stops the render early. Zero means until every stream ended.
	MaxFrames int
}

// Render runs m as fast as possible and writes the stereo mix to ws as a
// 16-bit WAV until no stream is active. It returns the number of frames
// written. The WAV header is finalized even when ctx is cancelled.
func Render(ctx context.Context, m Mixer, ws io.WriteSeeker, opts RenderOptions) (int, error) {
	chunk := opts.ChunkFrames
	if chunk <= 0 {
		chunk = DefaultRenderChunk
	}

	w := wav.NewWriter(ws, opts.SampleRate, Channels)
	buf := make([]int16, chunk*Channels)

	// An empty write emits the header so a render of nothing is still a
	// valid file.
	err := w.Write(buf[:0])

	total := 0
	for err == nil && m.ActiveCount() > 0 {
		if err = ctx.Err(); err != nil {
			break
		}
		if opts.MaxFrames > 0 && total >= opts.MaxFrames {
			break
		}

		m.Fill()

		n := chunk
		if opts.MaxFrames > 0 {
			n = min(n, opts.MaxFrames-total)
		}
		n = m.MixInto(buf[:n*Channels])

		if err = w.Write(buf[:n*Channels]); err != nil {
			break
		}
		total += n

		m.Reap()
	}

	if cerr := w.Close(); err == nil {
		err = cerr
	}

	return total, err
}
