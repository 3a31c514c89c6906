// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Writer streams interleaved 16-bit PCM into a WAV file. The header sizes
// are patched on Close, which is why the target must be seekable.
type Writer struct {
	enc *wav.Encoder
	buf *goaudio.IntBuffer
}

// NewWriter starts a 16-bit PCM WAV on ws.
func NewWriter(ws io.WriteSeeker, sampleRate, channels int) *Writer {
	return &Writer{
		enc: wav.NewEncoder(ws, sampleRate, 16, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

// Write appends samples. len(samples) should be a multiple of the channel
// count.
func (w *Writer) Write(samples []int16) error {
	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		w.buf.Data[i] = int(s)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// Close finalizes the header. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// WriteWAV16 writes a complete 16-bit PCM WAV holding samples.
func WriteWAV16(ws io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	w := NewWriter(ws, sampleRate, channels)

	// Always write once so an empty file still gets its header.
	if err := w.Write(samples); err != nil {
		return err
	}

	return w.Close()
}
