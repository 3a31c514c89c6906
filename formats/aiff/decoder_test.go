// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/spf13/afero"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate   int
	channels     int
	samples      []int
	offset       int
	returnErrors bool
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	samplesToRead := min(len(buf.Data), len(m.samples)-m.offset)
	copy(buf.Data, m.samples[m.offset:m.offset+samplesToRead])
	m.offset += samplesToRead

	return samplesToRead, nil
}

func newMockSource(bitDepth, channels int, samples []int) *source {
	return &source{
		dec: &mockAiffReader{
			sampleRate: 44100,
			channels:   channels,
			samples:    samples,
		},
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   bitDepth,
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not AIFF data")))
	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte{}))
	if err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	f, err := afero.NewMemMapFs().Create("/tone.aiff")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	original := []int{0, 1000, -1000, 32767, -32768, 42}
	enc := aiff.NewEncoder(f, 22050, 16, 2)
	buf := &goaudio.IntBuffer{
		Data:           original,
		Format:         &goaudio.Format{SampleRate: 22050, NumChannels: 2},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}

	dst := make([]int16, 16)
	n, err := src.ReadSamples(dst)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != len(original) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(original))
	}
	for i, want := range original {
		if int(dst[i]) != want {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want)
		}
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 2, make([]int, 100))

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	testSamples := []int{0, 16384, -16384, 32767, -32768}
	src := newMockSource(16, 1, testSamples)

	dst := make([]int16, len(testSamples))
	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != len(testSamples) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(testSamples))
	}
	for i, want := range testSamples {
		if int(dst[i]) != want {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want)
		}
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 1, []int{1, 2, 3})

	n, err := src.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSource_ReadSamples_ShortReadIsEOF(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 1, []int{100, 200, 300})
	dst := make([]int16, 2)

	n, err := src.ReadSamples(dst)
	if n != 2 || err != nil {
		t.Fatalf("first ReadSamples() = (%d, %v), want (2, nil)", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 1 || err != io.EOF {
		t.Errorf("second ReadSamples() = (%d, %v), want (1, io.EOF)", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || err != io.EOF {
		t.Errorf("final ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 1, []int{100, 200})
	src.dec.(*mockAiffReader).returnErrors = true

	_, err := src.ReadSamples(make([]int16, 10))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSource_BitDepthScaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		input    int
		want     int16
	}{
		{"8-bit max", 8, 127, 127 << 8},
		{"8-bit min", 8, -128, -32768},
		{"16-bit max", 16, 32767, 32767},
		{"24-bit max", 24, 8388607, 32767},
		{"24-bit min", 24, -8388608, -32768},
		{"32-bit max", 32, 2147483647, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newMockSource(tt.bitDepth, 1, []int{tt.input})
			dst := make([]int16, 1)

			if n, _ := src.ReadSamples(dst); n != 1 {
				t.Fatalf("ReadSamples() n = %d, want 1", n)
			}
			if dst[0] != tt.want {
				t.Errorf("dst[0] = %d, want %d", dst[0], tt.want)
			}
		})
	}
}

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		message string
	}{
		{ErrNotAiffFile, "not an AIFF file"},
		{ErrUnsupportedBitDepth, "unsupported AIFF bit depth"},
		{ErrUnsupportedAiffLayout, "unsupported AIFF layout"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if tt.err.Error() != tt.message {
				t.Errorf("Error message = %q, want %q", tt.err.Error(), tt.message)
			}
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	t.Parallel()

	for _, baseErr := range []error{ErrNotAiffFile, ErrUnsupportedBitDepth, ErrUnsupportedAiffLayout} {
		wrapped := errors.Join(errors.New("context"), baseErr)
		if !errors.Is(wrapped, baseErr) {
			t.Errorf("Wrapped error doesn't match base error %v", baseErr)
		}
	}
}

// Benchmarks

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int, 4096)
	for i := range samples {
		samples[i] = i * 8
	}

	src := newMockSource(16, 2, samples)
	dst := make([]int16, 1024)

	b.ReportAllocs()
	for b.Loop() {
		src.dec.(*mockAiffReader).offset = 0

		for {
			n, err := src.ReadSamples(dst)
			if err == io.EOF || n == 0 {
				break
			}
		}
	}
}

func BenchmarkSource_ReadSamples_24Bit(b *testing.B) {
	samples := make([]int, 65536)
	for i := range samples {
		samples[i] = i << 7
	}

	src := newMockSource(24, 2, samples)
	dst := make([]int16, 8192)

	b.ReportAllocs()
	for b.Loop() {
		src.dec.(*mockAiffReader).offset = 0

		for {
			n, err := src.ReadSamples(dst)
			if err == io.EOF || n == 0 {
				break
			}
		}
	}
}

func TestSource_ReadSamples_WholeFramesOnly(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 2, []int{1, 2, 3, 4, 5, 6})
	dst := make([]int16, 5)

	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Errorf("ReadSamples() n = %d, want 4", n)
	}

	n, err = src.ReadSamples(make([]int16, 1))
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(1 sample) = (%d, %v), want (0, nil)", n, err)
	}
}
