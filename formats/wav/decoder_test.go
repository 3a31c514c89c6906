// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// Helper function to create a minimal valid WAV file
func createWAVFile(sampleRate, channels, bitsPerSample int, samples []int16) []byte {
	data := new(bytes.Buffer)
	for _, s := range samples {
		binary.Write(data, binary.LittleEndian, s)
	}
	return createRawWAVFile(1, sampleRate, channels, bitsPerSample, nil, data.Bytes())
}

// createRawWAVFile builds a RIFF file around an already encoded data chunk.
// extra is written between the fmt and data chunks.
func createRawWAVFile(format, sampleRate, channels, bitsPerSample int, extra, data []byte) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := uint32(sampleRate) * uint32(blockAlign)
	riffSize := uint32(4 + 24 + len(extra) + 8 + len(data))

	// RIFF header
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(format))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.Write(extra)

	// data chunk
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}

func readAllSamples(t *testing.T, dec Decoder, data []byte) ([]int16, int, int) {
	t.Helper()

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var out []int16
	buf := make([]int16, 3)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	return out, src.SampleRate(), src.Channels()
}

func TestDecoder_ValidWAVFile(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 100, 200, -100, -200, 0}
	got, rate, channels := readAllSamples(t, Decoder{}, createWAVFile(8000, 1, 16, samples))

	if rate != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", rate)
	}
	if channels != 1 {
		t.Errorf("Channels() = %d, want 1", channels)
	}
	if len(got) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestDecoder_StereoWAVFile(t *testing.T) {
	t.Parallel()

	samples := []int16{100, 200, 300, 400, 500, 600}
	got, rate, channels := readAllSamples(t, Decoder{}, createWAVFile(44100, 2, 16, samples))

	if rate != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", rate)
	}
	if channels != 2 {
		t.Errorf("Channels() = %d, want 2", channels)
	}
	if len(got) != len(samples) {
		t.Errorf("read %d samples, want %d", len(got), len(samples))
	}
}

func TestDecoder_24BitIsScaledTo16(t *testing.T) {
	t.Parallel()

	// 0x123456 and -0x123456 as little-endian 24-bit.
	data := []byte{0x56, 0x34, 0x12, 0xAA, 0xCB, 0xED}
	got, _, _ := readAllSamples(t, Decoder{}, createRawWAVFile(1, 16000, 1, 24, nil, data))

	want := []int16{0x1234, -0x1235}
	if len(got) != len(want) {
		t.Fatalf("read %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDecoder_NotWAVFile(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not a WAV file at all, just text")))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}

func TestDecoder_TruncatedHeader(t *testing.T) {
	t.Parallel()

	wavData := createWAVFile(8000, 1, 16, []int16{1, 2})

	if _, err := (Decoder{}).Decode(bytes.NewReader(wavData[:20])); err == nil {
		t.Error("Decode() error = nil, want error for truncated header")
	}
}

func TestDecoder_NonPCMFormat(t *testing.T) {
	t.Parallel()

	// Format 3 is IEEE float.
	wavData := createRawWAVFile(3, 8000, 1, 32, nil, make([]byte, 8))

	if _, err := (Decoder{}).Decode(bytes.NewReader(wavData)); err == nil {
		t.Error("Decode() error = nil, want error for float WAV")
	}
}

func TestDecoder_WithUnknownChunks(t *testing.T) {
	t.Parallel()

	extra := new(bytes.Buffer)
	extra.WriteString("junk")
	binary.Write(extra, binary.LittleEndian, uint32(4))
	extra.Write([]byte{1, 2, 3, 4})

	data := new(bytes.Buffer)
	for _, s := range []int16{7, -7} {
		binary.Write(data, binary.LittleEndian, s)
	}

	got, _, _ := readAllSamples(t, Decoder{}, createRawWAVFile(1, 8000, 1, 16, extra.Bytes(), data.Bytes()))
	if len(got) != 2 || got[0] != 7 || got[1] != -7 {
		t.Errorf("samples = %v, want [7 -7]", got)
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	wavData := createWAVFile(8000, 1, 16, []int16{1, 2, 3})

	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(wavData)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", src.SampleRate())
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(8000, 1, 16, []int16{100, 200, 300})))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	n, err := src.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSource_ReadSamples_EOFIsSticky(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(8000, 1, 16, []int16{100, 200})))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	dst := make([]int16, 2)
	if n, err := src.ReadSamples(dst); n != 2 || err != nil {
		t.Fatalf("ReadSamples() = (%d, %v), want (2, nil)", n, err)
	}

	for range 2 {
		if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
			t.Errorf("ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
		}
	}
}

// mockWAVReader feeds canned samples or an error to source.
type mockWAVReader struct {
	data []int
	err  error
}

func (m *mockWAVReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if len(m.data) == 0 {
		return 0, m.err
	}
	n := copy(buf.Data, m.data)
	m.data = m.data[n:]
	return n, nil
}

func TestSource_ReaderError(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk gone")
	s := &source{dec: &mockWAVReader{data: []int{1}, err: errDisk}, sampleRate: 8000, channels: 1, bitDepth: 16}

	dst := make([]int16, 4)
	if n, err := s.ReadSamples(dst); n != 1 || err != nil {
		t.Fatalf("ReadSamples() = (%d, %v), want (1, nil)", n, err)
	}
	if _, err := s.ReadSamples(dst); !errors.Is(err, errDisk) {
		t.Errorf("ReadSamples() error = %v, want errDisk", err)
	}
}

func TestSource_8BitUnsigned(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockWAVReader{data: []int{0, 128, 255}}, sampleRate: 8000, channels: 1, bitDepth: 8}

	dst := make([]int16, 3)
	n, err := s.ReadSamples(dst)
	if err != nil || n != 3 {
		t.Fatalf("ReadSamples() = (%d, %v), want (3, nil)", n, err)
	}

	want := []int16{-32768, 0, 127 << 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 44100)
	wavData := createWAVFile(44100, 1, 16, samples)
	dst := make([]int16, 1024)

	b.ReportAllocs()
	for b.Loop() {
		src, err := Decoder{}.Decode(bytes.NewReader(wavData))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := src.ReadSamples(dst); err != nil {
				break
			}
		}
	}
}
