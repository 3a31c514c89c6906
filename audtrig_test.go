// SPDX-License-Identifier: EPL-2.0

package audtrig

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/ik5/audtrig/engine"
	"github.com/ik5/audtrig/formats/wav"
	"github.com/ik5/audtrig/internal/audiotest"
	"github.com/ik5/audtrig/storage"
)

func TestDecodeToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		channels   int
		frames     int
		bufferSize int
	}{
		{"stereo", 2, 1000, 4096},
		{"mono small buffer", 1, 333, 7},
		{"stereo odd buffer", 2, 50, 5},
		{"buffer smaller than a frame", 2, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewRampSource(8000, tt.channels, tt.frames)
			pcm, rate, ch, err := DecodeToInt16(src, tt.bufferSize)
			if err != nil {
				t.Fatalf("DecodeToInt16() error = %v", err)
			}
			if rate != 8000 || ch != tt.channels {
				t.Errorf("rate, channels = %d, %d", rate, ch)
			}
			if len(pcm) != tt.frames*tt.channels {
				t.Fatalf("len = %d, want %d", len(pcm), tt.frames*tt.channels)
			}
			for i, s := range pcm {
				if want := int16(i / tt.channels); s != want {
					t.Fatalf("pcm[%d] = %d, want %d", i, s, want)
				}
			}
		})
	}
}

func TestDecodeToInt16_Error(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 1, 100).FailAfter(40)
	pcm, _, _, err := DecodeToInt16(src, 16)
	if !errors.Is(err, audiotest.ErrInjected) {
		t.Fatalf("err = %v, want ErrInjected", err)
	}
	if len(pcm) != 40 {
		t.Errorf("kept %d samples before the error, want 40", len(pcm))
	}
}

func writeMono(t *testing.T, fsys afero.Fs, name string, samples []int16) {
	t.Helper()

	f, err := fsys.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := wav.WriteWAV16(f, 44100, 1, samples); err != nil {
		t.Fatal(err)
	}
}

func TestMixFiles(t *testing.T) {
	t.Parallel()

	card := afero.NewMemMapFs()
	flash := afero.NewMemMapFs()

	a := make([]int16, 100)
	b := make([]int16, 40)
	for i := range a {
		a[i] = 100
	}
	for i := range b {
		b[i] = 20
	}
	writeMono(t, card, "/a.wav", a)
	writeMono(t, flash, "/b.wav", b)

	st := storage.New(card, flash)
	mix, err := MixFiles(st, engine.Config{Slots: 1, BufferSamples: 256}, "/a.wav", "/flash/b.wav")
	if err != nil {
		t.Fatalf("MixFiles() error = %v", err)
	}

	if len(mix)%2 != 0 || len(mix) < 200 {
		t.Fatalf("len = %d, want at least 100 stereo frames", len(mix))
	}
	for f := range len(mix) / 2 {
		want := int16(0)
		switch {
		case f < 40:
			want = 120
		case f < 100:
			want = 100
		}
		if mix[2*f] != want || mix[2*f+1] != want {
			t.Fatalf("frame %d = (%d, %d), want %d", f, mix[2*f], mix[2*f+1], want)
		}
	}
}

func TestMixFiles_Errors(t *testing.T) {
	t.Parallel()

	st := storage.New(afero.NewMemMapFs(), nil)

	if _, err := MixFiles(st, engine.Config{}); !errors.Is(err, ErrNoFiles) {
		t.Errorf("no paths: %v", err)
	}
	if _, err := MixFiles(st, engine.Config{BufferSamples: 64}, "/missing.wav"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing file: %v", err)
	}
}
