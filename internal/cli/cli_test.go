// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/ik5/audtrig/config"
	"github.com/ik5/audtrig/formats/wav"
	"github.com/ik5/audtrig/internal/audiotest"
	"github.com/ik5/audtrig/storage"
)

// fakeOutput pulls from the mixer on its own goroutine like a sound card.
type fakeOutput struct {
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func startFakeOutput(src io.Reader) *fakeOutput {
	o := &fakeOutput{done: make(chan struct{}), stopped: make(chan struct{})}
	go func() {
		defer close(o.stopped)
		buf := make([]byte, 1024)
		for {
			select {
			case <-o.done:
				return
			default:
				_, _ = src.Read(buf)
				time.Sleep(50 * time.Microsecond)
			}
		}
	}()
	return o
}

func (o *fakeOutput) Close() error {
	o.once.Do(func() { close(o.done) })
	<-o.stopped
	return nil
}

type testApp struct {
	*App
	out       *bytes.Buffer
	removable afero.Fs
	flash     afero.Fs
	opened    int
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	ta := &testApp{
		out:       &bytes.Buffer{},
		removable: afero.NewMemMapFs(),
		flash:     afero.NewMemMapFs(),
	}
	ta.App = &App{
		Out: ta.out,
		Fs:  afero.NewMemMapFs(),
		NewStorage: func(config.StorageConfig) *storage.Storage {
			return storage.New(ta.removable, ta.flash)
		},
		OpenOutput: func(src io.Reader, _ int, _ time.Duration) (io.Closer, error) {
			ta.opened++
			return startFakeOutput(src), nil
		},
		v: config.New(),
	}
	return ta
}

func (ta *testApp) run(t *testing.T, args ...string) error {
	t.Helper()

	cmd := NewRootCommand(ta.App)
	cmd.SetArgs(append(args, "--log-level", "error"))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	return cmd.ExecuteContext(context.Background())
}

func writeWAV(t *testing.T, fsys afero.Fs, name string, frames int) {
	t.Helper()

	f, err := fsys.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = int16(i)
	}
	if err := wav.WriteWAV16(f, 44100, 2, samples); err != nil {
		t.Fatal(err)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	if err := ta.run(t, "version"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ta.out.String(), "audtrig version dev") {
		t.Errorf("output = %q", ta.out.String())
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	writeWAV(t, ta.removable, "/a.wav", 10)

	err := ta.run(t, "play", "--streams", "0", "/a.wav")
	if err == nil || !strings.Contains(err.Error(), "audio.max_streams") {
		t.Errorf("err = %v, want max_streams validation error", err)
	}
	if ta.opened != 0 {
		t.Error("output opened despite invalid configuration")
	}
}

func TestPlayRunsUntilStreamsEnd(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	writeWAV(t, ta.removable, "/a.wav", 500)
	writeWAV(t, ta.flash, "/b.wav", 300)

	errCh := make(chan error, 1)
	go func() { errCh <- ta.run(t, "play", "--buffer-kb", "1", "/a.wav", "/flash/b.wav") }()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("play: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("play did not return after the streams ended")
	}
	if ta.opened != 1 {
		t.Errorf("output opened %d times", ta.opened)
	}
}

func TestPlayWithFeedback(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	writeWAV(t, ta.flash, "/sys/ready.wav", 200)
	writeWAV(t, ta.removable, "/a.wav", 200)

	if err := ta.run(t, "play", "--feedback", "/flash/sys/ready.wav", "/a.wav"); err != nil {
		t.Fatalf("play: %v", err)
	}
}

func TestPlayTooManyFiles(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	writeWAV(t, ta.removable, "/a.wav", 10)

	err := ta.run(t, "play", "--streams", "1", "/a.wav", "/a.wav")
	if err == nil || !strings.Contains(err.Error(), "only 1 streams") {
		t.Errorf("err = %v", err)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	writeWAV(t, ta.removable, "/a.wav", 100)

	if err := ta.run(t, "render", "-o", "/mix.wav", "/a.wav"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(ta.out.String(), "wrote /mix.wav") {
		t.Errorf("output = %q", ta.out.String())
	}

	f, err := ta.Fs.Open("/mix.wav")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("decoding render: %v", err)
	}
	if src.Channels() != 2 || src.SampleRate() != 44100 {
		t.Errorf("render format = %d Hz %d ch", src.SampleRate(), src.Channels())
	}
	buf := make([]int16, 4)
	if n, _ := src.ReadSamples(buf); n != 4 || buf[2] != 2 || buf[3] != 3 {
		t.Errorf("first samples = %v", buf[:n])
	}
}

func TestRenderRequiresOutput(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	if err := ta.run(t, "render", "/a.wav"); err == nil {
		t.Error("render without -o succeeded")
	}
}

func TestProbeM4A(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	file := audiotest.BuildMP4(audiotest.MP4Track{
		SampleRate: 44100,
		Channels:   2,
		Chunks:     []int{2, 2, 2},
		SharedSize: 10,
	})
	if err := afero.WriteFile(ta.removable, "/clip.m4a", file.Data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ta.run(t, "probe", "-n", "2", "/clip.m4a"); err != nil {
		t.Fatalf("probe: %v", err)
	}

	out := ta.out.String()
	for _, want := range []string{
		"format       m4a",
		"codec        aac",
		"samples      6",
		"chunks       3",
		"frame 0      17 bytes, 44100 Hz, 2 ch",
		"frame 1      17 bytes, 44100 Hz, 2 ch",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "frame 2") {
		t.Errorf("listed more than 2 frames:\n%s", out)
	}
}

func TestProbeWAVAndErrors(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	writeWAV(t, ta.flash, "/x.wav", 10)

	if err := ta.run(t, "probe", "/flash/x.wav"); err != nil {
		t.Fatalf("probe: %v", err)
	}
	out := ta.out.String()
	if !strings.Contains(out, "device       flash") || !strings.Contains(out, "channels     2") {
		t.Errorf("output:\n%s", out)
	}

	if err := ta.run(t, "probe", "/notes.txt"); err == nil {
		t.Error("unsupported file accepted")
	}
	if err := ta.run(t, "probe", "/missing.wav"); err == nil {
		t.Error("missing file accepted")
	}
}
