// SPDX-License-Identifier: EPL-2.0

package output

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ebitengine/oto/v3"
)

type fakePlayer struct {
	src      io.Reader
	playing  bool
	closed   bool
	closeErr error
}

func (p *fakePlayer) Play()             { p.playing = true }
func (p *fakePlayer) Pause()            { p.playing = false }
func (p *fakePlayer) IsPlaying() bool   { return p.playing }
func (p *fakePlayer) BufferedSize() int { return 128 }
func (p *fakePlayer) Close() error {
	p.closed = true
	return p.closeErr
}

func fakeOpener(p *fakePlayer, got **oto.NewContextOptions, suspended *bool) openFunc {
	return func(opts *oto.NewContextOptions, src io.Reader) (player, func() error, error) {
		*got = opts
		p.src = src
		return p, func() error { *suspended = true; return nil }, nil
	}
}

func TestOpenConfiguresContext(t *testing.T) {
	t.Parallel()

	var (
		p         fakePlayer
		opts      *oto.NewContextOptions
		suspended bool
	)
	src := bytes.NewReader(nil)

	d, err := Open(src, 44100, WithBuffer(50*time.Millisecond), withOpener(fakeOpener(&p, &opts, &suspended)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if opts.SampleRate != 44100 || opts.ChannelCount != 2 || opts.Format != oto.FormatSignedInt16LE {
		t.Errorf("context options = %+v", *opts)
	}
	if opts.BufferSize != 50*time.Millisecond {
		t.Errorf("BufferSize = %v", opts.BufferSize)
	}
	if p.src != src {
		t.Error("player does not pull from the given source")
	}
	if !p.playing {
		t.Error("player not started")
	}
	if d.Buffered() != 128 {
		t.Errorf("Buffered = %d", d.Buffered())
	}

	if err := d.Pause(); err != nil || p.playing {
		t.Errorf("Pause: %v playing=%v", err, p.playing)
	}
	if err := d.Resume(); err != nil || !p.playing {
		t.Errorf("Resume: %v playing=%v", err, p.playing)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.closed || !suspended {
		t.Errorf("closed=%v suspended=%v", p.closed, suspended)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := d.Pause(); !errors.Is(err, ErrClosed) {
		t.Errorf("Pause after Close = %v", err)
	}
	if d.Buffered() != 0 {
		t.Error("Buffered after Close should be 0")
	}
}

func TestOpenError(t *testing.T) {
	t.Parallel()

	want := errors.New("no sound card")
	_, err := Open(bytes.NewReader(nil), 44100, withOpener(func(*oto.NewContextOptions, io.Reader) (player, func() error, error) {
		return nil, nil, want
	}))
	if !errors.Is(err, want) {
		t.Errorf("Open = %v, want %v", err, want)
	}
}

func TestCloseReportsPlayerError(t *testing.T) {
	t.Parallel()

	var (
		opts      *oto.NewContextOptions
		suspended bool
	)
	p := fakePlayer{closeErr: errors.New("stuck")}

	d, err := Open(bytes.NewReader(nil), 22050, withOpener(fakeOpener(&p, &opts, &suspended)))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); !errors.Is(err, p.closeErr) {
		t.Errorf("Close = %v", err)
	}
}
