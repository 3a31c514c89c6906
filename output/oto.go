// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Channels is fixed: the mixer always produces interleaved stereo.
const Channels = 2

// player is the subset of *oto.Player used here, to allow testing.
type player interface {
	Play()
	Pause()
	IsPlaying() bool
	BufferedSize() int
	Close() error
}

type openFunc func(opts *oto.NewContextOptions, src io.Reader) (player, func() error, error)

var opened atomic.Bool

// openOto creates the process-wide oto context and a player pulling src.
func openOto(opts *oto.NewContextOptions, src io.Reader) (player, func() error, error) {
	if !opened.CompareAndSwap(false, true) {
		return nil, nil, ErrAlreadyOpen
	}

	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		opened.Store(false)
		return nil, nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	return ctx.NewPlayer(src), ctx.Suspend, nil
}

// Device plays an io.Reader of interleaved stereo s16le frames on the sound
// card. The card's own audio thread calls Read on the source, which makes
// it the consumer side of the engine.
type Device struct {
	mu      sync.Mutex
	player  player
	suspend func() error
	rate    int
	closed  bool
	log     *slog.Logger
}

type Option func(*config)

type config struct {
	log    *slog.Logger
	buffer time.Duration
	open   openFunc
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithBuffer sets the device buffer length. Zero lets oto choose.
func WithBuffer(d time.Duration) Option {
	return func(c *config) { c.buffer = d }
}

func withOpener(fn openFunc) Option {
	return func(c *config) { c.open = fn }
}

// Open starts playing src at sampleRate. Only one Device may be open per
// process.
func Open(src io.Reader, sampleRate int, opts ...Option) (*Device, error) {
	cfg := config{log: slog.Default(), open: openOto}
	for _, opt := range opts {
		opt(&cfg)
	}

	p, suspend, err := cfg.open(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.buffer,
	}, src)
	if err != nil {
		return nil, err
	}
	p.Play()

	d := &Device{
		player:  p,
		suspend: suspend,
		rate:    sampleRate,
		log:     cfg.log.With("component", "output"),
	}
	d.log.Info("audio output started", "rate", sampleRate, "channels", Channels, "buffer", cfg.buffer)

	return d, nil
}

func (d *Device) SampleRate() int { return d.rate }

// Buffered returns the bytes queued in the device and not yet played.
func (d *Device) Buffered() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0
	}
	return d.player.BufferedSize()
}

// Pause stops pulling from the source. Resume continues.
func (d *Device) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.player.Pause()
	return nil
}

func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if !d.player.IsPlaying() {
		d.player.Play()
	}
	return nil
}

// Close stops playback and suspends the sound card. The oto context cannot
// be recreated, so a closed Device cannot be reopened.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.player.Close(); err != nil {
		return fmt.Errorf("closing player: %w", err)
	}
	if d.suspend != nil {
		if err := d.suspend(); err != nil {
			return fmt.Errorf("suspending audio context: %w", err)
		}
	}

	d.log.Info("audio output stopped")

	return nil
}
