// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ik5/audtrig/audio"
	"github.com/ik5/audtrig/formats/aac"
	"github.com/ik5/audtrig/formats/aiff"
	"github.com/ik5/audtrig/formats/mp3"
	"github.com/ik5/audtrig/formats/mp4"
	"github.com/ik5/audtrig/formats/vorbis"
	"github.com/ik5/audtrig/formats/wav"
	"github.com/ik5/audtrig/internal/observe"
	"github.com/ik5/audtrig/storage"
)

// Config sizes the engine. Zero fields take the defaults below.
type Config struct {
	// Slots is the number of simultaneous streams.
	Slots int
	// BufferSamples is the per-slot ring capacity in int16 samples. It is
	// rounded up to a power of two.
	BufferSamples int
	// SampleRate is the output rate. Sources are mixed as-is; a source at
	// another rate plays at the wrong pitch.
	SampleRate int

	MP3Decoders    int
	AACDecoders    int
	VorbisDecoders int
}

const (
	DefaultSlots          = 3
	DefaultBufferSamples  = 512 * 1024 / 2
	DefaultSampleRate     = 44100
	DefaultMP3Decoders    = 2
	DefaultAACDecoders    = 2
	DefaultVorbisDecoders = 1
)

func (c Config) withDefaults() Config {
	if c.Slots <= 0 {
		c.Slots = DefaultSlots
	}
	if c.BufferSamples <= 0 {
		c.BufferSamples = DefaultBufferSamples
	}
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.MP3Decoders <= 0 {
		c.MP3Decoders = DefaultMP3Decoders
	}
	if c.AACDecoders <= 0 {
		c.AACDecoders = DefaultAACDecoders
	}
	if c.VorbisDecoders <= 0 {
		c.VorbisDecoders = DefaultVorbisDecoders
	}
	return c
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRegistry replaces the raw PCM decoders (WAV and AIFF by default).
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithDecoderFactory replaces the constructor used to fill a codec's pool.
// An AAC factory must return decoders that also implement
// audio.FrameDecoder for M4A playback.
func WithDecoderFactory(c audio.Codec, newFn func() audio.Decoder) Option {
	return func(e *Engine) { e.factories[c] = newFn }
}

// Engine plays several streams at once. Control operations (Start, Stop,
// Fill, Reap...) serialize on one mutex; the output side (MixFrame, Read)
// only uses atomics and the per-slot rings and never blocks.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	store     *storage.Storage
	registry  *audio.Registry
	factories map[audio.Codec]func() audio.Decoder
	pools     map[audio.Codec]*audio.DecoderPool[audio.Decoder]
	slots     []*slot

	audible atomic.Bool

	underruns   atomic.Uint64
	samplesDrop atomic.Uint64
	framesMixed atomic.Uint64
	lastFlushed observe.Counts
	metrics     *observe.Metrics
	log         *slog.Logger
}

// New builds an engine reading files from st.
func New(st *storage.Storage, cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:   cfg,
		store: st,
		log:   slog.Default(),
		factories: map[audio.Codec]func() audio.Decoder{
			audio.CodecMP3:    func() audio.Decoder { return mp3.NewDecoder() },
			audio.CodecAAC:    func() audio.Decoder { return aac.NewDecoder() },
			audio.CodecVorbis: func() audio.Decoder { return vorbis.NewDecoder() },
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "engine")

	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	if e.registry == nil {
		e.registry = audio.NewRegistry()
		e.registry.Register(audio.FormatWAV, wav.Decoder{})
		e.registry.Register(audio.FormatAIFF, aiff.Decoder{})
	}

	sizes := map[audio.Codec]int{
		audio.CodecMP3:    cfg.MP3Decoders,
		audio.CodecAAC:    cfg.AACDecoders,
		audio.CodecVorbis: cfg.VorbisDecoders,
	}
	e.pools = make(map[audio.Codec]*audio.DecoderPool[audio.Decoder], len(sizes))
	for c, n := range sizes {
		e.pools[c] = audio.NewDecoderPool(n, e.factories[c])
	}

	e.slots = make([]*slot, cfg.Slots)
	for i := range e.slots {
		e.slots[i] = newSlot(i, cfg.BufferSamples)
	}

	e.audible.Store(true)

	return e
}

// Slots returns the number of stream slots.
func (e *Engine) Slots() int { return len(e.slots) }

// RingCapacity returns the per-slot ring capacity in samples.
func (e *Engine) RingCapacity() int { return e.slots[0].ring.Cap() }

// SampleRate returns the output rate.
func (e *Engine) SampleRate() int { return e.cfg.SampleRate }

// Storage returns the storage the engine reads from.
func (e *Engine) Storage() *storage.Storage { return e.store }

// Pool exposes a codec pool for inspection.
func (e *Engine) Pool(c audio.Codec) *audio.DecoderPool[audio.Decoder] {
	return e.pools[c]
}

func (e *Engine) slot(idx int) (*slot, error) {
	if idx < 0 || idx >= len(e.slots) {
		return nil, fmt.Errorf("%w: %d", ErrSlotOutOfRange, idx)
	}
	return e.slots[idx], nil
}

// Start plays path on slot idx. Whatever the slot was playing is stopped
// first. On failure the slot is left inactive with nothing held open.
func (e *Engine) Start(idx int, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.startLocked(idx, path)
}

// Play starts path on the slot chosen by NextSlot and returns its index.
func (e *Engine) Play(path string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.nextSlotLocked()
	return idx, e.startLocked(idx, path)
}

// NextSlot returns the first inactive slot, or 0 when all are busy.
func (e *Engine) NextSlot() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.nextSlotLocked()
}

func (e *Engine) nextSlotLocked() int {
	for i, s := range e.slots {
		if !s.active.Load() {
			return i
		}
	}
	return 0
}

func (e *Engine) startLocked(idx int, path string) error {
	s, err := e.slot(idx)
	if err != nil {
		return err
	}

	format := audio.Classify(path)
	err = e.open(s, path, format)
	e.metrics.RecordStreamStart(context.Background(), format.String(), err)
	if err != nil {
		e.log.Warn("start failed", "slot", idx, "path", path, "error", err)
		return err
	}

	e.metrics.ActiveStreams.Add(context.Background(), 1)
	e.log.Info("stream started",
		"slot", idx, "path", path, "format", format,
		"rate", s.sampleRate, "channels", s.channels)

	return nil
}

func (e *Engine) open(s *slot, path string, format audio.Format) (err error) {
	e.stopLocked(s)

	if format == audio.FormatUnsupported {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	s.setState(StateOpening)
	defer func() {
		if err != nil {
			e.release(s)
		}
	}()

	h, err := e.store.Open(path)
	if err != nil {
		return err
	}
	s.file = h
	s.device = h.Device()
	s.name = path
	s.format = format

	var src audio.Source
	if format.IsRaw() {
		dec, ok := e.registry.Get(format)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
		}
		src, err = dec.Decode(h)
	} else {
		src, err = e.decodePooled(s, h, format)
	}
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	s.src = src

	if src.Channels() > 2 {
		src = audio.NewMonoMixer(src)
		s.src = src
	}
	if ch := src.Channels(); ch != 1 && ch != 2 {
		return fmt.Errorf("%w: %d", ErrTooManyChannels, ch)
	}
	if src.SampleRate() != e.cfg.SampleRate {
		e.log.Warn("sample rate mismatch, playing unconverted",
			"path", path, "source_rate", src.SampleRate(), "output_rate", e.cfg.SampleRate)
	}

	s.sampleRate = src.SampleRate()
	s.channels = src.Channels()
	s.finished.Store(false)
	s.stopReq.Store(false)
	s.ring.Clear()
	s.setState(StateStreaming)
	s.active.Store(true)

	return nil
}

func (e *Engine) decodePooled(s *slot, h *storage.Handle, format audio.Format) (audio.Source, error) {
	codec := format.Codec()
	pool, ok := e.pools[codec]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if !format.IsContainer() {
		idx, dec, ok := pool.Acquire()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoDecoder, codec)
		}
		s.codec, s.decIdx = codec, idx
		return dec.Decode(h)
	}

	p, err := mp4.Open(h, h.Size())
	if err != nil {
		return nil, err
	}

	idx, dec, ok := pool.Acquire()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDecoder, codec)
	}
	s.codec, s.decIdx = codec, idx

	fd, ok := dec.(audio.FrameDecoder)
	if !ok {
		return nil, fmt.Errorf("%w: %s decoder cannot take container frames", ErrUnsupportedFormat, codec)
	}
	s.parser = p

	return fd.DecodeFrames(p)
}

// Stop halts slot idx and releases everything it holds. It returns once the
// output side no longer reads the slot.
func (e *Engine) Stop(idx int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.slot(idx)
	if err != nil {
		return err
	}
	e.stopLocked(s)
	return nil
}

// StopAll stops every slot.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range e.slots {
		e.stopLocked(s)
	}
}

// StopDevice stops every slot playing from dev.
func (e *Engine) StopDevice(dev storage.Device) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, s := range e.slots {
		if s.active.Load() && s.device == dev {
			e.stopLocked(s)
			n++
		}
	}
	return n
}

func (e *Engine) stopLocked(s *slot) {
	wasActive := s.active.Swap(false)
	for s.mixing.Load() != 0 {
		runtime.Gosched()
	}

	e.release(s)

	if wasActive {
		e.metrics.ActiveStreams.Add(context.Background(), -1)
		e.log.Debug("stream stopped", "slot", s.index, "path", s.name)
	}
}

// release closes and returns everything s holds. s must not be active.
func (e *Engine) release(s *slot) {
	if s.src != nil {
		if err := s.src.Close(); err != nil {
			e.log.Warn("closing source", "slot", s.index, "error", err)
		}
		s.src = nil
	}
	s.parser = nil
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			e.log.Warn("closing file", "slot", s.index, "error", err)
		}
		s.file = nil
	}
	if s.decIdx >= 0 {
		e.pools[s.codec].Release(s.decIdx)
		s.decIdx = -1
	}

	s.ring.Clear()
	s.finished.Store(false)
	s.stopReq.Store(false)
	s.name = ""
	s.format = audio.FormatUnsupported
	s.channels = 0
	s.sampleRate = 0
	s.setState(StateInactive)
}

// SetGain sets the slot gain, clamped to [0, 1]. It applies whether or not
// the slot is playing and survives Start.
func (e *Engine) SetGain(idx int, gain float64) error {
	s, err := e.slot(idx)
	if err != nil {
		return err
	}
	s.gain.Store(gainToFixed(gain))
	return nil
}

// Gain returns the slot gain, or 0 for an invalid index.
func (e *Engine) Gain(idx int) float64 {
	s, err := e.slot(idx)
	if err != nil {
		return 0
	}
	return fixedToGain(s.gain.Load())
}

// IsActive reports whether slot idx is playing or draining.
func (e *Engine) IsActive(idx int) bool {
	s, err := e.slot(idx)
	if err != nil {
		return false
	}
	return s.active.Load()
}

// IsFinished reports whether slot idx reached the end of its source. The
// slot stays active until Reap sees its ring drained.
func (e *Engine) IsFinished(idx int) bool {
	s, err := e.slot(idx)
	if err != nil {
		return false
	}
	return s.finished.Load()
}

// ActiveCount returns the number of active slots.
func (e *Engine) ActiveCount() int {
	n := 0
	for _, s := range e.slots {
		if s.active.Load() {
			n++
		}
	}
	return n
}

// Status reports what slot idx is doing.
func (e *Engine) Status(idx int) (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.slot(idx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Index:  idx,
		Name:   s.name,
		Format: s.format,
		Device: s.device,
		Gain:   fixedToGain(s.gain.Load()),
		State:  s.getState(),
	}, nil
}

// SetAudible opens or closes the global mute gate. A closed gate silences
// the output while slots keep draining.
func (e *Engine) SetAudible(on bool) { e.audible.Store(on) }

func (e *Engine) Audible() bool { return e.audible.Load() }

// Close stops every slot.
func (e *Engine) Close() error {
	e.StopAll()
	return nil
}
