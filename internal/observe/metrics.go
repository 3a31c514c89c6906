// SPDX-License-Identifier: EPL-2.0

// Package observe holds the OpenTelemetry metric instruments of the player.
//
// The output path never touches these instruments directly: the engine keeps
// plain atomic counters there and the control loop flushes their deltas here.
// Tests should build a Metrics with NewMetrics over an SDK ManualReader
// instead of using DefaultMetrics.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ik5/audtrig"

// Metrics holds every instrument the player records.
type Metrics struct {
	// StreamStarts counts Start attempts. Attributes: format, status.
	StreamStarts metric.Int64Counter

	// Underruns counts output frames where an active slot had no data.
	Underruns metric.Int64Counter

	// SamplesDropped counts decoded samples the ring refused.
	SamplesDropped metric.Int64Counter

	// FramesDecoded counts stereo frames mixed to the output.
	FramesDecoded metric.Int64Counter

	// ActiveStreams tracks slots currently playing.
	ActiveStreams metric.Int64UpDownCounter
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StreamStarts, err = m.Int64Counter("audtrig.stream.starts",
		metric.WithDescription("Stream start attempts by format and status."),
	); err != nil {
		return nil, err
	}
	if met.Underruns, err = m.Int64Counter("audtrig.output.underruns",
		metric.WithDescription("Output frames where an active stream had no buffered audio."),
	); err != nil {
		return nil, err
	}
	if met.SamplesDropped, err = m.Int64Counter("audtrig.samples.dropped",
		metric.WithDescription("Decoded samples rejected by a full stream buffer."),
	); err != nil {
		return nil, err
	}
	if met.FramesDecoded, err = m.Int64Counter("audtrig.frames.decoded",
		metric.WithDescription("Output frames produced by the mixer."),
	); err != nil {
		return nil, err
	}
	if met.ActiveStreams, err = m.Int64UpDownCounter("audtrig.streams.active",
		metric.WithDescription("Number of stream slots currently playing."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a process-wide Metrics built on the global
// MeterProvider. It panics only if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordStreamStart records one Start attempt.
func (m *Metrics) RecordStreamStart(ctx context.Context, format string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StreamStarts.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("format", format),
			attribute.String("status", status),
		),
	)
}

// Counts is a snapshot of the engine's hot-path counters.
type Counts struct {
	Underruns      uint64
	SamplesDropped uint64
	FramesDecoded  uint64
}

// Sub returns c - prev field by field.
func (c Counts) Sub(prev Counts) Counts {
	return Counts{
		Underruns:      c.Underruns - prev.Underruns,
		SamplesDropped: c.SamplesDropped - prev.SamplesDropped,
		FramesDecoded:  c.FramesDecoded - prev.FramesDecoded,
	}
}

// RecordCounts adds a delta produced by Counts.Sub.
func (m *Metrics) RecordCounts(ctx context.Context, delta Counts) {
	if delta.Underruns > 0 {
		m.Underruns.Add(ctx, int64(delta.Underruns))
	}
	if delta.SamplesDropped > 0 {
		m.SamplesDropped.Add(ctx, int64(delta.SamplesDropped))
	}
	if delta.FramesDecoded > 0 {
		m.FramesDecoded.Add(ctx, int64(delta.FramesDecoded))
	}
}
