package main

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"perio_dictation/internal/voice"
)

const meterName = "perio_dictation"

// Metrics holds the service's OpenTelemetry instruments.
type Metrics struct {
	// ParseRequests counts parsed utterances. Attributes: mode, switched.
	ParseRequests metric.Int64Counter

	// ParsedValues counts emitted measurements. Attribute: mode.
	ParsedValues metric.Int64Counter

	// ParseDuration tracks parser latency in seconds.
	ParseDuration metric.Float64Histogram

	// ActiveSessions tracks open dictation sessions.
	ActiveSessions metric.Int64UpDownCounter
}

var parseBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ParseRequests, err = m.Int64Counter("perio.parse.requests",
		metric.WithDescription("Utterances parsed, by resulting mode and whether the mode switched."),
	); err != nil {
		return nil, err
	}
	if met.ParsedValues, err = m.Int64Counter("perio.parse.values",
		metric.WithDescription("Measurements extracted from utterances, by mode."),
	); err != nil {
		return nil, err
	}
	if met.ParseDuration, err = m.Float64Histogram("perio.parse.duration",
		metric.WithDescription("Latency of parsing one utterance."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(parseBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("perio.sessions.active",
		metric.WithDescription("Open dictation sessions."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// RecordParse records one parsed utterance.
func (m *Metrics) RecordParse(ctx context.Context, data voice.ParsedVoiceData, elapsed time.Duration) {
	mode := attribute.String("mode", string(data.Mode))
	m.ParseRequests.Add(ctx, 1, metric.WithAttributes(
		mode,
		attribute.String("switched", strconv.FormatBool(data.DetectedModeSwitch != "")),
	))
	m.ParsedValues.Add(ctx, int64(len(data.Values)), metric.WithAttributes(mode))
	m.ParseDuration.Record(ctx, elapsed.Seconds())
}

// initMeterProvider registers a global MeterProvider backed by the
// Prometheus exporter, so instruments are served by promhttp on /metrics.
func initMeterProvider() (shutdown func(context.Context) error, err error) {
	exp, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
