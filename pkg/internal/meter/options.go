package meter

import (
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WithLogger attaches loggers used by Monitor.
func WithLogger(l ...types.Logger) types.Option[*Meter] {
	return func(m *Meter) { m.ConnectLogger(l...) }
}

// WithHostSampleWindow sets how long each CPU sample averages over.
func WithHostSampleWindow(d time.Duration) types.Option[*Meter] {
	return func(m *Meter) {
		if d > 0 {
			m.hostEvery = d
		}
	}
}

// WithComponentMetadata names the meter in log entries.
func WithComponentMetadata(name string, id string) types.Option[*Meter] {
	return func(m *Meter) {
		m.componentMetadata.Name = name
		m.componentMetadata.ID = id
	}
}

// WithAttributes labels every counter and histogram measurement.
func WithAttributes(kv ...attribute.KeyValue) types.Option[*Meter] {
	return func(m *Meter) { m.attrs = metric.WithAttributes(kv...) }
}

func withHostSampler(s hostSampler) types.Option[*Meter] {
	return func(m *Meter) { m.sampler = s }
}
