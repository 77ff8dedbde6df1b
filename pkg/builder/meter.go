package builder

import (
	"io"

	"github.com/joeydtaylor/sparsewave/pkg/internal/meter"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Meter = meter.Meter

type MeterSnapshot = meter.Snapshot

type PrometheusProvider = meter.PrometheusProvider

// NewMeter records session counters through mp; nil keeps only the local snapshot.
func NewMeter(mp metric.MeterProvider, options ...types.Option[*meter.Meter]) (*Meter, error) {
	return meter.New(mp, options...)
}

func MeterWithLogger(l ...types.Logger) types.Option[*meter.Meter] {
	return meter.WithLogger(l...)
}

func MeterWithComponentMetadata(name, id string) types.Option[*meter.Meter] {
	return meter.WithComponentMetadata(name, id)
}

// MeterWithLabel adds a key/value attribute to every measurement.
func MeterWithLabel(key, value string) types.Option[*meter.Meter] {
	return meter.WithAttributes(attribute.String(key, value))
}

// NewPrometheusProvider returns a meter provider scraped through its Handler.
func NewPrometheusProvider() (*PrometheusProvider, error) {
	return meter.NewPrometheusProvider()
}

// PrintMeterSummary writes a human-readable session summary to w.
func PrintMeterSummary(w io.Writer, s MeterSnapshot) error {
	return meter.PrintSummary(w, s)
}
