package meter

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

var bg = context.Background()

type instruments struct {
	samplesSent   metric.Int64Counter
	framesDecoded metric.Int64Counter
	bytesReceived metric.Int64Counter
	binsPerFrame  metric.Int64Histogram
	rmse          metric.Float64Histogram
}

var binBuckets = []float64{0, 1, 2, 4, 8, 16, 32, 64, 128}

var rmseBuckets = []float64{1e-6, 1e-4, 1e-3, 0.01, 0.05, 0.1, 0.5, 1, 5}

func newInstruments(mt metric.Meter, m *Meter) (*instruments, error) {
	inst := &instruments{}
	var err error

	if inst.samplesSent, err = mt.Int64Counter("sparsewave.samples.sent",
		metric.WithDescription("Samples written to the link."),
	); err != nil {
		return nil, err
	}
	if inst.framesDecoded, err = mt.Int64Counter("sparsewave.frames.decoded",
		metric.WithDescription("Sparse frames decoded from the link."),
	); err != nil {
		return nil, err
	}
	if inst.bytesReceived, err = mt.Int64Counter("sparsewave.bytes.received",
		metric.WithDescription("Frame bytes read from the link, records plus end-of-frame marker."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if inst.binsPerFrame, err = mt.Int64Histogram("sparsewave.frame.bins",
		metric.WithDescription("Retained coefficients per frame."),
		metric.WithExplicitBucketBoundaries(binBuckets...),
	); err != nil {
		return nil, err
	}
	if inst.rmse, err = mt.Float64Histogram("sparsewave.reconstruction.rmse",
		metric.WithDescription("RMS error of the rendered reconstruction against the excitation."),
		metric.WithExplicitBucketBoundaries(rmseBuckets...),
	); err != nil {
		return nil, err
	}

	windows, err := mt.Int64ObservableGauge("sparsewave.windows.buffered",
		metric.WithDescription("Windows held by the reconstruction buffer."),
	)
	if err != nil {
		return nil, err
	}
	cpuGauge, err := mt.Float64ObservableGauge("sparsewave.host.cpu.percent",
		metric.WithDescription("Host CPU utilisation at the last sample."),
		metric.WithUnit("%"),
	)
	if err != nil {
		return nil, err
	}
	ramGauge, err := mt.Float64ObservableGauge("sparsewave.host.memory.percent",
		metric.WithDescription("Host memory utilisation at the last sample."),
		metric.WithUnit("%"),
	)
	if err != nil {
		return nil, err
	}
	if _, err := mt.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(windows, m.windows.Load())
		m.hostMu.Lock()
		host := m.host
		m.hostMu.Unlock()
		if !host.SampledAt.IsZero() {
			o.ObserveFloat64(cpuGauge, host.CPUPercent)
			o.ObserveFloat64(ramGauge, host.MemoryPercent)
		}
		return nil
	}, windows, cpuGauge, ramGauge); err != nil {
		return nil, err
	}
	return inst, nil
}
