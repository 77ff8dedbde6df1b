// Package meter records session counters through OpenTelemetry instruments
// and keeps a local snapshot of them, together with host CPU and memory
// utilisation, for periodic progress logging.
package meter

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope every instrument is created under.
const meterName = "github.com/joeydtaylor/sparsewave"

// Meter implements types.SessionMeter.
type Meter struct {
	internallogger.Registry

	instruments *instruments
	attrs       metric.MeasurementOption

	samples atomic.Int64
	frames  atomic.Int64
	bins    atomic.Int64
	bytes   atomic.Int64
	windows atomic.Int64
	rmse    atomic.Uint64 // float64 bits

	hostMu    sync.Mutex
	host      HostStats
	hostEvery time.Duration
	sampler   hostSampler

	startTime         time.Time
	componentMetadata types.ComponentMetadata
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	SamplesSent     int64         `json:"samples_sent"`
	FramesDecoded   int64         `json:"frames_decoded"`
	BinsReceived    int64         `json:"bins_received"`
	BytesReceived   int64         `json:"bytes_received"`
	WindowsBuffered int64         `json:"windows_buffered"`
	RMSE            float64       `json:"rmse"`
	Elapsed         time.Duration `json:"elapsed"`
	Host            HostStats     `json:"host"`
}

// MeanBinsPerFrame is the average number of retained coefficients per frame.
func (s Snapshot) MeanBinsPerFrame() float64 {
	if s.FramesDecoded == 0 {
		return 0
	}
	return float64(s.BinsReceived) / float64(s.FramesDecoded)
}

// New creates a meter whose instruments come from mp. A nil provider records
// only the local snapshot.
func New(mp metric.MeterProvider, options ...types.Option[*Meter]) (*Meter, error) {
	m := &Meter{
		attrs:     metric.WithAttributes(),
		hostEvery: defaultHostInterval,
		sampler:   gopsutilSampler{},
		startTime: time.Now(),
		componentMetadata: types.ComponentMetadata{
			Type: "METER",
		},
	}
	if mp != nil {
		inst, err := newInstruments(mp.Meter(meterName), m)
		if err != nil {
			return nil, err
		}
		m.instruments = inst
	}
	for _, option := range options {
		option(m)
	}
	return m, nil
}

// SamplesSent counts samples written to the link.
func (m *Meter) SamplesSent(n int) {
	m.samples.Add(int64(n))
	if m.instruments != nil {
		m.instruments.samplesSent.Add(bg, int64(n), m.attrs)
	}
}

// FrameDecoded counts one decoded frame with its retained bins and wire size.
func (m *Meter) FrameDecoded(bins, bytes int) {
	m.frames.Add(1)
	m.bins.Add(int64(bins))
	m.bytes.Add(int64(bytes))
	if m.instruments != nil {
		m.instruments.framesDecoded.Add(bg, 1, m.attrs)
		m.instruments.binsPerFrame.Record(bg, int64(bins), m.attrs)
		m.instruments.bytesReceived.Add(bg, int64(bytes), m.attrs)
	}
}

// WindowsBuffered records the reconstruction buffer length.
func (m *Meter) WindowsBuffered(total int) {
	m.windows.Store(int64(total))
}

// ReconstructionError records the latest render RMSE.
func (m *Meter) ReconstructionError(rmse float64) {
	m.rmse.Store(math.Float64bits(rmse))
	if m.instruments != nil {
		m.instruments.rmse.Record(bg, rmse, m.attrs)
	}
}

// Snapshot returns the current counters.
func (m *Meter) Snapshot() Snapshot {
	m.hostMu.Lock()
	host := m.host
	m.hostMu.Unlock()
	return Snapshot{
		SamplesSent:     m.samples.Load(),
		FramesDecoded:   m.frames.Load(),
		BinsReceived:    m.bins.Load(),
		BytesReceived:   m.bytes.Load(),
		WindowsBuffered: m.windows.Load(),
		RMSE:            math.Float64frombits(m.rmse.Load()),
		Elapsed:         time.Since(m.startTime),
		Host:            host,
	}
}

// Totals is the final snapshot of a session. Sessions shorter than one
// Monitor tick have no host sample yet, so one is taken first.
func (m *Meter) Totals() Snapshot {
	m.hostMu.Lock()
	sampled := !m.host.SampledAt.IsZero()
	m.hostMu.Unlock()
	if !sampled {
		if _, err := m.SampleHost(); err != nil {
			m.NotifyLoggers(types.DebugLevel, "host sample failed", "component", m.componentMetadata, "event", "SampleHost", "error", err)
		}
	}
	return m.Snapshot()
}

var _ types.SessionMeter = (*Meter)(nil)
