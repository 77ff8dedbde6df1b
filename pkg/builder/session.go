package builder

import (
	"context"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/emulator"
	"github.com/joeydtaylor/sparsewave/pkg/internal/pipeline"
	"github.com/joeydtaylor/sparsewave/pkg/internal/signal"
	"github.com/joeydtaylor/sparsewave/pkg/internal/transport"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

type SessionConfig = types.SessionConfig

type Session = pipeline.Session

type Buffer = pipeline.Buffer

type RenderFrame = types.RenderFrame

type RenderSink = types.RenderSink

type RenderSinkFunc = types.RenderSinkFunc

type SessionMeter = types.SessionMeter

type SignalFunc = types.SignalFunc

type Window = types.Window

type Transport = types.Transport

type TransportOpener = types.TransportOpener

type TransportOptions = transport.Options

type ProtocolError = types.ProtocolError

// SessionOption configures a Session.
type SessionOption = types.Option[*pipeline.Session]

// TransportOption configures how links are opened.
type TransportOption = types.Option[*transport.Options]

var (
	ErrInvalidConfiguration = types.ErrInvalidConfiguration
	ErrTransportOpen        = types.ErrTransportOpen
)

// DefaultSessionConfig returns the reference link settings.
func DefaultSessionConfig() SessionConfig {
	return types.DefaultSessionConfig()
}

func NewSession(cfg SessionConfig, open TransportOpener, options ...types.Option[*pipeline.Session]) (*Session, error) {
	return pipeline.NewSession(cfg, open, options...)
}

func SessionWithLogger(l ...types.Logger) types.Option[*pipeline.Session] {
	return pipeline.WithLogger(l...)
}

func SessionWithSignal(fn SignalFunc) types.Option[*pipeline.Session] {
	return pipeline.WithSignal(fn)
}

func SessionWithRenderSink(sink RenderSink) types.Option[*pipeline.Session] {
	return pipeline.WithRenderSink(sink)
}

func SessionWithMeter(m SessionMeter) types.Option[*pipeline.Session] {
	return pipeline.WithMeter(m)
}

func SessionWithDrainTimeout(d time.Duration) types.Option[*pipeline.Session] {
	return pipeline.WithDrainTimeout(d)
}

func SessionWithID(id string) types.Option[*pipeline.Session] {
	return pipeline.WithSessionID(id)
}

func SessionWithBuffer(b *Buffer) types.Option[*pipeline.Session] {
	return pipeline.WithBuffer(b)
}

func NewBuffer(windowSize int) *Buffer {
	return pipeline.NewBuffer(windowSize)
}

// OpenTransport opens a link by URL: loopback://, tcp://host:port,
// file:///dev/ttyUSB0, serial:///dev/ttyACM0, ws://host/path or
// kafka://broker[,broker]/tx-topic/rx-topic.
func OpenTransport(ctx context.Context, rawURL string, options ...types.Option[*transport.Options]) (Transport, error) {
	return transport.Open(ctx, rawURL, options...)
}

// NewTransportOpener defers OpenTransport until a session runs.
func NewTransportOpener(rawURL string, options ...types.Option[*transport.Options]) TransportOpener {
	return transport.Opener(rawURL, options...)
}

func TransportWithDevice(d *Device) types.Option[*transport.Options] {
	return transport.WithDevice(d)
}

// TransportWithFrameShape lets a bare loopback:// build its own device for
// windowSize-sample windows at threshold.
func TransportWithFrameShape(windowSize int, threshold float64) types.Option[*transport.Options] {
	return transport.WithFrameShape(windowSize, threshold)
}

func TransportWithDialTimeout(d time.Duration) types.Option[*transport.Options] {
	return transport.WithDialTimeout(d)
}

func TransportWithKafkaFlushInterval(d time.Duration) types.Option[*transport.Options] {
	return transport.WithKafkaFlushInterval(d)
}

func TransportWithKafkaGroupID(id string) types.Option[*transport.Options] {
	return transport.WithKafkaGroupID(id)
}

func TransportWithLogger(l ...types.Logger) types.Option[*transport.Options] {
	return transport.WithLogger(l...)
}

// Signal resolves a built-in excitation: "stream", "analysis" or "silence".
func Signal(name string) (SignalFunc, error) {
	return signal.ByName(name)
}

// SignalNames lists the built-in excitations.
func SignalNames() []string {
	return signal.Names()
}

// SampleSignal evaluates fn at start, start+ts, ... strictly before stop.
func SampleSignal(fn SignalFunc, start, stop, ts time.Duration) ([]float64, error) {
	return signal.Sample(fn, start, stop, ts)
}

type Device = emulator.Device

// NewDevice builds a software device that encodes with the given threshold.
func NewDevice(windowSize int, threshold float64, options ...types.Option[*emulator.Device]) (*Device, error) {
	return emulator.New(windowSize, threshold, options...)
}

func DeviceWithLogger(l ...types.Logger) types.Option[*emulator.Device] {
	return emulator.WithLogger(l...)
}

func DeviceWithName(name string) types.Option[*emulator.Device] {
	return emulator.WithName(name)
}
