// Package transport opens the byte link a session runs over. The link is
// addressed by URL:
//
//	loopback://                       in-process device emulator
//	tcp://host:port                   raw TCP stream (serial bridges, emulate --listen)
//	file:///dev/ttyACM0               pre-configured character device
//	ws://host:port/path               websocket, binary messages as a byte stream
//	kafka://b1:9092,b2:9092/tx/rx     samples produced to tx, frames consumed from rx
package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/emulator"
	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// Options tunes how links are opened.
type Options struct {
	Device             *emulator.Device // far end of loopback://
	WindowSize         int              // frame shape of a loopback device built on demand
	Threshold          float64
	DialTimeout        time.Duration
	KafkaFlushInterval time.Duration
	KafkaGroupID       string
	Loggers            []types.Logger
}

// WithDevice sets the emulator behind loopback links.
func WithDevice(d *emulator.Device) types.Option[*Options] {
	return func(o *Options) { o.Device = d }
}

// WithFrameShape makes loopback:// links without a device build one for
// windowSize-sample windows at threshold.
func WithFrameShape(windowSize int, threshold float64) types.Option[*Options] {
	return func(o *Options) {
		o.WindowSize = windowSize
		o.Threshold = threshold
	}
}

// WithDialTimeout bounds network dials.
func WithDialTimeout(d time.Duration) types.Option[*Options] {
	return func(o *Options) { o.DialTimeout = d }
}

// WithKafkaFlushInterval sets how often buffered samples are produced.
func WithKafkaFlushInterval(d time.Duration) types.Option[*Options] {
	return func(o *Options) { o.KafkaFlushInterval = d }
}

// WithKafkaGroupID consumes frames through a consumer group.
func WithKafkaGroupID(id string) types.Option[*Options] {
	return func(o *Options) { o.KafkaGroupID = id }
}

// WithLogger attaches loggers.
func WithLogger(l ...types.Logger) types.Option[*Options] {
	return func(o *Options) { o.Loggers = append(o.Loggers, l...) }
}

func defaultOptions() Options {
	return Options{
		DialTimeout:        5 * time.Second,
		KafkaFlushInterval: 10 * time.Millisecond,
	}
}

// Open dials the link named by rawURL.
func Open(ctx context.Context, rawURL string, options ...types.Option[*Options]) (types.Transport, error) {
	opts := defaultOptions()
	for _, option := range options {
		option(&opts)
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse transport url %q: %w", rawURL, err)
	}

	var link types.Transport
	switch strings.ToLower(u.Scheme) {
	case "loopback":
		link, err = openLoopback(ctx, opts)
	case "tcp":
		link, err = openTCP(ctx, u, opts)
	case "file", "serial":
		link, err = openFile(u)
	case "ws", "wss":
		link, err = openWebSocket(ctx, u, opts)
	case "kafka":
		link, err = openKafka(ctx, u, opts)
	default:
		return nil, types.InvalidConfig("unsupported transport scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	internallogger.Notify(opts.Loggers, types.InfoLevel, "transport opened",
		"component", types.ComponentMetadata{Type: "TRANSPORT", Name: u.Scheme}, "event", "Open", "url", redact(u))
	return link, nil
}

// Opener binds Open to a URL for a session.
func Opener(rawURL string, options ...types.Option[*Options]) types.TransportOpener {
	return func(ctx context.Context) (types.Transport, error) {
		return Open(ctx, rawURL, options...)
	}
}

func redact(u *url.URL) string {
	if u.User == nil {
		return u.String()
	}
	c := *u
	c.User = url.User(u.User.Username())
	return c.String()
}
