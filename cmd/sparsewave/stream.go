package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

func newStreamCmd(a *app) *cobra.Command {
	var (
		quiet    bool
		recordS3 bool
	)
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream a signal through the device and reconstruct it",
		Example: `  sparsewave stream --url loopback:// --threshold 0.05
  sparsewave stream --url tcp://127.0.0.1:7700 --streaming --frame-interval 50ms
  sparsewave stream --url file:///dev/ttyACM0 --stop 30s --record-file session.parquet`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.stream(cmd.Context(), cmd.OutOrStdout(), quiet, recordS3)
		},
	}

	f := cmd.Flags()
	f.String("signal", "stream", "waveform to sample ("+strings.Join(builder.SignalNames(), ", ")+")")
	f.Int("window-size", 0, "samples per window")
	f.Duration("sampling-interval", 0, "time between samples")
	f.Duration("start", 0, "first sample time")
	f.Duration("stop", 0, "end of the sampled range (exclusive)")
	f.Duration("warm-up", 0, "pause after opening the link before the first sample")
	f.Bool("streaming", false, "render only the most recent samples")
	f.Int("streaming-window", 0, "samples shown when streaming")
	f.Duration("frame-interval", 0, "render period")
	f.Float64("threshold", 0, "significance threshold of the loopback device")
	f.Bool("verbose", false, "log every decoded coefficient")
	f.Duration("drain-timeout", 0, "wait for trailing frames after the last sample")
	f.String("url", "", "link address (loopback://, tcp://, file://, ws://, kafka://)")
	f.Duration("dial-timeout", 0, "link open timeout")
	f.String("metrics-listen", "", "serve Prometheus metrics on this address")
	f.Duration("monitor-interval", 0, "progress log period")
	f.String("record-file", "", "write the buffered windows to this Parquet file")
	f.String("compression", "", "Parquet compression ("+strings.Join(builder.RecordingCompressions(), ", ")+")")
	f.BoolVar(&recordS3, "record-s3", false, "upload the buffered windows to the configured bucket")
	f.BoolVarP(&quiet, "quiet", "q", false, "do not draw frames on the terminal")
	annotate(f, map[string]string{
		"signal":            "session.signal",
		"window-size":       "session.window_size",
		"sampling-interval": "session.sampling_interval",
		"start":             "session.start",
		"stop":              "session.stop",
		"warm-up":           "session.warm_up",
		"streaming":         "session.streaming",
		"streaming-window":  "session.streaming_window",
		"frame-interval":    "session.frame_interval",
		"threshold":         "session.threshold",
		"verbose":           "session.verbose",
		"drain-timeout":     "session.drain_timeout",
		"url":               "transport.url",
		"dial-timeout":      "transport.dial_timeout",
		"metrics-listen":    "metrics.listen",
		"monitor-interval":  "metrics.monitor_interval",
		"record-file":       "recorder.file",
		"compression":       "recorder.compression",
	})
	return cmd
}

func (a *app) stream(parent context.Context, out io.Writer, quiet, recordS3 bool) error {
	cfg := a.cfg
	sc := cfg.SessionConfig()

	fn, err := builder.Signal(cfg.Session.Signal)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		mp   metric.MeterProvider
		prom *builder.PrometheusProvider
	)
	if cfg.Metrics.Listen != "" {
		if prom, err = builder.NewPrometheusProvider(); err != nil {
			return err
		}
		defer func() { _ = prom.Shutdown(context.Background()) }()
		mp = prom
	}
	m, err := builder.NewMeter(mp,
		builder.MeterWithLogger(a.logger),
		builder.MeterWithLabel("signal", cfg.Session.Signal),
	)
	if err != nil {
		return err
	}

	topts := []builder.TransportOption{
		builder.TransportWithDialTimeout(cfg.Transport.DialTimeout),
		builder.TransportWithKafkaFlushInterval(cfg.Transport.KafkaFlushInterval),
		builder.TransportWithKafkaGroupID(cfg.Transport.KafkaGroupID),
		builder.TransportWithLogger(a.logger),
	}
	if strings.HasPrefix(cfg.Transport.URL, "loopback:") {
		topts = append(topts, builder.TransportWithFrameShape(sc.WindowSize, sc.Threshold))
	}

	sopts := []builder.SessionOption{
		builder.SessionWithLogger(a.logger),
		builder.SessionWithSignal(fn),
		builder.SessionWithMeter(m),
		builder.SessionWithDrainTimeout(cfg.Session.DrainTimeout),
	}
	if !quiet {
		sopts = append(sopts, builder.SessionWithRenderSink(newTerminalSink(out, 72)))
	}
	session, err := builder.NewSession(sc, builder.NewTransportOpener(cfg.Transport.URL, topts...), sopts...)
	if err != nil {
		return err
	}

	var metricsLn net.Listener
	if prom != nil {
		if metricsLn, err = net.Listen("tcp", cfg.Metrics.Listen); err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	monitorCtx, stopMonitor := context.WithCancel(gctx)
	defer stopMonitor()

	g.Go(func() error {
		defer stopMonitor()
		return session.Run(gctx)
	})
	g.Go(func() error {
		m.Monitor(monitorCtx, cfg.Metrics.MonitorInterval)
		return nil
	})
	if metricsLn != nil {
		srv := &http.Server{Handler: metricsMux(prom), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			<-monitorCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		g.Go(func() error {
			if err := srv.Serve(metricsLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := builder.PrintMeterSummary(out, m.Totals()); err != nil {
		return err
	}
	return a.recordSession(parent, out, session, recordS3)
}

func metricsMux(prom *builder.PrometheusProvider) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	return mux
}

func (a *app) recordSession(ctx context.Context, out io.Writer, session *builder.Session, toS3 bool) error {
	rc := a.cfg.Recorder
	if session.Buffer().Len() == 0 {
		if rc.File != "" || toS3 {
			a.logger.Warn("nothing to record", "component", "cli", "session", session.ID())
		}
		return nil
	}
	if rc.File != "" {
		if err := builder.WriteParquet(rc.File, builder.SessionRows(session), rc.Compression); err != nil {
			return err
		}
		fmt.Fprintf(out, "recorded %d windows to %s\n", session.Buffer().Len(), rc.File)
	}
	if toS3 {
		rec, err := a.newRecorder(ctx)
		if err != nil {
			return err
		}
		key, err := rec.RecordSession(ctx, session.ID(), session.Config(), session.Buffer().Windows())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "uploaded s3://%s/%s\n", rc.S3.Bucket, key)
	}
	return nil
}

func (a *app) newRecorder(ctx context.Context) (*builder.Recorder, error) {
	rc := a.cfg.Recorder
	if rc.S3.Bucket == "" {
		return nil, fmt.Errorf("recorder.s3.bucket is not configured")
	}
	return builder.NewRecorderFromConfig(ctx, rc.S3,
		builder.RecorderWithCompression(rc.Compression),
		builder.RecorderWithLogger(a.logger),
	)
}
