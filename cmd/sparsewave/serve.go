package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
	"github.com/spf13/cobra"
)

func newServeAnalysisCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-analysis",
		Short: "Serve the cost model over gRPC and gRPC-Web",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			an, err := a.newAnalysis()
			if err != nil {
				return err
			}
			ac := a.cfg.Analysis
			opts := []builder.AnalysisServerOption{
				builder.AnalysisServerWithAllowedOrigins(ac.AllowedOrigins...),
				builder.AnalysisServerWithLogger(a.logger),
			}
			if ac.TLS.UseTLS {
				tlsCfg := ac.TLS
				opts = append(opts, builder.AnalysisServerWithTLS(&tlsCfg))
			}
			srv := builder.NewAnalysisServer(an, ac.Signal, opts...)

			ln, err := net.Listen("tcp", ac.Listen)
			if err != nil {
				return err
			}
			a.logger.Info("analysis service listening", "component", "cli", "address", ln.Addr().String(), "tls", ac.TLS.UseTLS)
			return srv.Serve(ctx, ln)
		},
	}

	f := cmd.Flags()
	f.String("listen", "", "address to serve on")
	f.String("signal", "analysis", "waveform to analyse ("+strings.Join(builder.SignalNames(), ", ")+")")
	f.Int("window-size", 0, "samples per window")
	f.Duration("sampling-interval", 0, "time between samples")
	f.Duration("stop", 0, "end of the sampled range (exclusive)")
	f.String("size-model", "", "byte widths to charge (default, analysis, wire)")
	f.StringSlice("allowed-origin", nil, "browser origins allowed to use gRPC-Web (empty allows all)")
	annotate(f, map[string]string{
		"listen":            "analysis.listen",
		"signal":            "analysis.signal",
		"window-size":       "analysis.window_size",
		"sampling-interval": "analysis.sampling_interval",
		"stop":              "analysis.stop",
		"size-model":        "analysis.size_model",
		"allowed-origin":    "analysis.allowed_origins",
	})
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		target  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "query [threshold...]",
		Short: "Ask a running analysis service for threshold costs",
		Example: `  sparsewave query --target 127.0.0.1:7710
  sparsewave query 0 0.05 0.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			thresholds := make([]float64, 0, len(args))
			for _, arg := range args {
				th, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("threshold %q: %w", arg, err)
				}
				thresholds = append(thresholds, th)
			}
			if target == "" {
				target = a.cfg.Analysis.Listen
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return query(ctx, cmd, target, thresholds)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "analysis service address (defaults to analysis.listen)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

func query(ctx context.Context, cmd *cobra.Command, target string, thresholds []float64) error {
	cli, err := builder.DialAnalysis(target)
	if err != nil {
		return err
	}
	defer cli.Close()

	desc, err := cli.Describe(ctx)
	if err != nil {
		return err
	}
	if len(thresholds) == 0 {
		thresholds = builder.ThresholdSteps(11)
	}
	stats, err := cli.Sweep(ctx, thresholds)
	if err != nil {
		return err
	}

	report := &analysisReport{Sweep: stats}
	if s, ok := desc["signal"].(string); ok {
		report.Signal = s
	}
	if n, ok := desc["window_size"].(float64); ok {
		report.WindowSize = int(n)
	}
	if n, ok := desc["windows"].(float64); ok {
		report.Windows = int(n)
	}
	if n, ok := desc["samples"].(float64); ok {
		report.Samples = int(n)
	}
	return writeTable(cmd.OutOrStdout(), report)
}
