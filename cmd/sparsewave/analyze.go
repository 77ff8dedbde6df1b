package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type analysisReport struct {
	Signal     string                     `json:"signal" yaml:"signal"`
	WindowSize int                        `json:"window_size" yaml:"window_size"`
	Windows    int                        `json:"windows" yaml:"windows"`
	Samples    int                        `json:"samples" yaml:"samples"`
	SizeModel  builder.SizeModel          `json:"size_model" yaml:"size_model"`
	Sweep      []builder.CompressionStats `json:"sweep" yaml:"sweep"`
	Baselines  []builder.BaselineResult   `json:"baselines,omitempty" yaml:"baselines,omitempty"`
	Preview    *previewReport             `json:"preview,omitempty" yaml:"preview,omitempty"`
}

type previewReport struct {
	Threshold float64                     `json:"threshold" yaml:"threshold"`
	Stats     builder.CompressionStats    `json:"stats" yaml:"stats"`
	Error     builder.ReconstructionError `json:"error" yaml:"error"`
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		output    string
		baselines bool
		preview   float64
		recordS3  bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Estimate what each significance threshold costs on the link",
		Long: `analyze samples a waveform offline, takes the spectrum of every window and
reports, for a sweep of thresholds, how many coefficients survive and how
many bytes they cost against sending the raw samples.`,
		Example: `  sparsewave analyze --steps 11
  sparsewave analyze --baselines --preview 0.05 -o yaml
  sparsewave analyze --size-model wire -o json --record-file sweep.parquet`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.analyze(baselines, preview)
			if err != nil {
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), output, report); err != nil {
				return err
			}
			return a.recordSweep(cmd.Context(), report, recordS3)
		},
	}

	f := cmd.Flags()
	f.String("signal", "analysis", "waveform to sample ("+strings.Join(builder.SignalNames(), ", ")+")")
	f.Int("window-size", 0, "samples per window")
	f.Duration("sampling-interval", 0, "time between samples")
	f.Duration("start", 0, "first sample time")
	f.Duration("stop", 0, "end of the sampled range (exclusive)")
	f.Int("steps", 0, "thresholds in the sweep, evenly spaced over [0,1]")
	f.String("size-model", "", "byte widths to charge (default, analysis, wire)")
	f.String("record-file", "", "write the sweep to this Parquet file")
	f.String("compression", "", "Parquet compression ("+strings.Join(builder.RecordingCompressions(), ", ")+")")
	f.StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	f.BoolVar(&baselines, "baselines", false, "also compress the raw samples with lossless codecs")
	f.Float64Var(&preview, "preview", -1, "reconstruct at this threshold and report the error")
	f.BoolVar(&recordS3, "record-s3", false, "upload the sweep to the configured bucket")
	annotate(f, map[string]string{
		"signal":            "analysis.signal",
		"window-size":       "analysis.window_size",
		"sampling-interval": "analysis.sampling_interval",
		"start":             "analysis.start",
		"stop":              "analysis.stop",
		"steps":             "analysis.steps",
		"size-model":        "analysis.size_model",
		"record-file":       "recorder.file",
		"compression":       "recorder.compression",
	})
	return cmd
}

// newAnalysis samples the configured waveform and prepares its spectra.
func (a *app) newAnalysis() (*builder.Analysis, error) {
	ac := a.cfg.Analysis
	fn, err := builder.Signal(ac.Signal)
	if err != nil {
		return nil, err
	}
	samples, err := builder.SampleSignal(fn, ac.Start, ac.Stop, ac.SamplingInterval)
	if err != nil {
		return nil, err
	}
	sizes, err := builder.ConfigSizeModel(ac.SizeModel)
	if err != nil {
		return nil, err
	}
	return builder.NewAnalysis(samples, ac.WindowSize, builder.AnalysisWithSizeModel(sizes))
}

func (a *app) analyze(baselines bool, preview float64) (*analysisReport, error) {
	an, err := a.newAnalysis()
	if err != nil {
		return nil, err
	}
	sweep, err := an.Sweep(builder.ThresholdSteps(a.cfg.Analysis.Steps))
	if err != nil {
		return nil, err
	}
	report := &analysisReport{
		Signal:     a.cfg.Analysis.Signal,
		WindowSize: an.WindowSize(),
		Windows:    an.Windows(),
		Samples:    len(an.Samples()),
		SizeModel:  an.SizeModel(),
		Sweep:      sweep,
	}
	if baselines {
		if report.Baselines, err = an.Baselines(builder.BaselineCodecs...); err != nil {
			return nil, err
		}
	}
	if preview >= 0 {
		stats, err := an.Estimate(preview)
		if err != nil {
			return nil, err
		}
		rec, err := an.Reconstruct(preview)
		if err != nil {
			return nil, err
		}
		e, err := an.Error(rec)
		if err != nil {
			return nil, err
		}
		report.Preview = &previewReport{Threshold: preview, Stats: stats, Error: e}
	}
	a.logger.Debug("analysis complete", "component", "cli", "windows", report.Windows, "steps", len(sweep))
	return report, nil
}

func writeReport(w io.Writer, format string, r *analysisReport) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return writeTable(w, r)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTable(w io.Writer, r *analysisReport) error {
	fmt.Fprintf(w, "signal %s: %d samples, %d windows of %d\n\n", r.Signal, r.Samples, r.Windows, r.WindowSize)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "threshold\tbins\testimated\traw\tratio %\t")
	for _, s := range r.Sweep {
		fmt.Fprintf(tw, "%.3f\t%d\t%d\t%d\t%.2f\t\n", s.Threshold, s.NonZeroBinCount, s.EstimatedBytes, s.UncompressedBytes, s.RatioPercent)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Baselines) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "codec\tbytes\tratio %")
		for _, b := range r.Baselines {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\n", b.Codec, b.Bytes, b.RatioPercent)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if p := r.Preview; p != nil {
		fmt.Fprintf(w, "\npreview at %.3f: %d bins, %.2f%% of raw, rmse %.4g, max %.4g, snr %.1f dB\n",
			p.Threshold, p.Stats.NonZeroBinCount, p.Stats.RatioPercent, p.Error.RMSE, p.Error.MaxAbs, p.Error.SNRDecib)
	}
	return nil
}

func (a *app) recordSweep(ctx context.Context, r *analysisReport, toS3 bool) error {
	rc := a.cfg.Recorder
	if rc.File != "" {
		rows := builder.SweepRows(r.Signal, r.WindowSize, r.Sweep)
		if err := builder.WriteParquet(rc.File, rows, rc.Compression); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "recorded %d thresholds to %s\n", len(rows), rc.File)
	}
	if toS3 {
		rec, err := a.newRecorder(ctx)
		if err != nil {
			return err
		}
		key, err := rec.RecordSweep(ctx, r.Signal, r.WindowSize, r.Sweep)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "uploaded s3://%s/%s\n", rc.S3.Bucket, key)
	}
	return nil
}
