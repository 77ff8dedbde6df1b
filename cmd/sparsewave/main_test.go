package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("sparsewave %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestAnalyze_JSONSweep(t *testing.T) {
	out := run(t, "analyze", "--steps", "3", "--window-size", "16", "-o", "json")

	var report analysisReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.WindowSize != 16 {
		t.Fatalf("window size = %d, want 16", report.WindowSize)
	}
	if len(report.Sweep) != 3 {
		t.Fatalf("sweep has %d rows, want 3", len(report.Sweep))
	}
	if report.Sweep[0].Threshold != 0 || report.Sweep[2].Threshold != 1 {
		t.Fatalf("sweep thresholds = %v, %v", report.Sweep[0].Threshold, report.Sweep[2].Threshold)
	}
	if report.Sweep[0].NonZeroBinCount < report.Sweep[2].NonZeroBinCount {
		t.Fatalf("bins grew with threshold: %+v", report.Sweep)
	}
}

func TestAnalyze_TableWithPreview(t *testing.T) {
	out := run(t, "analyze", "--steps", "2", "--baselines", "--preview", "0")
	for _, want := range []string{"threshold", "codec", "preview at 0.000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPrint_EnvAndFlagsMerge(t *testing.T) {
	t.Setenv("SPARSEWAVE_SESSION_THRESHOLD", "0.25")
	out := run(t, "config", "print", "--log-level", "warn")
	if !strings.Contains(out, "threshold: 0.25") {
		t.Fatalf("env override missing:\n%s", out)
	}
	if !strings.Contains(out, "log_level: warn") {
		t.Fatalf("flag override missing:\n%s", out)
	}
}

func TestAnalyze_RejectsUnknownFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", "--steps", "2", "-o", "xml"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestStream_LoopbackUsesSessionThreshold(t *testing.T) {
	cases := []struct {
		threshold string
		want      string
	}{
		{"0", "Bins/frame: 9.00"},
		{"1.0", "Bins/frame: 1.00"},
	}
	for _, tc := range cases {
		out := run(t, "stream", "-q",
			"--url", "loopback://",
			"--window-size", "16",
			"--sampling-interval", "1ms",
			"--stop", "64ms",
			"--warm-up", "1ms",
			"--threshold", tc.threshold,
		)
		if !strings.Contains(out, tc.want) || !strings.Contains(out, "Windows: 4") {
			t.Fatalf("threshold %s: summary missing %q:\n%s", tc.threshold, tc.want, out)
		}
	}
}

func TestStream_FlagUsageNamesUnits(t *testing.T) {
	flags := newStreamCmd(&app{}).Flags()
	for name, want := range map[string]string{
		"streaming-window": "samples",
		"threshold":        "loopback device",
	} {
		f := flags.Lookup(name)
		if f == nil || !strings.Contains(f.Usage, want) {
			t.Fatalf("--%s usage should mention %q", name, want)
		}
	}
}
