package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
)

func TestSparkline_ScalesToRange(t *testing.T) {
	got := sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8, 0, 7)
	if got != "▁▂▃▄▅▆▇█" {
		t.Fatalf("sparkline = %q", got)
	}
}

func TestSparkline_BucketsToWidth(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	got := sparkline(values, 10, 0, 99)
	if n := utf8.RuneCountInString(got); n != 10 {
		t.Fatalf("width = %d, want 10", n)
	}
	if r, _ := utf8.DecodeRuneInString(got); r != '▁' {
		t.Fatalf("first column = %q", r)
	}
}

func TestSparkline_FlatAndEmpty(t *testing.T) {
	if got := sparkline(nil, 10, 0, 0); got != "" {
		t.Fatalf("empty sparkline = %q", got)
	}
	if got := sparkline([]float64{3, 3, 3}, 10, 3, 3); got != "▁▁▁" {
		t.Fatalf("flat sparkline = %q", got)
	}
}

func TestTerminalSink_Render(t *testing.T) {
	var buf bytes.Buffer
	sink := newTerminalSink(&buf, 16)
	err := sink.Render(builder.RenderFrame{
		Time:          []float64{0.5, 0.6},
		Reconstructed: []float64{0, 1},
		GroundTruth:   []float64{0, 1},
		FirstSample:   10,
		Windows:       3,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"windows=3", "first=10", "t=0.5000s", "truth ▁█", "recon ▁█"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}
