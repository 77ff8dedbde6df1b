package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// terminalSink draws each render frame as a pair of sparklines, ground truth
// above the reconstruction, on a shared vertical scale.
type terminalSink struct {
	w     io.Writer
	width int
}

func newTerminalSink(w io.Writer, width int) *terminalSink {
	if width < 8 {
		width = 8
	}
	return &terminalSink{w: w, width: width}
}

func (t *terminalSink) Render(f builder.RenderFrame) error {
	lo, hi := bounds(f.GroundTruth, f.Reconstructed)
	start := 0.0
	if len(f.Time) > 0 {
		start = f.Time[0]
	}
	_, err := fmt.Fprintf(t.w, "windows=%d first=%d t=%.4fs rmse=%.4g\n  truth %s\n  recon %s\n",
		f.Windows, f.FirstSample, start, f.RMSE,
		sparkline(f.GroundTruth, t.width, lo, hi),
		sparkline(f.Reconstructed, t.width, lo, hi))
	return err
}

func bounds(series ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// sparkline buckets values into at most width columns and draws the mean of
// each bucket.
func sparkline(values []float64, width int, lo, hi float64) string {
	if len(values) == 0 {
		return ""
	}
	cols := width
	if len(values) < cols {
		cols = len(values)
	}
	var b strings.Builder
	top := len(sparkLevels) - 1
	for c := 0; c < cols; c++ {
		from := c * len(values) / cols
		to := (c + 1) * len(values) / cols
		sum := 0.0
		for _, v := range values[from:to] {
			sum += v
		}
		mean := sum / float64(to-from)
		level := 0
		if hi > lo {
			level = int(math.Round((mean - lo) / (hi - lo) * float64(top)))
		}
		level = max(0, min(top, level))
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}
