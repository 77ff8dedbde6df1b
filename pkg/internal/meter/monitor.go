package meter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// Monitor samples the host and logs a progress entry every interval until
// ctx is done, then logs the final counters once.
func (m *Meter) Monitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logSnapshot(types.InfoLevel, "session totals", m.Snapshot())
			return
		case <-ticker.C:
			if _, err := m.SampleHost(); err != nil {
				m.NotifyLoggers(types.DebugLevel, "host sample failed", "component", m.componentMetadata, "event", "SampleHost", "error", err)
			}
			m.logSnapshot(types.DebugLevel, "session progress", m.Snapshot())
		}
	}
}

func (m *Meter) logSnapshot(level types.LogLevel, msg string, s Snapshot) {
	m.NotifyLoggers(level, msg,
		"component", m.componentMetadata,
		"event", "Monitor",
		"samples_sent", s.SamplesSent,
		"frames", s.FramesDecoded,
		"bins_per_frame", s.MeanBinsPerFrame(),
		"bytes", s.BytesReceived,
		"windows", s.WindowsBuffered,
		"rmse", s.RMSE,
		"cpu_percent", s.Host.CPUPercent,
		"memory_percent", s.Host.MemoryPercent,
		"goroutines", s.Host.Goroutines,
	)
}

// PrintSummary writes a one-screen summary of s.
func PrintSummary(w io.Writer, s Snapshot) error {
	_, err := fmt.Fprintf(w,
		"Elapsed: %s\nSamples sent: %d, Frames decoded: %d, Windows: %d\nBins/frame: %.2f, Bytes received: %d, RMSE: %.6f\nCPU: %.2f%%, RAM: %.2f%%, Goroutines: %d\n",
		s.Elapsed.Truncate(time.Millisecond),
		s.SamplesSent, s.FramesDecoded, s.WindowsBuffered,
		s.MeanBinsPerFrame(), s.BytesReceived, s.RMSE,
		s.Host.CPUPercent, s.Host.MemoryPercent, s.Host.Goroutines,
	)
	return err
}
