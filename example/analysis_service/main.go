package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger := builder.NewLogger()
	defer logger.Flush()

	fn, err := builder.Signal("analysis")
	if err != nil {
		panic(err)
	}
	samples, err := builder.SampleSignal(fn, 0, 500*time.Millisecond, 62500*time.Nanosecond)
	if err != nil {
		panic(err)
	}
	analysis, err := builder.NewAnalysis(samples, 64, builder.AnalysisWithSizeModel(builder.AnalysisSizeModel()))
	if err != nil {
		panic(err)
	}

	server := builder.NewAnalysisServer(analysis, "analysis",
		builder.AnalysisServerWithLogger(logger),
		builder.AnalysisServerWithAllowedOrigins("http://localhost:3000"),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	go func() {
		if err := server.Serve(ctx, ln); err != nil {
			fmt.Printf("server stopped: %v\n", err)
		}
	}()

	client, err := builder.DialAnalysis(ln.Addr().String())
	if err != nil {
		panic(err)
	}
	defer client.Close()

	stats, err := client.Sweep(ctx, builder.ThresholdSteps(11))
	if err != nil {
		panic(err)
	}
	for _, s := range stats {
		fmt.Printf("threshold=%.1f bins=%d bytes=%d ratio=%.2f%%\n", s.Threshold, s.NonZeroBinCount, s.EstimatedBytes, s.RatioPercent)
	}
}
