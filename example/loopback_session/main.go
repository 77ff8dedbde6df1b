package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := builder.NewLogger(builder.LoggerWithLevel("info"))
	defer logger.Flush()

	cfg := builder.DefaultSessionConfig()
	cfg.Stop = 2 * time.Second
	cfg.Threshold = builder.EnvFloatOr("SPARSEWAVE_THRESHOLD", 0.05)

	device, err := builder.NewDevice(cfg.WindowSize, cfg.Threshold, builder.DeviceWithLogger(logger))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	meter, err := builder.NewMeter(nil, builder.MeterWithLogger(logger))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	session, err := builder.NewSession(cfg,
		builder.NewTransportOpener("loopback://", builder.TransportWithDevice(device)),
		builder.SessionWithLogger(logger),
		builder.SessionWithMeter(meter),
		builder.SessionWithRenderSink(builder.RenderSinkFunc(func(f builder.RenderFrame) error {
			fmt.Printf("windows=%d samples=%d rmse=%.4f\n", f.Windows, len(f.Reconstructed), f.RMSE)
			return nil
		})),
	)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := session.Run(ctx); err != nil {
		fmt.Printf("Session failed: %v\n", err)
		os.Exit(1)
	}

	_ = builder.PrintMeterSummary(os.Stdout, meter.Snapshot())
	fmt.Printf("device sent %d coefficients over %d windows\n", device.Bins(), device.Windows())
}
