package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
	"github.com/spf13/cobra"
)

func newEmulateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emulate",
		Short: "Run the device emulator behind a TCP or websocket listener",
		Example: `  sparsewave emulate --listen 127.0.0.1:7700
  sparsewave emulate --mode ws --listen :7701 --threshold 0.05`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.emulate(ctx)
		},
	}
	f := cmd.Flags()
	f.String("listen", "", "address to accept links on")
	f.String("mode", "", "listener kind (tcp, ws)")
	f.Float64("threshold", 0, "significance threshold applied to each window")
	f.Int("window-size", 0, "samples per window")
	annotate(f, map[string]string{
		"listen":      "emulator.listen",
		"mode":        "emulator.mode",
		"threshold":   "emulator.threshold",
		"window-size": "session.window_size",
	})
	return cmd
}

func (a *app) emulate(ctx context.Context) error {
	ec := a.cfg.Emulator
	dev, err := builder.NewDevice(a.cfg.Session.WindowSize, ec.Threshold,
		builder.DeviceWithLogger(a.logger),
		builder.DeviceWithName("emulator-"+ec.Mode),
	)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", ec.Listen)
	if err != nil {
		return err
	}
	a.logger.Info("emulator listening", "component", "cli", "address", ln.Addr().String(), "mode", ec.Mode, "threshold", ec.Threshold)

	switch ec.Mode {
	case "ws":
		err = serveWebSocket(ctx, ln, dev)
	default:
		err = dev.ServeListener(ctx, ln)
	}
	fmt.Fprintf(os.Stderr, "served %d windows, %d coefficients, %d bytes\n", dev.Windows(), dev.Bins(), dev.BytesSent())
	return err
}

func serveWebSocket(ctx context.Context, ln net.Listener, dev *builder.Device) error {
	srv := &http.Server{
		Handler:           dev.WebSocketHandler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
