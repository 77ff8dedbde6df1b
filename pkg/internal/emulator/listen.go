package emulator

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// ServeListener serves every accepted connection until ctx is cancelled.
func (d *Device) ServeListener(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		d.NotifyLoggers(types.InfoLevel, "link accepted", "component", d.componentMetadata, "event", "Accept", "remote", conn.RemoteAddr().String())

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			connCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				<-connCtx.Done()
				_ = conn.Close()
			}()
			if err := d.Serve(connCtx, conn); err != nil {
				d.NotifyLoggers(types.ErrorLevel, "link failed", "component", d.componentMetadata, "event", "Serve", "error", err)
			}
		}()
	}
}

// WebSocketHandler upgrades requests and serves binary messages as a byte stream.
func (d *Device) WebSocketHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			d.NotifyLoggers(types.WarnLevel, "websocket upgrade failed", "component", d.componentMetadata, "event", "Accept", "error", err)
			return
		}
		defer c.CloseNow()

		ctx := r.Context()
		conn := websocket.NetConn(ctx, c, websocket.MessageBinary)
		defer conn.Close()

		if err := d.Serve(ctx, conn); err != nil {
			d.NotifyLoggers(types.ErrorLevel, "link failed", "component", d.componentMetadata, "event", "Serve", "error", err)
		}
	})
}
