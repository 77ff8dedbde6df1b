package transport

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/coder/websocket"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func openTCP(ctx context.Context, u *url.URL, opts Options) (types.Transport, error) {
	if u.Host == "" {
		return nil, types.InvalidConfig("tcp transport needs host:port, got %q", u.String())
	}
	d := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}
	return conn, nil
}

// openFile opens a character device that was configured (baud rate, raw
// mode) outside the process.
func openFile(u *url.URL) (types.Transport, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return nil, types.InvalidConfig("file transport needs a path, got %q", u.String())
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func openWebSocket(ctx context.Context, u *url.URL, opts Options) (types.Transport, error) {
	dialCtx := ctx
	if opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()
	}
	c, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	return websocket.NetConn(context.WithoutCancel(ctx), c, websocket.MessageBinary), nil
}
