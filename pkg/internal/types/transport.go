package types

import (
	"context"
	"io"
)

// Transport is the byte link between host and device. Reads block until at
// least one byte is available; Close unblocks a pending Read.
type Transport interface {
	io.ReadWriteCloser
}

// TransportOpener opens the link for one session.
type TransportOpener func(ctx context.Context) (Transport, error)
