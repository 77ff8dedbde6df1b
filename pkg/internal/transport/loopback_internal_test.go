package transport

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestLoopback_DeviceFailureReachesReader(t *testing.T) {
	boom := errors.New("encoder jammed")
	link := loopback(context.Background(), func(context.Context, io.ReadWriter) error { return boom }, nil)
	defer link.Close()

	_, err := link.Read(make([]byte, 4))
	if !errors.Is(err, boom) {
		t.Fatalf("expected device error, got %v", err)
	}
}

func TestLoopback_CleanShutdownIsEOF(t *testing.T) {
	link := loopback(context.Background(), func(context.Context, io.ReadWriter) error { return nil }, nil)
	defer link.Close()

	if _, err := link.Read(make([]byte, 4)); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
