package transport_test

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/emulator"
	"github.com/joeydtaylor/sparsewave/pkg/internal/framecodec"
	"github.com/joeydtaylor/sparsewave/pkg/internal/transport"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func rampWindow(n int) []byte {
	out := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(i+1)))
	}
	return out
}

func exchange(t *testing.T, link types.Transport, n int) {
	t.Helper()
	go func() { _, _ = link.Write(rampWindow(n)) }()
	dec, _ := framecodec.NewDecoder(link, n)
	w, err := dec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	for i := range w {
		if math.Abs(w[i]-float64(i+1)) > 1e-4 {
			t.Fatalf("sample %d: got %v", i, w[i])
		}
	}
}

func TestOpen_RejectsUnknownScheme(t *testing.T) {
	_, err := transport.Open(context.Background(), "carrier-pigeon://coop")
	if !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestOpen_RejectsMalformedKafkaURL(t *testing.T) {
	for _, raw := range []string{"kafka://broker:9092/only-one", "kafka:///tx/rx"} {
		if _, err := transport.Open(context.Background(), raw); !errors.Is(err, types.ErrInvalidConfiguration) {
			t.Fatalf("%s: expected ErrInvalidConfiguration, got %v", raw, err)
		}
	}
}

func TestOpen_Loopback(t *testing.T) {
	dev, _ := emulator.New(8, 0)
	link, err := transport.Open(context.Background(), "loopback://", transport.WithDevice(dev))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	exchange(t, link, 8)

	closed := make(chan error, 1)
	go func() { closed <- link.Close() }()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("loopback Close did not return")
	}
	if dev.Windows() != 1 {
		t.Fatalf("expected the emulator to encode 1 window, got %d", dev.Windows())
	}
}

func TestOpen_LoopbackFrameShape(t *testing.T) {
	link, err := transport.Open(context.Background(), "loopback://", transport.WithFrameShape(16, 0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer link.Close()
	exchange(t, link, 16)
}

func TestOpen_LoopbackNeedsShape(t *testing.T) {
	_, err := transport.Open(context.Background(), "loopback://")
	if !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestOpen_TCP(t *testing.T) {
	dev, _ := emulator.New(8, 0)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = dev.ServeListener(ctx, ln) }()

	link, err := transport.Open(ctx, "tcp://"+ln.Addr().String())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer link.Close()
	exchange(t, link, 8)
}

func TestOpen_WebSocket(t *testing.T) {
	dev, _ := emulator.New(8, 0)
	srv := httptest.NewServer(dev.WebSocketHandler())
	defer srv.Close()

	link, err := transport.Open(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer link.Close()
	exchange(t, link, 8)
}

func TestOpen_File(t *testing.T) {
	if _, err := transport.Open(context.Background(), "file:///definitely/not/here/ttyACM0"); err == nil {
		t.Fatalf("expected error opening a missing device")
	}

	path := filepath.Join(t.TempDir(), "tty")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	link, err := transport.Open(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := link.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_ = link.Close()
	data, _ := os.ReadFile(path)
	if len(data) != 4 {
		t.Fatalf("expected 4 bytes in the device file, got %d", len(data))
	}
}

func TestOpener_FailureSurfaces(t *testing.T) {
	open := transport.Opener("tcp://127.0.0.1:1", transport.WithDialTimeout(200*time.Millisecond))
	if _, err := open(context.Background()); err == nil {
		t.Fatalf("expected dial failure")
	}
}
