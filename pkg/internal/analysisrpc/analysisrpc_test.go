package analysisrpc_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/analysisrpc"
	"github.com/joeydtaylor/sparsewave/pkg/internal/costmodel"
	"github.com/joeydtaylor/sparsewave/pkg/internal/signal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newService(t *testing.T) *analysisrpc.Service {
	t.Helper()
	samples, err := signal.Sample(signal.AnalysisExcitation, 0, 500*time.Millisecond, time.Millisecond)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	a, err := costmodel.New(samples, 64)
	if err != nil {
		t.Fatalf("costmodel.New: %v", err)
	}
	return analysisrpc.NewService(a, "analysis")
}

func bufconnClient(t *testing.T, srv *grpc.Server) *analysisrpc.Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := analysisrpc.Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_EstimateAndSweep(t *testing.T) {
	srv := grpc.NewServer()
	analysisrpc.RegisterAnalysisServer(srv, newService(t))
	c := bufconnClient(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := c.Estimate(ctx, 0)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if st.Windows != 7 || st.NonZeroBinCount != 7*33 || st.UncompressedBytes != 448*8 {
		t.Fatalf("unexpected stats %+v", st)
	}

	sweep, err := c.Sweep(ctx, costmodel.Steps(5))
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(sweep) != 5 || sweep[0].NonZeroBinCount != st.NonZeroBinCount {
		t.Fatalf("unexpected sweep %+v", sweep)
	}
	for i := 1; i < len(sweep); i++ {
		if sweep[i].NonZeroBinCount > sweep[i-1].NonZeroBinCount {
			t.Fatalf("sweep not monotonic at %d: %+v", i, sweep)
		}
	}

	desc, err := c.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if desc["window_size"] != float64(64) || desc["signal"] != "analysis" {
		t.Fatalf("unexpected description %v", desc)
	}
	if bl, ok := desc["baselines"].([]interface{}); !ok || len(bl) != len(costmodel.Codecs) {
		t.Fatalf("expected %d baselines, got %v", len(costmodel.Codecs), desc["baselines"])
	}
}

func TestClient_InvalidThresholdIsInvalidArgument(t *testing.T) {
	srv := grpc.NewServer()
	analysisrpc.RegisterAnalysisServer(srv, newService(t))
	c := bufconnClient(t, srv)

	_, err := c.Estimate(context.Background(), 1.5)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	_, err = c.Sweep(context.Background(), []float64{0.1, -1})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for sweep, got %v", err)
	}
}

func TestServer_ServesNativeGRPCOverH2C(t *testing.T) {
	s := analysisrpc.NewServer(newService(t))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	c, err := analysisrpc.Dial(ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	if _, err := c.Estimate(callCtx, 0.5); err != nil {
		t.Fatalf("Estimate over h2c: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}

func grpcWebFrame(t *testing.T, m proto.Message) []byte {
	t.Helper()
	payload, err := proto.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	frame := make([]byte, 5, 5+len(payload))
	binary.BigEndian.PutUint32(frame[1:], uint32(len(payload)))
	return append(frame, payload...)
}

func TestServer_ServesGRPCWeb(t *testing.T) {
	s := analysisrpc.NewServer(newService(t), analysisrpc.WithAllowedOrigins("https://lab.example"))
	hs := httptest.NewServer(s.Handler())
	defer hs.Close()

	req, _ := http.NewRequest(http.MethodPost, hs.URL+"/sparsewave.analysis.v1.Analysis/Estimate",
		bytes.NewReader(grpcWebFrame(t, wrapperspb.Double(0))))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	req.Header.Set("X-Grpc-Web", "1")
	resp, err := hs.Client().Do(req)
	if err != nil {
		t.Fatalf("grpc-web request: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || len(body) < 5 || body[0] != 0 {
		t.Fatalf("unexpected grpc-web response %d %q", resp.StatusCode, body)
	}
	n := binary.BigEndian.Uint32(body[1:5])
	var out structpb.Struct
	if err := proto.Unmarshal(body[5:5+n], &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.GetFields()["non_zero_bins"].GetNumberValue() != 7*33 {
		t.Fatalf("unexpected result %v", out.AsMap())
	}

	other, _ := http.NewRequest(http.MethodGet, hs.URL+"/", nil)
	resp2, err := hs.Client().Do(other)
	if err != nil {
		t.Fatalf("plain request: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for non-gRPC request, got %d", resp2.StatusCode)
	}
}
