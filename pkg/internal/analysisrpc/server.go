package analysisrpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
)

// Server exposes an AnalysisServer as native gRPC and gRPC-Web on one listener.
type Server struct {
	internallogger.Registry

	grpcServer      *grpc.Server
	tls             *types.TLSConfig
	allowedOrigins  []string
	shutdownTimeout time.Duration

	componentMetadata types.ComponentMetadata
}

// WithTLS serves over TLS instead of cleartext h2c.
func WithTLS(cfg *types.TLSConfig) types.Option[*Server] {
	return func(s *Server) { s.tls = cfg }
}

// WithAllowedOrigins restricts gRPC-Web callers by Origin; "*" admits all.
// Requests without an Origin header are always admitted.
func WithAllowedOrigins(origins ...string) types.Option[*Server] {
	return func(s *Server) { s.allowedOrigins = append(s.allowedOrigins, origins...) }
}

// WithServerLogger attaches loggers.
func WithServerLogger(l ...types.Logger) types.Option[*Server] {
	return func(s *Server) { s.ConnectLogger(l...) }
}

// NewServer registers svc on a fresh gRPC server.
func NewServer(svc AnalysisServer, options ...types.Option[*Server]) *Server {
	s := &Server{
		grpcServer:        grpc.NewServer(),
		shutdownTimeout:   5 * time.Second,
		componentMetadata: types.ComponentMetadata{Type: "ANALYSIS_SERVER"},
	}
	for _, option := range options {
		option(s)
	}
	RegisterAnalysisServer(s.grpcServer, svc)
	return s
}

// GRPCServer returns the underlying gRPC server.
func (s *Server) GRPCServer() *grpc.Server { return s.grpcServer }

// Handler routes gRPC-Web (including CORS preflight and websockets) to the
// wrapper and native gRPC straight to the server.
func (s *Server) Handler() http.Handler {
	wrapped := grpcweb.WrapServer(s.grpcServer,
		grpcweb.WithOriginFunc(s.originAllowed),
		grpcweb.WithWebsockets(true),
		grpcweb.WithWebsocketOriginFunc(func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		}),
	)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case wrapped.IsGrpcWebRequest(r),
			wrapped.IsAcceptableGrpcCorsRequest(r),
			wrapped.IsGrpcWebSocketRequest(r):
			wrapped.ServeHTTP(w, r)
		case isGRPCRequest(r):
			s.grpcServer.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	handler := s.Handler()
	srv := &http.Server{ReadHeaderTimeout: 10 * time.Second}

	if s.tls != nil && s.tls.UseTLS {
		tlsCfg, err := buildTLSConfig(s.tls)
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsCfg
		srv.Handler = handler
		if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
			return fmt.Errorf("configure http2: %w", err)
		}
		ln = tls.NewListener(ln, tlsCfg)
	} else {
		srv.Handler = h2c.NewHandler(handler, &http2.Server{})
	}

	s.NotifyLoggers(types.InfoLevel, "analysis server listening", "component", s.componentMetadata, "event", "Serve",
		"address", ln.Addr().String(), "tls", s.tls != nil && s.tls.UseTLS)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.NotifyLoggers(types.WarnLevel, "analysis server shutdown", "component", s.componentMetadata, "event", "Shutdown", "error", err)
	}
	s.grpcServer.Stop()
	<-errCh
	return nil
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func isGRPCRequest(r *http.Request) bool {
	return r.ProtoMajor == 2 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc")
}

func buildTLSConfig(cfg *types.TLSConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load server certificate/key: %w", err)
	}
	minTLS := cfg.MinTLSVersion
	if minTLS == 0 {
		minTLS = tls.VersionTLS12
	}
	maxTLS := cfg.MaxTLSVersion
	if maxTLS == 0 {
		maxTLS = tls.VersionTLS13
	}
	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minTLS,
		MaxVersion:   maxTLS,
		NextProtos:   []string{"h2", "http/1.1"},
	}
	if cfg.CAFile != "" {
		caData, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caData) {
			return nil, fmt.Errorf("no CA certificates in %s", cfg.CAFile)
		}
		tlsConf.ClientCAs = pool
		tlsConf.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tlsConf, nil
}
