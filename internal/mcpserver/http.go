package mcpserver

import (
	"context"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	sessionHeader   = "Mcp-Session-Id"
	requestIDHeader = "X-Request-Id"
	shutdownTimeout = 10 * time.Second
)

// HTTPConfig controls the streamable HTTP transport.
type HTTPConfig struct {
	Host    string
	Port    int
	MCPPath string
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Handler returns the HTTP surface: the streamable endpoint at mcpPath,
// /healthz and /metrics.
func (s *Server) Handler(mcpPath string) http.Handler {
	mcpPath = cleanHTTPPath(mcpPath)
	streamable := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(mcpPath, otelhttp.NewHandler(streamable, "mcp"))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return s.withRequestID(withCORS(mux))
}

// RunHTTP serves the streamable HTTP transport until ctx is done, then
// shuts the listener down gracefully.
func (s *Server) RunHTTP(ctx context.Context, cfg HTTPConfig) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(cfg.MCPPath),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("serving streamable http", "addr", srv.Addr, "mcp_path", cleanHTTPPath(cfg.MCPPath))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down http transport")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// withCORS lets browser clients reach every route from any origin and read
// the session header off responses.
func withCORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Authorization", "Last-Event-ID", "Mcp-Protocol-Version", sessionHeader},
		ExposedHeaders: []string{sessionHeader},
	}).Handler(next)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		s.logger.Debug("http request", "request_id", id, "method", r.Method, "path", r.URL.Path, "session_id", r.Header.Get(sessionHeader))
		next.ServeHTTP(w, r)
	})
}

func cleanHTTPPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/mcp"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
