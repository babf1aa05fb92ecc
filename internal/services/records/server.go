package records

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/louisbranch/backoffice/internal/platform/logging"
	"github.com/louisbranch/backoffice/internal/platform/metrics"
	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	"github.com/louisbranch/backoffice/internal/services/records/api/httpapi"
	recordsqlite "github.com/louisbranch/backoffice/internal/services/records/storage/sqlite"
)

// Config defines the inputs for the records process.
type Config struct {
	HTTPAddr string
	DBPath   string
	// PublicURL prefixes export download links handed to the console.
	PublicURL string
	// SeedDemo fills an empty database with sample contacts and domains.
	SeedDemo bool
}

// Server hosts the records API over its SQLite store.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      *recordsqlite.Store
}

// NewServer opens storage and builds the HTTP server.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	store, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if cfg.SeedDemo {
		if err := SeedDemo(ctx, store); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	logger := logging.FromContext(ctx)
	api := httpapi.New(store, metrics.New(), logger, cfg.PublicURL)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           otelhttp.NewHandler(api.Routes(), "records"),
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext: func(net.Listener) context.Context {
			return logging.WithLogger(context.Background(), logger)
		},
	}
	return &Server{httpAddr: httpAddr, httpServer: httpServer, store: store}, nil
}

func openStore(ctx context.Context, path string) (*recordsqlite.Store, error) {
	cleanPath := filepath.Clean(strings.TrimSpace(path))
	if cleanPath == "." || cleanPath == "" {
		return nil, errors.New("db path is required")
	}
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := recordsqlite.Open(ctx, cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open records store: %w", err)
	}
	return store, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("records server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	logging.FromContext(ctx).Info("records listening", "addr", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the store.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	return s.store.Close()
}
