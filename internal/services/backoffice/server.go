package backoffice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/backoffice/internal/platform/logging"
	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	"github.com/louisbranch/backoffice/internal/services/backoffice/integration/restclient"
)

// Config defines the inputs for the console process.
type Config struct {
	HTTPAddr   string
	RecordsURL string
	// RequestTimeout bounds each records API call.
	RequestTimeout time.Duration
}

// Server hosts the console over HTTP.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	client     *restclient.Client
}

var _ RecordsClient = (*restclient.Client)(nil)

// NewServer builds the console server and its records API client.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	recordsURL := strings.TrimSpace(cfg.RecordsURL)
	if recordsURL == "" {
		return nil, errors.New("records url is required")
	}
	client, err := restclient.New(recordsURL, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("records client: %w", err)
	}

	logger := logging.FromContext(ctx)
	handler, err := NewHandler(client, logger, cfg.RequestTimeout)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("console handler: %w", err)
	}
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           otelhttp.NewHandler(handler, "backoffice"),
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext: func(net.Listener) context.Context {
			return logging.WithLogger(context.Background(), logger)
		},
	}
	return &Server{httpAddr: httpAddr, httpServer: httpServer, client: client}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("backoffice server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logging.FromContext(ctx).Info("backoffice listening", "addr", s.httpAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Close releases the records API client.
func (s *Server) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
