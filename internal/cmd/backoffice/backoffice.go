// Package backoffice parses console flags and launches the console service.
package backoffice

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/backoffice/internal/platform/cmd"
	"github.com/louisbranch/backoffice/internal/services/backoffice"
)

// Config holds console command configuration.
type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8090"`
	RecordsURL     string        `env:"RECORDS_URL" envDefault:"http://localhost:8091"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"2s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.RecordsURL, "records-url", cfg.RecordsURL, "base URL of the records API")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "timeout for each records API call")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the console service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBackoffice, entrypoint.RunOptions{LogLevel: cfg.LogLevel}, func(ctx context.Context) error {
		server, err := backoffice.NewServer(ctx, backoffice.Config{
			HTTPAddr:       cfg.HTTPAddr,
			RecordsURL:     cfg.RecordsURL,
			RequestTimeout: cfg.RequestTimeout,
		})
		if err != nil {
			return fmt.Errorf("init backoffice server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve backoffice: %w", err)
		}
		return nil
	})
}
