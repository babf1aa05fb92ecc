// Package records parses records service flags and launches the service.
package records

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/backoffice/internal/platform/cmd"
	"github.com/louisbranch/backoffice/internal/services/records"
)

// Config holds records command configuration.
type Config struct {
	HTTPAddr  string `env:"RECORDS_ADDR" envDefault:":8091"`
	DBPath    string `env:"RECORDS_DB_PATH" envDefault:"data/records.db"`
	PublicURL string `env:"RECORDS_PUBLIC_URL" envDefault:"http://localhost:8091"`
	SeedDemo  bool   `env:"RECORDS_SEED_DEMO"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the records SQLite database")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "externally reachable base URL used in export links")
	fs.BoolVar(&cfg.SeedDemo, "seed-demo", cfg.SeedDemo, "insert sample data into an empty database")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the records API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRecords, entrypoint.RunOptions{LogLevel: cfg.LogLevel}, func(ctx context.Context) error {
		server, err := records.NewServer(ctx, records.Config{
			HTTPAddr:  cfg.HTTPAddr,
			DBPath:    cfg.DBPath,
			PublicURL: cfg.PublicURL,
			SeedDemo:  cfg.SeedDemo,
		})
		if err != nil {
			return fmt.Errorf("init records server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve records: %w", err)
		}
		return nil
	})
}
