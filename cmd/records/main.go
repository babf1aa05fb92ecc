// Package main starts the records API service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	recordscmd "github.com/louisbranch/backoffice/internal/cmd/records"
	"github.com/louisbranch/backoffice/internal/platform/config"
)

func main() {
	cfg, err := recordscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := recordscmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
