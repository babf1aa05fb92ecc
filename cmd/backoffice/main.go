// Package main starts the admin console.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	backofficecmd "github.com/louisbranch/backoffice/internal/cmd/backoffice"
	"github.com/louisbranch/backoffice/internal/platform/config"
)

func main() {
	cfg, err := backofficecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backofficecmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
