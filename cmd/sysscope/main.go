package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sysscope/sysscope/internal/config"
	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/ops"
	"github.com/sysscope/sysscope/internal/report"
	"github.com/sysscope/sysscope/internal/server"
)

func main() {
	// Subcommand dispatch.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			printVersion()
			return
		}
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func printVersion() {
	fmt.Fprintf(os.Stdout, "sysscope %s (%s, %s)\n", server.Version, server.Commit, server.Built)
}

func run() error {
	cfg, err := config.Load(os.Getenv("SYSSCOPE_CONFIG"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	client, err := gateway.NewHTTPClient(cfg.Gateway.URL, cfg.Gateway.Token)
	if err != nil {
		return fmt.Errorf("create gateway client: %w", err)
	}

	store, err := report.NewStore(client)
	if err != nil {
		return fmt.Errorf("report store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stdout carries the MCP protocol; diagnostics go to stderr.
	logger := log.New(os.Stderr, "sysscope: ", log.LstdFlags)

	orchCfg := ops.OrchestratorConfig{
		PollInterval:    cfg.Poll.Interval(),
		MaxPollFailures: cfg.Poll.MaxFailures,
	}

	srv := server.New(client, store, orchCfg, logger)
	defer srv.Shutdown()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server: %w", err)
	}

	return nil
}
