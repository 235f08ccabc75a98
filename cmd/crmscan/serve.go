package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/crmscan/internal/config"
	"github.com/nao1215/crmscan/internal/explain"
	crmlog "github.com/nao1215/crmscan/internal/log"
	"github.com/nao1215/crmscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quality-check service",
		Long: `Serve starts a stateless HTTP service exposing the quality checks.

Endpoints:
  POST /api/v1/quality-checks  Analyze an uploaded CSV (text/csv body or
                               multipart "file" field). Optional "profile"
                               and "explain" query parameters.
  GET  /api/v1/sample          Return the embedded sample CRM export.
  GET  /healthz                Liveness probe.
  GET  /metrics                Prometheus metrics.

No request data survives the request: uploads are parsed in memory,
analyzed, and discarded with the response.

Examples:
  # Serve on the default address
  crmscan serve

  # Serve on a specific port with profiles from a config file
  crmscan serve --addr :9090 -c .crmscan

  # Allow clients to request AI explanations
  crmscan serve --explain`,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", server.DefaultAddr,
		"Listen address for the HTTP service")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .crmscan in current or home directory)")
	cmd.Flags().StringP("profile", "p", "",
		"Default profile applied to requests that name none")
	cmd.Flags().BoolP("explain", "e", false,
		"Enable the explain=true query parameter for requests")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	if err := applyConfigFile(cmd, cfg); err != nil {
		return err
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	cfg.Explain, err = cmd.Flags().GetBool("explain")
	if err != nil {
		return err
	}

	// JSON logs for the service; text logs stay on the CLI paths
	logger := crmlog.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Stop on SIGINT/SIGTERM and drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []server.Option{
		server.WithAddr(addr),
		server.WithLogger(logger),
		server.WithVersion(getVersion()),
		server.WithConfig(cfg),
	}
	if cfg.Profiles != nil {
		opts = append(opts, server.WithProfiles(cfg.Profiles))
	}

	// The generator is created once at startup. A missing API key
	// disables explanations for the whole service rather than failing
	// every request late.
	if cfg.Explain {
		generator, err := explain.New(ctx, cfg.ExplainProvider, cfg.ExplainModel, "")
		if err != nil {
			return fmt.Errorf("explanation provider setup failed: %w", err)
		}
		opts = append(opts, server.WithExplanationGenerator(generator))
	}

	srv := server.New(opts...)

	logger.Info("starting http service", "addr", addr, "explain", cfg.Explain)
	return srv.Start(ctx)
}
