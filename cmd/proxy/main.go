// Command proxy runs the schema-validating HTTP reverse proxy: it sits in
// front of an upstream HTTP server, validates every forwarded response
// against an OpenAPI 3.0 document, and serves the accumulated JUnit
// report at GET /_ovp/junit.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/ovplog"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/proxy"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/report"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/router"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/specindex"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/specload"
)

// version is overridden at build time: -ldflags "-X main.version=1.2.3".
var version = "dev"

const listenAddr = "0.0.0.0:3000"

func main() {
	log := ovplog.New(os.Stderr)

	root := &cobra.Command{
		Use:     "openapi-validator-proxy",
		Short:   "Schema-validating HTTP reverse proxy",
		Version: version,
	}

	proxyCmd := &cobra.Command{
		Use:   "proxy <openapi-file> <upstream-url>",
		Short: "Forward traffic to an upstream, validating every response against an OpenAPI document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProxy(cmd.Context(), log, args[0], args[1])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(proxyCmd)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

func runProxy(ctx context.Context, log zerolog.Logger, specPath, upstreamURL string) error {
	doc, err := specload.FromFile(specPath)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}

	idx, err := specindex.Compile(doc)
	if err != nil {
		return fmt.Errorf("compile spec index: %w", err)
	}
	rt := router.Compile(idx)
	log.Info().Str("spec", specPath).Int("routes", len(idx.Routes)).Msg("compiled spec index")

	store := &report.Store{}
	handler, err := proxy.NewServer(upstreamURL, rt, store, log)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", listenAddr).Msg("bind failed")
		os.Exit(2)
	}
	log.Info().Str("addr", listenAddr).Str("upstream", upstreamURL).Msg("listening")

	srv := &http.Server{Handler: handler}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}
