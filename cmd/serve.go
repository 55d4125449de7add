package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var listenAddr string

func newServeCmd(deps *Dependencies) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution HTTP API",
		Long: `Serve the resolution HTTP API.

  GET /?owner=<owner>&repo=<repo>[&ref=<ref>]

The credential is taken from the x-github-token header, then the GITHUB_TOKEN
query parameter, then the configured default token. Responds 200 with
{"sha","fqRef"}, 404 "ref not found", 400 on missing owner/repo, and 502 when
the remote fails. /health and /metrics are served alongside.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, deps)
		},
	}

	serveCmd.Flags().StringVar(&listenAddr, "addr", "",
		"Listen address (overrides LISTEN_ADDR)")

	return serveCmd
}

// runServe runs the HTTP API until SIGINT or SIGTERM.
func runServe(cmd *cobra.Command, deps *Dependencies) error {
	ctx, log, cfg, err := setup(cmd, deps)
	if err != nil {
		return err
	}

	resolver, err := newResolver(ctx, deps, cfg, log)
	if err != nil {
		return err
	}

	addr := cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "starting resolve-git-ref", map[string]interface{}{
		"addr":             addr,
		"git_host":         cfg.GitHost,
		"upstream_timeout": cfg.UpstreamTimeout.String(),
		"default_token":    cfg.DefaultToken != "",
	})

	handler := deps.HandlerFactory(resolver, cfg, log)
	if err := deps.ListenAndServe(ctx, addr, handler); err != nil {
		log.Error(ctx, "server failed", err, nil)
		return fmt.Errorf("server error: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}
