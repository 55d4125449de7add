// Package main is the entry point for the resolve-git-ref application.
// resolve-git-ref resolves branches and tags of remote Git repositories to the
// commit they point to, using only the smart-HTTP ref advertisement.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/logger"

	"github.com/MyCarrier-DevOps/resolve-git-ref/cmd"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/adapters/git"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/adapters/httpapi"
	logadapter "github.com/MyCarrier-DevOps/resolve-git-ref/internal/adapters/logger"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/adapters/metrics"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/adapters/output"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/infrastructure/config"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/usecases"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Shared by the git client (upstream latency) and the HTTP handler (outcomes)
	recorder := metrics.NewPrometheusRecorder(nil)

	deps := &cmd.Dependencies{
		// Built lazily so LOG_LEVEL set by --verbose is honored
		LoggerFactory: func() cmd.Logger {
			return logadapter.NewZapAdapter(logger.NewZapLoggerFromConfig()).
				WithFields(map[string]any{"version": version})
		},

		ConfigLoader: func() (*cmd.AppConfig, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return &cmd.AppConfig{
				ListenAddr:      cfg.ListenAddr,
				GitHost:         cfg.GitHost,
				GitScheme:       cfg.GitScheme,
				UpstreamTimeout: cfg.UpstreamTimeout,
				DefaultToken:    cfg.DefaultToken,
				LogLevel:        cfg.LogLevel,
				LogAppName:      cfg.LogAppName,
			}, nil
		},

		AdvertiserFactory: func(cfg *cmd.AppConfig, log cmd.Logger) (domain.RefAdvertiser, error) {
			advertiser, err := git.NewSmartHTTPAdvertiser(git.Options{
				Scheme:    cfg.GitScheme,
				Host:      cfg.GitHost,
				UserAgent: userAgent(),
				Client:    &http.Client{Timeout: cfg.UpstreamTimeout},
				Recorder:  recorder,
			}, log)
			if err != nil {
				return nil, err
			}
			return advertiser, nil
		},

		ResolverFactory: func(advertiser domain.RefAdvertiser, log cmd.Logger) domain.Resolver {
			return usecases.NewRefResolver(advertiser, log)
		},

		HandlerFactory: func(resolver domain.Resolver, cfg *cmd.AppConfig, log cmd.Logger) http.Handler {
			h := httpapi.NewResolveHandler(resolver, recorder, log, cfg.DefaultToken)
			return httpapi.NewRouter(h, recorder.Handler(), log)
		},

		ListenAndServe: func(ctx context.Context, addr string, handler http.Handler) error {
			return httpapi.ListenAndServe(ctx, addr, handler)
		},

		OutputWriterFactory: func() domain.OutputWriter {
			return output.NewWriter()
		},

		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}

func userAgent() string {
	return "resolve-git-ref/" + version
}
