// Package cmd provides the CLI commands for resolve-git-ref.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
)

// Logger defines the logging interface used by the commands.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the commands.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance.
	LoggerFactory func() Logger

	// ConfigLoader loads application configuration.
	ConfigLoader func() (*AppConfig, error)

	// AdvertiserFactory creates the RefAdvertiser for the configured host.
	AdvertiserFactory func(cfg *AppConfig, log Logger) (domain.RefAdvertiser, error)

	// ResolverFactory creates a Resolver with the given dependencies.
	ResolverFactory func(advertiser domain.RefAdvertiser, log Logger) domain.Resolver

	// HandlerFactory creates the HTTP handler served by the serve command.
	HandlerFactory func(resolver domain.Resolver, cfg *AppConfig, log Logger) http.Handler

	// ListenAndServe serves handler on addr until ctx is done.
	ListenAndServe func(ctx context.Context, addr string, handler http.Handler) error

	// OutputWriterFactory creates an OutputWriter.
	OutputWriterFactory func() domain.OutputWriter

	// Stdout is the writer for standard output (for resolution JSON).
	Stdout io.Writer

	// Stderr is the writer for standard error (for warnings/errors).
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// GitHost is the remote web host.
	GitHost string

	// GitScheme is http or https.
	GitScheme string

	// UpstreamTimeout bounds each discovery request.
	UpstreamTimeout time.Duration

	// DefaultToken is the credential used when none is supplied.
	DefaultToken string

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// Command-line flags.
var (
	verbose bool
)

// ErrRefNotFound is returned by the resolve command when the remote does not advertise the ref.
var ErrRefNotFound = errors.New("ref not found")

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for resolve-git-ref.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resolve-git-ref",
		Short: "Resolve branches and tags of remote Git repositories to commit SHAs",
		Long: `resolve-git-ref resolves a branch or tag of a remote Git repository to the
commit it currently points to. It only performs the smart-HTTP ref advertisement
(info/refs?service=git-upload-pack); nothing is cloned or fetched.

Examples:
  # Serve the HTTP API on :8080
  resolve-git-ref serve

  # Resolve a single ref
  resolve-git-ref resolve adobe/helix-fetch --ref main

  # Resolve the default branch of a private repository
  resolve-git-ref resolve --owner acme --repo private --token $GITHUB_TOKEN`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose/debug logging")

	rootCmd.AddCommand(newServeCmd(deps), newResolveCmd(deps))

	return rootCmd
}

// setup validates deps, applies the verbose flag and loads logger and configuration.
func setup(cmd *cobra.Command, deps *Dependencies) (context.Context, Logger, *AppConfig, error) {
	if deps == nil {
		return nil, nil, nil, errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	// Set log level based on verbose flag (best-effort)
	if verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			writeWarningf(stderr, "warning: could not set log level: %v\n", err)
		}
	}

	log := deps.LoggerFactory()

	cfg, err := deps.ConfigLoader()
	if err != nil {
		log.Error(ctx, "failed to load configuration", err, nil)
		return nil, nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	return ctx, log, cfg, nil
}

// newResolver builds the advertiser and resolver from deps.
func newResolver(ctx context.Context, deps *Dependencies, cfg *AppConfig, log Logger) (domain.Resolver, error) {
	advertiser, err := deps.AdvertiserFactory(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialize git client", err, map[string]interface{}{
			"git_host": cfg.GitHost,
		})
		return nil, fmt.Errorf("git client error: %w", err)
	}
	return deps.ResolverFactory(advertiser, log), nil
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// writeWarningf writes a warning message to the given writer.
// This is a best-effort operation; errors are intentionally ignored
// because there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		return
	}
}
