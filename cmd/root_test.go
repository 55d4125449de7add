package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
)

// Test mocks for dependency injection testing.

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockAdvertiser implements domain.RefAdvertiser for testing.
type mockAdvertiser struct{}

func (m *mockAdvertiser) Advertise(_ context.Context, _, _, _ string) (string, error) {
	return "", nil
}

// mockResolver implements domain.Resolver for testing.
type mockResolver struct {
	output *domain.Resolution
	err    error
	inputs []domain.ResolveInput
}

func (m *mockResolver) Resolve(_ context.Context, input domain.ResolveInput) (*domain.Resolution, error) {
	m.inputs = append(m.inputs, input)
	return m.output, m.err
}

// mockOutputWriter implements domain.OutputWriter for testing.
type mockOutputWriter struct {
	written  *domain.Resolution
	writeErr error
}

func (m *mockOutputWriter) WriteResolution(res *domain.Resolution) error {
	m.written = res
	return m.writeErr
}

// newTestDeps returns dependencies wired to the given resolver and writer.
func newTestDeps(cfg *AppConfig, resolver *mockResolver, writer *mockOutputWriter) *Dependencies {
	return &Dependencies{
		LoggerFactory: func() Logger { return &mockLogger{} },
		ConfigLoader: func() (*AppConfig, error) {
			return cfg, nil
		},
		AdvertiserFactory: func(_ *AppConfig, _ Logger) (domain.RefAdvertiser, error) {
			return &mockAdvertiser{}, nil
		},
		ResolverFactory: func(_ domain.RefAdvertiser, _ Logger) domain.Resolver {
			return resolver
		},
		OutputWriterFactory: func() domain.OutputWriter {
			return writer
		},
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
}

func TestNewRootCmd(t *testing.T) {
	// Set default deps so NewRootCmd() works
	SetDefaultDependencies(&Dependencies{})
	cmd := NewRootCmd()

	require.NotNil(t, cmd)
	assert.Equal(t, "resolve-git-ref", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "resolve")
}

func TestResolveCmd_Flags(t *testing.T) {
	cmd := NewRootCmdWithDeps(&Dependencies{})
	resolveCmd, _, err := cmd.Find([]string{"resolve"})
	require.NoError(t, err)

	refFlag := resolveCmd.Flags().Lookup("ref")
	require.NotNil(t, refFlag)
	assert.Equal(t, "r", refFlag.Shorthand)
	assert.Empty(t, refFlag.DefValue)

	tokenFlag := resolveCmd.Flags().Lookup("token")
	require.NotNil(t, tokenFlag)
	assert.Equal(t, "t", tokenFlag.Shorthand)

	assert.NotNil(t, resolveCmd.Flags().Lookup("owner"))
	assert.NotNil(t, resolveCmd.Flags().Lookup("repo"))

	// At most one positional repository
	require.NoError(t, resolveCmd.Args(resolveCmd, []string{}))
	require.NoError(t, resolveCmd.Args(resolveCmd, []string{"adobe/helix-fetch"}))
	require.Error(t, resolveCmd.Args(resolveCmd, []string{"a/b", "c/d"}))
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd := NewRootCmdWithDeps(&Dependencies{})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "resolve-git-ref")
	assert.Contains(t, output, "serve")
	assert.Contains(t, output, "resolve")
	assert.Contains(t, output, "--verbose")
}

func TestRootCmd_NilDependencies(t *testing.T) {
	for _, args := range [][]string{{"resolve", "adobe/helix-fetch"}, {"serve"}} {
		cmd := NewRootCmdWithDeps(nil)
		cmd.SetArgs(args)

		err := cmd.Execute()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "dependencies not configured")
	}
}

func TestRootCmd_ConfigLoadError(t *testing.T) {
	deps := &Dependencies{
		LoggerFactory: func() Logger { return &mockLogger{} },
		ConfigLoader: func() (*AppConfig, error) {
			return nil, errors.New("failed to load config")
		},
		Stderr: io.Discard,
	}

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{"resolve", "adobe/helix-fetch"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestRootCmd_AdvertiserFactoryError(t *testing.T) {
	deps := newTestDeps(&AppConfig{}, &mockResolver{}, &mockOutputWriter{})
	deps.AdvertiserFactory = func(_ *AppConfig, _ Logger) (domain.RefAdvertiser, error) {
		return nil, errors.New("invalid git host")
	}

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{"resolve", "adobe/helix-fetch"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "git client error")
}

func TestResolveCmd_Success(t *testing.T) {
	want := &domain.Resolution{SHA: "7aeaf5e3e4ad3d6b2b1f8fbbd6d2c8bcbf7ee1c1", FQRef: "refs/heads/main"}
	resolver := &mockResolver{output: want}
	writer := &mockOutputWriter{}

	cmd := NewRootCmdWithDeps(newTestDeps(&AppConfig{}, resolver, writer))
	cmd.SetArgs([]string{"resolve", "adobe/helix-fetch", "--ref", "main", "-t", "ghp_flag"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Same(t, want, writer.written)
	require.Len(t, resolver.inputs, 1)
	assert.Equal(t, domain.ResolveInput{
		Owner:      "adobe",
		Repo:       "helix-fetch",
		Ref:        "main",
		Credential: "ghp_flag",
	}, resolver.inputs[0])
}

func TestResolveCmd_RepositoryInput(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantOwner string
		wantRepo  string
	}{
		{
			name:      "slug argument",
			args:      []string{"resolve", "adobe/helix-fetch"},
			wantOwner: "adobe",
			wantRepo:  "helix-fetch",
		},
		{
			name:      "URL argument",
			args:      []string{"resolve", "https://github.com/adobe/helix-fetch.git"},
			wantOwner: "adobe",
			wantRepo:  "helix-fetch",
		},
		{
			name:      "flags",
			args:      []string{"resolve", "--owner", "adobe", "--repo", "helix-fetch"},
			wantOwner: "adobe",
			wantRepo:  "helix-fetch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{output: &domain.Resolution{SHA: "abc", FQRef: "refs/heads/main"}}
			cmd := NewRootCmdWithDeps(newTestDeps(&AppConfig{}, resolver, &mockOutputWriter{}))
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			require.NoError(t, err)
			require.Len(t, resolver.inputs, 1)
			assert.Equal(t, tt.wantOwner, resolver.inputs[0].Owner)
			assert.Equal(t, tt.wantRepo, resolver.inputs[0].Repo)
			assert.Empty(t, resolver.inputs[0].Ref)
		})
	}
}

func TestResolveCmd_ArgumentAndFlagsConflict(t *testing.T) {
	resolver := &mockResolver{}
	cmd := NewRootCmdWithDeps(newTestDeps(&AppConfig{}, resolver, &mockOutputWriter{}))
	cmd.SetArgs([]string{"resolve", "adobe/helix-fetch", "--owner", "other"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "both as argument and via --owner/--repo")
	assert.Empty(t, resolver.inputs)
}

func TestResolveCmd_InvalidRepositoryArgument(t *testing.T) {
	resolver := &mockResolver{}
	cmd := NewRootCmdWithDeps(newTestDeps(&AppConfig{}, resolver, &mockOutputWriter{}))
	cmd.SetArgs([]string{"resolve", "not-a-repository"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Empty(t, resolver.inputs)
}

func TestResolveCmd_DefaultTokenFallback(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCred string
	}{
		{
			name:     "configured default used without flag",
			args:     []string{"resolve", "adobe/helix-fetch"},
			wantCred: "ghp_config",
		},
		{
			name:     "flag preferred over configured default",
			args:     []string{"resolve", "adobe/helix-fetch", "--token", "ghp_flag"},
			wantCred: "ghp_flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{output: &domain.Resolution{SHA: "abc", FQRef: "refs/heads/main"}}
			cmd := NewRootCmdWithDeps(newTestDeps(&AppConfig{DefaultToken: "ghp_config"}, resolver, &mockOutputWriter{}))
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			require.Len(t, resolver.inputs, 1)
			assert.Equal(t, tt.wantCred, resolver.inputs[0].Credential)
		})
	}
}

func TestResolveCmd_Errors(t *testing.T) {
	remoteErr := &domain.ResolveError{Kind: domain.KindRemote, Status: http.StatusForbidden, Message: "Forbidden: "}

	tests := []struct {
		name        string
		resolver    *mockResolver
		writer      *mockOutputWriter
		args        []string
		wantErrIs   error
		wantContain string
	}{
		{
			name:        "ref not found",
			resolver:    &mockResolver{},
			args:        []string{"resolve", "adobe/helix-fetch", "--ref", "nope"},
			wantErrIs:   ErrRefNotFound,
			wantContain: "adobe/helix-fetch nope",
		},
		{
			name:        "validation error",
			resolver:    &mockResolver{err: domain.NewValidationError(domain.ErrMissingOwner)},
			args:        []string{"resolve", "--repo", "helix-fetch"},
			wantErrIs:   domain.ErrMissingOwner,
			wantContain: "invalid input",
		},
		{
			name:        "remote error passes through",
			resolver:    &mockResolver{err: remoteErr},
			args:        []string{"resolve", "adobe/helix-fetch"},
			wantErrIs:   remoteErr,
			wantContain: "403 - Forbidden",
		},
		{
			name:        "output error",
			resolver:    &mockResolver{output: &domain.Resolution{SHA: "abc", FQRef: "refs/heads/main"}},
			writer:      &mockOutputWriter{writeErr: errors.New("write failed")},
			args:        []string{"resolve", "adobe/helix-fetch"},
			wantContain: "output error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := tt.writer
			if writer == nil {
				writer = &mockOutputWriter{}
			}
			cmd := NewRootCmdWithDeps(newTestDeps(&AppConfig{}, tt.resolver, writer))
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
			assert.Contains(t, err.Error(), tt.wantContain)
		})
	}
}

func TestRootCmd_VerboseSetsDebugLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")

	cmd := NewRootCmdWithDeps(newTestDeps(&AppConfig{}, &mockResolver{
		output: &domain.Resolution{SHA: "abc", FQRef: "refs/heads/main"},
	}, &mockOutputWriter{}))
	cmd.SetArgs([]string{"-v", "resolve", "adobe/helix-fetch"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}

func TestServeCmd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantAddr string
	}{
		{name: "configured address", args: []string{"serve"}, wantAddr: ":8080"},
		{name: "flag overrides address", args: []string{"serve", "--addr", "127.0.0.1:9999"}, wantAddr: "127.0.0.1:9999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{}
			cfg := &AppConfig{ListenAddr: ":8080", UpstreamTimeout: time.Second}
			handler := http.NotFoundHandler()

			var (
				gotResolver domain.Resolver
				gotAddr     string
				gotHandler  http.Handler
			)
			deps := newTestDeps(cfg, resolver, &mockOutputWriter{})
			deps.HandlerFactory = func(r domain.Resolver, c *AppConfig, _ Logger) http.Handler {
				gotResolver = r
				assert.Same(t, cfg, c)
				return handler
			}
			deps.ListenAndServe = func(_ context.Context, addr string, h http.Handler) error {
				gotAddr = addr
				gotHandler = h
				return nil
			}

			cmd := NewRootCmdWithDeps(deps)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.wantAddr, gotAddr)
			assert.Same(t, resolver, gotResolver)
			assert.NotNil(t, gotHandler)
		})
	}
}

func TestServeCmd_ServerError(t *testing.T) {
	deps := newTestDeps(&AppConfig{ListenAddr: ":8080"}, &mockResolver{}, &mockOutputWriter{})
	deps.HandlerFactory = func(_ domain.Resolver, _ *AppConfig, _ Logger) http.Handler {
		return http.NotFoundHandler()
	}
	deps.ListenAndServe = func(_ context.Context, _ string, _ http.Handler) error {
		return errors.New("address already in use")
	}

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{"serve"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}

func TestServeCmd_RejectsArgs(t *testing.T) {
	cmd := NewRootCmdWithDeps(&Dependencies{})
	cmd.SetArgs([]string{"serve", "extra"})
	cmd.SetErr(io.Discard)

	require.Error(t, cmd.Execute())
}
