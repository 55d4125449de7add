// Package config provides configuration loading for the resolve-git-ref application.
// It handles loading server, upstream and logging settings from environment variables
// (optionally seeded from a .env file) and the deployment default token from HashiCorp Vault.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/vault"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	// EnvListenAddr is the address the HTTP server listens on.
	EnvListenAddr = "LISTEN_ADDR"

	// EnvGitHost is the web host of the remote Git service.
	EnvGitHost = "GIT_HOST"

	// EnvGitScheme is the URL scheme used to reach EnvGitHost.
	EnvGitScheme = "GIT_SCHEME"

	// EnvUpstreamTimeout bounds each discovery request (Go duration syntax).
	EnvUpstreamTimeout = "UPSTREAM_TIMEOUT"

	// EnvLogLevel is the log level (debug, info, error).
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogAppName is the application name for log context.
	EnvLogAppName = "LOG_APP_NAME"

	// EnvDefaultToken is a deployment default credential used when requests carry none.
	EnvDefaultToken = "DEFAULT_GITHUB_TOKEN"

	// EnvVaultTokenPath is the path in Vault KV where the default credential is stored.
	EnvVaultTokenPath = "VAULT_GITHUB_TOKEN_PATH"

	// EnvVaultTokenMount is the Vault KV mount point (defaults to "secret").
	EnvVaultTokenMount = "VAULT_GITHUB_TOKEN_MOUNT"
)

// Default values.
const (
	DefaultListenAddr      = ":8080"
	DefaultGitHost         = "github.com"
	DefaultGitScheme       = "https"
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogAppName      = "resolve-git-ref"
	DefaultVaultTokenMount = "secret"
)

// envFiles are loaded in order when present. Variables already set are kept.
var envFiles = []string{".env", ".env.local"}

// Vault secret keys checked for the default credential, in order.
var vaultTokenKeys = []string{"token", "GITHUB_TOKEN"}

// Configuration errors.
var (
	// ErrInvalidTimeout indicates UPSTREAM_TIMEOUT could not be parsed.
	ErrInvalidTimeout = errors.New("invalid upstream timeout")

	// ErrInvalidScheme indicates GIT_SCHEME is neither http nor https.
	ErrInvalidScheme = errors.New("git scheme must be http or https")

	// ErrVaultClientFailed indicates failure to create or authenticate with Vault.
	ErrVaultClientFailed = errors.New("failed to create Vault client")

	// ErrVaultSecretNotFound indicates the secret was not found in Vault.
	ErrVaultSecretNotFound = errors.New("default token not found in Vault")
)

// VaultClient defines the interface for Vault operations.
// This interface allows for dependency injection and testing.
type VaultClient interface {
	// GetKVSecret retrieves a secret from Vault's KV v2 secrets engine.
	GetKVSecret(ctx context.Context, path, mount string) (map[string]interface{}, error)
}

// VaultClientFactory creates a VaultClient using AppRole authentication.
type VaultClientFactory func(ctx context.Context) (VaultClient, error)

// DefaultVaultClientFactory creates a VaultClient using goLibMyCarrier/vault with AppRole auth.
func DefaultVaultClientFactory(ctx context.Context) (VaultClient, error) {
	// Uses: VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID
	vaultConfig, err := vault.VaultLoadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	client, err := vault.CreateVaultClient(ctx, vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	return client, nil
}

// Config holds all application configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// GitHost is the remote web host, e.g. github.com.
	GitHost string

	// GitScheme is http or https.
	GitScheme string

	// UpstreamTimeout bounds each discovery request.
	UpstreamTimeout time.Duration

	// DefaultToken is used when a request carries no credential. May be empty.
	DefaultToken string

	// LogLevel is the logging level (debug, info, error).
	LogLevel string

	// LogAppName is the application name for log context.
	LogAppName string
}

// Load loads the application configuration from the environment.
//
// The default token is read from Vault when VAULT_GITHUB_TOKEN_PATH is set
// (requires VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID), otherwise from
// DEFAULT_GITHUB_TOKEN.
func Load() (*Config, error) {
	return LoadWithVaultClient(context.Background(), nil)
}

// LoadWithVaultClient loads configuration using the provided VaultClient factory.
// If vaultClientFactory is nil, DefaultVaultClientFactory is used.
func LoadWithVaultClient(ctx context.Context, vaultClientFactory VaultClientFactory) (*Config, error) {
	loadEnvFiles()

	timeout := DefaultUpstreamTimeout
	if raw := os.Getenv(EnvUpstreamTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimeout, raw)
		}
		timeout = d
	}

	scheme := strings.ToLower(getenv(EnvGitScheme, DefaultGitScheme))
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScheme, scheme)
	}

	token, err := loadDefaultToken(ctx, vaultClientFactory)
	if err != nil {
		return nil, err
	}

	return &Config{
		ListenAddr:      getenv(EnvListenAddr, DefaultListenAddr),
		GitHost:         getenv(EnvGitHost, DefaultGitHost),
		GitScheme:       scheme,
		UpstreamTimeout: timeout,
		DefaultToken:    token,
		LogLevel:        getenv(EnvLogLevel, DefaultLogLevel),
		LogAppName:      getenv(EnvLogAppName, DefaultLogAppName),
	}, nil
}

// loadEnvFiles seeds the environment from .env files. Missing files are ignored.
func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			fmt.Fprintf(os.Stderr, "Note: %s could not be loaded: %v\n", f, err)
		}
	}
}

// loadDefaultToken resolves the deployment default credential, preferring Vault.
func loadDefaultToken(ctx context.Context, vaultClientFactory VaultClientFactory) (string, error) {
	path := os.Getenv(EnvVaultTokenPath)
	if path == "" {
		return os.Getenv(EnvDefaultToken), nil
	}

	if vaultClientFactory == nil {
		vaultClientFactory = DefaultVaultClientFactory
	}

	client, err := vaultClientFactory(ctx)
	if err != nil {
		return "", err
	}

	mount := getenv(EnvVaultTokenMount, DefaultVaultTokenMount)

	secret, err := client.GetKVSecret(ctx, path, mount)
	if err != nil {
		return "", fmt.Errorf("%w at path %s: %w", ErrVaultSecretNotFound, path, err)
	}

	return tokenFromSecret(secret, path)
}

// tokenFromSecret picks the first non-empty string under one of vaultTokenKeys.
func tokenFromSecret(secret map[string]interface{}, path string) (string, error) {
	for _, key := range vaultTokenKeys {
		if v, ok := secret[key].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w at path %s: no %s key", ErrVaultSecretNotFound, path, strings.Join(vaultTokenKeys, " or "))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
