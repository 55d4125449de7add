// Package git provides adapters for talking to remote Git hosts.
// This package implements domain.RefAdvertiser over the smart-HTTP protocol,
// using go-git/v5 for credentials.
package git

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
)

// tokenUsername is sent as Basic auth username. Hosts only check the password.
const tokenUsername = "token"

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Recorder observes outbound discovery requests.
type Recorder interface {
	ObserveUpstream(status int, d time.Duration)
}

// Options configures a SmartHTTPAdvertiser.
type Options struct {
	// Scheme is http or https. Defaults to https.
	Scheme string

	// Host is the web host of the remote, e.g. github.com.
	Host string

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// Client performs the requests. Defaults to http.DefaultClient.
	Client *http.Client

	// Recorder is optional.
	Recorder Recorder
}

// SmartHTTPAdvertiser implements domain.RefAdvertiser by issuing
// GET <host>/<owner>/<repo>.git/info/refs?service=git-upload-pack.
type SmartHTTPAdvertiser struct {
	base      *url.URL
	userAgent string
	client    *http.Client
	recorder  Recorder
	logger    Logger
}

// NewSmartHTTPAdvertiser creates an advertiser for the host in opts.
func NewSmartHTTPAdvertiser(opts Options, log Logger) (*SmartHTTPAdvertiser, error) {
	scheme := opts.Scheme
	if scheme == "" {
		scheme = "https"
	}
	host := opts.Host
	if host == "" {
		host = domain.DefaultGitHost
	}
	base, err := url.Parse(scheme + "://" + host)
	if err != nil {
		return nil, fmt.Errorf("invalid git host %q: %w", host, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid git host %q", host)
	}
	if base.Path == "" {
		base.Path = "/"
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	return &SmartHTTPAdvertiser{
		base:      base,
		userAgent: opts.UserAgent,
		client:    client,
		recorder:  opts.Recorder,
		logger:    log,
	}, nil
}

// InfoRefsURL returns the discovery URL for owner/repo.
func (a *SmartHTTPAdvertiser) InfoRefsURL(owner, repo string) *url.URL {
	u := a.base.JoinPath(owner, repo+".git", "info", "refs")
	u.RawQuery = "service=" + domain.UploadPackService
	return u
}

// Advertise fetches the ref advertisement of owner/repo.
//
// A 404, or a 401 when no credential was supplied, is reported as
// repository not found with status 404. Any other non-2xx status is passed
// through with the response body in the message.
func (a *SmartHTTPAdvertiser) Advertise(ctx context.Context, owner, repo, credential string) (string, error) {
	endpoint := a.InfoRefsURL(owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", &domain.ResolveError{
			Kind:    domain.KindTransport,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Err:     err,
		}
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}
	if credential != "" {
		auth := &githttp.BasicAuth{Username: tokenUsername, Password: credential}
		auth.SetAuth(req)
	}

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		a.observe(0, start)
		a.logger.Warn(ctx, "ref discovery request failed", map[string]interface{}{
			"url":   endpoint.String(),
			"error": err.Error(),
		})
		return "", &domain.ResolveError{
			Kind:    domain.KindTransport,
			Message: fmt.Sprintf("failed to fetch %s/%s: %v", owner, repo, err),
			Err:     err,
		}
	}
	defer resp.Body.Close()
	a.observe(resp.StatusCode, start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ResolveError{
			Kind:    domain.KindTransport,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Err:     err,
		}
	}

	a.logger.Debug(ctx, "ref discovery response", map[string]interface{}{
		"url":      endpoint.String(),
		"status":   resp.StatusCode,
		"bytes":    len(data),
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return string(data), nil
	}

	if resp.StatusCode == http.StatusNotFound ||
		(resp.StatusCode == http.StatusUnauthorized && credential == "") {
		return "", domain.NewNotFoundError(owner, repo)
	}

	return "", &domain.ResolveError{
		Kind:    domain.KindRemote,
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("%s: %s", http.StatusText(resp.StatusCode), strings.TrimSpace(string(data))),
	}
}

func (a *SmartHTTPAdvertiser) observe(status int, start time.Time) {
	if a.recorder != nil {
		a.recorder.ObserveUpstream(status, time.Since(start))
	}
}
