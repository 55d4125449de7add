// Package httpapi exposes ref resolution over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/adapters/metrics"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
)

// Request parameter names.
const (
	ParamOwner = "owner"
	ParamRepo  = "repo"
	ParamRef   = "ref"

	// ParamToken is the query parameter carrying a credential.
	ParamToken = "GITHUB_TOKEN"

	// HeaderToken is the request header carrying a credential. It takes precedence over ParamToken.
	HeaderToken = "x-github-token"
)

const cacheControl = "no-store, private, must-revalidate"

// Logger defines the logging interface used by the handlers.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Recorder observes resolution requests.
type Recorder interface {
	IncResolution(outcome string)
	ObserveRequest(d time.Duration)
}

// ResolveHandler maps HTTP requests onto a domain.Resolver.
type ResolveHandler struct {
	resolver          domain.Resolver
	recorder          Recorder
	logger            Logger
	defaultCredential string
}

// NewResolveHandler creates a handler. recorder may be nil.
// defaultCredential is used when a request carries no credential of its own.
func NewResolveHandler(resolver domain.Resolver, recorder Recorder, log Logger, defaultCredential string) *ResolveHandler {
	return &ResolveHandler{
		resolver:          resolver,
		recorder:          recorder,
		logger:            log,
		defaultCredential: defaultCredential,
	}
}

// ServeHTTP resolves owner/repo/ref from the query string.
func (h *ResolveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	input := h.input(r)
	res, err := h.resolver.Resolve(ctx, input)

	w.Header().Set("Cache-Control", cacheControl)
	switch {
	case err != nil:
		status, outcome := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(ctx, "ref resolution failed", err, map[string]interface{}{
				"owner":      input.Owner,
				"repo":       input.Repo,
				"ref":        input.Ref,
				"request_id": RequestID(ctx),
			})
		}
		h.record(outcome, start)
		writeText(w, status, err.Error())
	case res == nil:
		h.record(metrics.OutcomeNotFound, start)
		writeText(w, http.StatusNotFound, "ref not found")
	default:
		h.record(metrics.OutcomeResolved, start)
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *ResolveHandler) input(r *http.Request) domain.ResolveInput {
	q := r.URL.Query()
	credential := r.Header.Get(HeaderToken)
	if credential == "" {
		credential = q.Get(ParamToken)
	}
	if credential == "" {
		credential = h.defaultCredential
	}
	return domain.ResolveInput{
		Owner:      q.Get(ParamOwner),
		Repo:       q.Get(ParamRepo),
		Ref:        q.Get(ParamRef),
		Credential: credential,
	}
}

func (h *ResolveHandler) record(outcome string, start time.Time) {
	if h.recorder == nil {
		return
	}
	h.recorder.IncResolution(outcome)
	h.recorder.ObserveRequest(time.Since(start))
}

// errorStatus maps a resolution failure to a response status and metrics outcome.
// Upstream 5xx responses become 502.
func errorStatus(err error) (int, string) {
	var rerr *domain.ResolveError
	if !errors.As(err, &rerr) {
		return http.StatusInternalServerError, "internal"
	}
	switch {
	case rerr.Kind == domain.KindValidation:
		return http.StatusBadRequest, rerr.Kind.String()
	case rerr.Status >= http.StatusInternalServerError:
		return http.StatusBadGateway, rerr.Kind.String()
	case rerr.Status != 0:
		return rerr.Status, rerr.Kind.String()
	default:
		return http.StatusInternalServerError, rerr.Kind.String()
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
