// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill use cases.
package usecases

import (
	"context"

	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
)

// Logger defines the logging interface required by the resolver.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// RefResolver resolves refs of remote repositories through their ref advertisement.
// It holds no per-request state and is safe for concurrent use.
type RefResolver struct {
	advertiser domain.RefAdvertiser
	logger     Logger
}

// NewRefResolver creates a new RefResolver with the given dependencies.
func NewRefResolver(advertiser domain.RefAdvertiser, log Logger) *RefResolver {
	return &RefResolver{
		advertiser: advertiser,
		logger:     log,
	}
}

// Resolve validates the input, fetches the advertisement of owner/repo and
// returns the commit the requested ref points to.
//
// Returns (nil, nil) if the repository exists but does not advertise the ref.
// All failures are *domain.ResolveError.
func (r *RefResolver) Resolve(ctx context.Context, input domain.ResolveInput) (*domain.Resolution, error) {
	if input.Owner == "" {
		return nil, domain.NewValidationError(domain.ErrMissingOwner)
	}
	if input.Repo == "" {
		return nil, domain.NewValidationError(domain.ErrMissingRepo)
	}

	fields := map[string]interface{}{
		"owner":          input.Owner,
		"repo":           input.Repo,
		"ref":            input.Ref,
		"has_credential": input.Credential != "",
	}
	r.logger.Debug(ctx, "fetching ref advertisement", fields)

	body, err := r.advertiser.Advertise(ctx, input.Owner, input.Repo, input.Credential)
	if err != nil {
		return nil, err
	}

	res, err := ParseAdvertisement(body, input.Ref)
	if err != nil {
		r.logger.Warn(ctx, "unable to parse ref advertisement", map[string]interface{}{
			"owner": input.Owner,
			"repo":  input.Repo,
			"error": err.Error(),
		})
		return nil, err
	}

	if res == nil {
		r.logger.Info(ctx, "ref not advertised", fields)
		return nil, nil
	}

	r.logger.Info(ctx, "ref resolved", map[string]interface{}{
		"owner":  input.Owner,
		"repo":   input.Repo,
		"ref":    input.Ref,
		"sha":    res.SHA,
		"fq_ref": res.FQRef,
	})
	return res, nil
}
