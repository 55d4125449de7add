// Package domain defines the core business entities and interfaces for resolve-git-ref.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors wrapped by ResolveError so callers can match with errors.Is.
var (
	// ErrMissingOwner indicates the owner parameter was empty.
	ErrMissingOwner = errors.New("owner parameter is required")

	// ErrMissingRepo indicates the repo parameter was empty.
	ErrMissingRepo = errors.New("repo parameter is required")

	// ErrRepositoryNotFound indicates the remote does not know the repository,
	// or refused access without a credential.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrTooFewLines indicates the advertisement had fewer than 3 lines.
	ErrTooFewLines = errors.New("advertisement has too few lines")

	// ErrNoDefaultBranch indicates no symref=HEAD capability was advertised.
	ErrNoDefaultBranch = errors.New("advertisement does not announce a default branch")
)

// ErrorKind classifies resolution failures.
type ErrorKind int

// Error kinds.
const (
	// KindValidation is a missing required input. Never reaches the remote.
	KindValidation ErrorKind = iota + 1

	// KindNotFound is a repository the remote reports as unknown.
	KindNotFound

	// KindRemote is any other non-success status from the remote.
	KindRemote

	// KindMalformed is an advertisement that could not be parsed.
	KindMalformed

	// KindTransport is a failure to talk to the remote at all.
	KindTransport
)

// String returns the label used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRemote:
		return "remote"
	case KindMalformed:
		return "malformed"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// ResolveError is the failure returned by a Resolver.
// Status is zero when the failure carries no HTTP status.
type ResolveError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *ResolveError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%d - %s", e.Status, e.Message)
	}
	return e.Message
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a KindValidation error wrapping cause.
func NewValidationError(cause error) *ResolveError {
	return &ResolveError{Kind: KindValidation, Message: cause.Error(), Err: cause}
}

// NewNotFoundError returns the normalized 404 for an unknown repository.
func NewNotFoundError(owner, repo string) *ResolveError {
	return &ResolveError{
		Kind:    KindNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s: %s/%s", ErrRepositoryNotFound, owner, repo),
		Err:     ErrRepositoryNotFound,
	}
}

// NewMalformedError returns a KindMalformed error wrapping cause.
func NewMalformedError(cause error, detail string) *ResolveError {
	msg := cause.Error()
	if detail != "" {
		msg += ": " + detail
	}
	return &ResolveError{Kind: KindMalformed, Message: msg, Err: cause}
}

// RefAdvertiser fetches the raw ref advertisement of a remote repository.
type RefAdvertiser interface {
	// Advertise performs the info/refs discovery request and returns the body.
	// Failures are returned as *ResolveError.
	Advertise(ctx context.Context, owner, repo, credential string) (string, error)
}

// Resolver resolves a ref of a remote repository to a commit.
type Resolver interface {
	// Resolve returns (nil, nil) when the ref is not advertised.
	Resolve(ctx context.Context, input ResolveInput) (*Resolution, error)
}

// OutputWriter writes resolved refs to an output destination.
type OutputWriter interface {
	// WriteResolution writes the resolution to the output.
	WriteResolution(res *Resolution) error
}
