// Package domain defines the core business entities and interfaces for resolve-git-ref.
package domain

// ResolveInput contains the parameters of a single ref resolution.
// It is built per request and never shared between resolutions.
type ResolveInput struct {
	// Owner is the repository owner (user or organization). Required.
	Owner string

	// Repo is the repository name without the .git suffix. Required.
	Repo string

	// Ref is a short (main, v1.0.0) or fully-qualified (refs/tags/v1.0.0) ref name.
	// Empty means the remote's default branch.
	Ref string

	// Credential is an optional access token sent as HTTP Basic password.
	Credential string
}

// Resolution is the result of a successful ref resolution.
type Resolution struct {
	// SHA is the commit id the ref points to.
	SHA string `json:"sha"`

	// FQRef is the fully-qualified name of the matched ref, e.g. refs/heads/main.
	FQRef string `json:"fqRef"`
}

// Ref name prefixes used when qualifying short names.
const (
	RefsPrefix = "refs/"

	// UploadPackService is the service requested during ref discovery.
	UploadPackService = "git-upload-pack"
)

// DefaultGitHost is the remote web host used when none is configured.
const DefaultGitHost = "github.com"
