package git

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRepository indicates a repository argument could not be split into owner and repo.
var ErrInvalidRepository = errors.New("could not parse owner/repo")

// Patterns accepted by ParseRepository.
var (
	// httpsURLPattern matches HTTPS URLs like:
	// https://github.com/owner/repo.git
	// https://github.com/owner/repo
	httpsURLPattern = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+?)(?:\.git)?/?$`)

	// sshURLPattern matches SSH URLs like:
	// git@github.com:owner/repo.git
	sshURLPattern = regexp.MustCompile(`^git@[^:]+:([^/]+)/([^/]+?)(?:\.git)?$`)

	// slugPattern matches a bare owner/repo slug.
	slugPattern = regexp.MustCompile(`^([^/:@\s]+)/([^/\s]+?)(?:\.git)?$`)
)

// ParseRepository extracts owner and repo from a remote URL or an owner/repo slug:
//   - https://github.com/owner/repo.git -> owner, repo
//   - git@github.com:owner/repo.git -> owner, repo
//   - owner/repo -> owner, repo
func ParseRepository(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)

	for _, p := range []*regexp.Regexp{httpsURLPattern, sshURLPattern, slugPattern} {
		if m := p.FindStringSubmatch(s); len(m) == 3 {
			return m[1], m[2], nil
		}
	}

	return "", "", fmt.Errorf("%w: %s", ErrInvalidRepository, s)
}
