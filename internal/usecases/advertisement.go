package usecases

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
)

// pktLenSize is the width of the hex length field that prefixes every pkt-line.
const pktLenSize = 4

// minAdvertisementLines covers the service header, the flush/first-ref line and one ref.
const minAdvertisementLines = 3

// symrefHeadPattern extracts the default branch from the capability list
// advertised on the first ref line, e.g. "symref=HEAD:refs/heads/main".
var symrefHeadPattern = regexp.MustCompile(`symref=HEAD:(\S+)`)

// SearchTerms returns the fully-qualified ref names a request may match.
//   - refs/... is used verbatim
//   - a short name matches both refs/heads/<ref> and refs/tags/<ref>
//   - an empty ref falls back to defaultRef
func SearchTerms(ref, defaultRef string) []string {
	switch {
	case ref == "":
		return []string{defaultRef}
	case strings.HasPrefix(ref, domain.RefsPrefix):
		return []string{ref}
	default:
		return []string{
			plumbing.NewBranchReferenceName(ref).String(),
			plumbing.NewTagReferenceName(ref).String(),
		}
	}
}

// DefaultBranch returns the target of the HEAD symref announced in line.
func DefaultBranch(line string) (string, error) {
	m := symrefHeadPattern.FindStringSubmatch(line)
	if len(m) != 2 {
		return "", domain.NewMalformedError(domain.ErrNoDefaultBranch, "")
	}
	return m[1], nil
}

// ParseAdvertisement finds ref in a smart-HTTP upload-pack advertisement.
//
// Only lines of the exact form "<len><sha> <refname>" are considered, so the
// first ref line (which carries capabilities after the ref name) never matches.
// The first matching line in advertisement order wins, regardless of whether it
// was found through the heads or the tags search term.
// It returns (nil, nil) when no advertised ref matches.
func ParseAdvertisement(body, ref string) (*domain.Resolution, error) {
	lines := strings.Split(body, "\n")
	if len(lines) < minAdvertisementLines {
		return nil, domain.NewMalformedError(domain.ErrTooFewLines, fmt.Sprintf("%q", lines))
	}

	var defaultRef string
	if ref == "" {
		var err error
		defaultRef, err = DefaultBranch(lines[1])
		if err != nil {
			return nil, err
		}
	}
	terms := SearchTerms(ref, defaultRef)

	for _, line := range lines[2:] {
		parts := strings.Split(line, " ")
		if len(parts) != 2 {
			continue
		}
		if !slices.Contains(terms, parts[1]) {
			continue
		}
		return &domain.Resolution{
			SHA:   stripPktLen(parts[0]),
			FQRef: parts[1],
		}, nil
	}
	return nil, nil
}

// stripPktLen drops the pkt-line length prefix from a hash token.
func stripPktLen(token string) string {
	if len(token) < pktLenSize {
		return ""
	}
	return token[pktLenSize:]
}
