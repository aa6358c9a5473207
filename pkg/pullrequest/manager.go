// Package pullrequest ensures that exactly one open pull request
// carries the working branch into the base branch. PR state is a
// read-through projection of the hosting API, re-fetched every
// reconciliation and never cached as authoritative.
package pullrequest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrHostingAPI covers non-2xx hosting API responses other than
	// auth failures. Retryable.
	ErrHostingAPI = errors.New("hosting API error")

	// ErrCredential means the token was rejected (401/403). Terminal
	// until the referenced secret is fixed.
	ErrCredential = errors.New("credentials rejected")

	// ErrNoChanges means the hosting API refused to open a pull request
	// because the working branch holds no commits beyond the base. The
	// repository is already up to date.
	ErrNoChanges = errors.New("no changes between branches")
)

// Record is the observed state of one pull request.
type Record struct {
	Number    int
	URL       string
	CreatedAt time.Time
	Commits   int
}

// Manager looks up and creates pull requests on the hosting API.
type Manager interface {
	// FindOpen returns the open PR from head to base, or nil if none.
	// When several exist (manual creation outside the operator) the
	// most recently created one is reported; the others are left alone.
	FindOpen(ctx context.Context, owner, repo, head, base string) (*Record, error)

	// Ensure returns the open PR from head to base, creating it when
	// absent. An existing PR is returned unchanged: only branch content
	// updates, never the PR title or body. created reports whether a
	// new PR was opened.
	Ensure(ctx context.Context, owner, repo, head, base string, proposal Proposal) (record *Record, created bool, err error)
}

// Proposal carries the inputs for a deterministic PR title and body.
type Proposal struct {
	TargetKind      string
	TargetName      string
	TargetNamespace string
	VPAName         string
	VPANamespace    string
	CPURequest      string
	MemoryRequest   string
	CPULimit        string
	MemoryLimit     string
}

// Title is the deterministic pull request title for a proposal.
func (p Proposal) Title() string {
	return fmt.Sprintf("Resource update for %s/%s/%s", p.TargetNamespace, p.TargetKind, p.TargetName)
}

// Body is the deterministic pull request body for a proposal.
func (p Proposal) Body() string {
	return fmt.Sprintf(`This PR was automatically generated by the VPA recommender operator.

It updates the resource requests and limits for %s `+"`%s`"+` in namespace `+"`%s`"+`
based on the recommendations from VPA `+"`%s`"+` in namespace `+"`%s`"+`.

New recommended values:
- CPU request: %s
- Memory request: %s
- CPU limit: %s
- Memory limit: %s
`, p.TargetKind, p.TargetName, p.TargetNamespace, p.VPAName, p.VPANamespace,
		p.CPURequest, p.MemoryRequest, p.CPULimit, p.MemoryLimit)
}

// ParseRepoURL extracts owner and repository name from an HTTPS clone
// URL such as https://github.com/org/infra.git.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("parse repository URL %q: %w", repoURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository URL %q has no owner/name path", repoURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
