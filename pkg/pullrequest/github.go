package pullrequest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

// GitHub implements Manager against the GitHub REST API.
type GitHub struct {
	client *github.Client
}

// NewGitHub builds a Manager authenticated with the given token.
func NewGitHub(ctx context.Context, token string) *GitHub {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHub{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// FromClient wraps an existing client. Used by tests to point at a
// local HTTP server.
func FromClient(client *github.Client) *GitHub {
	return &GitHub{client: client}
}

// FindOpen implements Manager.
func (g *GitHub) FindOpen(ctx context.Context, owner, repo, head, base string) (*Record, error) {
	prs, _, err := g.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:       "open",
		Head:        owner + ":" + head,
		Base:        base,
		ListOptions: github.ListOptions{PerPage: 30},
	})
	if err != nil {
		return nil, apiError("list pull requests", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}

	newest := prs[0]
	for _, pr := range prs[1:] {
		if pr.GetCreatedAt().After(newest.GetCreatedAt().Time) {
			newest = pr
		}
	}

	// The list endpoint omits the commit count; fetch the PR itself.
	if full, _, err := g.client.PullRequests.Get(ctx, owner, repo, newest.GetNumber()); err == nil {
		newest = full
	}
	return toRecord(newest), nil
}

// Ensure implements Manager.
func (g *GitHub) Ensure(ctx context.Context, owner, repo, head, base string, proposal Proposal) (*Record, bool, error) {
	if existing, err := g.FindOpen(ctx, owner, repo, head, base); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	pr, _, err := g.client.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.Ptr(proposal.Title()),
		Head:  github.Ptr(head),
		Base:  github.Ptr(base),
		Body:  github.Ptr(proposal.Body()),
	})
	if err != nil {
		if isUnprocessable(err) {
			// Either a concurrent reconciliation won the race to create
			// the PR, or the branches hold identical content.
			if existing, ferr := g.FindOpen(ctx, owner, repo, head, base); ferr == nil && existing != nil {
				return existing, false, nil
			}
			return nil, false, fmt.Errorf("%w: %s -> %s", ErrNoChanges, head, base)
		}
		return nil, false, apiError("create pull request", err)
	}
	return toRecord(pr), true, nil
}

func toRecord(pr *github.PullRequest) *Record {
	return &Record{
		Number:    pr.GetNumber(),
		URL:       pr.GetHTMLURL(),
		CreatedAt: pr.GetCreatedAt().Time,
		Commits:   pr.GetCommits(),
	}
}

func isUnprocessable(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusUnprocessableEntity
}

func apiError(op string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		code := ghErr.Response.StatusCode
		if code == http.StatusUnauthorized || code == http.StatusForbidden {
			return fmt.Errorf("%w: %s: %s", ErrCredential, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %s", ErrHostingAPI, op, err)
}
