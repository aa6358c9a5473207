package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/google/uuid"
)

// Pool hands out Workspaces with exclusive ownership per
// (repository URL, branch) pair. Clones are cached across acquisitions
// (fetch instead of re-clone) but never shared between two concurrent
// holders of the same key: Acquire blocks until the previous holder
// calls Close, or the context is cancelled.
type Pool struct {
	baseDir string

	mu      sync.Mutex
	entries map[string]*poolEntry
}

type poolEntry struct {
	sem chan struct{}
	dir string
}

// NewPool creates a workspace pool that keeps clones under baseDir.
func NewPool(baseDir string) *Pool {
	return &Pool{
		baseDir: baseDir,
		entries: make(map[string]*poolEntry),
	}
}

func (p *Pool) entry(repoURL, branch string) *poolEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := repoURL + "#" + branch
	e, ok := p.entries[key]
	if !ok {
		e = &poolEntry{sem: make(chan struct{}, 1)}
		p.entries[key] = e
	}
	return e
}

// Acquire takes the exclusive lock for (repoURL, branch) and returns a
// Workspace with an up-to-date local copy: a fresh clone on first use,
// a fetch on reuse. The caller must Close the workspace on every exit
// path, including cancellation.
func (p *Pool) Acquire(ctx context.Context, repoURL, branch string, auth transport.AuthMethod) (*Workspace, error) {
	e := p.entry(repoURL, branch)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	repo, err := p.freshen(ctx, e, repoURL, auth)
	if err != nil {
		<-e.sem
		return nil, err
	}

	return &Workspace{
		repo:    repo,
		branch:  branch,
		auth:    auth,
		release: func() { <-e.sem },
	}, nil
}

// freshen returns an up-to-date repository for the entry, cloning on
// first use and fetching afterwards. Must be called with the entry's
// lock held.
func (p *Pool) freshen(ctx context.Context, e *poolEntry, repoURL string, auth transport.AuthMethod) (*git.Repository, error) {
	if e.dir != "" {
		repo, err := git.PlainOpen(e.dir)
		if err == nil {
			if err := fetch(ctx, repo, auth); err != nil {
				return nil, err
			}
			resetWorktree(repo)
			return repo, nil
		}
		// Cached clone is unusable (partial cleanup, disk loss);
		// fall through to a fresh clone.
		e.dir = ""
	}

	dir := filepath.Join(p.baseDir, uuid.NewString())
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  repoURL,
		Auth: auth,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: clone %s: %s", ErrRepoUnreachable, repoURL, err)
	}
	e.dir = dir
	return repo, nil
}

func fetch(ctx context.Context, repo *git.Repository, auth transport.AuthMethod) error {
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: originRemote,
		Auth:       auth,
		Force:      true,
		Tags:       git.NoTags,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("%w: fetch: %s", ErrRepoUnreachable, err)
	}
	return nil
}

// resetWorktree drops any leftover uncommitted state from a previous
// holder that exited uncleanly.
func resetWorktree(repo *git.Repository) {
	if wt, err := repo.Worktree(); err == nil {
		_ = wt.Reset(&git.ResetOptions{Mode: git.HardReset})
	}
}
