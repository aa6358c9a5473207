// Package gitrepo manages local working copies of remote Git
// repositories. A Workspace is exclusively owned by one reconciliation
// for a given (repository, branch) pair; acquisition and serialization
// are handled by the Pool.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/go-git/go-billy/v5/util"
)

var (
	// ErrRepoUnreachable means the remote could not be cloned, fetched
	// or pushed to for transport or auth reasons. Retryable.
	ErrRepoUnreachable = errors.New("repository unreachable")

	// ErrBranchConflict means the working branch could not be
	// stationed: it does not exist on the remote and the base branch
	// to create it from is missing. Retryable; a later fetch may
	// resolve it.
	ErrBranchConflict = errors.New("branch conflict")

	// ErrPushRejected means the remote advanced while we held the
	// local copy (a concurrent writer). The caller retries after
	// re-fetching; Push never retries internally.
	ErrPushRejected = errors.New("push rejected")
)

const (
	originRemote = "origin"

	commitAuthorName  = "VPA Recommender Bot"
	commitAuthorEmail = "vpa-recommender@k8s.io"
)

// TokenAuth wraps a bearer token as Git HTTP credentials. GitHub
// accepts any username when the password is a token.
func TokenAuth(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: token}
}

// Workspace is a checked-out local clone bound to one working branch.
// It must be released with Close on every exit path.
type Workspace struct {
	repo    *git.Repository
	branch  string
	auth    transport.AuthMethod
	release func()
	closed  bool
}

// Branch returns the working branch this workspace is bound to.
func (w *Workspace) Branch() string { return w.branch }

// EnsureBranch stations the working branch for this attempt: checked
// out at the remote tip when the branch exists on the remote, otherwise
// created from the tip of base. Local commits that were never pushed
// are discarded; the patch is re-rendered and re-committed on every
// attempt, so keeping them would only strand a failed push in the
// cached clone.
func (w *Workspace) EnsureBranch(base string) error {
	wt, err := w.repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	tip, err := w.startPoint(base)
	if err != nil {
		return err
	}

	branchRef := plumbing.NewBranchReferenceName(w.branch)
	if _, err := w.repo.Reference(branchRef, true); err != nil {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: branchRef, Create: true, Hash: tip, Force: true}); err != nil {
			return fmt.Errorf("create %s: %w", w.branch, err)
		}
		return nil
	}

	if err := wt.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true}); err != nil {
		return fmt.Errorf("checkout %s: %w", w.branch, err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: tip, Mode: git.HardReset}); err != nil {
		return fmt.Errorf("reset %s to %s: %w", w.branch, tip, err)
	}
	return nil
}

// startPoint is the commit the working branch must sit on before this
// attempt commits: the remote tip of the working branch when it exists,
// else the tip of base.
func (w *Workspace) startPoint(base string) (plumbing.Hash, error) {
	if ref, err := w.repo.Reference(plumbing.NewRemoteReferenceName(originRemote, w.branch), true); err == nil {
		return ref.Hash(), nil
	}
	return w.baseTip(base)
}

// baseTip resolves the tip of the base branch, preferring the remote
// tracking ref over a possibly stale local one.
func (w *Workspace) baseTip(base string) (plumbing.Hash, error) {
	if ref, err := w.repo.Reference(plumbing.NewRemoteReferenceName(originRemote, base), true); err == nil {
		return ref.Hash(), nil
	}
	if ref, err := w.repo.Reference(plumbing.NewBranchReferenceName(base), true); err == nil {
		return ref.Hash(), nil
	}
	return plumbing.ZeroHash, fmt.Errorf("%w: base branch %q not found", ErrBranchConflict, base)
}

// WriteAndCommit writes content to repoPath inside the workspace and
// commits it. When the content is byte-identical to what is already
// committed at that path, nothing is written and changed is false.
func (w *Workspace) WriteAndCommit(repoPath string, content []byte, message string) (changed bool, err error) {
	if committed, ok := w.committedContent(repoPath); ok && committed == string(content) {
		return false, nil
	}

	wt, err := w.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("worktree: %w", err)
	}

	if dir := path.Dir(repoPath); dir != "." {
		if err := wt.Filesystem.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := util.WriteFile(wt.Filesystem, repoPath, content, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", repoPath, err)
	}
	if _, err := wt.Add(repoPath); err != nil {
		return false, fmt.Errorf("stage %s: %w", repoPath, err)
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthorName,
			Email: commitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("commit %s: %w", repoPath, err)
	}
	return true, nil
}

// committedContent reads the file at repoPath from the HEAD commit.
func (w *Workspace) committedContent(repoPath string) (string, bool) {
	head, err := w.repo.Head()
	if err != nil {
		return "", false
	}
	commit, err := w.repo.CommitObject(head.Hash())
	if err != nil {
		return "", false
	}
	file, err := commit.File(repoPath)
	if err != nil {
		return "", false
	}
	contents, err := file.Contents()
	if err != nil {
		return "", false
	}
	return contents, true
}

// Push publishes the working branch. A non-fast-forward rejection is
// surfaced as ErrPushRejected for the caller to retry after re-fetching.
func (w *Workspace) Push(ctx context.Context) error {
	refspec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", w.branch, w.branch))
	err := w.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: originRemote,
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       w.auth,
	})
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case isNonFastForward(err):
		return fmt.Errorf("%w: %s", ErrPushRejected, err)
	default:
		return fmt.Errorf("%w: push %s: %s", ErrRepoUnreachable, w.branch, err)
	}
}

func isNonFastForward(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, git.ErrForceNeeded) {
		return true
	}
	return strings.Contains(err.Error(), "non-fast-forward")
}

// Close discards uncommitted changes and releases the (repository,
// branch) lock. Safe to call more than once; only the first call has
// effect.
func (w *Workspace) Close() {
	if w.closed {
		return
	}
	w.closed = true
	if wt, err := w.repo.Worktree(); err == nil {
		_ = wt.Reset(&git.ResetOptions{Mode: git.HardReset})
	}
	w.release()
}
