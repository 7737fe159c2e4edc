package git

import (
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Operations defines the git queries used to label analysis runs.
// This allows mocking git commands in tests.
type Operations interface {
	// CurrentBranch returns the current branch name.
	// For detached HEAD, returns "detached-{short-hash}".
	// Returns "" outside a git repository.
	CurrentBranch(projectPath string) string

	// HeadCommit returns the full hash of HEAD, or "" if there is none.
	HeadCommit(projectPath string) string

	// IsDirty reports whether the worktree has uncommitted changes.
	IsDirty(projectPath string) bool
}

// Revision identifies the source state an analysis ran against. The zero
// value means the project is not in a git repository.
type Revision struct {
	Branch string
	Commit string
	Dirty  bool
}

// Describe collects the revision of projectPath.
func Describe(ops Operations, projectPath string) Revision {
	commit := ops.HeadCommit(projectPath)
	if commit == "" {
		return Revision{}
	}
	return Revision{
		Branch: ops.CurrentBranch(projectPath),
		Commit: commit,
		Dirty:  ops.IsDirty(projectPath),
	}
}

// gitOps is the real implementation backed by go-git. The repository is
// found by walking up from projectPath, so a subdirectory of a checkout
// reports the checkout's revision.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func open(projectPath string) (*gogit.Repository, error) {
	return gogit.PlainOpenWithOptions(projectPath, &gogit.PlainOpenOptions{DetectDotGit: true})
}

func head(projectPath string) (*plumbing.Reference, error) {
	repo, err := open(projectPath)
	if err != nil {
		return nil, err
	}
	return repo.Head()
}

func (g *gitOps) CurrentBranch(projectPath string) string {
	ref, err := head(projectPath)
	if err != nil {
		return ""
	}
	if ref.Name().IsBranch() {
		return ref.Name().Short()
	}
	return "detached-" + ref.Hash().String()[:7]
}

func (g *gitOps) HeadCommit(projectPath string) string {
	ref, err := head(projectPath)
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}

// IsDirty counts untracked files that are not ignored as changes.
func (g *gitOps) IsDirty(projectPath string) bool {
	repo, err := open(projectPath)
	if err != nil {
		return false
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false
	}
	status, err := wt.Status()
	return err == nil && !status.IsClean()
}
