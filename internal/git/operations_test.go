package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for git Operations:
// - Describe returns the zero Revision when there is no HEAD commit
// - Describe copies branch, commit and dirty state from Operations
// - Repository: branch, commit and dirty state of a fresh repository
// - Repository: subdirectories resolve to the enclosing checkout
// - Repository: detached HEAD, no commits yet, and non-repository directories

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ops  *MockGitOps
		want Revision
	}{
		{
			name: "not a repository",
			ops:  &MockGitOps{Branch: "main"},
			want: Revision{},
		},
		{
			name: "clean",
			ops:  NewMockGitOps(),
			want: Revision{Branch: "main", Commit: "0123456789abcdef0123456789abcdef01234567"},
		},
		{
			name: "dirty feature branch",
			ops:  &MockGitOps{Branch: "feature/x", Commit: "abc", Dirty: true},
			want: Revision{Branch: "feature/x", Commit: "abc", Dirty: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Describe(tt.ops, "/project"))
		})
	}
}

func TestGitOpsRepository(t *testing.T) {
	t.Parallel()

	ops := NewOperations()

	t.Run("fresh repository", func(t *testing.T) {
		t.Parallel()
		dir, _ := createTestGitRepo(t)
		rev := Describe(ops, dir)
		assert.Equal(t, "main", rev.Branch)
		assert.Len(t, rev.Commit, 40)
		assert.False(t, rev.Dirty)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "new.go"), []byte("package x\n"), 0644))
		assert.True(t, ops.IsDirty(dir))
	})

	t.Run("subdirectory reports the enclosing repository", func(t *testing.T) {
		t.Parallel()
		dir, hash := createTestGitRepo(t)
		sub := filepath.Join(dir, "pkg", "sub")
		require.NoError(t, os.MkdirAll(sub, 0755))

		rev := Describe(ops, sub)
		assert.Equal(t, Revision{Branch: "main", Commit: hash.String()}, rev)
	})

	t.Run("detached HEAD", func(t *testing.T) {
		t.Parallel()
		dir, hash := createTestGitRepo(t)
		repo, err := gogit.PlainOpen(dir)
		require.NoError(t, err)
		wt, err := repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Checkout(&gogit.CheckoutOptions{Hash: hash}))

		assert.Equal(t, "detached-"+hash.String()[:7], ops.CurrentBranch(dir))
		assert.Equal(t, hash.String(), ops.HeadCommit(dir))
	})

	t.Run("repository without commits", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		_, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)
		assert.Equal(t, Revision{}, Describe(ops, dir))
	})

	t.Run("non-git directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		assert.Equal(t, Revision{}, Describe(ops, dir))
		assert.Equal(t, "", ops.CurrentBranch(dir))
		assert.False(t, ops.IsDirty(dir))
	})
}

// createTestGitRepo initializes a repository on main with one commit.
func createTestGitRepo(t *testing.T) (string, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	return dir, hash
}
