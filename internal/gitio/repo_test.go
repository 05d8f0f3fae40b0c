package gitio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// testRepo initializes a throwaway on-disk Git repository with two
// commits and an annotated version tag on the first one, returning the
// gitio wrapper plus the two commit SHAs in order.
func testRepo(t *testing.T) (*Repo, string, string) {
	t.Helper()
	dir := t.TempDir()

	raw, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := raw.Worktree()
	require.NoError(t, err)

	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Unix(1700000000, 0)}

	writeAndCommit := func(name, contents, message string, when time.Time) string {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
		_, err := wt.Add(name)
		require.NoError(t, err)
		s := *sig
		s.When = when
		h, err := wt.Commit(message, &git.CommitOptions{Author: &s, Committer: &s})
		require.NoError(t, err)
		return h.String()
	}

	c1 := writeAndCommit("artifacts.yaml", "model1:\n  type: model\n  path: models/model1\n", "first commit", time.Unix(1700000000, 0))
	c2 := writeAndCommit("README.md", "hello\n", "second commit", time.Unix(1700000100, 0))

	_, err = raw.CreateTag("model1@v1", plumbing.NewHash(c1), &git.CreateTagOptions{
		Tagger:  sig,
		Message: "model1@v1",
	})
	require.NoError(t, err)

	repo, err := Open(dir)
	require.NoError(t, err)
	return repo, c1, c2
}

func TestOpenAndReadFileAtWorkingTree(t *testing.T) {
	repo, _, _ := testRepo(t)
	data, err := repo.ReadFileAt("", "artifacts.yaml")
	require.NoError(t, err)
	require.Contains(t, string(data), "model1")
}

func TestReadFileAtMissingFileIsNotFound(t *testing.T) {
	repo, _, _ := testRepo(t)
	_, err := repo.ReadFileAt("", "does-not-exist.yaml")
	require.Error(t, err)
	nf, ok := err.(interface{ NotFound() bool })
	require.True(t, ok, "expected a NotFound-capable error")
	require.True(t, nf.NotFound())
}

func TestReadFileAtCommit(t *testing.T) {
	repo, c1, _ := testRepo(t)
	data, err := repo.ReadFileAt(c1, "artifacts.yaml")
	require.NoError(t, err)
	require.Contains(t, string(data), "model1")
}

func TestTagsReportsAnnotatedTag(t *testing.T) {
	repo, c1, _ := testRepo(t)
	refs, err := repo.Tags(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, "model1@v1", refs[0].Name)
	require.Equal(t, c1, refs[0].TargetCommit)
}

func TestCommitsBetweenExcludesFromInclusivesTo(t *testing.T) {
	repo, c1, c2 := testRepo(t)
	commits, err := repo.CommitsBetween(c1, c2)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, c2, commits[0].SHA)
	require.Equal(t, "second commit", commits[0].Subject)
}

func TestCurrentBranchOnDefaultBranch(t *testing.T) {
	repo, _, _ := testRepo(t)
	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	require.NotEmpty(t, branch)
}

func TestResolveRefHEAD(t *testing.T) {
	repo, _, c2 := testRepo(t)
	commit, err := repo.ResolveRef("HEAD")
	require.NoError(t, err)
	require.Equal(t, c2, commit)
}
