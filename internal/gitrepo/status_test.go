package gitrepo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatus_NonRepo(t *testing.T) {
	st, err := GetStatus(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, st.IsRepo)
}

func TestParsePorcelain(t *testing.T) {
	dirty, unmerged := parsePorcelain("")
	assert.False(t, dirty)
	assert.False(t, unmerged)

	dirty, unmerged = parsePorcelain(" M a.txt\n?? b.txt\n")
	assert.True(t, dirty)
	assert.False(t, unmerged)

	_, unmerged = parsePorcelain("UU a.txt\n")
	assert.True(t, unmerged)
}

func TestGetStatus_DirtyAndUnmerged(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	writeFile(t, filepath.Join(repo, "a.txt"), "base\n")
	run(t, repo, "git", "add", ".")
	run(t, repo, "git", "commit", "-m", "base")
	defaultBranch := strings.TrimSpace(runOut(t, repo, "git", "rev-parse", "--abbrev-ref", "HEAD"))
	require.NotEmpty(t, defaultBranch)

	st, err := GetStatus(ctx, repo)
	require.NoError(t, err)
	require.True(t, st.IsRepo)
	assert.False(t, st.Dirty)
	assert.False(t, st.Unmerged)

	writeFile(t, filepath.Join(repo, "dirty.txt"), "x\n")
	st, err = GetStatus(ctx, repo)
	require.NoError(t, err)
	assert.True(t, st.Dirty)

	run(t, repo, "git", "checkout", "-b", "feature")
	writeFile(t, filepath.Join(repo, "a.txt"), "feature\n")
	run(t, repo, "git", "commit", "-am", "feature")
	run(t, repo, "git", "checkout", defaultBranch)
	writeFile(t, filepath.Join(repo, "a.txt"), "main\n")
	run(t, repo, "git", "commit", "-am", "main")
	_ = exec.Command("git", "-C", repo, "merge", "feature").Run()

	st, err = GetStatus(ctx, repo)
	require.NoError(t, err)
	assert.True(t, st.Unmerged)
	assert.True(t, st.InProgress)
	assert.Equal(t, "merge", st.InProgressKind)

	_, err = CommitPaths(ctx, repo, []string{"dirty.txt"}, "x")
	assert.ErrorContains(t, err, "in-progress")
}

func TestCommitPaths_CommitsOnlyGivenPaths(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	writeFile(t, filepath.Join(repo, "README"), "base\n")
	run(t, repo, "git", "add", ".")
	run(t, repo, "git", "commit", "-m", "base")

	writeFile(t, filepath.Join(repo, "index.md"), "# Demo\n")
	writeFile(t, filepath.Join(repo, "other.txt"), "unrelated\n")
	run(t, repo, "git", "add", "other.txt")

	ok, err := CommitPaths(ctx, repo, []string{filepath.Join(repo, "index.md")}, "Publish: demo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "index.md", strings.TrimSpace(runOut(t, repo, "git", "show", "--name-only", "--format=", "HEAD")))
	assert.Contains(t, runOut(t, repo, "git", "status", "--porcelain=v1"), "A  other.txt")

	ok, err = CommitPaths(ctx, repo, []string{"index.md"}, "Publish: demo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommitPaths_NotRepo(t *testing.T) {
	_, err := CommitPaths(context.Background(), t.TempDir(), []string{"a"}, "m")
	assert.True(t, errors.Is(err, ErrNotRepo))
}

func newRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	repo := t.TempDir()
	run(t, repo, "git", "init")
	run(t, repo, "git", "config", "user.email", "test@example.com")
	run(t, repo, "git", "config", "user.name", "Test")
	run(t, repo, "git", "config", "commit.gpgsign", "false")
	return repo
}

func run(t *testing.T, dir string, bin string, args ...string) {
	t.Helper()
	runOut(t, dir, bin, args...)
}

func runOut(t *testing.T, dir string, bin string, args ...string) string {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s %v\n%s", bin, args, out)
	return string(out)
}

func writeFile(t *testing.T, path string, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}
