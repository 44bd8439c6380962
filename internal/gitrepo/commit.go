package gitrepo

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

var ErrNotRepo = errors.New("not inside a git repository")

// CommitPaths stages paths (absolute, or relative to dir) and commits them with message.
// Other changes in the index are left out of the commit. Returns committed=false when the
// paths have no changes.
func CommitPaths(ctx context.Context, dir string, paths []string, message string) (committed bool, err error) {
	dir = filepath.Clean(dir)
	st, err := GetStatus(ctx, dir)
	if err != nil {
		return false, err
	}
	if !st.IsRepo {
		return false, ErrNotRepo
	}
	if st.Unmerged || st.InProgress {
		return false, errors.New("git repo has an in-progress merge/rebase; resolve first")
	}
	if len(paths) == 0 {
		return false, nil
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return false, errors.New("missing commit message")
	}

	add := append([]string{"add", "--"}, paths...)
	if _, err := git(ctx, dir, add...); err != nil {
		return false, err
	}
	diff := append([]string{"diff", "--cached", "--name-only", "--"}, paths...)
	out, err := git(ctx, dir, diff...)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(out) == "" {
		return false, nil
	}
	commit := append([]string{"commit", "-m", message, "--"}, paths...)
	if _, err := git(ctx, dir, commit...); err != nil {
		return false, err
	}
	return true, nil
}
