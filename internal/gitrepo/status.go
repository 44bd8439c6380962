// Package gitrepo shells out to git for the few repository operations publishing needs.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type Status struct {
	IsRepo bool   `json:"isRepo"`
	Root   string `json:"root,omitempty"`
	Branch string `json:"branch,omitempty"`
	Head   string `json:"head,omitempty"`

	Dirty    bool `json:"dirty"`
	Unmerged bool `json:"unmerged"`

	InProgress     bool   `json:"inProgress"`
	InProgressKind string `json:"inProgressKind,omitempty"` // merge|rebase|cherry-pick|revert
}

// GetStatus reports on the repository containing dir. A dir outside any repository is not an
// error; it yields IsRepo=false.
func GetStatus(ctx context.Context, dir string) (Status, error) {
	root, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return Status{IsRepo: false}, nil
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return Status{}, errors.New("git rev-parse returned empty root")
	}

	branch, _ := git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	head, _ := git(ctx, dir, "rev-parse", "--short", "HEAD")
	porcelain, _ := git(ctx, dir, "status", "--porcelain=v1")
	dirty, unmerged := parsePorcelain(porcelain)
	kind := inProgressKind(ctx, dir)

	return Status{
		IsRepo:         true,
		Root:           root,
		Branch:         strings.TrimSpace(branch),
		Head:           strings.TrimSpace(head),
		Dirty:          dirty,
		Unmerged:       unmerged,
		InProgress:     kind != "",
		InProgressKind: kind,
	}, nil
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

func parsePorcelain(out string) (dirty bool, unmerged bool) {
	for _, ln := range strings.Split(out, "\n") {
		ln = strings.TrimRight(ln, "\r")
		if len(ln) < 2 || strings.TrimSpace(ln[:2]) == "" {
			continue
		}
		dirty = true
		if isUnmergedXY(ln[:2]) {
			unmerged = true
		}
	}
	return dirty, unmerged
}

func isUnmergedXY(xy string) bool {
	switch xy {
	case "DD", "AA":
		return true
	}
	return xy[0] == 'U' || xy[1] == 'U'
}

func inProgressKind(ctx context.Context, dir string) string {
	for _, c := range []struct{ ref, kind string }{
		{"MERGE_HEAD", "merge"},
		{"REBASE_HEAD", "rebase"},
		{"CHERRY_PICK_HEAD", "cherry-pick"},
		{"REVERT_HEAD", "revert"},
	} {
		cmd := exec.CommandContext(ctx, "git", "rev-parse", "--verify", "-q", c.ref)
		cmd.Dir = dir
		if cmd.Run() == nil {
			return c.kind
		}
	}
	return ""
}
