package git

import (
	"context"
	"fmt"
	"strings"
)

// Worktree is one entry from `git worktree list --porcelain`.
type Worktree struct {
	Path     string
	Head     string
	Branch   string
	Bare     bool
	Detached bool
	Locked   bool
	Prunable bool
}

// Worktrees lists the worktrees of the repository containing dir, including
// the source repository itself as the first entry.
func (c *Client) Worktrees(ctx context.Context, dir string) ([]Worktree, error) {
	res, err := c.exec.Exec(ctx, dir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}

	return ParseWorktrees(res.Stdout), nil
}

// AddWorktree creates a worktree at path for branch. With createBranch the
// branch is created at HEAD, otherwise it must already exist.
func (c *Client) AddWorktree(ctx context.Context, repoDir, path, branch string, createBranch bool) error {
	args := []string{"worktree", "add"}
	if createBranch {
		args = append(args, "-b", branch, path)
	} else {
		args = append(args, path, branch)
	}

	_, err := c.exec.Exec(ctx, repoDir, args...)
	if err != nil {
		return fmt.Errorf("add worktree %s: %w", path, err)
	}

	return nil
}

// RemoveWorktree removes the worktree at path. With force, uncommitted
// changes are discarded.
func (c *Client) RemoveWorktree(ctx context.Context, repoDir, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}

	args = append(args, path)

	_, err := c.exec.Exec(ctx, repoDir, args...)
	if err != nil {
		return fmt.Errorf("remove worktree %s: %w", path, err)
	}

	return nil
}

// RepairWorktrees fixes up administrative files after worktrees or the
// source repository have been moved.
func (c *Client) RepairWorktrees(ctx context.Context, repoDir string, paths ...string) error {
	args := append([]string{"worktree", "repair"}, paths...)

	_, err := c.exec.Exec(ctx, repoDir, args...)
	if err != nil {
		return fmt.Errorf("repair worktrees: %w", err)
	}

	return nil
}

// PruneWorktrees removes stale worktree administrative files.
func (c *Client) PruneWorktrees(ctx context.Context, repoDir string) error {
	_, err := c.exec.Exec(ctx, repoDir, "worktree", "prune")
	if err != nil {
		return fmt.Errorf("prune worktrees: %w", err)
	}

	return nil
}

// ParseWorktrees parses `git worktree list --porcelain` output. Entries are
// separated by blank lines; attribute lines are either "key value" or a bare
// flag.
func ParseWorktrees(out string) []Worktree {
	var (
		worktrees []Worktree
		current   *Worktree
	)

	flush := func() {
		if current != nil {
			worktrees = append(worktrees, *current)
			current = nil
		}
	}

	for line := range strings.Lines(out) {
		line = strings.TrimRight(line, "\n")
		if line == "" {
			flush()

			continue
		}

		key, value, _ := strings.Cut(line, " ")

		if key == "worktree" {
			flush()
			current = &Worktree{Path: value}

			continue
		}

		if current == nil {
			continue
		}

		switch key {
		case "HEAD":
			current.Head = value
		case "branch":
			current.Branch = strings.TrimPrefix(value, "refs/heads/")
		case "bare":
			current.Bare = true
		case "detached":
			current.Detached = true
		case "locked":
			current.Locked = true
		case "prunable":
			current.Prunable = true
		}
	}

	flush()

	return worktrees
}
