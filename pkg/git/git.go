// Package git wraps the git binary. Everything shells out through
// [execs.Executor], so the user's credential helpers, SSH configuration and
// global gitconfig all apply.
package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/macropower/grove/pkg/execs"
)

var (
	// ErrNotARepository is returned when a directory is not inside a git
	// repository.
	ErrNotARepository = errors.New("not a git repository")

	// ErrNoRemote is returned when a repository has no origin remote.
	ErrNoRemote = errors.New("repository has no origin remote")
)

// Client runs git commands.
type Client struct {
	exec execs.Executor
}

// ClientOption customizes a [Client].
type ClientOption func(*Client)

// WithExecutor replaces the underlying executor.
func WithExecutor(e execs.Executor) ClientOption {
	return func(c *Client) {
		c.exec = e
	}
}

// NewClient creates a git client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		exec: execs.NewExecutor("git"),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Clone clones uri into dest. Parent directories are expected to exist;
// git creates dest itself.
func (c *Client) Clone(ctx context.Context, uri, dest string) error {
	_, err := c.exec.Exec(ctx, "", "clone", uri, dest)
	if err != nil {
		return fmt.Errorf("clone %s: %w", uri, err)
	}

	return nil
}

// Root returns the top-level directory of the work tree containing dir.
func (c *Client) Root(ctx context.Context, dir string) (string, error) {
	res, err := c.exec.Exec(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotARepository, dir)
	}

	return res.Output(), nil
}

// CommonDir returns the absolute path of the repository's common .git
// directory. For a linked worktree this points into the source repository.
func (c *Client) CommonDir(ctx context.Context, dir string) (string, error) {
	res, err := c.exec.Exec(ctx, dir, "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotARepository, dir)
	}

	return res.Output(), nil
}

// SourceRoot returns the work tree of the source repository for dir. Inside
// a linked worktree this is the repository the worktree was created from;
// inside a regular repository it equals [Client.Root].
func (c *Client) SourceRoot(ctx context.Context, dir string) (string, error) {
	common, err := c.CommonDir(ctx, dir)
	if err != nil {
		return "", err
	}

	return filepath.Dir(common), nil
}

// IsWorktree reports whether dir is inside a linked worktree rather than
// the source repository itself.
func (c *Client) IsWorktree(ctx context.Context, dir string) (bool, error) {
	res, err := c.exec.Exec(ctx, dir, "rev-parse", "--path-format=absolute", "--git-dir", "--git-common-dir")
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrNotARepository, dir)
	}

	lines := res.Lines()
	if len(lines) != 2 {
		return false, fmt.Errorf("unexpected rev-parse output: %q", res.Stdout)
	}

	return lines[0] != lines[1], nil
}

// RemoteURL returns the URL of the origin remote.
func (c *Client) RemoteURL(ctx context.Context, dir string) (string, error) {
	res, err := c.exec.Exec(ctx, dir, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoRemote, dir)
	}

	return res.Output(), nil
}

// CurrentBranch returns the checked-out branch name, or "HEAD" when
// detached.
func (c *Client) CurrentBranch(ctx context.Context, dir string) (string, error) {
	res, err := c.exec.Exec(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}

	return res.Output(), nil
}

// DefaultBranch returns the branch origin/HEAD points at, e.g. "main".
func (c *Client) DefaultBranch(ctx context.Context, dir string) (string, error) {
	res, err := c.exec.Exec(ctx, dir, "symbolic-ref", "refs/remotes/origin/HEAD", "--short")
	if err != nil {
		return "", fmt.Errorf("default branch: %w", err)
	}

	return strings.TrimPrefix(res.Output(), "origin/"), nil
}

// BranchExists reports whether a local branch exists.
func (c *Client) BranchExists(ctx context.Context, dir, branch string) (bool, error) {
	_, err := c.exec.Exec(ctx, dir, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	if err != nil {
		if errors.Is(err, execs.ErrCommandExecution) {
			return false, nil
		}

		return false, fmt.Errorf("verify branch %s: %w", branch, err)
	}

	return true, nil
}

// IsClean reports whether the work tree has no uncommitted changes.
func (c *Client) IsClean(ctx context.Context, dir string) (bool, error) {
	res, err := c.exec.Exec(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("status: %w", err)
	}

	return res.Output() == "", nil
}

// Pull runs git pull in dir.
func (c *Client) Pull(ctx context.Context, dir string) (string, error) {
	res, err := c.exec.Exec(ctx, dir, "pull")
	if err != nil {
		return "", fmt.Errorf("pull: %w", err)
	}

	return res.Output(), nil
}

// Fetch runs git fetch in dir.
func (c *Client) Fetch(ctx context.Context, dir string) error {
	_, err := c.exec.Exec(ctx, dir, "fetch")
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	return nil
}
