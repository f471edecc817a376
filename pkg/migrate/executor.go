package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/macropower/grove/pkg/log"
)

// Repairer is the subset of git operations execution needs after moving
// directories around.
type Repairer interface {
	RepairWorktrees(ctx context.Context, repoDir string, paths ...string) error
	SourceRoot(ctx context.Context, dir string) (string, error)
}

// Executor applies a [Plan] to the filesystem.
type Executor struct {
	git    Repairer
	dryRun bool
}

// ExecutorOption customizes an [Executor].
type ExecutorOption func(*Executor)

// WithDryRun logs moves without performing them.
func WithDryRun() ExecutorOption {
	return func(e *Executor) {
		e.dryRun = true
	}
}

// NewExecutor creates an [Executor].
func NewExecutor(g Repairer, opts ...ExecutorOption) *Executor {
	e := &Executor{git: g}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Exec performs every move in plan, repairing worktree metadata as it goes.
// Plans order source moves before worktree moves, so each repair sees a
// consistent layout: a repaired source fixes its linked worktrees' gitdir
// pointers before those worktrees move in turn.
func (e *Executor) Exec(ctx context.Context, plan *Plan) error {
	logger := log.WithContext(ctx)

	for _, mv := range plan.Moves {
		logger.InfoContext(ctx, "moving repository",
			slog.String("from", mv.From),
			slog.String("to", mv.To),
			slog.Bool("worktree", mv.IsWorktree),
			slog.Bool("dry_run", e.dryRun),
		)

		if e.dryRun {
			continue
		}

		if err := move(mv.From, mv.To); err != nil {
			return err
		}

		if err := e.repair(ctx, mv); err != nil {
			return err
		}
	}

	return nil
}

func (e *Executor) repair(ctx context.Context, mv Move) error {
	if !mv.IsWorktree {
		// A moved source repairs the .git files of its linked worktrees.
		return e.git.RepairWorktrees(ctx, mv.To)
	}

	// A moved worktree is repaired from its source with the new path.
	source, err := e.git.SourceRoot(ctx, mv.To)
	if err != nil {
		return fmt.Errorf("repair %s: %w", mv.To, err)
	}

	return e.git.RepairWorktrees(ctx, source, mv.To)
}

func move(from, to string) error {
	if _, err := os.Stat(to); err == nil {
		return fmt.Errorf("move %s: destination %s already exists", from, to)
	}

	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", to, err)
	}

	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("move %s to %s: %w", from, to, err)
	}

	return nil
}
