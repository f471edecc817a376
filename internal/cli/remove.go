package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/macropower/grove/pkg/git"
	"github.com/macropower/grove/pkg/log"
)

type RemoveArgs struct {
	root  *RootArgs
	force bool
}

func NewRemoveCmd(root *RootArgs) *cobra.Command {
	args := &RemoveArgs{root: root}

	cmd := &cobra.Command{
		Use:     "remove BRANCH_OR_PATH",
		Aliases: []string{"rm"},
		Short:   "Remove a worktree by branch or path",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return runRemove(cmd, args, cmdArgs[0])
		},
	}

	cmd.Flags().BoolVarP(&args.force, "force", "f", false, "Remove even with uncommitted changes")

	return cmd
}

func runRemove(cmd *cobra.Command, args *RemoveArgs, target string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	g := git.NewClient()

	sourceRoot, err := g.SourceRoot(ctx, cwd)
	if err != nil {
		return err
	}

	worktrees, err := g.Worktrees(ctx, sourceRoot)
	if err != nil {
		return err
	}

	wt := findWorktree(worktrees, sourceRoot, target)
	if wt == nil {
		return fmt.Errorf("no worktree matches %q", target)
	}

	log.WithContext(ctx).InfoContext(ctx, "removing worktree",
		slog.String("path", wt.Path),
		slog.String("branch", wt.Branch),
		slog.Bool("force", args.force),
	)

	return g.RemoveWorktree(ctx, sourceRoot, wt.Path, args.force)
}

// findWorktree matches target against each linked worktree's branch, its
// normalized worktree name, its path, and its path basename. The source
// repository itself is never matched.
func findWorktree(worktrees []git.Worktree, sourceRoot, target string) *git.Worktree {
	abs, err := filepath.Abs(target)
	if err != nil {
		// Worktree paths from git are always absolute, so without a usable
		// absolute form only the other comparisons can match.
		abs = target
	}

	for i := range worktrees {
		wt := &worktrees[i]
		if wt.Path == sourceRoot || wt.Bare {
			continue
		}

		if wt.Branch == target || worktreeName(wt.Branch) == target {
			return wt
		}

		if wt.Path == target || wt.Path == abs || filepath.Base(wt.Path) == target {
			return wt
		}
	}

	return nil
}
