package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/macropower/grove/pkg/action"
	"github.com/macropower/grove/pkg/expr"
	"github.com/macropower/grove/pkg/git"
	"github.com/macropower/grove/pkg/log"
	"github.com/macropower/grove/pkg/uri"
)

type AddArgs struct {
	root   *RootArgs
	tags   []string
	create bool
}

func NewAddCmd(root *RootArgs) *cobra.Command {
	args := &AddArgs{root: root}

	cmd := &cobra.Command{
		Use:   "add BRANCH",
		Short: "Add a worktree for a branch at its rule-resolved location",
		Long: `Add a worktree for a branch at its rule-resolved location.

Must be run inside a clone. The branch is created at HEAD when it does not
exist locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return runAdd(cmd, args, cmdArgs[0])
		},
	}

	cmd.Flags().StringArrayVar(&args.tags, "tag", nil, "Tag as key=value, repeatable")
	cmd.Flags().BoolVarP(&args.create, "create", "c", false, "Create the branch at HEAD")

	return cmd
}

func runAdd(cmd *cobra.Command, args *AddArgs, branch string) error {
	ctx := cmd.Context()

	resolver, err := loadResolver(args.root)
	if err != nil {
		return err
	}

	tags, err := parseTags(args.tags)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	g := git.NewClient()

	sourceRoot, err := g.SourceRoot(ctx, cwd)
	if err != nil {
		return err
	}

	remote, err := g.RemoteURL(ctx, sourceRoot)
	if err != nil {
		return err
	}

	u, err := uri.Parse(remote)
	if err != nil {
		return fmt.Errorf("parse remote %q: %w", remote, err)
	}

	ectx := expr.Context{
		URI:      u,
		Tags:     tags,
		Branch:   branch,
		Worktree: worktreeName(branch),
	}

	dest, matched, err := resolver.ResolveWorktreePath(ectx)
	if err != nil {
		return err
	}

	createBranch := args.create
	if !createBranch {
		exists, err := g.BranchExists(ctx, sourceRoot, branch)
		if err != nil {
			return err
		}

		createBranch = !exists
	}

	log.WithContext(ctx).InfoContext(ctx, "adding worktree",
		slog.String("branch", branch),
		slog.String("dest", dest),
		slog.Bool("create_branch", createBranch),
		slog.String("rule", ruleName(matched)),
	)

	if err := g.AddWorktree(ctx, sourceRoot, dest, branch, createBranch); err != nil {
		return err
	}

	ectx.FilesystemRoot = sourceRoot
	ectx.DestinationRoot = dest

	actions, err := resolver.WorktreeActions(ectx)
	if err != nil {
		return err
	}

	if err := action.NewExecutor().ExecAll(ctx, actions, ectx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), dest)

	return nil
}
