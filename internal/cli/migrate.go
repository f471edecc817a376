package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/macropower/grove/pkg/git"
	"github.com/macropower/grove/pkg/migrate"
)

type MigrateArgs struct {
	root   *RootArgs
	tags   []string
	dryRun bool
}

func NewMigrateCmd(root *RootArgs) *cobra.Command {
	args := &MigrateArgs{root: root}

	cmd := &cobra.Command{
		Use:   "migrate [ROOT]",
		Short: "Move existing clones and worktrees to their rule-resolved locations",
		Long: `Move existing clones and worktrees to their rule-resolved locations.

Scans ROOT (default: the working directory) for repositories, resolves each
against the configured rules, and moves the ones that are out of place.
Worktree metadata is repaired after every move.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			root := "."
			if len(cmdArgs) == 1 {
				root = cmdArgs[0]
			}

			return runMigrate(cmd, args, root)
		},
	}

	cmd.Flags().StringArrayVar(&args.tags, "tag", nil, "Tag as key=value, repeatable")
	cmd.Flags().BoolVar(&args.dryRun, "dry-run", false, "Show planned moves without performing them")

	return cmd
}

func runMigrate(cmd *cobra.Command, args *MigrateArgs, root string) error {
	ctx := cmd.Context()

	resolver, err := loadResolver(args.root)
	if err != nil {
		return err
	}

	tags, err := parseTags(args.tags)
	if err != nil {
		return err
	}

	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}

	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("scan root: %w", err)
	}

	repos, err := migrate.Scan(root)
	if err != nil {
		return err
	}

	g := git.NewClient()

	plan, err := migrate.NewPlanner(g, resolver, tags).Plan(ctx, repos)
	if err != nil {
		return err
	}

	if len(plan.Moves) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to migrate")

		return nil
	}

	var opts []migrate.ExecutorOption
	if args.dryRun {
		opts = append(opts, migrate.WithDryRun())
	}

	if err := migrate.NewExecutor(g, opts...).Exec(ctx, plan); err != nil {
		return err
	}

	for _, mv := range plan.Moves {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", mv.From, mv.To)
	}

	return nil
}
