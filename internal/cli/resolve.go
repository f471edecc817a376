package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/grove/pkg/expr"
	"github.com/macropower/grove/pkg/uri"
)

type ResolveArgs struct {
	root   *RootArgs
	branch string
	tags   []string
}

func NewResolveCmd(root *RootArgs) *cobra.Command {
	args := &ResolveArgs{root: root}

	cmd := &cobra.Command{
		Use:   "resolve URI",
		Short: "Show where a repository would be placed",
		Long: `Show where a repository would be placed.

Prints the resolved source path. With --branch, the resolved worktree path
for that branch is printed as well. Nothing is cloned or moved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return runResolve(cmd, args, cmdArgs[0])
		},
	}

	cmd.Flags().StringVarP(&args.branch, "branch", "b", "", "Resolve the worktree path for this branch")
	cmd.Flags().StringArrayVar(&args.tags, "tag", nil, "Tag as key=value, repeatable")

	return cmd
}

func runResolve(cmd *cobra.Command, args *ResolveArgs, rawURI string) error {
	resolver, err := loadResolver(args.root)
	if err != nil {
		return err
	}

	tags, err := parseTags(args.tags)
	if err != nil {
		return err
	}

	u, err := uri.Parse(rawURI)
	if err != nil {
		return fmt.Errorf("parse %q: %w", rawURI, err)
	}

	ectx := expr.Context{URI: u, Tags: tags}

	source, matched, err := resolver.ResolveSourcePath(ectx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rule: %s\n", ruleName(matched))
	fmt.Fprintf(out, "source: %s\n", source)

	if args.branch == "" {
		return nil
	}

	ectx.Branch = args.branch
	ectx.Worktree = worktreeName(args.branch)

	worktree, _, err := resolver.ResolveWorktreePath(ectx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "worktree: %s\n", worktree)

	return nil
}
