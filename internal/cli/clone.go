package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/macropower/grove/pkg/action"
	"github.com/macropower/grove/pkg/expr"
	"github.com/macropower/grove/pkg/git"
	"github.com/macropower/grove/pkg/log"
	"github.com/macropower/grove/pkg/uri"
)

type CloneArgs struct {
	root *RootArgs
	tags []string
}

func NewCloneCmd(root *RootArgs) *cobra.Command {
	args := &CloneArgs{root: root}

	cmd := &cobra.Command{
		Use:   "clone URI",
		Short: "Clone a repository to its rule-resolved location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return runClone(cmd, args, cmdArgs[0])
		},
	}

	cmd.Flags().StringArrayVar(&args.tags, "tag", nil, "Tag as key=value, repeatable")

	return cmd
}

func runClone(cmd *cobra.Command, args *CloneArgs, rawURI string) error {
	ctx := cmd.Context()

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

	dest, matched, err := resolver.ResolveSourcePath(ectx)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("destination %s already exists", dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", dest, err)
	}

	logger := log.WithContext(ctx)
	logger.InfoContext(ctx, "cloning repository",
		slog.String("uri", u.String()),
		slog.String("dest", dest),
		slog.String("rule", ruleName(matched)),
	)

	g := git.NewClient()
	if err := g.Clone(ctx, rawURI, dest); err != nil {
		return err
	}

	branch, err := g.CurrentBranch(ctx, dest)
	if err != nil {
		return err
	}

	// Project predicates inspect the clone, so actions run after it exists.
	ectx.Branch = branch
	ectx.FilesystemRoot = dest
	ectx.DestinationRoot = dest

	actions, err := resolver.SourceActions(ectx)
	if err != nil {
		return err
	}

	if err := action.NewExecutor().ExecAll(ctx, actions, ectx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), dest)

	return nil
}
