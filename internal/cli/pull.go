package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/macropower/grove/pkg/git"
)

func NewPullCmd(_ *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull the source repository of the current clone or worktree",
		Args:  cobra.NoArgs,
		RunE:  runPull,
	}
}

func runPull(cmd *cobra.Command, _ []string) error {
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

	out, err := g.Pull(ctx, sourceRoot)
	if err != nil {
		return err
	}

	if out != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}

	return nil
}
