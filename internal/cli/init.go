package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/grove/api/v1beta1/configs"
)

type InitArgs struct {
	root  *RootArgs
	force bool
}

func NewInitCmd(root *RootArgs) *cobra.Command {
	args := &InitArgs{root: root}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration and its JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&args.force, "force", false, "Overwrite an existing configuration, keeping a backup")

	return cmd
}

func runInit(cmd *cobra.Command, args *InitArgs) error {
	path := args.root.Config
	if path == "" {
		path = configs.GetPath()
	}

	if err := configs.WriteDefault(path, args.force); err != nil {
		return err
	}

	if err := configs.WriteSchema(configs.GetSchemaPath(), args.force); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)

	return nil
}
