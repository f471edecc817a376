// Package cli wires the grove commands together.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/grove/pkg/log"
)

const (
	cmdName = "grove"
	cmdDesc = `Rule-based router for git clones and worktrees.`

	cmdExamples = `  # Clone a repository to its rule-resolved location.
  grove clone https://github.com/macropower/grove

  # Add a worktree for a branch, from inside a clone.
  grove add feature/login

  # Show where a repository would be placed, without touching anything.
  grove resolve git@github.com:macropower/grove.git`
)

type RootArgs struct {
	LogLevel  string
	LogFormat string
	Config    string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.Config, "config", "", "Path to the configuration file")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		PersistentPreRunE: setupLogging(args),
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewCloneCmd(args),
		NewAddCmd(args),
		NewRemoveCmd(args),
		NewPullCmd(args),
		NewMigrateCmd(args),
		NewResolveCmd(args),
		NewInitCmd(args),
	)

	bindEnvVars(cmd)
	for _, sub := range cmd.Commands() {
		bindEnvVars(sub)
	}

	return cmd
}

func setupLogging(rc *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), rc.LogLevel, rc.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		return nil
	}
}
