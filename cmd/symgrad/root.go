package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "symgrad",
		Short: "Symbolic reverse-mode differentiation of dataflow graphs",
		Long: `symgrad builds gradient graphs from graph descriptions.

Commands:
  grad       Build gradient expressions for graph description files
  ops        List operator kinds and whether they are differentiable
  passes     List registered graph passes
  version    Show version`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newGradCmd(opts),
		newOpsCmd(),
		newPassesCmd(),
		newVersionCmd(),
	)
	return cmd
}

// logger builds the stderr text logger selected by --log-level.
func (o *rootOptions) logger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", o.logLevel, err)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "symgrad %s\n", version)
		},
	}
}
