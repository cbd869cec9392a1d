// Package cmd wires the quadro command tree
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/cli/board"
	"github.com/thenoetrevino/quadro/internal/cli/card"
	"github.com/thenoetrevino/quadro/internal/cli/column"
	"github.com/thenoetrevino/quadro/internal/cli/label"
	"github.com/thenoetrevino/quadro/internal/cli/tutorial"
	"github.com/thenoetrevino/quadro/internal/cli/user"
	"github.com/thenoetrevino/quadro/internal/config"
	"github.com/thenoetrevino/quadro/internal/logging"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

// closeLog releases the log file opened by the last setup
var closeLog = func() error { return nil }

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quadro",
		Short: "Quadro - kanban boards with strictly ordered columns and cards",
		Long: `Quadro keeps every board's columns, and every column's cards, in a dense
order 0..n-1 through moves, deletes and concurrent edits.

Run 'quadro serve' for the HTTP API, or manage boards directly:
  quadro user create --name=Ann --email=ann@example.com
  quadro board create --title=Roadmap --user=ann@example.com`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cli.AddGlobalFlags(root)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cli.UsageError("%v", err)
	})

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(configCmd())
	root.AddCommand(user.UserCmd())
	root.AddCommand(board.BoardCmd())
	root.AddCommand(column.ColumnCmd())
	root.AddCommand(card.CardCmd())
	root.AddCommand(label.LabelCmd())
	root.AddCommand(tutorial.TutorialCmd())

	return root
}

// setup loads the config and initializes logging before any command runs
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cli.DataError(err)
	}

	closeFn, err := logging.Init(cfg.Log)
	if err != nil {
		return err
	}
	closeLog = closeFn

	cmd.SetContext(cli.WithConfig(cmd.Context(), cfg))
	return nil
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		jsonOutput, _ := root.PersistentFlags().GetBool("json")
		formatter := &cli.OutputFormatter{JSON: jsonOutput, Out: root.OutOrStdout(), Err: root.ErrOrStderr()}
		_ = formatter.Error(err)
	}

	_ = closeLog()
	return cli.ExitCodeFor(err)
}
