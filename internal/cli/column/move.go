package column

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// MoveCmd returns the column move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <column-id>",
		Short: "Move a column to another rank on its board",
		Long: `Move a column to rank --to. The columns in between shift by one.
A rank equal to the number of columns moves the column to the end.

Examples:
  quadro column move $COLUMN_ID --to 0
`,
		Args: cli.RequireArgs(1, "<column-id>"),
		RunE: runMove,
	}

	cmd.Flags().Int("to", 0, "Target rank (required)")

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("to") {
		return cli.UsageError("--to is required")
	}
	to, _ := cmd.Flags().GetInt("to")

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		col, err := c.App.ColumnService.MoveColumn(cmd.Context(), user.ID, args[0], to)
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(col, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Moved column %s to rank %d\n", col.Title, col.Order)
			return err
		})
	})
}
