package column

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// ReorderCmd returns the column reorder subcommand
func ReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <board-id>",
		Short: "Set the order of every column on a board",
		Long: `Set the full column order of a board. --order must list every column
of the board exactly once; the column at position i gets rank i.

Examples:
  quadro column reorder $BOARD_ID --order=$DONE,$TODO,$DOING
`,
		Args: cli.RequireArgs(1, "<board-id>"),
		RunE: runReorder,
	}

	cmd.Flags().String("order", "", "Comma-separated column IDs in their new order (required)")

	return cmd
}

func runReorder(cmd *cobra.Command, args []string) error {
	order, _ := cmd.Flags().GetString("order")
	ids := cli.SplitIDs(order)
	if len(ids) == 0 {
		return cli.UsageError("--order is required")
	}

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		columns, err := c.App.ColumnService.ReorderColumns(cmd.Context(), user.ID, args[0], ids)
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(columns, func(w io.Writer) error {
			for _, col := range columns {
				if _, err := fmt.Fprintf(w, "[%d] %s\n", col.Order, col.Title); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
