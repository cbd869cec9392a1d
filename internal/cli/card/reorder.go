package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// ReorderCmd returns the card reorder subcommand
func ReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <column-id>",
		Short: "Set the order of every card in a column",
		Long: `Set the full card order of a column. --order must list every card of
the column exactly once; the card at position i gets rank i.`,
		Args: cli.RequireArgs(1, "<column-id>"),
		RunE: runReorder,
	}

	cmd.Flags().String("order", "", "Comma-separated card IDs in their new order (required)")

	return cmd
}

func runReorder(cmd *cobra.Command, args []string) error {
	order, _ := cmd.Flags().GetString("order")
	ids := cli.SplitIDs(order)
	if len(ids) == 0 {
		return cli.UsageError("--order is required")
	}

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		cards, err := c.App.CardService.ReorderCards(cmd.Context(), user.ID, args[0], ids)
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(cards, func(w io.Writer) error {
			for _, card := range cards {
				if _, err := fmt.Fprintf(w, "[%d] %s\n", card.Order, card.Title); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
