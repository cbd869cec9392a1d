package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
	cardservice "github.com/thenoetrevino/quadro/internal/services/card"
)

// MoveCmd returns the card move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <card-id>",
		Short: "Move a card within its column or to another column",
		Long: `Move a card to rank --to, in --column when given or in its own column
otherwise. Ranks on both sides stay 0..n-1. A rank equal to the number of
cards in the target column moves the card to the end.

Examples:
  # Move to the top of its column
  quadro card move $CARD_ID --to 0

  # Move into another column, second position
  quadro card move $CARD_ID --column=$DONE_ID --to 1
`,
		Args: cli.RequireArgs(1, "<card-id>"),
		RunE: runMove,
	}

	cmd.Flags().String("column", "", "Target column ID (default: the card's column)")
	cmd.Flags().Int("to", 0, "Target rank (required)")

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("to") {
		return cli.UsageError("--to is required")
	}
	to, _ := cmd.Flags().GetInt("to")
	columnID, _ := cmd.Flags().GetString("column")

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		card, err := c.App.CardService.MoveCard(cmd.Context(), user.ID, cardservice.MoveCardRequest{
			CardID:   args[0],
			ColumnID: columnID,
			ToRank:   to,
		})
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(card, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Moved card %s to rank %d in column %s\n", card.Title, card.Order, card.ColumnID)
			return err
		})
	})
}
