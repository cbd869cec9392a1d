package card

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// ShowCmd returns the card show subcommand
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show card details",
		Long:  "Display a card with its rank, assignee, due date, labels and rendered description.",
		Args:  cli.RequireArgs(1, "<card-id>"),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		card, err := c.App.CardService.GetCard(cmd.Context(), user.ID, args[0])
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(card, func(w io.Writer) error {
			return cli.RenderCard(w, card)
		})
	})
}
