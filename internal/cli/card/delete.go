package card

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// DeleteCmd returns the card delete subcommand
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a card",
		Long:  "Delete a card. The cards after it in the column move up one rank.",
		Args:  cli.RequireArgs(1, "<card-id>"),
		RunE:  runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		if err := c.App.CardService.DeleteCard(cmd.Context(), user.ID, args[0]); err != nil {
			return err
		}
		deleted := &cli.Deleted{Kind: "card", ID: args[0]}
		return cli.Formatter(cmd).Success(deleted, deleted.Human)
	})
}
