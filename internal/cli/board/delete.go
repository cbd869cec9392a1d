package board

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// DeleteCmd returns the board delete subcommand
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board with all its columns, cards and labels",
		Args:  cli.RequireArgs(1, "<board-id>"),
		RunE:  runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		if err := c.App.BoardService.DeleteBoard(cmd.Context(), user.ID, args[0]); err != nil {
			return err
		}
		deleted := &cli.Deleted{Kind: "board", ID: args[0]}
		return cli.Formatter(cmd).Success(deleted, deleted.Human)
	})
}
