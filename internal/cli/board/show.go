package board

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// ShowCmd returns the board show subcommand
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <board-id>",
		Short: "Show a board with its columns and cards in order",
		Args:  cli.RequireArgs(1, "<board-id>"),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		view, err := c.App.BoardService.GetBoard(cmd.Context(), user.ID, args[0])
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(view, func(w io.Writer) error {
			return cli.RenderBoard(w, view)
		})
	})
}
