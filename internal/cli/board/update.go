package board

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
	boardservice "github.com/thenoetrevino/quadro/internal/services/board"
)

// UpdateCmd returns the board update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <board-id>",
		Short: "Change a board's title, description or color",
		Args:  cli.RequireArgs(1, "<board-id>"),
		RunE:  runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("color", "", "New hex color")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	req := boardservice.UpdateBoardRequest{
		BoardID:     args[0],
		Title:       cli.OptionalString(cmd, "title"),
		Description: cli.OptionalString(cmd, "description"),
		Color:       cli.OptionalString(cmd, "color"),
	}
	if req.Title == nil && req.Description == nil && req.Color == nil {
		return cli.UsageError("nothing to update: pass --title, --description or --color")
	}

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		board, err := c.App.BoardService.UpdateBoard(cmd.Context(), user.ID, req)
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(board, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Updated board %s (%s)\n", board.Title, board.ID)
			return err
		})
	})
}
