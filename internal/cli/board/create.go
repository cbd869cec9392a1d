package board

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
	boardservice "github.com/thenoetrevino/quadro/internal/services/board"
)

// CreateCmd returns the board create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a board",
		Long: `Create a board owned by the acting user. New boards start with the
columns "To Do", "In Progress" and "Done".

Examples:
  # Human-readable output
  quadro board create --title="Roadmap"

  # Quiet mode for bash capture
  BOARD_ID=$(quadro board create --title="Roadmap" --quiet)
`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "Board title (required)")
	cmd.Flags().String("description", "", "Board description")
	cmd.Flags().String("color", "", "Hex color, e.g. #5664d2")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		return cli.UsageError("--title is required")
	}
	description, _ := cmd.Flags().GetString("description")
	color, _ := cmd.Flags().GetString("color")

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		board, err := c.App.BoardService.CreateBoard(cmd.Context(), user.ID, boardservice.CreateBoardRequest{
			Title:       title,
			Description: description,
			Color:       color,
		})
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(board, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Created board %s (%s)\n", board.Title, board.ID)
			return err
		})
	})
}
