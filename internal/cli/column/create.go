package column

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
	columnservice "github.com/thenoetrevino/quadro/internal/services/column"
)

// CreateCmd returns the column create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a column to a board",
		Long: `Append a column after the board's last column.

Examples:
  # Human-readable output
  quadro column create --board=$BOARD_ID --title="Review"

  # Quiet mode for bash capture
  COLUMN_ID=$(quadro column create --board=$BOARD_ID --title="Review" --quiet)
`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	cmd.Flags().String("board", "", "Board ID (required)")
	cmd.Flags().String("title", "", "Column title (required)")
	cmd.Flags().String("color", "", "Hex color")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	boardID, _ := cmd.Flags().GetString("board")
	title, _ := cmd.Flags().GetString("title")
	color, _ := cmd.Flags().GetString("color")
	if boardID == "" || title == "" {
		return cli.UsageError("--board and --title are required")
	}

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		col, err := c.App.ColumnService.CreateColumn(cmd.Context(), user.ID, columnservice.CreateColumnRequest{
			BoardID: boardID,
			Title:   title,
			Color:   color,
		})
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(col, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Created column %s at rank %d (%s)\n", col.Title, col.Order, col.ID)
			return err
		})
	})
}
