package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
	cardservice "github.com/thenoetrevino/quadro/internal/services/card"
)

// CreateCmd returns the card create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a card to a column",
		Long: `Append a card after the column's last card.

Examples:
  # Human-readable output
  quadro card create --column=$COLUMN_ID --title="Write docs"

  # With assignee, due date and labels
  quadro card create --column=$COLUMN_ID --title="Fix login" \
    --assignee=bob@example.com --due=2026-03-01 --labels=$BUG_ID

  # Quiet mode for bash capture
  CARD_ID=$(quadro card create --column=$COLUMN_ID --title="Write docs" --quiet)
`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	cmd.Flags().String("column", "", "Column ID (required)")
	cmd.Flags().String("title", "", "Card title (required)")
	cmd.Flags().String("description", "", "Markdown description")
	cmd.Flags().String("color", "", "Hex color")
	cmd.Flags().String("due", "", "Due date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().String("budget", "", "Budget reference")
	cmd.Flags().String("assignee", "", "Assignee email")
	cmd.Flags().String("labels", "", "Comma-separated label IDs")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	columnID, _ := cmd.Flags().GetString("column")
	title, _ := cmd.Flags().GetString("title")
	if columnID == "" || title == "" {
		return cli.UsageError("--column and --title are required")
	}

	req := cardservice.CreateCardRequest{ColumnID: columnID, Title: title}
	req.Description, _ = cmd.Flags().GetString("description")
	req.Color, _ = cmd.Flags().GetString("color")
	req.BudgetID = cli.OptionalString(cmd, "budget")
	labels, _ := cmd.Flags().GetString("labels")
	req.LabelIDs = cli.SplitIDs(labels)

	if due, _ := cmd.Flags().GetString("due"); due != "" {
		t, err := cli.ParseDueDate(due)
		if err != nil {
			return err
		}
		req.DueDate = &t
	}

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		if email, _ := cmd.Flags().GetString("assignee"); email != "" {
			assignee, err := c.App.UserService.GetUserByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			req.AssigneeID = &assignee.ID
		}

		card, err := c.App.CardService.CreateCard(cmd.Context(), user.ID, req)
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(card, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Created card %s at rank %d (%s)\n", card.Title, card.Order, card.ID)
			return err
		})
	})
}
