package card

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
	cardservice "github.com/thenoetrevino/quadro/internal/services/card"
)

// UpdateCmd returns the card update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <card-id>",
		Short: "Change card fields",
		Long: `Change a card's fields. Flags that are not given leave their field alone.

Examples:
  quadro card update $CARD_ID --title="Ship it"
  quadro card update $CARD_ID --assignee=bob@example.com --due=2026-03-01
  quadro card update $CARD_ID --unassign --no-due
  quadro card update $CARD_ID --labels=""          # remove every label
`,
		Args: cli.RequireArgs(1, "<card-id>"),
		RunE: runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New markdown description")
	cmd.Flags().String("color", "", "New hex color")
	cmd.Flags().String("due", "", "Due date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().Bool("no-due", false, "Clear the due date")
	cmd.Flags().String("budget", "", "Budget reference")
	cmd.Flags().Bool("no-budget", false, "Clear the budget reference")
	cmd.Flags().String("assignee", "", "Assignee email")
	cmd.Flags().Bool("unassign", false, "Clear the assignee")
	cmd.Flags().String("labels", "", "Comma-separated label IDs replacing the current set")

	cmd.MarkFlagsMutuallyExclusive("due", "no-due")
	cmd.MarkFlagsMutuallyExclusive("budget", "no-budget")
	cmd.MarkFlagsMutuallyExclusive("assignee", "unassign")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	req := cardservice.UpdateCardRequest{
		CardID:      args[0],
		Title:       cli.OptionalString(cmd, "title"),
		Description: cli.OptionalString(cmd, "description"),
		Color:       cli.OptionalString(cmd, "color"),
	}

	if due := cli.OptionalString(cmd, "due"); due != nil {
		t, err := cli.ParseDueDate(*due)
		if err != nil {
			return err
		}
		req.DueDate = models.SetTo(t)
	} else if noDue, _ := cmd.Flags().GetBool("no-due"); noDue {
		req.DueDate = models.Clear[time.Time]()
	}

	if budget := cli.OptionalString(cmd, "budget"); budget != nil {
		req.BudgetID = models.SetTo(*budget)
	} else if noBudget, _ := cmd.Flags().GetBool("no-budget"); noBudget {
		req.BudgetID = models.Clear[string]()
	}

	if labels := cli.OptionalString(cmd, "labels"); labels != nil {
		ids := cli.SplitIDs(*labels)
		if ids == nil {
			ids = []string{}
		}
		req.LabelIDs = &ids
	}

	assigneeEmail := cli.OptionalString(cmd, "assignee")
	if unassign, _ := cmd.Flags().GetBool("unassign"); unassign {
		req.AssigneeID = models.Clear[string]()
	}

	if req.Title == nil && req.Description == nil && req.Color == nil && !req.DueDate.Set &&
		!req.BudgetID.Set && !req.AssigneeID.Set && req.LabelIDs == nil && assigneeEmail == nil {
		return cli.UsageError("nothing to update")
	}

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		if assigneeEmail != nil {
			assignee, err := c.App.UserService.GetUserByEmail(cmd.Context(), *assigneeEmail)
			if err != nil {
				return err
			}
			req.AssigneeID = models.SetTo(assignee.ID)
		}

		card, err := c.App.CardService.UpdateCard(cmd.Context(), user.ID, req)
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(card, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Updated card %s (%s)\n", card.Title, card.ID)
			return err
		})
	})
}
