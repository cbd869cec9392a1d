package label

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/cli/styles"
	"github.com/thenoetrevino/quadro/internal/models"
	labelservice "github.com/thenoetrevino/quadro/internal/services/label"
)

// LabelCmd returns the label parent command
func LabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Manage board labels",
		Long: `Manage board labels. Attach labels to cards with
'quadro card update <card-id> --labels=<id>,<id>'.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <board-id>",
		Short: "List a board's labels",
		Long:  "List a board's labels by name. A board without labels gets the default set first.",
		Args:  cli.RequireArgs(1, "<board-id>"),
		RunE:  runList,
	})

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a label on a board",
		Args:  cobra.NoArgs,
		RunE:  runCreate,
	}
	create.Flags().String("board", "", "Board ID (required)")
	create.Flags().String("name", "", "Label name (required)")
	create.Flags().String("color", "#2196f3", "Hex color")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <label-id>",
		Short: "Delete a label and detach it from every card",
		Args:  cli.RequireArgs(1, "<label-id>"),
		RunE:  runDelete,
	})

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		labels, err := c.App.LabelService.ListLabels(cmd.Context(), user.ID, args[0])
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(labels, func(w io.Writer) error {
			for _, l := range labels {
				if _, err := fmt.Fprintf(w, "%s  %s\n", styles.SubtitleStyle.Render(l.ID), styles.RenderLabelChip(l)); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	boardID, _ := cmd.Flags().GetString("board")
	name, _ := cmd.Flags().GetString("name")
	color, _ := cmd.Flags().GetString("color")
	if boardID == "" || name == "" {
		return cli.UsageError("--board and --name are required")
	}

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		l, err := c.App.LabelService.CreateLabel(cmd.Context(), user.ID, labelservice.CreateLabelRequest{
			BoardID: boardID,
			Name:    name,
			Color:   color,
		})
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(l, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Created label %s (%s)\n", styles.RenderLabelChip(l), l.ID)
			return err
		})
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		if err := c.App.LabelService.DeleteLabel(cmd.Context(), user.ID, args[0]); err != nil {
			return err
		}
		deleted := &cli.Deleted{Kind: "label", ID: args[0]}
		return cli.Formatter(cmd).Success(deleted, deleted.Human)
	})
}
