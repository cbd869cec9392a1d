package column

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
	columnservice "github.com/thenoetrevino/quadro/internal/services/column"
)

// UpdateCmd returns the column update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <column-id>",
		Short: "Rename or recolor a column",
		Args:  cli.RequireArgs(1, "<column-id>"),
		RunE:  runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("color", "", "New hex color")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	req := columnservice.UpdateColumnRequest{
		ColumnID: args[0],
		Title:    cli.OptionalString(cmd, "title"),
		Color:    cli.OptionalString(cmd, "color"),
	}
	if req.Title == nil && req.Color == nil {
		return cli.UsageError("nothing to update: pass --title or --color")
	}

	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		col, err := c.App.ColumnService.UpdateColumn(cmd.Context(), user.ID, req)
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(col, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Updated column %s (%s)\n", col.Title, col.ID)
			return err
		})
	})
}
