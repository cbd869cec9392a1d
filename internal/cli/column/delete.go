package column

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// DeleteCmd returns the column delete subcommand
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <column-id>",
		Short: "Delete a column and its cards",
		Long: `Delete a column together with its cards. The remaining columns close
the gap so their ranks stay 0..n-1.`,
		Args: cli.RequireArgs(1, "<column-id>"),
		RunE: runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		if err := c.App.ColumnService.DeleteColumn(cmd.Context(), user.ID, args[0]); err != nil {
			return err
		}
		deleted := &cli.Deleted{Kind: "column", ID: args[0]}
		return cli.Formatter(cmd).Success(deleted, deleted.Human)
	})
}
