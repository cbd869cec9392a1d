package board

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// ListCmd returns the board list subcommand
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the boards you own or belong to",
		Long: `List boards with their column and card totals.

Examples:
  quadro board list --user ann@example.com
  quadro board list --json
`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		boards, err := c.App.BoardService.ListBoards(cmd.Context(), user.ID)
		if err != nil {
			return err
		}

		formatter := cli.Formatter(cmd)
		if formatter.Quiet {
			for _, b := range boards {
				if _, err := io.WriteString(cmd.OutOrStdout(), b.ID+"\n"); err != nil {
					return err
				}
			}
			return nil
		}
		return formatter.Success(boards, func(w io.Writer) error {
			return cli.RenderBoardList(w, boards)
		})
	})
}
