package board

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
)

// MemberCmd returns the board member command group
func MemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage board members",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <board-id> <email>",
		Short: "Give a registered user member access to a board",
		Args:  cli.RequireArgs(2, "<board-id>", "<email>"),
		RunE:  runMemberAdd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <board-id> <user-id>",
		Short: "Remove a member from a board",
		Args:  cli.RequireArgs(2, "<board-id>", "<user-id>"),
		RunE:  runMemberRemove,
	})

	return cmd
}

func runMemberAdd(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		member, err := c.App.BoardService.AddMember(cmd.Context(), user.ID, args[0], args[1])
		if err != nil {
			return err
		}
		return cli.Formatter(cmd).Success(member, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Added %s <%s> to board %s\n", member.Name, member.Email, args[0])
			return err
		})
	})
}

func runMemberRemove(cmd *cobra.Command, args []string) error {
	return cli.Run(cmd, func(c *cli.CLI, user *models.User) error {
		if err := c.App.BoardService.RemoveMember(cmd.Context(), user.ID, args[0], args[1]); err != nil {
			return err
		}
		deleted := &cli.Deleted{Kind: "member", ID: args[1]}
		return cli.Formatter(cmd).Success(deleted, deleted.Human)
	})
}
