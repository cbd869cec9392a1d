package user

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/cli"
	userservice "github.com/thenoetrevino/quadro/internal/services/user"
)

// passwordEnv is read when --password is not given, keeping it out of
// shell history
const passwordEnv = "QUADRO_PASSWORD"

// UserCmd returns the user parent command
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Register an account",
		Long: `Register an account. The password comes from --password or $QUADRO_PASSWORD.

Examples:
  QUADRO_PASSWORD=... quadro user create --name=Ann --email=ann@example.com
`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}
	create.Flags().String("name", "", "Display name (required)")
	create.Flags().String("email", "", "Email (required)")
	create.Flags().String("password", "", "Password, at least 8 characters")
	cmd.AddCommand(create)

	token := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for an account",
		Long: `Check credentials and print a bearer token for the HTTP API.
Requires auth.jwt_secret (or QUADRO_JWT_SECRET).`,
		Args: cobra.NoArgs,
		RunE: runToken,
	}
	token.Flags().String("email", "", "Email (required)")
	token.Flags().String("password", "", "Password")
	cmd.AddCommand(token)

	return cmd
}

func password(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p
	}
	return os.Getenv(passwordEnv)
}

func runCreate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	if name == "" || email == "" {
		return cli.UsageError("--name and --email are required")
	}

	c, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	user, err := c.App.UserService.Register(cmd.Context(), userservice.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password(cmd),
	})
	if err != nil {
		return err
	}
	return cli.Formatter(cmd).Success(user, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Created user %s <%s> (%s)\n", user.Name, user.Email, user.ID)
		return err
	})
}

type tokenResult struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

func (r *tokenResult) GetID() string { return r.Token }

func runToken(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		return cli.UsageError("--email is required")
	}

	c, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if c.App.Tokens == nil {
		return cli.UsageError("token issuing needs auth.jwt_secret or QUADRO_JWT_SECRET")
	}

	user, err := c.App.UserService.Authenticate(cmd.Context(), email, password(cmd))
	if err != nil {
		return err
	}
	token, err := c.App.Tokens.Issue(user.ID)
	if err != nil {
		return err
	}

	result := &tokenResult{UserID: user.ID, Token: token}
	return cli.Formatter(cmd).Success(result, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, token)
		return err
	})
}
