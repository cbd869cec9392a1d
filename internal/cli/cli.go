package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/quadro/internal/app"
	"github.com/thenoetrevino/quadro/internal/config"
	"github.com/thenoetrevino/quadro/internal/models"
)

// CLI represents the CLI application context
type CLI struct {
	App    *app.App // Application container with services
	Config *config.Config
	owned  bool // App was opened here and must be closed
}

// NewCLI opens the application described by cfg
func NewCLI(ctx context.Context, cfg *config.Config) (*CLI, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}

	a, err := app.Open(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return &CLI{App: a, Config: cfg, owned: true}, nil
}

// GetCLIFromContext returns the CLI for a command. An app injected with
// WithApp is reused as is; otherwise one is opened from the context's config.
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	cfg := ConfigFromContext(ctx)
	if a, ok := ctx.Value(appKey).(*app.App); ok && a != nil {
		return &CLI{App: a, Config: cfg}, nil
	}
	return NewCLI(ctx, cfg)
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	if c == nil || !c.owned {
		return nil
	}
	return c.App.Close()
}

// ActingUser resolves the user commands act as: --user, then cli.user from
// the config file or QUADRO_USER
func (c *CLI) ActingUser(cmd *cobra.Command) (*models.User, error) {
	email, _ := cmd.Flags().GetString("user")
	if email == "" {
		email = c.Config.CLI.User
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, UsageError("no acting user: pass --user or set cli.user in the config")
	}
	return c.App.UserService.GetUserByEmail(cmd.Context(), email)
}

// AddGlobalFlags registers the flags every command understands
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/quadro/config.yaml)")
	cmd.PersistentFlags().String("user", "", "Email of the acting user")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("quiet", false, "Minimal output (ID only)")
}

// Formatter builds the output formatter from the global flags
func Formatter(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{
		JSON:  jsonOutput,
		Quiet: quietMode,
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
	}
}

// Run opens the CLI, resolves the acting user and calls fn. It is the body
// of every command that touches a board.
func Run(cmd *cobra.Command, fn func(c *CLI, user *models.User) error) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	user, err := c.ActingUser(cmd)
	if err != nil {
		return err
	}
	return fn(c, user)
}
