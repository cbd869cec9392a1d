package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// dueDateLayouts are accepted by --due, most specific first
var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDueDate parses a --due value into UTC
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, DataError(fmt.Errorf("invalid due date %q (use YYYY-MM-DD or RFC 3339)", s))
}

// SplitIDs splits a comma-separated ID list, dropping blanks
func SplitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// OptionalString returns a pointer to the flag value when the flag was set
func OptionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// RequireArgs is cobra.ExactArgs reporting a usage error
func RequireArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return UsageError("%s expects %d argument(s): %s", cmd.CommandPath(), n, strings.Join(names, " "))
		}
		return nil
	}
}
