// Package tutorial prints the quadro workflow guide
package tutorial

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed tutorial.md
var tutorialContent string

// TutorialCmd returns the tutorial command
func TutorialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutorial",
		Short: "Print the quadro workflow guide",
		Long: `Print a short guide to boards, columns, cards and ranks as markdown.

Pass --render to format it for the terminal. The raw markdown is meant for
scripts and coding agents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			render, _ := cmd.Flags().GetBool("render")
			return outputTutorial(cmd, render)
		},
	}
	cmd.Flags().Bool("render", false, "Render the markdown for the terminal")
	return cmd
}

func outputTutorial(cmd *cobra.Command, render bool) error {
	content := tutorialContent
	if render {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		if content, err = r.Render(tutorialContent); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), content)
	return err
}
