package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/thenoetrevino/quadro/internal/cli/styles"
	"github.com/thenoetrevino/quadro/internal/models"
)

// descriptionWidth wraps rendered card descriptions
const descriptionWidth = 80

// RenderBoard prints columns and cards in rank order
func RenderBoard(w io.Writer, v *models.BoardView) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s\n",
		styles.BoldColoredText(v.Title, v.Color),
		styles.SubtitleStyle.Render("("+v.Access.String()+")"),
		styles.SubtitleStyle.Render(fmt.Sprintf("%d columns, %d cards", v.TotalColumns, v.TotalCards)),
	)

	for _, col := range v.Columns {
		fmt.Fprintf(&b, "[%d] %s %s\n",
			col.Order,
			styles.SectionStyle.Render(col.Title),
			styles.SubtitleStyle.Render(fmt.Sprintf("(%d)", len(col.Cards))),
		)
		for _, card := range col.Cards {
			b.WriteString("    " + cardLine(card) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// cardLine is the one-line card summary used inside a board
func cardLine(c *models.Card) string {
	line := fmt.Sprintf("[%d] %s", c.Order, styles.ValueStyle.Render(c.Title))
	for _, l := range c.Labels {
		line += " " + styles.RenderLabelChip(l)
	}
	if c.Assignee != nil {
		line += " " + styles.SubtitleStyle.Render("@"+c.Assignee.Name)
	}
	return line
}

// RenderBoardList prints one line per board summary
func RenderBoardList(w io.Writer, boards []*models.BoardSummary) error {
	if len(boards) == 0 {
		_, err := fmt.Fprintln(w, styles.SubtitleStyle.Render("no boards"))
		return err
	}
	for _, s := range boards {
		if _, err := fmt.Fprintf(w, "%s  %s %s  %s\n",
			styles.SubtitleStyle.Render(s.ID),
			styles.BoldColoredText(s.Title, s.Color),
			styles.SubtitleStyle.Render("("+s.Access.String()+")"),
			styles.SubtitleStyle.Render(fmt.Sprintf("%d columns, %d cards", s.TotalColumns, s.TotalCards)),
		); err != nil {
			return err
		}
	}
	return nil
}

// RenderCard prints a card's details. The description is rendered as
// markdown.
func RenderCard(w io.Writer, c *models.Card) error {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(c.Title) + "\n")
	field(&b, "Rank:", fmt.Sprint(c.Order))
	field(&b, "Column:", c.ColumnID)
	if c.Assignee != nil {
		field(&b, "Assignee:", fmt.Sprintf("%s <%s>", c.Assignee.Name, c.Assignee.Email))
	}
	if c.DueDate != nil {
		field(&b, "Due:", c.DueDate.Format("2006-01-02"))
	}
	if c.BudgetID != nil {
		field(&b, "Budget:", *c.BudgetID)
	}
	if len(c.Labels) > 0 {
		chips := make([]string, len(c.Labels))
		for i, l := range c.Labels {
			chips[i] = styles.RenderLabelChip(l)
		}
		b.WriteString(styles.LabelStyle.Render("Labels:") + " " + strings.Join(chips, " ") + "\n")
	}

	if strings.TrimSpace(c.Description) != "" {
		rendered, err := renderMarkdown(c.Description)
		if err != nil {
			return err
		}
		b.WriteString("\n" + styles.SectionStyle.Render("Description") + "\n")
		b.WriteString(rendered)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func field(b *strings.Builder, label, value string) {
	b.WriteString(styles.LabelStyle.Render(label) + " " + styles.ValueStyle.Render(value) + "\n")
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(descriptionWidth),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}
