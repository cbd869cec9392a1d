package models

import "time"

// Label represents a tag that can be applied to cards.
// Labels are board-scoped; a card may only carry labels of its own board.
type Label struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	CreatorID string    `json:"creator_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"` // Hex color code (e.g., "#f44336")
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the label ID
func (l *Label) GetID() string { return l.ID }

// DefaultLabel describes a label seeded into a board that has none
type DefaultLabel struct {
	Name  string
	Color string
}

// DefaultLabels are seeded the first time a board's labels are listed
var DefaultLabels = []DefaultLabel{
	{Name: "High Priority", Color: "#f44336"},
	{Name: "Medium Priority", Color: "#ff9800"},
	{Name: "Low Priority", Color: "#4caf50"},
	{Name: "Bug", Color: "#9c27b0"},
	{Name: "Improvement", Color: "#2196f3"},
}
