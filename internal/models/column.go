package models

import "time"

// DefaultColumnColor is used when a column is created without a color
const DefaultColumnColor = "#f8f9fa"

// Column represents a list of cards on a board (e.g., "To Do", "In Progress", "Done").
// Order is the column's dense rank among its board's columns.
type Column struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	CreatorID string    `json:"creator_id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the column ID
func (c *Column) GetID() string { return c.ID }

// DefaultColumn describes a column seeded into every new board
type DefaultColumn struct {
	Title string
	Color string
}

// DefaultColumns are created at ranks 0..2 when a board is created
var DefaultColumns = []DefaultColumn{
	{Title: "To Do", Color: "#f8f9fa"},
	{Title: "In Progress", Color: "#e9ecef"},
	{Title: "Done", Color: "#dee2e6"},
}
