package models

import "time"

// Card is a single item inside a column.
// BudgetID is an opaque reference owned by another system and is never interpreted here.
type Card struct {
	ID          string     `json:"id"`
	ColumnID    string     `json:"column_id"`
	CreatorID   string     `json:"creator_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Order       int        `json:"order"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	BudgetID    *string    `json:"budget_id,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	Assignee    *UserRef   `json:"assignee,omitempty"`
	Labels      []*Label   `json:"labels"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GetID returns the card ID (used by quiet CLI output)
func (c *Card) GetID() string { return c.ID }
