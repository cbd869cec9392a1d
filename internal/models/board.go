package models

import (
	"fmt"
	"time"
)

// DefaultBoardColor is used when a board is created without a color
const DefaultBoardColor = "#5664d2"

// Board is the top-level container for columns and labels.
// A board has exactly one owner and any number of members.
type Board struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetID returns the board ID
func (b *Board) GetID() string { return b.ID }

// BoardSummary is the listing DTO: board fields plus aggregate counts.
// Cards are never materialized for a summary.
type BoardSummary struct {
	Board
	Access       Access `json:"access"`
	TotalColumns int    `json:"total_columns"`
	TotalCards   int    `json:"total_cards"`
}

// BoardView is the full board read model: columns ordered by rank,
// each holding its cards ordered by rank
type BoardView struct {
	Board
	Access       Access        `json:"access"`
	Columns      []*ColumnView `json:"columns"`
	Labels       []*Label      `json:"labels"`
	Members      []*UserRef    `json:"members"`
	TotalColumns int           `json:"total_columns"`
	TotalCards   int           `json:"total_cards"`
}

// ColumnView is a column together with its ordered cards
type ColumnView struct {
	Column
	Cards []*Card `json:"cards"`
}

// Access is the caller's relationship to a board
type Access int

const (
	AccessNone Access = iota
	AccessMember
	AccessOwner
)

// String returns the wire name of the access level
func (a Access) String() string {
	switch a {
	case AccessOwner:
		return "owner"
	case AccessMember:
		return "member"
	default:
		return "none"
	}
}

// MarshalText encodes the access level by name
func (a Access) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an access level by name
func (a *Access) UnmarshalText(text []byte) error {
	switch string(text) {
	case "owner":
		*a = AccessOwner
	case "member":
		*a = AccessMember
	case "none":
		*a = AccessNone
	default:
		return fmt.Errorf("unknown access level %q", text)
	}
	return nil
}

// Allows reports whether a satisfies the required level
func (a Access) Allows(required Access) bool {
	return a >= required && a != AccessNone
}
