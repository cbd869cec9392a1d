package column

import "github.com/thenoetrevino/quadro/internal/models"

// Column-related errors
var (
	// Validation errors
	ErrEmptyTitle   = models.Validation("column title cannot be empty")
	ErrTitleTooLong = models.Validation("column title cannot exceed 255 characters")
	ErrInvalidColor = models.Validation("invalid color format (must be hex color like #FFFFFF)")

	// Business logic errors
	ErrBoardNotFound  = models.NotFound("board not found")
	ErrColumnNotFound = models.NotFound("column not found")
)
