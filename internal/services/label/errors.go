package label

import "github.com/thenoetrevino/quadro/internal/models"

// Label-related errors
var (
	// Validation errors
	ErrEmptyName    = models.Validation("label name cannot be empty")
	ErrNameTooLong  = models.Validation("label name cannot exceed 50 characters")
	ErrInvalidColor = models.Validation("invalid color format (must be hex color like #FFFFFF)")

	// Business logic errors
	ErrBoardNotFound = models.NotFound("board not found")
	ErrLabelNotFound = models.NotFound("label not found")
)
