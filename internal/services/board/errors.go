package board

import "github.com/thenoetrevino/quadro/internal/models"

// Board-related errors
var (
	// Validation errors
	ErrEmptyTitle    = models.Validation("board title cannot be empty")
	ErrTitleTooLong  = models.Validation("board title cannot exceed 255 characters")
	ErrInvalidColor  = models.Validation("invalid color format (must be hex color like #FFFFFF)")
	ErrOwnerIsMember = models.Validation("the owner is already on the board")

	// Business logic errors
	ErrBoardNotFound  = models.NotFound("board not found")
	ErrUserNotFound   = models.NotFound("user not found")
	ErrMemberNotFound = models.NotFound("member not found")
)
