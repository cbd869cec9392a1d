package card

import "github.com/thenoetrevino/quadro/internal/models"

// Card-related errors
var (
	// Validation errors
	ErrEmptyTitle        = models.Validation("card title cannot be empty")
	ErrTitleTooLong      = models.Validation("card title cannot exceed 255 characters")
	ErrInvalidColor      = models.Validation("invalid color format (must be hex color like #FFFFFF)")
	ErrInvalidLabel      = models.Validation("labels must belong to the card's board")
	ErrAssigneeNotFound  = models.Validation("assignee does not exist")
	ErrEmptyBudgetID     = models.Validation("budget reference cannot be empty")
	ErrDescriptionTooBig = models.Validation("card description cannot exceed 10000 characters")

	// Business logic errors
	ErrCardNotFound   = models.NotFound("card not found")
	ErrColumnNotFound = models.NotFound("column not found")
	ErrCardMoved      = models.Conflict("card moved while waiting for its lock", nil)
)
