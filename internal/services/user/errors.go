package user

import "github.com/thenoetrevino/quadro/internal/models"

// User-related errors
var (
	// Validation errors
	ErrEmptyName       = models.Validation("name cannot be empty")
	ErrNameTooLong     = models.Validation("name cannot exceed 100 characters")
	ErrInvalidEmail    = models.Validation("invalid email address")
	ErrPasswordTooWeak = models.Validation("password must be at least 8 characters")

	// Business logic errors
	ErrUserNotFound       = models.NotFound("user not found")
	ErrEmailTaken         = models.Conflict("email is already registered", nil)
	ErrInvalidCredentials = models.Unauthorized("invalid email or password")
)
