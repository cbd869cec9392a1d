package user

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/thenoetrevino/quadro/internal/auth"
	"github.com/thenoetrevino/quadro/internal/database"
	"github.com/thenoetrevino/quadro/internal/events"
	"github.com/thenoetrevino/quadro/internal/models"
	"github.com/thenoetrevino/quadro/internal/mutator"
)

const minPasswordLength = 8

// Service defines account operations
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// RegisterRequest encapsulates data for creating an account
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type service struct {
	mut *mutator.Mutator
}

// NewService creates a new user service
func NewService(mut *mutator.Mutator) Service {
	return &service{mut: mut}
}

// Register creates an account. Emails are unique, case-insensitively.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := database.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.mut.Do(ctx, "user.register", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		_, err := tx.GetUserByEmail(ctx, u.Email)
		switch {
		case err == nil:
			return nil, ErrEmailTaken
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
		return nil, tx.InsertUser(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user for valid credentials. Unknown emails and
// wrong passwords are indistinguishable.
func (s *service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetUser returns a user by ID
func (s *service) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u *models.User
	err := s.mut.View(ctx, func(tx *database.Tx) error {
		var err error
		u, err = tx.GetUser(ctx, id)
		return err
	})
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetUserByEmail returns a user by email
func (s *service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u *models.User
	err := s.mut.View(ctx, func(tx *database.Tx) error {
		var err error
		u, err = tx.GetUserByEmail(ctx, normalizeEmail(email))
		return err
	})
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegister(req RegisterRequest) error {
	if req.Name == "" {
		return ErrEmptyName
	}
	if len(req.Name) > 100 {
		return ErrNameTooLong
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return ErrPasswordTooWeak
	}
	return nil
}
