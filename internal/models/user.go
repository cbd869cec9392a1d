package models

import "time"

// Role values for User.Role
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account that owns boards and acts on them
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRef is the public projection of a user embedded in other views
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the public projection of u
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// GetID returns the user ID
func (u *User) GetID() string { return u.ID }

// GetID returns the referenced user's ID
func (r *UserRef) GetID() string { return r.ID }
