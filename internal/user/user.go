package user

import (
	"errors"
	"time"
)

// Profile is the externally visible shape of a user account. The password
// hash never leaves the repository layer.
type Profile struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Capabilities []string  `json:"capabilities"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserInactive        = errors.New("user is deactivated")
	ErrUserAlreadyInactive = errors.New("user is already inactive")
	ErrDuplicateEmail      = errors.New("email is already registered")
)
