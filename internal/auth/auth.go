package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Capability names gate mutating actions. They are stored per user through
// the permissions / user_permissions tables.
const (
	CapCreateBooks = "create_books"
	CapUpdateBooks = "update_books"
	CapDeleteBooks = "delete_books"
	CapUpdateUsers = "update_users"
	CapDeleteUsers = "delete_users"
)

// AllCapabilities lists every capability the service knows about. Capability
// updates reject names outside this set.
var AllCapabilities = []string{
	CapCreateBooks,
	CapUpdateBooks,
	CapDeleteBooks,
	CapUpdateUsers,
	CapDeleteUsers,
}

func IsKnownCapability(name string) bool {
	for _, c := range AllCapabilities {
		if c == name {
			return true
		}
	}
	return false
}

// User is the authenticated identity attached to the request context.
type User struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	IsActive     bool     `json:"is_active"`
	Capabilities []string `json:"capabilities,omitempty"`
}

func (u *User) HasCapability(capability string) bool {
	for _, c := range u.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account has been deactivated")
	ErrDuplicateEmail     = errors.New("email is already registered")
)

type userCtxKey string

const ContextUserKey userCtxKey = "authUser"

// UserFromContext returns the authenticated user attached by AuthMiddleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
