package postgres

import (
	"database/sql"
	"strings"

	"github.com/frahmantamala/library-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(name, email, passwordHash string) (int64, error) {
	lowered := strings.ToLower(email)

	err := r.db.Exec(
		`INSERT INTO users (name, email, password_hash, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		name, lowered, passwordHash, true,
	).Error
	if err != nil {
		if isUniqueViolation(err) {
			return 0, auth.ErrDuplicateEmail
		}
		return 0, err
	}

	var userID int64
	row := r.db.Raw(`SELECT id FROM users WHERE email = ?`, lowered).Row()
	if err := row.Scan(&userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// GetPasswordForEmail only matches active accounts; login for a deactivated
// user fails the same way as a wrong password.
func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var passwordHash string
	var userID int64

	row := r.db.Raw(
		`SELECT id, password_hash FROM users WHERE email = ? AND is_active = ?`,
		strings.ToLower(email), true,
	).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, auth.ErrUserNotFound
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}

// GetUserWithCapabilities returns the user regardless of the active flag so
// the middleware can report deactivation distinctly from an unknown user.
func (r *Repository) GetUserWithCapabilities(userID int64) (*auth.User, error) {
	var user auth.User

	row := r.db.Raw(
		`SELECT id, name, email, is_active FROM users WHERE id = ?`, userID,
	).Row()
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	rows, err := r.db.Raw(
		`SELECT p.name
		 FROM permissions p
		 JOIN user_permissions up ON p.id = up.permission_id
		 WHERE up.user_id = ?`, userID,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var capabilities []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		capabilities = append(capabilities, name)
	}

	user.Capabilities = capabilities
	return &user, nil
}

// isUniqueViolation matches both the postgres and sqlite constraint errors so
// repository tests on sqlite behave like production.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
