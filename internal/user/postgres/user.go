package postgres

import (
	"strings"
	"time"

	"github.com/frahmantamala/library-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

// profileRow matches the users table columns needed for a Profile.
type profileRow struct {
	ID        int64
	Name      string
	Email     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *UserRepository) List(showInactive bool) ([]*user.Profile, error) {
	tx := r.db.Table("users").
		Select("id, name, email, is_active, created_at, updated_at")
	if !showInactive {
		tx = tx.Where("is_active = ?", true)
	}

	var rows []profileRow
	if err := tx.Order("created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	profiles := make([]*user.Profile, len(rows))
	for i, row := range rows {
		p := profileFromRow(row)
		caps, err := r.capabilitiesFor(row.ID)
		if err != nil {
			return nil, err
		}
		p.Capabilities = caps
		profiles[i] = p
	}
	return profiles, nil
}

func (r *UserRepository) GetByID(id int64) (*user.Profile, error) {
	var row profileRow
	err := r.db.Table("users").
		Select("id, name, email, is_active, created_at, updated_at").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	p := profileFromRow(row)
	caps, err := r.capabilitiesFor(id)
	if err != nil {
		return nil, err
	}
	p.Capabilities = caps
	return p, nil
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = strings.ToLower(email)
	}
	fields["updated_at"] = time.Now()

	err := r.db.Table("users").Where("id = ?", id).Updates(fields).Error
	if err != nil && isUniqueViolation(err) {
		return user.ErrDuplicateEmail
	}
	return err
}

// ReplaceCapabilities rewrites the user's grants to exactly the given set
// inside one transaction. Unknown capability names were rejected upstream;
// names missing from the permissions table are skipped here.
func (r *UserRepository) ReplaceCapabilities(id int64, capabilities []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM user_permissions WHERE user_id = ?`, id).Error; err != nil {
			return err
		}
		for _, name := range capabilities {
			err := tx.Exec(
				`INSERT INTO user_permissions (user_id, permission_id)
				 SELECT ?, id FROM permissions WHERE name = ?`,
				id, name,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) Deactivate(id int64) error {
	return r.db.Table("users").
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

func (r *UserRepository) capabilitiesFor(userID int64) ([]string, error) {
	rows, err := r.db.Raw(
		`SELECT p.name
		 FROM permissions p
		 JOIN user_permissions up ON p.id = up.permission_id
		 WHERE up.user_id = ?
		 ORDER BY p.name`, userID,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	capabilities := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		capabilities = append(capabilities, name)
	}
	return capabilities, nil
}

func profileFromRow(row profileRow) *user.Profile {
	return &user.Profile{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
