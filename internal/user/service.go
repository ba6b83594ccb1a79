package user

import (
	"log/slog"

	"github.com/frahmantamala/library-management/internal/auth"
)

// Repository defines the data access methods for user administration.
type Repository interface {
	List(showInactive bool) ([]*Profile, error)
	GetByID(id int64) (*Profile, error)
	UpdateFields(id int64, fields map[string]interface{}) error
	ReplaceCapabilities(id int64, capabilities []string) error
	Deactivate(id int64) error
}

// Service handles user administration: listing, profile updates, capability
// grants, and soft deletion. Who may call each operation is decided at the
// routing layer; the service only re-checks the capability grant rule
// because it changes what the update does, not whether it runs.
type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(showInactive bool) ([]*Profile, error) {
	profiles, err := s.repo.List(showInactive)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return profiles, nil
}

func (s *Service) GetByID(id int64) (*Profile, error) {
	return s.repo.GetByID(id)
}

// Update applies a partial update to the target user. Deactivated targets
// are rejected. Name, email, and password apply for any authorized caller;
// capability changes apply only when canManageCapabilities is set and are
// dropped silently otherwise, so a user editing their own profile cannot
// grant themselves anything.
func (s *Service) Update(targetID int64, dto UpdateUserDTO, canManageCapabilities bool) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("user update validation failed", "error", err.GetDetailedMessage(), "user_id", targetID)
		return nil, err
	}

	target, err := s.repo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, ErrUserInactive
	}

	fields := make(map[string]interface{})
	if dto.Name != nil {
		fields["name"] = *dto.Name
	}
	if dto.Email != nil {
		fields["email"] = *dto.Email
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err, "user_id", targetID)
			return nil, err
		}
		fields["password_hash"] = hash
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(targetID, fields); err != nil {
			s.logger.Error("failed to update user", "error", err, "user_id", targetID)
			return nil, err
		}
	}

	if dto.Capabilities != nil {
		if canManageCapabilities {
			if err := s.repo.ReplaceCapabilities(targetID, *dto.Capabilities); err != nil {
				s.logger.Error("failed to update capabilities", "error", err, "user_id", targetID)
				return nil, err
			}
			s.logger.Info("user capabilities replaced", "user_id", targetID, "capabilities", *dto.Capabilities)
		} else {
			s.logger.Warn("capability change dropped, caller lacks grant capability", "user_id", targetID)
		}
	}

	return s.repo.GetByID(targetID)
}

// SoftDelete deactivates the account. Deactivating an already inactive
// account is rejected rather than treated as a no-op.
func (s *Service) SoftDelete(id int64) error {
	profile, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if !profile.IsActive {
		return ErrUserAlreadyInactive
	}

	if err := s.repo.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deactivated", "user_id", id)
	return nil
}
