package user

import (
	"net/mail"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/auth"
)

// UpdateUserDTO carries a partial update. Nil fields are left untouched.
// Capabilities only take effect when the caller holds the user update
// capability; the service drops them silently otherwise.
type UpdateUserDTO struct {
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	Password     *string   `json:"password"`
	Capabilities *[]string `json:"capabilities"`
}

func (dto UpdateUserDTO) Validate() *internal.AppError {
	var fieldErrors []internal.ValidationError

	if dto.Name != nil {
		if *dto.Name == "" {
			fieldErrors = append(fieldErrors, internal.ValidationError{
				Field:   "name",
				Message: "name cannot be empty",
				Code:    string(internal.ErrCodeValidationFailed),
			})
		} else if len(*dto.Name) > 50 {
			fieldErrors = append(fieldErrors, internal.ValidationError{
				Field:   "name",
				Message: "name cannot exceed 50 characters",
				Code:    string(internal.ErrCodeValidationFailed),
			})
		}
	}

	if dto.Email != nil {
		if _, err := mail.ParseAddress(*dto.Email); err != nil {
			fieldErrors = append(fieldErrors, internal.ValidationError{
				Field:   "email",
				Message: "email must be a valid address",
				Code:    string(internal.ErrCodeValidationFailed),
			})
		}
	}

	if dto.Password != nil && len(*dto.Password) < 6 {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}

	if dto.Capabilities != nil {
		for _, c := range *dto.Capabilities {
			if !auth.IsKnownCapability(c) {
				fieldErrors = append(fieldErrors, internal.ValidationError{
					Field:   "capabilities",
					Message: "unknown capability: " + c,
					Code:    string(internal.ErrCodeValidationFailed),
				})
			}
		}
	}

	if len(fieldErrors) > 0 {
		return internal.NewValidationFieldErrors(fieldErrors)
	}
	return nil
}
