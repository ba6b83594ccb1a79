package reservation

import (
	"time"

	"github.com/frahmantamala/library-management/internal"
)

// CreateReservationDTO is the request payload for reserving a book. The
// return date is the caller-supplied due date.
type CreateReservationDTO struct {
	BookID     int64     `json:"book_id"`
	ReturnDate time.Time `json:"return_date"`
}

func (dto CreateReservationDTO) Validate() *internal.AppError {
	var fieldErrors []internal.ValidationError

	if dto.BookID == 0 {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field:   "book_id",
			Message: "book_id is required",
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}
	if dto.ReturnDate.IsZero() {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field:   "return_date",
			Message: "return_date is required",
			Code:    string(internal.ErrCodeInvalidDate),
		})
	} else if dto.ReturnDate.Before(time.Now()) {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field:   "return_date",
			Message: "return_date must be in the future",
			Code:    string(internal.ErrCodeInvalidDate),
		})
	}

	if len(fieldErrors) > 0 {
		return internal.NewValidationFieldErrors(fieldErrors)
	}
	return nil
}
