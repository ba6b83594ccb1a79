package book

import (
	"fmt"
	"time"

	"github.com/frahmantamala/library-management/internal"
)

// CreateBookDTO represents the request payload for creating a book.
type CreateBookDTO struct {
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre"`
	PublishedDate   time.Time `json:"published_date"`
	Publisher       string    `json:"publisher"`
	ISBN            string    `json:"isbn"`
	Description     string    `json:"description"`
	TotalCopies     *int      `json:"total_copies"`
	AvailableCopies *int      `json:"available_copies"`
}

// UpdateBookDTO carries a merge-update: only non-nil fields are applied, and
// the merged record is revalidated before persisting.
type UpdateBookDTO struct {
	Title           *string    `json:"title"`
	Author          *string    `json:"author"`
	Genre           *string    `json:"genre"`
	PublishedDate   *time.Time `json:"published_date"`
	Publisher       *string    `json:"publisher"`
	ISBN            *string    `json:"isbn"`
	Description     *string    `json:"description"`
	TotalCopies     *int       `json:"total_copies"`
	AvailableCopies *int       `json:"available_copies"`
}

// ListQuery is the filter set for the catalog listing.
type ListQuery struct {
	Genre           string
	Author          string
	Publisher       string
	Title           string
	AvailableOnly   bool
	PublishedBefore *time.Time
	PublishedAfter  *time.Time
	ShowInactive    bool
}

// Validate checks the payload and returns an AppError carrying every field
// failure, or nil when the payload is acceptable.
func (dto CreateBookDTO) Validate() *internal.AppError {
	b := Book{
		Title:         dto.Title,
		Author:        dto.Author,
		Genre:         dto.Genre,
		PublishedDate: dto.PublishedDate,
		Publisher:     dto.Publisher,
		ISBN:          dto.ISBN,
		TotalCopies:   1,
	}
	if dto.TotalCopies != nil {
		b.TotalCopies = *dto.TotalCopies
	}
	b.AvailableCopies = b.TotalCopies
	if dto.AvailableCopies != nil {
		b.AvailableCopies = *dto.AvailableCopies
	}
	return validateBook(&b)
}

// validateBook holds the whole-record rules shared by create and update.
func validateBook(b *Book) *internal.AppError {
	var fieldErrors []internal.ValidationError

	addError := func(field, message string, code internal.ErrorCode) {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field:   field,
			Message: message,
			Code:    string(code),
		})
	}

	if b.Title == "" {
		addError("title", "title is required", internal.ErrCodeValidationFailed)
	} else if len(b.Title) > 100 {
		addError("title", "title must not exceed 100 characters", internal.ErrCodeValidationFailed)
	}
	if b.Author == "" {
		addError("author", "author is required", internal.ErrCodeValidationFailed)
	}
	if b.Genre == "" {
		addError("genre", "genre is required", internal.ErrCodeValidationFailed)
	} else if !IsValidGenre(b.Genre) {
		addError("genre", fmt.Sprintf("genre %q is not a valid genre", b.Genre), internal.ErrCodeInvalidGenre)
	}
	if b.PublishedDate.IsZero() {
		addError("published_date", "published date is required", internal.ErrCodeInvalidDate)
	}
	if b.Publisher == "" {
		addError("publisher", "publisher is required", internal.ErrCodeValidationFailed)
	}
	if b.ISBN == "" {
		addError("isbn", "isbn is required", internal.ErrCodeInvalidISBN)
	}
	if b.TotalCopies < 1 {
		addError("total_copies", "total copies must be at least 1", internal.ErrCodeInvalidCopies)
	}
	if b.AvailableCopies < 0 {
		addError("available_copies", "available copies cannot be negative", internal.ErrCodeInvalidCopies)
	}
	if b.AvailableCopies > b.TotalCopies {
		addError("available_copies", "available copies cannot exceed total copies", internal.ErrCodeInvalidCopies)
	}

	if len(fieldErrors) > 0 {
		return internal.NewValidationFieldErrors(fieldErrors)
	}
	return nil
}
