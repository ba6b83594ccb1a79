package book

import (
	"log/slog"
	"time"
)

// Repository defines the data access methods for books.
type Repository interface {
	Create(b *Book) error
	GetByID(id int64) (*Book, error)
	GetDetail(id int64) (*Detail, error)
	List(q ListQuery) ([]*Detail, error)
	Update(b *Book) error
	Deactivate(id int64) error
}

// Service handles catalog business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and persists a new book owned by creatorID. Defaults:
// one total copy, all copies available.
func (s *Service) Create(dto CreateBookDTO, creatorID int64) (*Book, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("book validation failed", "error", err.GetDetailedMessage(), "creator_id", creatorID)
		return nil, err
	}

	now := time.Now()
	b := &Book{
		Title:         dto.Title,
		Author:        dto.Author,
		Genre:         dto.Genre,
		PublishedDate: dto.PublishedDate,
		Publisher:     dto.Publisher,
		ISBN:          dto.ISBN,
		Description:   dto.Description,
		TotalCopies:   1,
		IsActive:      true,
		CreatedBy:     creatorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if dto.TotalCopies != nil {
		b.TotalCopies = *dto.TotalCopies
	}
	b.AvailableCopies = b.TotalCopies
	if dto.AvailableCopies != nil {
		b.AvailableCopies = *dto.AvailableCopies
	}

	if err := s.repo.Create(b); err != nil {
		s.logger.Error("failed to create book", "error", err, "isbn", b.ISBN)
		return nil, err
	}

	s.logger.Info("book created", "book_id", b.ID, "isbn", b.ISBN, "creator_id", creatorID)
	return b, nil
}

// GetByID resolves the creator display subset. Inactive books are reported
// as not found unless showInactive is set.
func (s *Service) GetByID(id int64, showInactive bool) (*Detail, error) {
	detail, err := s.repo.GetDetail(id)
	if err != nil {
		return nil, err
	}

	if !detail.IsActive && !showInactive {
		return nil, ErrBookNotFound
	}

	return detail, nil
}

func (s *Service) List(q ListQuery) ([]*Detail, error) {
	books, err := s.repo.List(q)
	if err != nil {
		s.logger.Error("failed to list books", "error", err)
		return nil, err
	}
	return books, nil
}

// Update merges the non-nil DTO fields into the stored record and
// revalidates the whole document before persisting.
func (s *Service) Update(id int64, dto UpdateBookDTO) (*Book, error) {
	b, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		b.Title = *dto.Title
	}
	if dto.Author != nil {
		b.Author = *dto.Author
	}
	if dto.Genre != nil {
		b.Genre = *dto.Genre
	}
	if dto.PublishedDate != nil {
		b.PublishedDate = *dto.PublishedDate
	}
	if dto.Publisher != nil {
		b.Publisher = *dto.Publisher
	}
	if dto.ISBN != nil {
		b.ISBN = *dto.ISBN
	}
	if dto.Description != nil {
		b.Description = *dto.Description
	}
	if dto.TotalCopies != nil {
		b.TotalCopies = *dto.TotalCopies
	}
	if dto.AvailableCopies != nil {
		b.AvailableCopies = *dto.AvailableCopies
	}

	if vErr := validateBook(b); vErr != nil {
		s.logger.Warn("book update validation failed", "book_id", id, "error", vErr.GetDetailedMessage())
		return nil, vErr
	}

	b.UpdatedAt = time.Now()
	if err := s.repo.Update(b); err != nil {
		s.logger.Error("failed to update book", "error", err, "book_id", id)
		return nil, err
	}

	s.logger.Info("book updated", "book_id", id)
	return b, nil
}

// SoftDelete flips the active flag. Repeating the call is not an error.
func (s *Service) SoftDelete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate book", "error", err, "book_id", id)
		return err
	}

	s.logger.Info("book deactivated", "book_id", id)
	return nil
}
