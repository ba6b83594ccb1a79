package reservation

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/library-management/internal/book"
)

// Repository defines the data access methods for reservations. The create
// and return mutations pair the reservation write with a guarded counter
// update on the book inside one transaction.
type Repository interface {
	GetBook(bookID int64) (*book.Book, error)
	HasActiveReservation(userID, bookID int64) (bool, error)
	CreateWithDecrement(res *Reservation) error
	GetByID(id int64) (*Reservation, error)
	MarkReturnedWithIncrement(res *Reservation) error
	GetDetail(id int64) (*Detail, error)
	ListByUser(userID int64) ([]*Detail, error)
	ListByBook(bookID int64) ([]*Detail, error)
}

// Service handles the reservation lifecycle.
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

// Create reserves a book for userID. Checks run in order so each rejection
// carries its own reason: book exists, book active, copies available, no
// duplicate active reservation. The availability and duplicate pre-checks
// are advisory; the transactional insert with its conditional decrement and
// the partial unique index are what hold under concurrent requests.
func (s *Service) Create(userID int64, dto CreateReservationDTO) (*Detail, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("reservation validation failed", "error", err.GetDetailedMessage(), "user_id", userID)
		return nil, err
	}

	b, err := s.repo.GetBook(dto.BookID)
	if err != nil {
		return nil, err
	}

	if !b.IsActive {
		return nil, ErrBookInactive
	}
	if b.AvailableCopies <= 0 {
		return nil, ErrNoCopiesAvailable
	}

	exists, err := s.repo.HasActiveReservation(userID, dto.BookID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReservation
	}

	now := time.Now()
	res := &Reservation{
		UserID:          userID,
		BookID:          dto.BookID,
		ReservationDate: now,
		ReturnDate:      dto.ReturnDate,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateWithDecrement(res); err != nil {
		s.logger.Warn("reservation create rejected", "error", err, "user_id", userID, "book_id", dto.BookID)
		return nil, err
	}

	s.logger.Info("reservation created",
		"reservation_id", res.ID,
		"user_id", userID,
		"book_id", dto.BookID,
		"return_date", dto.ReturnDate)

	return s.repo.GetDetail(res.ID)
}

// Return closes a reservation. Only the owner or a caller with the book
// update capability may close it, and only while it is active. The status
// flip and the guarded counter increment commit together, so the copy is
// handed back exactly once however many times the close is retried.
func (s *Service) Return(reservationID, userID int64, canManage bool) (*Detail, error) {
	res, err := s.repo.GetByID(reservationID)
	if err != nil {
		return nil, err
	}

	if res.UserID != userID && !canManage {
		s.logger.Warn("reservation return denied",
			"reservation_id", reservationID,
			"user_id", userID,
			"owner_id", res.UserID)
		return nil, ErrNotOwner
	}

	if !res.IsActive() {
		return nil, ErrReservationNotActive
	}

	if err := s.repo.MarkReturnedWithIncrement(res); err != nil {
		s.logger.Error("failed to return reservation", "error", err, "reservation_id", reservationID)
		return nil, err
	}

	s.logger.Info("reservation returned", "reservation_id", reservationID, "book_id", res.BookID)

	return s.repo.GetDetail(reservationID)
}

func (s *Service) ListMine(userID int64) ([]*Detail, error) {
	reservations, err := s.repo.ListByUser(userID)
	if err != nil {
		s.logger.Error("failed to list user reservations", "error", err, "user_id", userID)
		return nil, err
	}
	return reservations, nil
}

func (s *Service) ListForBook(bookID int64) ([]*Detail, error) {
	reservations, err := s.repo.ListByBook(bookID)
	if err != nil {
		s.logger.Error("failed to list book reservations", "error", err, "book_id", bookID)
		return nil, err
	}
	return reservations, nil
}
