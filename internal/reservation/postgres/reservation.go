package postgres

import (
	"strings"
	"time"

	"github.com/frahmantamala/library-management/internal/book"
	"github.com/frahmantamala/library-management/internal/reservation"
	"gorm.io/gorm"
)

// ReservationRepository implements the reservation.Repository interface
// using GORM
type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) GetBook(bookID int64) (*book.Book, error) {
	var b book.Book
	err := r.db.Where("id = ?", bookID).First(&b).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *ReservationRepository) HasActiveReservation(userID, bookID int64) (bool, error) {
	var count int64
	err := r.db.Model(&reservation.Reservation{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, reservation.StatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithDecrement inserts the reservation and takes one copy off the
// book in a single transaction. The decrement only fires while the book is
// active and has copies left; zero rows affected means another request won
// the last copy, and the whole transaction rolls back. The partial unique
// index on (user_id, book_id) for active rows rejects concurrent duplicates.
func (r *ReservationRepository) CreateWithDecrement(res *reservation.Reservation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(res).Error; err != nil {
			if isUniqueViolation(err) {
				return reservation.ErrDuplicateReservation
			}
			return err
		}

		result := tx.Model(&book.Book{}).
			Where("id = ? AND is_active = ? AND available_copies > 0", res.BookID, true).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return reservation.ErrNoCopiesAvailable
		}
		return nil
	})
}

func (r *ReservationRepository) GetByID(id int64) (*reservation.Reservation, error) {
	var res reservation.Reservation
	err := r.db.Where("id = ?", id).First(&res).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// MarkReturnedWithIncrement flips the reservation to returned and hands the
// copy back in a single transaction. The status update is conditioned on the
// row still being active, so a retried close finds zero rows and rolls back
// instead of incrementing twice. The increment itself is capped at
// total_copies to keep the counter sane even if the data drifted.
func (r *ReservationRepository) MarkReturnedWithIncrement(res *reservation.Reservation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&reservation.Reservation{}).
			Where("id = ? AND status = ?", res.ID, reservation.StatusActive).
			Updates(map[string]interface{}{
				"status":     reservation.StatusReturned,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return reservation.ErrReservationNotActive
		}

		if err := tx.Model(&book.Book{}).
			Where("id = ? AND available_copies < total_copies", res.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).Error; err != nil {
			return err
		}

		res.Status = reservation.StatusReturned
		return nil
	})
}

// detailRow is the flat join row scanned before assembling a Detail.
type detailRow struct {
	reservation.Reservation
	BookTitle  string
	BookAuthor string
	UserName   string
	UserEmail  string
}

func (r *ReservationRepository) GetDetail(id int64) (*reservation.Detail, error) {
	var row detailRow
	err := r.detailQuery().
		Where("reservations.id = ?", id).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, err
	}
	return assembleDetail(row), nil
}

func (r *ReservationRepository) ListByUser(userID int64) ([]*reservation.Detail, error) {
	var rows []detailRow
	err := r.detailQuery().
		Where("reservations.user_id = ?", userID).
		Order("reservations.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return assembleDetails(rows), nil
}

func (r *ReservationRepository) ListByBook(bookID int64) ([]*reservation.Detail, error) {
	var rows []detailRow
	err := r.detailQuery().
		Where("reservations.book_id = ?", bookID).
		Order("reservations.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return assembleDetails(rows), nil
}

func (r *ReservationRepository) detailQuery() *gorm.DB {
	return r.db.Table("reservations").
		Select("reservations.*, books.title AS book_title, books.author AS book_author, users.name AS user_name, users.email AS user_email").
		Joins("JOIN books ON books.id = reservations.book_id").
		Joins("JOIN users ON users.id = reservations.user_id")
}

func assembleDetail(row detailRow) *reservation.Detail {
	return &reservation.Detail{
		Reservation: row.Reservation,
		Book: reservation.BookInfo{
			Title:  row.BookTitle,
			Author: row.BookAuthor,
		},
		User: reservation.UserInfo{
			Name:  row.UserName,
			Email: row.UserEmail,
		},
	}
}

func assembleDetails(rows []detailRow) []*reservation.Detail {
	details := make([]*reservation.Detail, len(rows))
	for i, row := range rows {
		details[i] = assembleDetail(row)
	}
	return details
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
