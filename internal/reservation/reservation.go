package reservation

import (
	"errors"
	"time"
)

// Reservation statuses. A reservation is created active and moves to
// returned when closed; overdue is declared in the schema but no code path
// assigns it.
const (
	StatusActive   = "active"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
)

// Reservation links a user to a book copy. At most one active reservation
// may exist per (user, book) pair, enforced by a partial unique index.
type Reservation struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	UserID          int64     `json:"user_id" gorm:"column:user_id;not null"`
	BookID          int64     `json:"book_id" gorm:"column:book_id;not null"`
	ReservationDate time.Time `json:"reservation_date" gorm:"column:reservation_date"`
	ReturnDate      time.Time `json:"return_date" gorm:"column:return_date;not null"`
	Status          string    `json:"status" gorm:"column:status;default:active"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// BookInfo is the display subset of the reserved book.
type BookInfo struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// UserInfo is the display subset of the reserving user.
type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Detail is a reservation enriched with its book and user subsets.
type Detail struct {
	Reservation
	Book BookInfo `json:"book"`
	User UserInfo `json:"user"`
}

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrReservationNotActive = errors.New("reservation is no longer active")
	ErrBookInactive         = errors.New("book is not available for reservation")
	ErrNoCopiesAvailable    = errors.New("no copies available for this book")
	ErrDuplicateReservation = errors.New("an active reservation for this book already exists")
	ErrNotOwner             = errors.New("not allowed to modify this reservation")
)
