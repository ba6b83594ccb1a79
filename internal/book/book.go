package book

import (
	"errors"
	"time"
)

// Book is the catalog record. available_copies is only ever mutated through
// the reservation workflow.
type Book struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"not null"`
	Author          string    `json:"author" gorm:"not null"`
	Genre           string    `json:"genre" gorm:"not null"`
	PublishedDate   time.Time `json:"published_date" gorm:"column:published_date"`
	Publisher       string    `json:"publisher" gorm:"not null"`
	ISBN            string    `json:"isbn" gorm:"column:isbn;uniqueIndex;not null"`
	Description     string    `json:"description"`
	TotalCopies     int       `json:"total_copies" gorm:"column:total_copies"`
	AvailableCopies int       `json:"available_copies" gorm:"column:available_copies"`
	IsActive        bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedBy       int64     `json:"created_by" gorm:"column:created_by"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (b *Book) IsAvailable() bool {
	return b.IsActive && b.AvailableCopies > 0
}

// CreatorInfo is the display subset of the owning user.
type CreatorInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Detail is a book with its creator resolved.
type Detail struct {
	Book
	Creator *CreatorInfo `json:"creator,omitempty"`
}

// ValidGenres is the fixed category set a book must belong to.
var ValidGenres = []string{
	"Fiction", "Non-fiction", "Fantasy", "Science Fiction",
	"Mystery", "Thriller", "Romance", "History",
	"Biography", "Self-help", "Children", "Young Adult", "Other",
}

func IsValidGenre(genre string) bool {
	for _, g := range ValidGenres {
		if g == genre {
			return true
		}
	}
	return false
}

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")
)
