package postgres

import (
	"strings"
	"time"

	"github.com/frahmantamala/library-management/internal/book"
	"gorm.io/gorm"
)

// BookRepository implements the book.Repository interface using GORM
type BookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) book.Repository {
	return &BookRepository{db: db}
}

func (r *BookRepository) Create(b *book.Book) error {
	if err := r.db.Create(b).Error; err != nil {
		if isUniqueViolation(err) {
			return book.ErrDuplicateISBN
		}
		return err
	}
	return nil
}

func (r *BookRepository) GetByID(id int64) (*book.Book, error) {
	var b book.Book
	err := r.db.Where("id = ?", id).First(&b).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// detailRow is the flat join row scanned before assembling a Detail.
type detailRow struct {
	book.Book
	CreatorName  *string
	CreatorEmail *string
}

func (r *BookRepository) GetDetail(id int64) (*book.Detail, error) {
	var row detailRow
	err := r.db.Table("books").
		Select("books.*, users.name AS creator_name, users.email AS creator_email").
		Joins("LEFT JOIN users ON users.id = books.created_by").
		Where("books.id = ?", id).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return assembleDetail(row), nil
}

func (r *BookRepository) List(q book.ListQuery) ([]*book.Detail, error) {
	tx := r.db.Table("books").
		Select("books.*, users.name AS creator_name, users.email AS creator_email").
		Joins("LEFT JOIN users ON users.id = books.created_by")

	if !q.ShowInactive {
		tx = tx.Where("books.is_active = ?", true)
	}
	if q.Genre != "" {
		tx = tx.Where("books.genre = ?", q.Genre)
	}
	if q.Author != "" {
		tx = tx.Where(`LOWER(books.author) LIKE ? ESCAPE '\'`, substring(q.Author))
	}
	if q.Publisher != "" {
		tx = tx.Where(`LOWER(books.publisher) LIKE ? ESCAPE '\'`, substring(q.Publisher))
	}
	if q.Title != "" {
		tx = tx.Where(`LOWER(books.title) LIKE ? ESCAPE '\'`, substring(q.Title))
	}
	if q.AvailableOnly {
		tx = tx.Where("books.available_copies > 0")
	}
	if q.PublishedBefore != nil {
		tx = tx.Where("books.published_date <= ?", *q.PublishedBefore)
	}
	if q.PublishedAfter != nil {
		tx = tx.Where("books.published_date >= ?", *q.PublishedAfter)
	}

	var rows []detailRow
	if err := tx.Order("books.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	details := make([]*book.Detail, len(rows))
	for i, row := range rows {
		details[i] = assembleDetail(row)
	}
	return details, nil
}

func (r *BookRepository) Update(b *book.Book) error {
	b.UpdatedAt = time.Now()
	if err := r.db.Save(b).Error; err != nil {
		if isUniqueViolation(err) {
			return book.ErrDuplicateISBN
		}
		return err
	}
	return nil
}

func (r *BookRepository) Deactivate(id int64) error {
	return r.db.Model(&book.Book{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

func assembleDetail(row detailRow) *book.Detail {
	d := &book.Detail{Book: row.Book}
	if row.CreatorName != nil || row.CreatorEmail != nil {
		d.Creator = &book.CreatorInfo{}
		if row.CreatorName != nil {
			d.Creator.Name = *row.CreatorName
		}
		if row.CreatorEmail != nil {
			d.Creator.Email = *row.CreatorEmail
		}
	}
	return d
}

// likeEscaper neutralizes LIKE metacharacters in user-supplied filters.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// substring builds a case-insensitive LIKE pattern that works on both
// postgres and the sqlite test database. The input is escaped so a search
// for "100%" matches the literal text, not everything starting with 100.
func substring(v string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
