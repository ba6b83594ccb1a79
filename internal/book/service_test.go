package book

import (
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/library-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBook(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Book Module Suite")
}

type mockBookRepository struct {
	books  map[int64]*Book
	nextID int64
}

func newMockBookRepository() *mockBookRepository {
	return &mockBookRepository{books: map[int64]*Book{}, nextID: 1}
}

func (m *mockBookRepository) Create(b *Book) error {
	for _, existing := range m.books {
		if existing.ISBN == b.ISBN {
			return ErrDuplicateISBN
		}
	}
	b.ID = m.nextID
	m.nextID++
	copied := *b
	m.books[b.ID] = &copied
	return nil
}

func (m *mockBookRepository) GetByID(id int64) (*Book, error) {
	if b, ok := m.books[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, ErrBookNotFound
}

func (m *mockBookRepository) GetDetail(id int64) (*Detail, error) {
	b, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &Detail{Book: *b}, nil
}

func (m *mockBookRepository) List(q ListQuery) ([]*Detail, error) {
	var details []*Detail
	for _, b := range m.books {
		if !q.ShowInactive && !b.IsActive {
			continue
		}
		details = append(details, &Detail{Book: *b})
	}
	return details, nil
}

func (m *mockBookRepository) Update(b *Book) error {
	if _, ok := m.books[b.ID]; !ok {
		return ErrBookNotFound
	}
	copied := *b
	m.books[b.ID] = &copied
	return nil
}

func (m *mockBookRepository) Deactivate(id int64) error {
	if b, ok := m.books[id]; ok {
		b.IsActive = false
		return nil
	}
	return ErrBookNotFound
}

func validCreateDTO() CreateBookDTO {
	return CreateBookDTO{
		Title:         "The Left Hand of Darkness",
		Author:        "Ursula K. Le Guin",
		Genre:         "Science Fiction",
		PublishedDate: time.Date(1969, 3, 1, 0, 0, 0, 0, time.UTC),
		Publisher:     "Ace Books",
		ISBN:          "9780441478125",
	}
}

var _ = Describe("Book model", func() {
	It("should only report active books with copies as available", func() {
		Expect((&Book{IsActive: true, AvailableCopies: 1}).IsAvailable()).To(BeTrue())
		Expect((&Book{IsActive: true, AvailableCopies: 0}).IsAvailable()).To(BeFalse())
		Expect((&Book{IsActive: false, AvailableCopies: 1}).IsAvailable()).To(BeFalse())
	})
})

var _ = Describe("BookService", func() {
	var (
		service  *Service
		mockRepo *mockBookRepository
	)

	BeforeEach(func() {
		mockRepo = newMockBookRepository()
		service = NewService(mockRepo, slog.Default())
	})

	Describe("Create", func() {
		It("should default to one copy, all available", func() {
			b, err := service.Create(validCreateDTO(), 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(b.TotalCopies).To(Equal(1))
			Expect(b.AvailableCopies).To(Equal(1))
			Expect(b.IsActive).To(BeTrue())
			Expect(b.CreatedBy).To(Equal(int64(1)))
		})

		It("should default available copies to total copies", func() {
			dto := validCreateDTO()
			total := 5
			dto.TotalCopies = &total

			b, err := service.Create(dto, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(b.AvailableCopies).To(Equal(5))
		})

		It("should reject an unknown genre", func() {
			dto := validCreateDTO()
			dto.Genre = "Cookbook"

			_, err := service.Create(dto, 1)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("should reject available copies above total", func() {
			dto := validCreateDTO()
			total, available := 2, 3
			dto.TotalCopies = &total
			dto.AvailableCopies = &available

			_, err := service.Create(dto, 1)

			Expect(err).To(HaveOccurred())
		})

		It("should collect every field error at once", func() {
			_, err := service.Create(CreateBookDTO{}, 1)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			fieldErrors, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(len(fieldErrors.Errors)).To(BeNumerically(">=", 5))
		})

		It("should reject a duplicate ISBN", func() {
			_, err := service.Create(validCreateDTO(), 1)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(validCreateDTO(), 1)
			Expect(err).To(MatchError(ErrDuplicateISBN))
		})
	})

	Describe("GetByID", func() {
		It("should hide inactive books by default", func() {
			b, err := service.Create(validCreateDTO(), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(b.ID)).To(Succeed())

			_, err = service.GetByID(b.ID, false)
			Expect(err).To(MatchError(ErrBookNotFound))
		})

		It("should show inactive books when asked", func() {
			b, err := service.Create(validCreateDTO(), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(b.ID)).To(Succeed())

			detail, err := service.GetByID(b.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.IsActive).To(BeFalse())
		})

		It("should report unknown ids as not found", func() {
			_, err := service.GetByID(999, false)
			Expect(err).To(MatchError(ErrBookNotFound))
		})
	})

	Describe("Update", func() {
		It("should merge only the provided fields", func() {
			b, err := service.Create(validCreateDTO(), 1)
			Expect(err).NotTo(HaveOccurred())

			newTitle := "The Dispossessed"
			updated, err := service.Update(b.ID, UpdateBookDTO{Title: &newTitle})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("The Dispossessed"))
			Expect(updated.Author).To(Equal("Ursula K. Le Guin"))
			Expect(updated.ISBN).To(Equal("9780441478125"))
		})

		It("should revalidate the merged record", func() {
			b, err := service.Create(validCreateDTO(), 1)
			Expect(err).NotTo(HaveOccurred())

			empty := ""
			_, err = service.Update(b.ID, UpdateBookDTO{Title: &empty})

			Expect(err).To(HaveOccurred())
		})

		It("should reject shrinking total copies below available", func() {
			dto := validCreateDTO()
			total := 3
			dto.TotalCopies = &total
			b, err := service.Create(dto, 1)
			Expect(err).NotTo(HaveOccurred())

			smaller := 2
			_, err = service.Update(b.ID, UpdateBookDTO{TotalCopies: &smaller})

			Expect(err).To(HaveOccurred())
		})

		It("should report unknown ids as not found", func() {
			title := "Ghost"
			_, err := service.Update(404, UpdateBookDTO{Title: &title})
			Expect(err).To(MatchError(ErrBookNotFound))
		})
	})

	Describe("SoftDelete", func() {
		It("should flip the active flag", func() {
			b, err := service.Create(validCreateDTO(), 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.SoftDelete(b.ID)).To(Succeed())

			stored, err := mockRepo.GetByID(b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
		})

		It("should tolerate repeated deletion", func() {
			b, err := service.Create(validCreateDTO(), 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.SoftDelete(b.ID)).To(Succeed())
			Expect(service.SoftDelete(b.ID)).To(Succeed())
		})
	})
})
