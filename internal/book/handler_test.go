package book

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Book Handler", func() {
	var (
		mockRepo *mockBookRepository
		handler  *Handler
		router   *chi.Mux

		member    *auth.User
		librarian *auth.User
	)

	// injects an already-authenticated user ahead of the capability checks
	withUser := func(u *auth.User) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), u)))
			})
		}
	}

	decodeEnvelope := func(w *httptest.ResponseRecorder) transport.Envelope {
		var env transport.Envelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		return env
	}

	newRouter := func(u *auth.User) *chi.Mux {
		authorizer := auth.NewAuthorizer(slog.Default())
		r := chi.NewRouter()
		r.Get("/books", handler.ListBooks)
		r.Get("/books/{id}", handler.GetBook)
		r.Group(func(pr chi.Router) {
			pr.Use(withUser(u))
			pr.With(authorizer.RequireCapability(auth.CapCreateBooks)).Post("/books", handler.CreateBook)
			pr.With(authorizer.RequireCapability(auth.CapDeleteBooks)).Delete("/books/{id}", handler.DeleteBook)
		})
		return r
	}

	createPayload := func() *bytes.Buffer {
		body, err := json.Marshal(validCreateDTO())
		Expect(err).NotTo(HaveOccurred())
		return bytes.NewBuffer(body)
	}

	BeforeEach(func() {
		mockRepo = newMockBookRepository()
		service := NewService(mockRepo, slog.Default())
		handler = NewHandler(service)

		member = &auth.User{ID: 1, Name: "Member", Email: "member@example.com", IsActive: true}
		librarian = &auth.User{ID: 2, Name: "Librarian", Email: "librarian@example.com", IsActive: true,
			Capabilities: []string{auth.CapCreateBooks, auth.CapDeleteBooks}}
	})

	Describe("POST /books", func() {
		It("should reject a user without the create capability", func() {
			router = newRouter(member)

			req := httptest.NewRequest(http.MethodPost, "/books", createPayload())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			env := decodeEnvelope(w)
			Expect(env.Success).To(BeFalse())
			Expect(env.Message).To(Equal("insufficient permissions"))
			Expect(mockRepo.books).To(BeEmpty())
		})

		It("should accept the same request once the capability is granted", func() {
			member.Capabilities = append(member.Capabilities, auth.CapCreateBooks)
			router = newRouter(member)

			req := httptest.NewRequest(http.MethodPost, "/books", createPayload())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			env := decodeEnvelope(w)
			Expect(env.Success).To(BeTrue())

			data, ok := env.Data.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(data["title"]).To(Equal("The Left Hand of Darkness"))
			Expect(data["created_by"]).To(BeNumerically("==", 1))
		})

		It("should record the authenticated user as creator", func() {
			router = newRouter(librarian)

			req := httptest.NewRequest(http.MethodPost, "/books", createPayload())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			stored, err := mockRepo.GetByID(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.CreatedBy).To(Equal(int64(2)))
		})

		It("should surface a duplicate ISBN as a 400 envelope", func() {
			router = newRouter(librarian)

			first := httptest.NewRequest(http.MethodPost, "/books", createPayload())
			router.ServeHTTP(httptest.NewRecorder(), first)

			req := httptest.NewRequest(http.MethodPost, "/books", createPayload())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			env := decodeEnvelope(w)
			Expect(env.Success).To(BeFalse())
			Expect(env.Message).To(Equal("a book with this ISBN already exists"))
		})
	})

	Describe("GET /books", func() {
		It("should answer publicly with a counted list envelope", func() {
			service := NewService(mockRepo, slog.Default())
			_, err := service.Create(validCreateDTO(), 1)
			Expect(err).NotTo(HaveOccurred())
			router = newRouter(member)

			req := httptest.NewRequest(http.MethodGet, "/books", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			env := decodeEnvelope(w)
			Expect(env.Success).To(BeTrue())
			Expect(env.Count).NotTo(BeNil())
			Expect(*env.Count).To(Equal(1))
		})

		It("should reject a malformed date filter", func() {
			router = newRouter(member)

			req := httptest.NewRequest(http.MethodGet, "/books?publishedBefore=yesterday", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeEnvelope(w).Success).To(BeFalse())
		})
	})

	Describe("GET /books/{id}", func() {
		It("should return a 404 envelope for unknown books", func() {
			router = newRouter(member)

			req := httptest.NewRequest(http.MethodGet, "/books/42", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			env := decodeEnvelope(w)
			Expect(env.Success).To(BeFalse())
			Expect(env.Message).To(Equal("book not found"))
		})
	})

	Describe("DELETE /books/{id}", func() {
		It("should soft-delete behind the delete capability", func() {
			service := NewService(mockRepo, slog.Default())
			created, err := service.Create(validCreateDTO(), 2)
			Expect(err).NotTo(HaveOccurred())
			router = newRouter(librarian)

			req := httptest.NewRequest(http.MethodDelete, "/books/1", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decodeEnvelope(w).Message).To(Equal("book deleted"))

			stored, err := mockRepo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
		})

		It("should reject the delete for a user without the capability", func() {
			service := NewService(mockRepo, slog.Default())
			_, err := service.Create(validCreateDTO(), 2)
			Expect(err).NotTo(HaveOccurred())
			router = newRouter(member)

			req := httptest.NewRequest(http.MethodDelete, "/books/1", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			stored, err := mockRepo.GetByID(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeTrue())
		})
	})
})
