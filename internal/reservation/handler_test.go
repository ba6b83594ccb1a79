package reservation

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reservation Handler", func() {
	var (
		mockRepo *mockReservationRepository
		handler  *Handler
		dueDate  time.Time
	)

	withUser := func(u *auth.User) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), u)))
			})
		}
	}

	newRouter := func(u *auth.User) *chi.Mux {
		r := chi.NewRouter()
		r.Group(func(pr chi.Router) {
			pr.Use(withUser(u))
			pr.Post("/reservations", handler.CreateReservation)
			pr.Put("/reservations/{id}", handler.ReturnReservation)
			pr.Get("/reservations", handler.GetMyReservations)
		})
		return r
	}

	decodeEnvelope := func(w *httptest.ResponseRecorder) transport.Envelope {
		var env transport.Envelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		return env
	}

	reservePayload := func(bookID int64) *bytes.Buffer {
		body, err := json.Marshal(CreateReservationDTO{BookID: bookID, ReturnDate: dueDate})
		Expect(err).NotTo(HaveOccurred())
		return bytes.NewBuffer(body)
	}

	BeforeEach(func() {
		mockRepo = newMockReservationRepository()
		service := NewService(mockRepo, slog.Default())
		handler = NewHandler(service)
		dueDate = time.Now().Add(14 * 24 * time.Hour)
	})

	Describe("POST /reservations", func() {
		It("should create a reservation and answer 201 with the enriched detail", func() {
			mockRepo.addBook(10, true, 1, 1)
			member := &auth.User{ID: 1, IsActive: true}

			req := httptest.NewRequest(http.MethodPost, "/reservations", reservePayload(10))
			w := httptest.NewRecorder()
			newRouter(member).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			env := decodeEnvelope(w)
			Expect(env.Success).To(BeTrue())

			data, ok := env.Data.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(data["status"]).To(Equal(StatusActive))
			Expect(data["book"]).To(HaveKeyWithValue("title", "Some Title"))
		})

		It("should answer 404 for an unknown book", func() {
			member := &auth.User{ID: 1, IsActive: true}

			req := httptest.NewRequest(http.MethodPost, "/reservations", reservePayload(99))
			w := httptest.NewRecorder()
			newRouter(member).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decodeEnvelope(w).Message).To(Equal("book not found"))
		})

		It("should answer 400 when no copies remain", func() {
			mockRepo.addBook(10, true, 0, 1)
			member := &auth.User{ID: 1, IsActive: true}

			req := httptest.NewRequest(http.MethodPost, "/reservations", reservePayload(10))
			w := httptest.NewRecorder()
			newRouter(member).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeEnvelope(w).Message).To(Equal("no copies available for this book"))
		})

		It("should answer 400 on a duplicate active reservation", func() {
			mockRepo.addBook(10, true, 2, 2)
			member := &auth.User{ID: 1, IsActive: true}
			router := newRouter(member)

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/reservations", reservePayload(10)))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reservations", reservePayload(10)))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeEnvelope(w).Message).To(Equal("you already have an active reservation for this book"))
		})
	})

	Describe("PUT /reservations/{id}", func() {
		BeforeEach(func() {
			mockRepo.addBook(10, true, 1, 1)
			service := NewService(mockRepo, slog.Default())
			_, err := service.Create(1, CreateReservationDTO{BookID: 10, ReturnDate: dueDate})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should answer 403 when another user without the manage capability returns it", func() {
			other := &auth.User{ID: 9, IsActive: true}

			req := httptest.NewRequest(http.MethodPut, "/reservations/1", nil)
			w := httptest.NewRecorder()
			newRouter(other).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decodeEnvelope(w).Message).To(Equal("not allowed to modify this reservation"))
		})

		It("should let a holder of the book update capability return it", func() {
			manager := &auth.User{ID: 9, IsActive: true, Capabilities: []string{auth.CapUpdateBooks}}

			req := httptest.NewRequest(http.MethodPut, "/reservations/1", nil)
			w := httptest.NewRecorder()
			newRouter(manager).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			env := decodeEnvelope(w)
			data, ok := env.Data.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(data["status"]).To(Equal(StatusReturned))
		})

		It("should answer 400 when the reservation is already closed", func() {
			owner := &auth.User{ID: 1, IsActive: true}
			router := newRouter(owner)

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/reservations/1", nil))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/reservations/1", nil))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeEnvelope(w).Message).To(Equal("reservation is no longer active"))
		})
	})

	Describe("GET /reservations", func() {
		It("should list only the caller's reservations with a count", func() {
			mockRepo.addBook(10, true, 5, 5)
			service := NewService(mockRepo, slog.Default())
			_, err := service.Create(1, CreateReservationDTO{BookID: 10, ReturnDate: dueDate})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(2, CreateReservationDTO{BookID: 10, ReturnDate: dueDate})
			Expect(err).NotTo(HaveOccurred())

			member := &auth.User{ID: 1, IsActive: true}
			req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
			w := httptest.NewRecorder()
			newRouter(member).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			env := decodeEnvelope(w)
			Expect(env.Count).NotTo(BeNil())
			Expect(*env.Count).To(Equal(1))
		})
	})
})
