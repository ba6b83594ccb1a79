package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func decodeEnvelope(w *httptest.ResponseRecorder) transport.Envelope {
	var env transport.Envelope
	err := json.NewDecoder(w.Body).Decode(&env)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	return env
}

// withUser injects an already-authenticated user, standing in for the token
// middleware when only the capability checks are under test.
func withUser(u *User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), u)))
		})
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = ginkgo.Describe("AuthMiddleware", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
		handler  *Handler
		next     http.Handler
		seenUser *User
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen := NewJWTTokenGenerator("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, slog.Default())
		handler = NewHandler(service)

		seenUser = nil
		next = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenUser, _ = UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	})

	memberToken := func() string {
		tokens, err := service.Authenticate(LoginDTO{Email: "member@example.com", Password: "correct_password"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return tokens.AccessToken
	}

	ginkgo.It("should reject a request without a token", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()

		next.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		env := decodeEnvelope(w)
		gomega.Expect(env.Success).To(gomega.BeFalse())
		gomega.Expect(env.Message).To(gomega.Equal("missing authorization token"))
	})

	ginkgo.It("should reject a malformed token", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()

		next.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(decodeEnvelope(w).Message).To(gomega.Equal("invalid or expired token"))
	})

	ginkgo.It("should attach the capability-bearing user on success", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+memberToken())
		w := httptest.NewRecorder()

		next.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(seenUser).ToNot(gomega.BeNil())
		gomega.Expect(seenUser.ID).To(gomega.Equal(int64(1)))
		gomega.Expect(seenUser.Email).To(gomega.Equal("member@example.com"))
	})

	ginkgo.It("should reject a deactivated user with its distinct message", func() {
		token := memberToken()
		mockRepo.usersByID[1].IsActive = false

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		next.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(decodeEnvelope(w).Message).To(gomega.Equal("user account has been deactivated"))
		gomega.Expect(seenUser).To(gomega.BeNil())
	})

	ginkgo.It("should reject a token for a user that no longer exists", func() {
		token := memberToken()
		delete(mockRepo.usersByID, 1)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		next.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(decodeEnvelope(w).Message).To(gomega.Equal("user not found"))
	})
})

var _ = ginkgo.Describe("Authorizer", func() {
	var authorizer *Authorizer

	ginkgo.BeforeEach(func() {
		authorizer = NewAuthorizer(slog.Default())
	})

	ginkgo.Describe("RequireCapability", func() {
		ginkgo.It("should reject an unauthenticated request", func() {
			router := chi.NewRouter()
			router.With(authorizer.RequireCapability(CapCreateBooks)).Post("/books", okHandler)

			req := httptest.NewRequest(http.MethodPost, "/books", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should reject a user missing the capability", func() {
			member := &User{ID: 1, Email: "member@example.com", IsActive: true}

			router := chi.NewRouter()
			router.Use(withUser(member))
			router.With(authorizer.RequireCapability(CapCreateBooks)).Post("/books", okHandler)

			req := httptest.NewRequest(http.MethodPost, "/books", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			env := decodeEnvelope(w)
			gomega.Expect(env.Success).To(gomega.BeFalse())
			gomega.Expect(env.Message).To(gomega.Equal("insufficient permissions"))
		})

		ginkgo.It("should pass a user holding the capability", func() {
			librarian := &User{ID: 2, Email: "librarian@example.com", IsActive: true, Capabilities: []string{CapCreateBooks}}

			router := chi.NewRouter()
			router.Use(withUser(librarian))
			router.With(authorizer.RequireCapability(CapCreateBooks)).Post("/books", okHandler)

			req := httptest.NewRequest(http.MethodPost, "/books", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		})
	})

	ginkgo.Describe("RequireSelfOrCapability", func() {
		newRouter := func(u *User) *chi.Mux {
			router := chi.NewRouter()
			router.Use(withUser(u))
			router.With(authorizer.RequireSelfOrCapability("id", CapUpdateUsers)).Put("/users/{id}", okHandler)
			return router
		}

		ginkgo.It("should let a user act on their own record without the capability", func() {
			member := &User{ID: 7, Email: "member@example.com", IsActive: true}

			req := httptest.NewRequest(http.MethodPut, "/users/7", nil)
			w := httptest.NewRecorder()
			newRouter(member).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should reject a user acting on someone else without the capability", func() {
			member := &User{ID: 7, Email: "member@example.com", IsActive: true}

			req := httptest.NewRequest(http.MethodPut, "/users/8", nil)
			w := httptest.NewRecorder()
			newRouter(member).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeEnvelope(w).Message).To(gomega.Equal("insufficient permissions"))
		})

		ginkgo.It("should let a capability holder act on anyone", func() {
			admin := &User{ID: 2, Email: "admin@example.com", IsActive: true, Capabilities: []string{CapUpdateUsers}}

			req := httptest.NewRequest(http.MethodPut, "/users/8", nil)
			w := httptest.NewRecorder()
			newRouter(admin).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		})
	})
})
