package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/book"
	"github.com/frahmantamala/library-management/internal/reservation"
	"github.com/frahmantamala/library-management/internal/transport/middleware"
	"github.com/frahmantamala/library-management/internal/transport/swagger"
	"github.com/frahmantamala/library-management/internal/user"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, bookHandler *book.Handler, reservationHandler *reservation.Handler, userHandler *user.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	authorizer := auth.NewAuthorizer(logger)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", authHandler.Register)
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)

			sr.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)
				pr.Get("/me", authHandler.Me)
			})
		})

		// Public book reads; inactive records need showInactive=true
		r.Get("/books", bookHandler.ListBooks)
		r.Get("/books/{id}", bookHandler.GetBook)

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// Book mutations, each behind its own capability
			pr.Route("/books", func(br chi.Router) {
				br.Group(func(mr chi.Router) {
					mr.Use(authorizer.RequireCapability(auth.CapCreateBooks))
					mr.Post("/", bookHandler.CreateBook) // POST /books
				})
				br.Group(func(mr chi.Router) {
					mr.Use(authorizer.RequireCapability(auth.CapUpdateBooks))
					mr.Put("/{id}", bookHandler.UpdateBook) // PUT /books/:id
				})
				br.Group(func(mr chi.Router) {
					mr.Use(authorizer.RequireCapability(auth.CapDeleteBooks))
					mr.Delete("/{id}", bookHandler.DeleteBook) // DELETE /books/:id
				})
			})

			// Reservation routes; ownership checks live in the service
			pr.Route("/reservations", func(rr chi.Router) {
				rr.Post("/", reservationHandler.CreateReservation)       // POST /reservations
				rr.Get("/", reservationHandler.GetMyReservations)        // GET /reservations
				rr.Put("/{id}", reservationHandler.ReturnReservation)    // PUT /reservations/:id
				rr.Get("/book/{bookId}", reservationHandler.GetBookReservations) // GET /reservations/book/:bookId
			})

			// User administration
			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", userHandler.ListUsers) // GET /users

				ur.Group(func(mr chi.Router) {
					mr.Use(authorizer.RequireSelfOrCapability("id", auth.CapUpdateUsers))
					mr.Put("/{id}", userHandler.UpdateUser) // PUT /users/:id
				})
				ur.Group(func(mr chi.Router) {
					mr.Use(authorizer.RequireSelfOrCapability("id", auth.CapDeleteUsers))
					mr.Delete("/{id}", userHandler.DeleteUser) // DELETE /users/:id
				})
			})
		})
	})
}
