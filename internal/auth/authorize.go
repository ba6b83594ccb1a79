package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/go-chi/chi"
)

// Authorizer builds the capability-check middleware used by the router. All
// protected mutations go through a single check parameterized by the required
// capability instead of per-flag handlers.
type Authorizer struct {
	logger *slog.Logger
}

func NewAuthorizer(logger *slog.Logger) *Authorizer {
	return &Authorizer{logger: logger}
}

// RequireCapability rejects with 403 unless the authenticated user holds the
// named capability.
func (a *Authorizer) RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				writeForbidden(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !user.HasCapability(capability) {
				a.logger.Warn("access denied: missing capability",
					"user_id", user.ID,
					"required_capability", capability,
					"user_capabilities", user.Capabilities)
				writeForbidden(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrCapability allows the request when the {param} URL segment is
// the caller's own id, otherwise falls back to the capability check.
func (a *Authorizer) RequireSelfOrCapability(param, capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				writeForbidden(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if target, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64); err == nil && target == user.ID {
				next.ServeHTTP(w, r)
				return
			}

			if !user.HasCapability(capability) {
				a.logger.Warn("access denied: not self and missing capability",
					"user_id", user.ID,
					"required_capability", capability)
				writeForbidden(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(transport.Envelope{Success: false, Message: message})
}
