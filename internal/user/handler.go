package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/frahmantamala/library-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(showInactive bool) ([]*Profile, error)
	GetByID(id int64) (*Profile, error)
	Update(targetID int64, dto UpdateUserDTO, canManageCapabilities bool) (*Profile, error)
	SoftDelete(id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	showInactive := r.URL.Query().Get("showInactive") == "true"

	profiles, err := h.Service.List(showInactive)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, http.StatusOK, profiles, len(profiles))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.Service.Update(id, dto, caller.HasCapability(auth.CapUpdateUsers))
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			h.WriteError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrUserInactive):
			h.WriteError(w, http.StatusBadRequest, "user is deactivated")
		case errors.Is(err, ErrDuplicateEmail):
			h.WriteError(w, http.StatusBadRequest, "email is already registered")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteData(w, http.StatusOK, profile)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.Service.SoftDelete(id); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			h.WriteError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrUserAlreadyInactive):
			h.WriteError(w, http.StatusBadRequest, "user is already inactive")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteMessage(w, http.StatusOK, "user deleted")
}
