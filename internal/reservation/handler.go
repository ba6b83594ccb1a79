package reservation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/book"
	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/frahmantamala/library-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(userID int64, dto CreateReservationDTO) (*Detail, error)
	Return(reservationID, userID int64, canManage bool) (*Detail, error)
	ListMine(userID int64) ([]*Detail, error)
	ListForBook(bookID int64) ([]*Detail, error)
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

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateReservationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.Service.Create(user.ID, dto)
	if err != nil {
		switch {
		case errors.Is(err, book.ErrBookNotFound):
			h.WriteError(w, http.StatusNotFound, "book not found")
		case errors.Is(err, ErrBookInactive):
			h.WriteError(w, http.StatusBadRequest, "this book is not available for reservation")
		case errors.Is(err, ErrNoCopiesAvailable):
			h.WriteError(w, http.StatusBadRequest, "no copies available for this book")
		case errors.Is(err, ErrDuplicateReservation):
			h.WriteError(w, http.StatusBadRequest, "you already have an active reservation for this book")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteData(w, http.StatusCreated, detail)
}

func (h *Handler) ReturnReservation(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid reservation ID")
		return
	}

	detail, err := h.Service.Return(id, user.ID, user.HasCapability(auth.CapUpdateBooks))
	if err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			h.WriteError(w, http.StatusNotFound, "reservation not found")
		case errors.Is(err, ErrNotOwner):
			h.WriteError(w, http.StatusForbidden, "not allowed to modify this reservation")
		case errors.Is(err, ErrReservationNotActive):
			h.WriteError(w, http.StatusBadRequest, "reservation is no longer active")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteData(w, http.StatusOK, detail)
}

func (h *Handler) GetMyReservations(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reservations, err := h.Service.ListMine(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, http.StatusOK, reservations, len(reservations))
}

func (h *Handler) GetBookReservations(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	reservations, err := h.Service.ListForBook(bookID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, http.StatusOK, reservations, len(reservations))
}
