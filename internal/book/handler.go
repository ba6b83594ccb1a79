package book

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/frahmantamala/library-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(dto CreateBookDTO, creatorID int64) (*Book, error)
	GetByID(id int64, showInactive bool) (*Detail, error)
	List(q ListQuery) ([]*Detail, error)
	Update(id int64, dto UpdateBookDTO) (*Book, error)
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

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateBookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.Create(dto, user.ID)
	if err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			h.WriteError(w, http.StatusBadRequest, "a book with this ISBN already exists")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteData(w, http.StatusCreated, b)
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	showInactive := r.URL.Query().Get("showInactive") == "true"

	detail, err := h.Service.GetByID(id, showInactive)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			h.WriteError(w, http.StatusNotFound, "book not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteData(w, http.StatusOK, detail)
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	books, err := h.Service.List(q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, http.StatusOK, books, len(books))
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	var dto UpdateBookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.Update(id, dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookNotFound):
			h.WriteError(w, http.StatusNotFound, "book not found")
		case errors.Is(err, ErrDuplicateISBN):
			h.WriteError(w, http.StatusBadRequest, "a book with this ISBN already exists")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteData(w, http.StatusOK, b)
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	if err := h.Service.SoftDelete(id); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			h.WriteError(w, http.StatusNotFound, "book not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "book deleted")
}

func parseListQuery(r *http.Request) (ListQuery, error) {
	qs := r.URL.Query()

	q := ListQuery{
		Genre:         qs.Get("genre"),
		Author:        qs.Get("author"),
		Publisher:     qs.Get("publisher"),
		Title:         qs.Get("title"),
		AvailableOnly: qs.Get("available") == "true",
		ShowInactive:  qs.Get("showInactive") == "true",
	}

	if v := qs.Get("publishedBefore"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListQuery{}, errors.New("publishedBefore must be a date in YYYY-MM-DD format")
		}
		q.PublishedBefore = &t
	}
	if v := qs.Get("publishedAfter"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListQuery{}, errors.New("publishedAfter must be a date in YYYY-MM-DD format")
		}
		q.PublishedAfter = &t
	}

	return q, nil
}
