package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/pkg/logger"
)

// Envelope is the uniform response body every endpoint returns.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

func (h *BaseHandler) writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteData writes a success envelope carrying a single record.
func (h *BaseHandler) WriteData(w http.ResponseWriter, status int, data interface{}) {
	h.writeEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteList writes a success envelope carrying a collection plus its count.
func (h *BaseHandler) WriteList(w http.ResponseWriter, status int, data interface{}, count int) {
	h.writeEnvelope(w, status, Envelope{Success: true, Data: data, Count: &count})
}

// WriteMessage writes a success envelope with only a message, for deletes.
func (h *BaseHandler) WriteMessage(w http.ResponseWriter, status int, message string) {
	h.writeEnvelope(w, status, Envelope{Success: true, Message: message})
}

// WriteError writes a failure envelope
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.writeEnvelope(w, status, Envelope{Success: false, Message: message})
}

// WriteErrorDetail writes a failure envelope with an error detail field.
func (h *BaseHandler) WriteErrorDetail(w http.ResponseWriter, status int, message, detail string) {
	h.Logger.Error("http error", "status", status, "message", message, "detail", detail)
	h.writeEnvelope(w, status, Envelope{Success: false, Message: message, Error: detail})
}

// HandleServiceError maps AppError values to the envelope; anything else
// becomes a generic 500 with the cause logged, never echoed.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.Details != nil {
			h.WriteErrorDetail(w, appErr.StatusCode, appErr.Message, appErr.GetDetailedMessage())
			return
		}
		h.WriteError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.Logger.Error("unhandled service error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
