package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"regportal-go/config"
	"regportal-go/middleware"
	"regportal-go/models"
	"regportal-go/submission"
)

// ErrorResponse represents a standardized error response
// Status: HTTP status code
// Error: Error message
// Details: Additional details about the error
// Timestamp: When the error occurred
type ErrorResponse struct {
	Status    int         `json:"status"`
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SendError sends a standardized error response
func sendError(w http.ResponseWriter, status int, err string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:    status,
		Error:     err,
		Details:   details,
		Timestamp: time.Now(),
	})
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type Handlers struct {
	service *submission.Service
	config  *config.Config
	logger  *slog.Logger
}

func NewHandlers(service *submission.Service, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service: service,
		config:  cfg,
		logger:  logger,
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "RegPortal",
		"version":   "1.0.0",
	})
}

// sendServiceError maps submission errors onto HTTP statuses. Anything
// unrecognized is logged and reported as a generic 500.
func (h *Handlers) sendServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var inputErr *submission.InputError
	switch {
	case errors.As(err, &inputErr):
		sendError(w, http.StatusBadRequest, "Validation failed", inputErr.Fields)
	case errors.Is(err, submission.ErrNotFound),
		errors.Is(err, submission.ErrFileNotFound),
		errors.Is(err, submission.ErrResultNotFound):
		sendError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, submission.ErrNotValidated):
		sendError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, submission.ErrCommentsRequired),
		errors.Is(err, submission.ErrReviewerRequired):
		sendError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger.ErrorContext(r.Context(), msg,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
		sendError(w, http.StatusInternalServerError, msg, nil)
	}
}

func (h *Handlers) logAudit(r *http.Request, submissionID uint, action, resource, details string) {
	var userID *uint
	if claims := middleware.GetUserFromContext(r); claims != nil {
		id := claims.UserID
		userID = &id
	}
	h.service.Audit(r.Context(), &models.AuditLog{
		UserID:       userID,
		SubmissionID: submissionID,
		Action:       action,
		Resource:     resource,
		Details:      details,
		IPAddress:    r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
