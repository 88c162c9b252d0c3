package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"regportal-go/metrics"
	"regportal-go/middleware"
	"regportal-go/models"
)

// NewRouter registers every route. limiter may be nil to disable rate limiting.
func NewRouter(h *Handlers, limiter *middleware.RateLimiter, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.HandleFunc("/api/health", h.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.JWTAuth(logger))

	protected.HandleFunc("/submissions", h.UploadSubmission).Methods(http.MethodPost)
	protected.HandleFunc("/submissions", h.ListSubmissions).Methods(http.MethodGet)
	protected.HandleFunc("/submissions/{id:[0-9]+}", h.GetSubmission).Methods(http.MethodGet)
	protected.HandleFunc("/submissions/{id:[0-9]+}/validation", h.GetValidationResult).Methods(http.MethodGet)
	protected.HandleFunc("/validation-results", h.ListValidationResults).Methods(http.MethodGet)
	protected.HandleFunc("/files/{id:[0-9]+}/download", h.DownloadFile).Methods(http.MethodGet)

	review := protected.PathPrefix("/submissions/{id:[0-9]+}").Subrouter()
	review.Use(middleware.RequireRole(models.RoleRegulator, logger))
	review.HandleFunc("/approve", h.ApproveSubmission).Methods(http.MethodPost)
	review.HandleFunc("/reject", h.RejectSubmission).Methods(http.MethodPost)
	review.HandleFunc("", h.DeleteSubmission).Methods(http.MethodDelete)

	return r
}
