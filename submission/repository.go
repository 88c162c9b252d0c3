package submission

import (
	"context"
	"io"
	"time"

	"regportal-go/models"
)

// Repository is the durable record store. Implementations must make every
// call made through the Repository passed to Transaction's callback commit or
// roll back together.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	CreateSubmission(ctx context.Context, sub *models.Submission) error
	// UpdateValidation writes Status and ValidatedAt.
	UpdateValidation(ctx context.Context, sub *models.Submission) error
	// SaveReview writes the reviewer decision in one statement. It returns
	// ErrNotValidated if the stored record has no ValidatedAt.
	SaveReview(ctx context.Context, sub *models.Submission) error
	CreateFile(ctx context.Context, file *models.SubmissionFile) error
	CreateValidationResult(ctx context.Context, res *models.ValidationResult) error
	// DeleteSubmission removes the submission, its file records and its
	// validation result with details.
	DeleteSubmission(ctx context.Context, id uint) error

	// GetSubmission loads files, validation details, bank and user.
	GetSubmission(ctx context.Context, id uint) (*models.Submission, error)
	ListSubmissions(ctx context.Context, f SubmissionFilter) ([]models.Submission, error)
	GetValidationResult(ctx context.Context, submissionID uint) (*models.ValidationResult, error)
	ListValidationResults(ctx context.Context, f ResultFilter) ([]models.ValidationResult, error)
	GetFile(ctx context.Context, id uint) (*models.SubmissionFile, error)

	LogAudit(ctx context.Context, entry *models.AuditLog) error
}

type SubmissionFilter struct {
	BankID     *uint
	ReturnType string
	Status     string
	Period     string
	Page       int
	Limit      int
}

type ResultFilter struct {
	MinErrors   int
	MinWarnings int
	Page        int
	Limit       int
}

// StoredObject describes bytes written to a FileStore.
type StoredObject struct {
	Path     string
	Size     int64
	Checksum string
}

// FileStore keeps uploaded bytes. Paths are opaque to callers.
type FileStore interface {
	Put(ctx context.Context, name string, r io.Reader) (StoredObject, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// Event is published after a lifecycle transition commits.
type Event struct {
	Type         string                  `json:"type"`
	SubmissionID uint                    `json:"submission_id"`
	BankID       uint                    `json:"bank_id"`
	Period       string                  `json:"period"`
	ReturnType   string                  `json:"return_type"`
	Status       models.SubmissionStatus `json:"status"`
	State        string                  `json:"state"`
	ReviewerID   *uint                   `json:"reviewer_id,omitempty"`
	OccurredAt   time.Time               `json:"occurred_at"`
}

const (
	EventValidated = "submission.validated"
	EventApproved  = "submission.approved"
	EventRejected  = "submission.rejected"
	EventDeleted   = "submission.deleted"
)

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
