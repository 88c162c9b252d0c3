package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"regportal-go/ingest"
	"regportal-go/metrics"
	"regportal-go/models"
	"regportal-go/schema"
)

// Service runs the ingestion pipeline and reviewer transitions against an
// injected Repository and FileStore.
type Service struct {
	repo      Repository
	files     FileStore
	validator *ingest.Validator
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the pipeline. publisher may be nil.
func NewService(repo Repository, files FileStore, validator *ingest.Validator, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		files:     files,
		validator: validator,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock returns a copy of s that reads time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	ns := *s
	ns.now = now
	return &ns
}

// Upload is one attachment of an intake request.
type Upload struct {
	Name     string
	MimeType string
	Content  io.Reader
}

type SubmitInput struct {
	BankID     uint
	UserID     uint
	Period     string
	ReturnType schema.ReturnType
	Files      []Upload
}

type SubmitResult struct {
	Submission *models.Submission
	Summary    ingest.Summary
	Files      []models.SubmissionFile
}

// Submit creates a submission, validates every file in upload order and
// persists the outcome. Structural problems are part of the result, not
// errors; an error means nothing was persisted.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	start := s.now()

	sub, err := NewSubmission(NewParams{
		BankID:     in.BankID,
		UserID:     in.UserID,
		Period:     in.Period,
		ReturnType: in.ReturnType,
	}, start)
	if err != nil {
		return nil, err
	}
	if len(in.Files) == 0 {
		return nil, &InputError{Fields: map[string]string{"files": "at least one spreadsheet file is required"}}
	}

	stored := make([]StoredObject, 0, len(in.Files))
	cleanup := func() {
		for _, obj := range stored {
			if err := s.files.Remove(obj.Path); err != nil {
				s.logger.ErrorContext(ctx, "failed to remove stored file", "path", obj.Path, "error", err)
			}
		}
	}

	outcomes := make([]ingest.FileOutcome, 0, len(in.Files))
	for _, up := range in.Files {
		obj, err := s.files.Put(ctx, up.Name, up.Content)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to store %s: %w", up.Name, err)
		}
		stored = append(stored, obj)

		outcomes = append(outcomes, ingest.FileOutcome{
			FileName:   up.Name,
			Validation: s.validateStored(ctx, up.Name, obj.Path, in.ReturnType),
		})
	}

	var result *SubmitResult
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateSubmission(ctx, sub); err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		records := make([]models.SubmissionFile, 0, len(in.Files))
		for i, up := range in.Files {
			rec := models.SubmissionFile{
				SubmissionID: sub.ID,
				FileName:     up.Name,
				StoragePath:  stored[i].Path,
				MimeType:     up.MimeType,
				Size:         stored[i].Size,
				Checksum:     stored[i].Checksum,
				UploadedAt:   start,
			}
			if err := tx.CreateFile(ctx, &rec); err != nil {
				return fmt.Errorf("failed to record file %s: %w", up.Name, err)
			}
			outcomes[i].FileID = rec.ID
			records = append(records, rec)
		}

		summary := ingest.Aggregate(outcomes)
		validatedAt := s.now()
		res := summary.Result(sub.ID)
		res.ValidatedAt = validatedAt
		if err := tx.CreateValidationResult(ctx, res); err != nil {
			return fmt.Errorf("failed to save validation result: %w", err)
		}

		if err := AutoValidate(sub, summary.AllValid, validatedAt); err != nil {
			return err
		}
		if err := tx.UpdateValidation(ctx, sub); err != nil {
			return fmt.Errorf("failed to update submission status: %w", err)
		}

		sub.Files = records
		sub.Validation = res
		result = &SubmitResult{Submission: sub, Summary: summary, Files: records}
		return nil
	})
	if err != nil {
		cleanup()
		s.logger.ErrorContext(ctx, "submission rolled back",
			"bank_id", in.BankID,
			"return_type", in.ReturnType,
			"error", err,
			"duration", time.Since(start))
		return nil, err
	}

	metrics.ObserveSubmission(time.Since(start))
	s.transitioned(ctx, EventValidated, sub)

	s.logger.InfoContext(ctx, "submission processed",
		"submission_id", sub.ID,
		"bank_id", sub.BankID,
		"return_type", sub.ReturnType,
		"period", sub.Period,
		"status", sub.Status,
		"files", len(result.Files),
		"errors", result.Summary.TotalErrors,
		"warnings", result.Summary.TotalWarnings,
		"duration", time.Since(start))
	return result, nil
}

func (s *Service) validateStored(ctx context.Context, name, path string, rt schema.ReturnType) ingest.Outcome {
	rc, err := s.files.Open(path)
	if err != nil {
		return ingest.FailedOutcome(fmt.Errorf("failed to read stored file %s: %w", name, err))
	}
	defer rc.Close()

	o := s.validator.ValidateFile(ctx, name, rc, rt)
	metrics.RecordFile(string(rt), o.Valid, len(o.Errors), len(o.Warnings))
	return o
}

// Approve records a reviewer's approval.
func (s *Service) Approve(ctx context.Context, id, reviewerID uint, comments string) (*models.Submission, error) {
	return s.review(ctx, id, EventApproved, func(sub *models.Submission) error {
		return Approve(sub, reviewerID, comments, s.now())
	})
}

// Reject records a reviewer's rejection. comments must be non-blank.
func (s *Service) Reject(ctx context.Context, id, reviewerID uint, comments string) (*models.Submission, error) {
	return s.review(ctx, id, EventRejected, func(sub *models.Submission) error {
		return Reject(sub, reviewerID, comments, s.now())
	})
}

func (s *Service) review(ctx context.Context, id uint, event string, apply func(*models.Submission) error) (*models.Submission, error) {
	var out *models.Submission
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		sub, err := tx.GetSubmission(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(sub); err != nil {
			return err
		}
		if err := tx.SaveReview(ctx, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(ctx, event, out)
	s.logger.InfoContext(ctx, "submission reviewed",
		"submission_id", out.ID,
		"status", out.Status,
		"reviewer_id", *out.ReviewedBy)
	return out, nil
}

// Delete removes the submission with its files, validation result and the
// stored bytes. Byte removal happens after the records are gone; failures
// there are logged, not returned.
func (s *Service) Delete(ctx context.Context, id uint) error {
	var sub *models.Submission
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		sub, err = tx.GetSubmission(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteSubmission(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, f := range sub.Files {
		if err := s.files.Remove(f.StoragePath); err != nil {
			s.logger.ErrorContext(ctx, "failed to remove stored file",
				"submission_id", id,
				"file_id", f.ID,
				"error", err)
		}
	}

	s.publish(ctx, Event{
		Type:         EventDeleted,
		SubmissionID: sub.ID,
		BankID:       sub.BankID,
		Period:       sub.Period,
		ReturnType:   sub.ReturnType,
		Status:       sub.Status,
		State:        "deleted",
		OccurredAt:   s.now(),
	})
	metrics.RecordTransition("deleted")
	s.logger.InfoContext(ctx, "submission deleted", "submission_id", id, "files", len(sub.Files))
	return nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Submission, error) {
	return s.repo.GetSubmission(ctx, id)
}

func (s *Service) List(ctx context.Context, f SubmissionFilter) ([]models.Submission, error) {
	return s.repo.ListSubmissions(ctx, f)
}

func (s *Service) ValidationResult(ctx context.Context, submissionID uint) (*models.ValidationResult, error) {
	return s.repo.GetValidationResult(ctx, submissionID)
}

func (s *Service) ValidationResults(ctx context.Context, f ResultFilter) ([]models.ValidationResult, error) {
	return s.repo.ListValidationResults(ctx, f)
}

// OpenFile returns a stored file's record and a reader over its bytes. The
// caller closes the reader.
func (s *Service) OpenFile(ctx context.Context, id uint) (*models.SubmissionFile, io.ReadCloser, error) {
	rec, err := s.repo.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(rec.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stored file %d: %w", id, err)
	}
	return rec, rc, nil
}

// Audit writes an audit entry. Failures are logged and swallowed so they
// never undo a committed transition.
func (s *Service) Audit(ctx context.Context, entry *models.AuditLog) {
	if err := s.repo.LogAudit(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to write audit log",
			"action", entry.Action,
			"submission_id", entry.SubmissionID,
			"error", err)
	}
}

func (s *Service) transitioned(ctx context.Context, event string, sub *models.Submission) {
	st := StateOf(sub)
	metrics.RecordTransition(st.Kind())
	s.publish(ctx, Event{
		Type:         event,
		SubmissionID: sub.ID,
		BankID:       sub.BankID,
		Period:       sub.Period,
		ReturnType:   sub.ReturnType,
		Status:       sub.Status,
		State:        st.Kind(),
		ReviewerID:   sub.ReviewedBy,
		OccurredAt:   s.now(),
	})
}

func (s *Service) publish(ctx context.Context, e Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to publish submission event",
			"type", e.Type,
			"submission_id", e.SubmissionID,
			"error", err)
	}
}

// IsInputError reports whether err is an intake validation failure.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
