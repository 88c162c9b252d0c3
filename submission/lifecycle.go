// Package submission drives a regulatory submission from intake through
// automatic validation to a reviewer's decision.
package submission

import (
	"fmt"
	"strings"
	"time"

	"regportal-go/models"
	"regportal-go/schema"
)

// State is the internal view of a submission's lifecycle. Automatic and
// manual rejection share the external "rejected" status but are distinct here.
type State interface {
	Status() models.SubmissionStatus
	Kind() string
}

type Pending struct {
	SubmittedAt time.Time
}

type Validated struct {
	ValidatedAt time.Time
}

type AutoRejected struct {
	ValidatedAt time.Time
}

type ManuallyRejected struct {
	RejectedAt time.Time
	ReviewerID *uint
	Comments   string
}

type Approved struct {
	ApprovedAt time.Time
	ReviewerID *uint
	Comments   string
}

func (Pending) Status() models.SubmissionStatus          { return models.StatusPending }
func (Validated) Status() models.SubmissionStatus        { return models.StatusValidated }
func (AutoRejected) Status() models.SubmissionStatus     { return models.StatusRejected }
func (ManuallyRejected) Status() models.SubmissionStatus { return models.StatusRejected }
func (Approved) Status() models.SubmissionStatus         { return models.StatusApproved }

func (Pending) Kind() string          { return "pending" }
func (Validated) Kind() string        { return "validated" }
func (AutoRejected) Kind() string     { return "auto_rejected" }
func (ManuallyRejected) Kind() string { return "manually_rejected" }
func (Approved) Kind() string         { return "approved" }

// StateOf reads the lifecycle state from the record's status and timestamps.
func StateOf(sub *models.Submission) State {
	switch {
	case sub.Status == models.StatusApproved && sub.ApprovedAt != nil:
		return Approved{ApprovedAt: *sub.ApprovedAt, ReviewerID: sub.ReviewedBy, Comments: sub.Comments}
	case sub.Status == models.StatusRejected && sub.RejectedAt != nil:
		return ManuallyRejected{RejectedAt: *sub.RejectedAt, ReviewerID: sub.ReviewedBy, Comments: sub.Comments}
	case sub.Status == models.StatusRejected && sub.ValidatedAt != nil:
		return AutoRejected{ValidatedAt: *sub.ValidatedAt}
	case sub.Status == models.StatusValidated && sub.ValidatedAt != nil:
		return Validated{ValidatedAt: *sub.ValidatedAt}
	default:
		return Pending{SubmittedAt: sub.SubmittedAt}
	}
}

type NewParams struct {
	BankID     uint
	UserID     uint
	Period     string
	ReturnType schema.ReturnType
}

// NewSubmission checks every intake precondition and returns a pending
// submission. All violations are reported together in an *InputError.
func NewSubmission(p NewParams, at time.Time) (*models.Submission, error) {
	var ie InputError
	if p.BankID == 0 {
		ie.add("bank_id", "bank_id is required")
	}
	if p.UserID == 0 {
		ie.add("user_id", "user_id is required")
	}
	switch {
	case p.Period == "":
		ie.add("period", "period is required")
	case !ValidPeriod(p.Period):
		ie.add("period", "period must be YYYY-MM or Qn-YYYY")
	}
	switch {
	case p.ReturnType == "":
		ie.add("return_type", "return_type is required")
	case !schema.IsKnown(p.ReturnType):
		ie.add("return_type", fmt.Sprintf("return_type must be one of %s", strings.Join(schema.Names(), ", ")))
	}
	if err := ie.orNil(); err != nil {
		return nil, err
	}

	return &models.Submission{
		BankID:      p.BankID,
		UserID:      p.UserID,
		Period:      p.Period,
		ReturnType:  string(p.ReturnType),
		Status:      models.StatusPending,
		SubmittedAt: at,
	}, nil
}

// AutoValidate records the outcome of the automatic validation pass.
func AutoValidate(sub *models.Submission, allValid bool, at time.Time) error {
	if sub.Status != models.StatusPending {
		return ErrNotPending
	}
	sub.ValidatedAt = &at
	if allValid {
		sub.Status = models.StatusValidated
	} else {
		sub.Status = models.StatusRejected
	}
	return nil
}

// Approve is a reviewer's approval. It requires a completed automatic
// validation and clears any earlier manual rejection.
func Approve(sub *models.Submission, reviewerID uint, comments string, at time.Time) error {
	if err := checkReviewable(sub, reviewerID); err != nil {
		return err
	}
	sub.Status = models.StatusApproved
	sub.ApprovedAt = &at
	sub.RejectedAt = nil
	sub.ReviewedBy = &reviewerID
	sub.Comments = strings.TrimSpace(comments)
	return nil
}

// Reject is a reviewer's rejection; comments are mandatory.
func Reject(sub *models.Submission, reviewerID uint, comments string, at time.Time) error {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return ErrCommentsRequired
	}
	if err := checkReviewable(sub, reviewerID); err != nil {
		return err
	}
	sub.Status = models.StatusRejected
	sub.RejectedAt = &at
	sub.ApprovedAt = nil
	sub.ReviewedBy = &reviewerID
	sub.Comments = comments
	return nil
}

func checkReviewable(sub *models.Submission, reviewerID uint) error {
	if reviewerID == 0 {
		return ErrReviewerRequired
	}
	if sub.ValidatedAt == nil {
		return ErrNotValidated
	}
	return nil
}
