package submission_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"regportal-go/models"
	"regportal-go/schema"
	"regportal-go/submission"
)

var t0 = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

func validParams() submission.NewParams {
	return submission.NewParams{BankID: 1, UserID: 2, Period: "2024-01", ReturnType: schema.Monthly}
}

func TestNewSubmission_Pending(t *testing.T) {
	c := qt.New(t)

	sub, err := submission.NewSubmission(validParams(), t0)
	c.Assert(err, qt.IsNil)
	c.Assert(sub.Status, qt.Equals, models.StatusPending)
	c.Assert(sub.SubmittedAt, qt.Equals, t0)
	c.Assert(sub.ValidatedAt, qt.IsNil)
	c.Assert(submission.StateOf(sub), qt.Equals, submission.State(submission.Pending{SubmittedAt: t0}))
}

func TestNewSubmission_ReportsEveryField(t *testing.T) {
	c := qt.New(t)

	_, err := submission.NewSubmission(submission.NewParams{Period: "2024-13", ReturnType: "weekly"}, t0)
	c.Assert(submission.IsInputError(err), qt.IsTrue)

	var ie *submission.InputError
	c.Assert(err, qt.ErrorAs, &ie)
	c.Assert(ie.Fields, qt.HasLen, 4)
	for _, f := range []string{"bank_id", "user_id", "period", "return_type"} {
		c.Assert(ie.Fields[f], qt.Not(qt.Equals), "", qt.Commentf("%s", f))
	}
}

func TestAutoValidate(t *testing.T) {
	c := qt.New(t)

	for _, tc := range []struct {
		allValid bool
		status   models.SubmissionStatus
		kind     string
	}{
		{true, models.StatusValidated, "validated"},
		{false, models.StatusRejected, "auto_rejected"},
	} {
		sub, err := submission.NewSubmission(validParams(), t0)
		c.Assert(err, qt.IsNil)

		at := t0.Add(time.Second)
		c.Assert(submission.AutoValidate(sub, tc.allValid, at), qt.IsNil)
		c.Assert(sub.Status, qt.Equals, tc.status)
		c.Assert(*sub.ValidatedAt, qt.Equals, at)
		c.Assert(submission.StateOf(sub).Kind(), qt.Equals, tc.kind)
		c.Assert(submission.StateOf(sub).Status(), qt.Equals, tc.status)

		c.Assert(submission.AutoValidate(sub, true, at), qt.ErrorIs, submission.ErrNotPending)
	}
}

func validated(c *qt.C) *models.Submission {
	sub, err := submission.NewSubmission(validParams(), t0)
	c.Assert(err, qt.IsNil)
	c.Assert(submission.AutoValidate(sub, true, t0), qt.IsNil)
	return sub
}

func TestApprove(t *testing.T) {
	c := qt.New(t)

	sub := validated(c)
	at := t0.Add(time.Hour)
	c.Assert(submission.Approve(sub, 9, "  looks good ", at), qt.IsNil)
	c.Assert(sub.Status, qt.Equals, models.StatusApproved)
	c.Assert(*sub.ApprovedAt, qt.Equals, at)
	c.Assert(sub.RejectedAt, qt.IsNil)
	c.Assert(*sub.ReviewedBy, qt.Equals, uint(9))
	c.Assert(sub.Comments, qt.Equals, "looks good")

	st, ok := submission.StateOf(sub).(submission.Approved)
	c.Assert(ok, qt.IsTrue)
	c.Assert(st.ApprovedAt, qt.Equals, at)
}

func TestReject_RequiresComments(t *testing.T) {
	c := qt.New(t)

	sub := validated(c)
	for _, comments := range []string{"", "   \t"} {
		err := submission.Reject(sub, 9, comments, t0)
		c.Assert(err, qt.ErrorIs, submission.ErrCommentsRequired)
		c.Assert(sub.Status, qt.Equals, models.StatusValidated)
		c.Assert(sub.RejectedAt, qt.IsNil)
	}
}

func TestReview_RequiresValidation(t *testing.T) {
	c := qt.New(t)

	sub, err := submission.NewSubmission(validParams(), t0)
	c.Assert(err, qt.IsNil)

	c.Assert(submission.Approve(sub, 9, "", t0), qt.ErrorIs, submission.ErrNotValidated)
	c.Assert(submission.Reject(sub, 9, "bad", t0), qt.ErrorIs, submission.ErrNotValidated)
	c.Assert(sub.Status, qt.Equals, models.StatusPending)
}

func TestReview_RequiresReviewer(t *testing.T) {
	c := qt.New(t)

	sub := validated(c)
	c.Assert(submission.Approve(sub, 0, "", t0), qt.ErrorIs, submission.ErrReviewerRequired)
	c.Assert(submission.Reject(sub, 0, "bad", t0), qt.ErrorIs, submission.ErrReviewerRequired)
}

func TestReview_LastDecisionWins(t *testing.T) {
	c := qt.New(t)

	sub := validated(c)
	c.Assert(submission.Approve(sub, 9, "", t0.Add(time.Hour)), qt.IsNil)
	c.Assert(submission.Reject(sub, 10, "restated figures", t0.Add(2*time.Hour)), qt.IsNil)

	c.Assert(sub.Status, qt.Equals, models.StatusRejected)
	c.Assert(sub.ApprovedAt, qt.IsNil)
	c.Assert(sub.RejectedAt, qt.Not(qt.IsNil))
	c.Assert(*sub.ReviewedBy, qt.Equals, uint(10))

	st, ok := submission.StateOf(sub).(submission.ManuallyRejected)
	c.Assert(ok, qt.IsTrue)
	c.Assert(st.Comments, qt.Equals, "restated figures")
}

func TestReview_AutoRejectedCanBeOverridden(t *testing.T) {
	c := qt.New(t)

	sub, err := submission.NewSubmission(validParams(), t0)
	c.Assert(err, qt.IsNil)
	c.Assert(submission.AutoValidate(sub, false, t0), qt.IsNil)
	c.Assert(submission.StateOf(sub).Kind(), qt.Equals, "auto_rejected")

	c.Assert(submission.Approve(sub, 9, "waived", t0.Add(time.Hour)), qt.IsNil)
	c.Assert(submission.StateOf(sub).Kind(), qt.Equals, "approved")
}

func TestValidPeriod(t *testing.T) {
	c := qt.New(t)

	for _, p := range []string{"2024-01", "2000-12", "2099-06", "Q1-2024", "Q4-1999"} {
		c.Assert(submission.ValidPeriod(p), qt.IsTrue, qt.Commentf("%s", p))
	}
	for _, p := range []string{"", "2024-1", "2024-13", "2024-00", "1999-01", "Q5-2024", "Q0-2024", "q1-2024", "2024-01 ", "24-01"} {
		c.Assert(submission.ValidPeriod(p), qt.IsFalse, qt.Commentf("%s", p))
	}
}
