package utils_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"regportal-go/models"
	"regportal-go/utils"
)

func TestValidateStruct_Period(t *testing.T) {
	c := qt.New(t)

	for _, p := range []string{"2024-01", "2024-12", "Q1-2024", "Q4-2099"} {
		req := models.UploadRequest{BankID: "1", UserID: "2", Period: p, ReturnType: "monthly"}
		c.Assert(utils.ValidateStruct(req), qt.IsNil, qt.Commentf("period %q", p))
	}
	for _, p := range []string{"2024-13", "2024-1", "Q5-2024", "January 2024", "1999-01", "2024-00"} {
		req := models.UploadRequest{BankID: "1", UserID: "2", Period: p, ReturnType: "monthly"}
		err := utils.ValidateStruct(req)
		c.Assert(err, qt.IsNotNil, qt.Commentf("period %q", p))
		c.Assert(utils.FormatValidationError(err), qt.DeepEquals, map[string]string{
			"period": "period must be YYYY-MM or Qn-YYYY",
		})
	}
}

func TestFormatValidationError_ReportsAllFields(t *testing.T) {
	c := qt.New(t)

	err := utils.ValidateStruct(models.UploadRequest{UserID: "abc", ReturnType: "weekly"})
	c.Assert(err, qt.IsNotNil)

	got := utils.FormatValidationError(err)
	c.Assert(got, qt.HasLen, 4)
	c.Assert(got["bank_id"], qt.Equals, "bank_id is required")
	c.Assert(got["user_id"], qt.Equals, "user_id must be numeric")
	c.Assert(got["period"], qt.Equals, "period is required")
	c.Assert(got["return_type"], qt.Equals, "return_type must be one of monthly, quarterly, scv, balance_sheet, income_statement")
}

func TestValidateStruct_RejectRequiresComments(t *testing.T) {
	c := qt.New(t)

	err := utils.ValidateStruct(models.RejectRequest{})
	c.Assert(utils.FormatValidationError(err), qt.DeepEquals, map[string]string{
		"comments": "comments is required",
	})
	c.Assert(utils.ValidateStruct(models.ApproveRequest{}), qt.IsNil)
}
