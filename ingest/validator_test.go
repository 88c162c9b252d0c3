package ingest_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/xuri/excelize/v2"

	"regportal-go/ingest"
	"regportal-go/schema"
)

func validate(t *testing.T, data []byte, rt schema.ReturnType) ingest.Outcome {
	t.Helper()
	v := ingest.NewValidator(ingest.DefaultLimits())
	return v.ValidateFile(context.Background(), "return.xlsx", bytes.NewReader(data), rt)
}

func TestValidateFile_WellFormedBalanceSheet(t *testing.T) {
	c := qt.New(t)

	data := workbook(t,
		header(schema.BalanceSheet),
		[]any{"A100", "Cash", 1000, 900, 100, ""},
		[]any{"A200", "Loans", 5000, 4500, 500, "growth"},
	)

	o := validate(t, data, schema.BalanceSheet)
	c.Assert(o.Valid, qt.IsTrue)
	c.Assert(o.Errors, qt.HasLen, 0)
	c.Assert(o.Warnings, qt.HasLen, 0)
	c.Assert(o.RowCount, qt.Equals, 2)
	c.Assert(o.Headers, qt.DeepEquals, schema.RequiredColumns(schema.BalanceSheet))
}

func TestValidateFile_MissingColumnsFollowRegistryOrder(t *testing.T) {
	c := qt.New(t)

	// Header order reversed relative to the registry, two columns missing.
	hdr := header(schema.Quarterly, "Total Loans", "Liquidity Ratio")
	for i, j := 0, len(hdr)-1; i < j; i, j = i+1, j-1 {
		hdr[i], hdr[j] = hdr[j], hdr[i]
	}
	data := workbook(t, hdr)

	o := validate(t, data, schema.Quarterly)
	c.Assert(o.Valid, qt.IsFalse)
	c.Assert(o.Errors, qt.DeepEquals, []string{
		"Missing required column: Total Loans",
		"Missing required column: Liquidity Ratio",
	})
}

func TestValidateFile_MissingColumnErrorsForEveryType(t *testing.T) {
	c := qt.New(t)

	for _, rt := range schema.ReturnTypes() {
		cols := schema.RequiredColumns(rt)
		for _, missing := range cols {
			o := validate(t, workbook(t, header(rt, missing)), rt)
			c.Assert(o.Errors, qt.Contains, "Missing required column: "+missing, qt.Commentf("%s", rt))
			for _, present := range cols {
				if present == missing {
					continue
				}
				c.Assert(o.Errors, qt.Not(qt.Contains), "Missing required column: "+present)
			}
		}
	}
}

func TestValidateFile_WhitespaceHeaderIsAbsent(t *testing.T) {
	c := qt.New(t)

	hdr := header(schema.BalanceSheet, "Notes")
	hdr = append([]any{"   "}, hdr...)
	hdr = append(hdr, "  Notes  ")
	data := workbook(t, hdr, []any{"", "A1", "Cash", 1, 1, 0, "x"})

	o := validate(t, data, schema.BalanceSheet)
	c.Assert(o.Valid, qt.IsTrue)
	c.Assert(o.Headers, qt.HasLen, 6)
	c.Assert(o.Headers[5], qt.Equals, "Notes")
}

func TestValidateFile_ColumnWithoutDataIsPresent(t *testing.T) {
	c := qt.New(t)

	data := workbook(t,
		header(schema.BalanceSheet),
		[]any{"A100", "Cash", 1000, 900, 100},
	)

	o := validate(t, data, schema.BalanceSheet)
	c.Assert(o.Valid, qt.IsTrue)
}

func TestValidateFile_EmptyRowsWarnWithSourceLineNumbers(t *testing.T) {
	c := qt.New(t)

	data := workbook(t,
		header(schema.BalanceSheet),
		[]any{"A100", "Cash", 1, 1, 0, ""},
		nil,
		[]any{"", "  ", ""},
		[]any{"A200", "Loans", 1, 1, 0, ""},
	)

	o := validate(t, data, schema.BalanceSheet)
	c.Assert(o.Valid, qt.IsTrue)
	c.Assert(o.Warnings, qt.DeepEquals, []string{
		"Empty row at line 3",
		"Empty row at line 4",
	})
	c.Assert(o.RowCount, qt.Equals, 4)
}

func TestValidateFile_MonthlyBalanceChecks(t *testing.T) {
	c := qt.New(t)

	data := workbook(t,
		header(schema.Monthly),
		monthlyRow(1500.75),
		monthlyRow(-20),
		monthlyRow("n/a"),
		monthlyRow(""),
		monthlyRow(0),
	)

	o := validate(t, data, schema.Monthly)
	c.Assert(o.Valid, qt.IsFalse)
	c.Assert(o.Errors, qt.DeepEquals, []string{
		"Invalid balance value at row 3",
		"Invalid balance value at row 4",
	})
	c.Assert(o.Warnings, qt.HasLen, 0)
}

func TestValidateFile_BalanceRuleOnlyForMonthly(t *testing.T) {
	c := qt.New(t)

	hdr := append(header(schema.BalanceSheet), schema.BalanceColumn)
	data := workbook(t, hdr, []any{"A1", "Cash", 1, 1, 0, "", -50})

	o := validate(t, data, schema.BalanceSheet)
	c.Assert(o.Valid, qt.IsTrue)
}

func TestValidateFile_MonthlyScenario(t *testing.T) {
	c := qt.New(t)

	// Two of ten required columns dropped, one blank row, one negative balance.
	cols := header(schema.Monthly, "Currency", "Status")
	row := func(balance any) []any {
		return []any{"001", "Ada", "Savings", "C1", "B1", balance, 1.5, "2020-01-01"}
	}
	data := workbook(t, cols, row(10), nil, row(-1), row(3))

	o := validate(t, data, schema.Monthly)
	c.Assert(o.Errors, qt.HasLen, 3)
	c.Assert(o.Warnings, qt.HasLen, 1)
	c.Assert(o.Valid, qt.IsFalse)
	c.Assert(o.Errors[2], qt.Equals, "Invalid balance value at row 4")
	c.Assert(o.Warnings[0], qt.Equals, "Empty row at line 3")
}

func TestValidateFile_WarningsNeverAffectValidity(t *testing.T) {
	c := qt.New(t)

	data := workbook(t, header(schema.SCV), nil, nil, []any{"D1"})

	o := validate(t, data, schema.SCV)
	c.Assert(o.Warnings, qt.HasLen, 2)
	c.Assert(o.Valid, qt.Equals, len(o.Errors) == 0)
	c.Assert(o.Valid, qt.IsTrue)
}

func TestValidateFile_EmptyWorkbook(t *testing.T) {
	c := qt.New(t)

	o := validate(t, workbook(t), schema.Monthly)
	c.Assert(o.Valid, qt.IsFalse)
	c.Assert(o.Errors, qt.DeepEquals, []string{"File is empty"})
	c.Assert(o.Warnings, qt.HasLen, 0)
}

func TestValidateFile_CorruptFileBecomesSingleError(t *testing.T) {
	c := qt.New(t)

	o := validate(t, []byte("this is not a spreadsheet"), schema.Monthly)
	c.Assert(o.Valid, qt.IsFalse)
	c.Assert(o.Errors, qt.HasLen, 1)
	c.Assert(o.Errors[0], qt.Contains, "failed to open spreadsheet")
}

func TestValidateFile_CSV(t *testing.T) {
	c := qt.New(t)

	csv := strings.Join([]string{
		"Item Code,Description,Current Period,Previous Period,Variance,Notes",
		"A1,Cash,10,9,1,",
		",,,,,",
		"A2,Loans,5,5,0,",
		"",
	}, "\n")

	v := ingest.NewValidator(ingest.DefaultLimits())
	o := v.ValidateFile(context.Background(), "bs.csv", strings.NewReader(csv), schema.BalanceSheet)
	c.Assert(o.Valid, qt.IsTrue)
	c.Assert(o.Warnings, qt.DeepEquals, []string{"Empty row at line 3"})
	c.Assert(o.RowCount, qt.Equals, 3)

	o = v.ValidateFile(context.Background(), "bs.csv", strings.NewReader("\ufeff"+csv), schema.BalanceSheet)
	c.Assert(o.Valid, qt.IsTrue, qt.Commentf("%v", o.Errors))
	c.Assert(o.Headers[0], qt.Equals, "Item Code")
}

func TestValidateFile_ZeroRowIsData(t *testing.T) {
	c := qt.New(t)

	data := workbook(t,
		header(schema.BalanceSheet),
		[]any{0, 0, 0, 0, 0, 0},
	)
	o := validate(t, data, schema.BalanceSheet)
	c.Assert(o.Valid, qt.IsTrue)
	c.Assert(o.Warnings, qt.HasLen, 0)
	c.Assert(o.RowCount, qt.Equals, 1)
}

func TestValidator_WithRule(t *testing.T) {
	c := qt.New(t)

	rule := func(s *ingest.Sheet, o *ingest.Outcome) {
		if s.ColumnIndex("Variance") >= 0 {
			o.Errors = append(o.Errors, "custom")
		}
	}
	base := ingest.NewValidator(ingest.DefaultLimits())
	v := base.WithRule(schema.BalanceSheet, rule)

	data := workbook(t, header(schema.BalanceSheet))
	c.Assert(v.ValidateFile(context.Background(), "a.xlsx", bytes.NewReader(data), schema.BalanceSheet).Errors,
		qt.DeepEquals, []string{"custom"})
	c.Assert(base.ValidateFile(context.Background(), "a.xlsx", bytes.NewReader(data), schema.BalanceSheet).Valid,
		qt.IsTrue)
}

func TestValidateFile_ReadsFirstSheetWhateverItsName(t *testing.T) {
	c := qt.New(t)

	f := excelize.NewFile()
	idx, err := f.NewSheet("Data")
	c.Assert(err, qt.IsNil)
	f.SetActiveSheet(idx)
	c.Assert(f.DeleteSheet("Sheet1"), qt.IsNil)
	c.Assert(f.SetSheetRow("Data", "A1", &[]any{"Item Code"}), qt.IsNil)
	var buf bytes.Buffer
	c.Assert(f.Write(&buf), qt.IsNil)

	o := validate(t, buf.Bytes(), schema.BalanceSheet)
	c.Assert(o.Headers, qt.DeepEquals, []string{"Item Code"})
	c.Assert(o.Errors, qt.HasLen, 5)
}
