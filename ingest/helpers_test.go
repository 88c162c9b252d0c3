package ingest_test

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/xuri/excelize/v2"

	"regportal-go/schema"
)

// workbook builds an xlsx file whose first sheet holds rows. A nil row is
// left out entirely so the sheet has a gap at that line.
func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	c := qt.New(t)

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		c.Assert(err, qt.IsNil)
		c.Assert(f.SetSheetRow("Sheet1", cell, &row), qt.IsNil)
	}

	var buf bytes.Buffer
	c.Assert(f.Write(&buf), qt.IsNil)
	return buf.Bytes()
}

func header(rt schema.ReturnType, drop ...string) []any {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var out []any
	for _, col := range schema.RequiredColumns(rt) {
		if !skip[col] {
			out = append(out, col)
		}
	}
	return out
}

// monthlyRow fills every monthly column, with balance in the Balance slot.
func monthlyRow(balance any) []any {
	return []any{"0012345678", "Ada Obi", "Savings", "C-001", "B01", "NGN", balance, 2.5, "2020-01-01", "active"}
}
