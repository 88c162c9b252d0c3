package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"regportal-go/schema"
)

// Rule is an extra per-return-type check run after the structural checks.
// It appends findings to o and must not touch findings already there.
type Rule func(s *Sheet, o *Outcome)

func defaultRules() map[schema.ReturnType]Rule {
	return map[schema.ReturnType]Rule{
		schema.Monthly: balanceRule,
	}
}

// balanceRule flags every data row whose Balance cell is present but is not
// a number or is negative.
func balanceRule(s *Sheet, o *Outcome) {
	idx := s.ColumnIndex(schema.BalanceColumn)
	if idx < 0 {
		return
	}
	for i, row := range s.Rows {
		if idx >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[idx])
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			o.addError(fmt.Sprintf("Invalid balance value at row %d", lineNumber(i)))
		}
	}
}

// lineNumber maps a 0-based data row index to the 1-based line in the source
// file, accounting for the header row.
func lineNumber(dataIndex int) int {
	return dataIndex + 2
}
