// Package schema holds the compiled-in table of regulatory return types and
// the columns each one must carry.
package schema

// ReturnType identifies a regulatory filing category.
type ReturnType string

const (
	Monthly         ReturnType = "monthly"
	Quarterly       ReturnType = "quarterly"
	SCV             ReturnType = "scv"
	BalanceSheet    ReturnType = "balance_sheet"
	IncomeStatement ReturnType = "income_statement"
)

// BalanceColumn is the monthly return column that must hold a non-negative number.
const BalanceColumn = "Balance"

var order = []ReturnType{Monthly, Quarterly, SCV, BalanceSheet, IncomeStatement}

var requiredColumns = map[ReturnType][]string{
	Monthly: {
		"Account Number",
		"Account Name",
		"Account Type",
		"Customer ID",
		"Branch Code",
		"Currency",
		BalanceColumn,
		"Interest Rate",
		"Opening Date",
		"Status",
	},
	Quarterly: {
		"Reporting Period",
		"Total Deposits",
		"Total Loans",
		"Total Assets",
		"Capital Adequacy Ratio",
		"Liquidity Ratio",
		"Non-Performing Loans",
		"Number of Depositors",
	},
	SCV: {
		"Depositor ID",
		"Full Name",
		"ID Type",
		"ID Number",
		"Address",
		"Phone Number",
		"Account Number",
		"Account Balance",
		"Insured Amount",
	},
	BalanceSheet: {
		"Item Code",
		"Description",
		"Current Period",
		"Previous Period",
		"Variance",
		"Notes",
	},
	IncomeStatement: {
		"Item Code",
		"Line Item",
		"Current Period",
		"Previous Period",
		"Year To Date",
		"Budget",
		"Variance",
	},
}

// RequiredColumns returns the ordered columns for rt. Unknown return types
// yield an empty slice; use IsKnown to tell the two cases apart.
func RequiredColumns(rt ReturnType) []string {
	cols := requiredColumns[rt]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// IsKnown reports whether rt is a registered return type.
func IsKnown(rt ReturnType) bool {
	_, ok := requiredColumns[rt]
	return ok
}

// ReturnTypes lists the registered return types in declaration order.
func ReturnTypes() []ReturnType {
	out := make([]ReturnType, len(order))
	copy(out, order)
	return out
}

// Names returns ReturnTypes as plain strings.
func Names() []string {
	out := make([]string, 0, len(order))
	for _, rt := range order {
		out = append(out, string(rt))
	}
	return out
}
