// Package ingest implements structural validation of uploaded spreadsheets
// and the aggregation of per-file outcomes into one submission result.
package ingest

// Outcome is the structured result of validating one file. Valid is true
// exactly when Errors is empty; warnings never affect it.
type Outcome struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	RowCount int      `json:"row_count"`
	Headers  []string `json:"headers"`
}

// ParseFailure is a file that could not be opened or read at all.
type ParseFailure struct {
	Err error
}

func (p *ParseFailure) Error() string {
	return p.Err.Error()
}

func (p *ParseFailure) Unwrap() error {
	return p.Err
}

// FailedOutcome normalizes a parse failure into the structured shape: a
// single error and nothing else.
func FailedOutcome(err error) Outcome {
	return Outcome{
		Valid:    false,
		Errors:   []string{err.Error()},
		Warnings: []string{},
		Headers:  []string{},
	}
}

func (o *Outcome) addError(msg string) {
	o.Errors = append(o.Errors, msg)
}

func (o *Outcome) addWarning(msg string) {
	o.Warnings = append(o.Warnings, msg)
}

func (o *Outcome) finish() Outcome {
	if o.Errors == nil {
		o.Errors = []string{}
	}
	if o.Warnings == nil {
		o.Warnings = []string{}
	}
	if o.Headers == nil {
		o.Headers = []string{}
	}
	o.Valid = len(o.Errors) == 0
	return *o
}
