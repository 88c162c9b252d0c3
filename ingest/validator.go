package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"regportal-go/schema"
)

// Limits bound the work spent on a single file.
type Limits struct {
	// UnzipSize caps the total uncompressed size of an xlsx archive.
	UnzipSize int64
	// UnzipXMLSize caps a single worksheet XML before excelize spills to disk.
	UnzipXMLSize int64
	// ParseTimeout aborts parsing of one file; zero disables it.
	ParseTimeout time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		UnzipSize:    200 << 20,
		UnzipXMLSize: 32 << 20,
		ParseTimeout: 30 * time.Second,
	}
}

// Validator checks spreadsheets against the schema of their return type.
type Validator struct {
	limits Limits
	rules  map[schema.ReturnType]Rule
	logger *slog.Logger
	read   func(name string, data []byte, limits Limits) (*Sheet, error)
}

func NewValidator(limits Limits) *Validator {
	return &Validator{
		limits: limits,
		rules:  defaultRules(),
		logger: slog.Default(),
		read:   readSheet,
	}
}

// WithLogger returns a copy of v that logs to l.
func (v *Validator) WithLogger(l *slog.Logger) *Validator {
	nv := *v
	nv.logger = l
	return &nv
}

// WithRule returns a copy of v with rule registered for rt, replacing any
// existing rule for that return type.
func (v *Validator) WithRule(rt schema.ReturnType, rule Rule) *Validator {
	nv := *v
	nv.rules = make(map[schema.ReturnType]Rule, len(v.rules)+1)
	for k, r := range v.rules {
		nv.rules[k] = r
	}
	nv.rules[rt] = rule
	return &nv
}

// ValidateFile parses the file read from r and validates it. It never
// returns an error: unreadable files come back as an invalid Outcome with a
// single error entry.
func (v *Validator) ValidateFile(ctx context.Context, name string, r io.Reader, rt schema.ReturnType) Outcome {
	data, err := io.ReadAll(r)
	if err != nil {
		return FailedOutcome(fmt.Errorf("failed to read %s: %w", name, err))
	}

	sheet, err := v.parse(ctx, name, data)
	if err != nil {
		var pf *ParseFailure
		if errors.As(err, &pf) {
			v.logger.WarnContext(ctx, "spreadsheet parse failed", "file", name, "error", err)
		}
		return FailedOutcome(err)
	}
	return v.ValidateSheet(sheet, rt)
}

type parseResult struct {
	sheet *Sheet
	err   error
}

func (v *Validator) parse(ctx context.Context, name string, data []byte) (*Sheet, error) {
	if v.limits.ParseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.limits.ParseTimeout)
		defer cancel()
	}

	done := make(chan parseResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- parseResult{err: &ParseFailure{Err: fmt.Errorf("spreadsheet parser panicked: %v", p)}}
			}
		}()
		sheet, err := v.read(name, data, v.limits)
		done <- parseResult{sheet: sheet, err: err}
	}()

	select {
	case res := <-done:
		return res.sheet, res.err
	case <-ctx.Done():
		return nil, &ParseFailure{Err: fmt.Errorf("parsing %s aborted: %w", name, ctx.Err())}
	}
}

// ValidateSheet runs the structural checks on an already parsed sheet.
func (v *Validator) ValidateSheet(s *Sheet, rt schema.ReturnType) Outcome {
	o := Outcome{
		Errors:   []string{},
		Warnings: []string{},
		RowCount: len(s.Rows),
		Headers:  s.EffectiveHeaders(),
	}

	present := make(map[string]bool, len(o.Headers))
	for _, h := range o.Headers {
		present[h] = true
	}
	for _, col := range schema.RequiredColumns(rt) {
		if !present[col] {
			o.addError(fmt.Sprintf("Missing required column: %s", col))
		}
	}

	for i, row := range s.Rows {
		if isBlankRow(row) {
			o.addWarning(fmt.Sprintf("Empty row at line %d", lineNumber(i)))
		}
	}

	if rule, ok := v.rules[rt]; ok {
		rule(s, &o)
	}

	return o.finish()
}
