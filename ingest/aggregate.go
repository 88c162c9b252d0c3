package ingest

import (
	"regportal-go/models"
)

// FileOutcome is the validation of one uploaded file, in upload order.
type FileOutcome struct {
	FileName   string  `json:"file_name"`
	FileID     uint    `json:"file_id"`
	Validation Outcome `json:"validation"`
}

// Summary combines per-file outcomes. AllValid and Status != failed always
// agree because validity is defined purely by error count.
type Summary struct {
	AllValid      bool                    `json:"all_valid"`
	TotalErrors   int                     `json:"total_errors"`
	TotalWarnings int                     `json:"total_warnings"`
	Status        models.ValidationStatus `json:"status"`
	Files         []FileOutcome           `json:"files"`
}

func Aggregate(files []FileOutcome) Summary {
	s := Summary{AllValid: true, Files: files}
	for _, f := range files {
		if !f.Validation.Valid {
			s.AllValid = false
		}
		s.TotalErrors += len(f.Validation.Errors)
		s.TotalWarnings += len(f.Validation.Warnings)
	}
	s.Status = StatusFor(s.TotalErrors, s.TotalWarnings)
	return s
}

// StatusFor derives the aggregate status from the finding counts.
func StatusFor(errs, warnings int) models.ValidationStatus {
	switch {
	case errs > 0:
		return models.ValidationFailed
	case warnings > 0:
		return models.ValidationWarning
	default:
		return models.ValidationPassed
	}
}

// Errors flattens every file's errors, per file then in-file order.
func (s Summary) Errors() []string {
	out := []string{}
	for _, f := range s.Files {
		out = append(out, f.Validation.Errors...)
	}
	return out
}

// Warnings flattens every file's warnings, per file then in-file order.
func (s Summary) Warnings() []string {
	out := []string{}
	for _, f := range s.Files {
		out = append(out, f.Validation.Warnings...)
	}
	return out
}

// Details lists one record per finding: all errors and warnings of the first
// file, then the second, and so on.
func (s Summary) Details() []models.ValidationDetail {
	var details []models.ValidationDetail
	pos := 0
	for _, f := range s.Files {
		for _, msg := range f.Validation.Errors {
			details = append(details, models.ValidationDetail{
				Position: pos,
				FileName: f.FileName,
				Field:    models.FieldFileStructure,
				Status:   models.DetailInvalid,
				Message:  msg,
			})
			pos++
		}
		for _, msg := range f.Validation.Warnings {
			details = append(details, models.ValidationDetail{
				Position: pos,
				FileName: f.FileName,
				Field:    models.FieldDataQuality,
				Status:   models.DetailWarning,
				Message:  msg,
			})
			pos++
		}
	}
	return details
}

// Result builds the ValidationResult record for the summary.
func (s Summary) Result(submissionID uint) *models.ValidationResult {
	return &models.ValidationResult{
		SubmissionID:  submissionID,
		Status:        s.Status,
		TotalErrors:   s.TotalErrors,
		TotalWarnings: s.TotalWarnings,
		Details:       s.Details(),
	}
}
