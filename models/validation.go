package models

import (
	"time"
)

type ValidationStatus string

const (
	ValidationPassed  ValidationStatus = "passed"
	ValidationWarning ValidationStatus = "warning"
	ValidationFailed  ValidationStatus = "failed"
)

type DetailStatus string

const (
	DetailInvalid DetailStatus = "invalid"
	DetailWarning DetailStatus = "warning"
)

const (
	FieldFileStructure = "File Structure"
	FieldDataQuality   = "Data Quality"
)

// ValidationResult is the aggregate outcome of one submission, 1:1 with it.
type ValidationResult struct {
	ID            uint               `json:"id" gorm:"primaryKey"`
	SubmissionID  uint               `json:"submission_id" gorm:"not null;uniqueIndex"`
	Status        ValidationStatus   `json:"status" gorm:"not null"` // passed, warning, failed
	TotalErrors   int                `json:"total_errors" gorm:"not null;default:0"`
	TotalWarnings int                `json:"total_warnings" gorm:"not null;default:0"`
	ValidatedAt   time.Time          `json:"validated_at" gorm:"not null"`
	Details       []ValidationDetail `json:"details"`
	CreatedAt     time.Time          `json:"created_at"`
}

type ValidationDetail struct {
	ID                 uint         `json:"id" gorm:"primaryKey"`
	ValidationResultID uint         `json:"validation_result_id" gorm:"not null;index"`
	Position           int          `json:"-" gorm:"not null"`
	FileName           string       `json:"file_name"`
	Field              string       `json:"field" gorm:"not null"`
	Status             DetailStatus `json:"status" gorm:"not null"` // invalid, warning
	Message            string       `json:"message" gorm:"not null"`
	CreatedAt          time.Time    `json:"created_at"`
}
