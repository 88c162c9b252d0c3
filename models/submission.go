package models

import (
	"time"
)

type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusValidated SubmissionStatus = "validated"
	StatusRejected  SubmissionStatus = "rejected"
	StatusApproved  SubmissionStatus = "approved"
)

// Submission is one regulatory filing. ValidatedAt is stamped by the automatic
// validation pass; ApprovedAt and RejectedAt only by a reviewer, never both.
type Submission struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	BankID      uint              `json:"bank_id" gorm:"not null;index"`
	Bank        *Bank             `json:"bank,omitempty" gorm:"foreignKey:BankID"`
	UserID      uint              `json:"user_id" gorm:"not null;index"`
	User        *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Period      string            `json:"period" gorm:"not null;index"`
	ReturnType  string            `json:"return_type" gorm:"not null;index"`
	Status      SubmissionStatus  `json:"status" gorm:"not null;default:pending;index"` // pending, validated, rejected, approved
	SubmittedAt time.Time         `json:"submitted_at" gorm:"not null"`
	ValidatedAt *time.Time        `json:"validated_at"`
	ApprovedAt  *time.Time        `json:"approved_at"`
	RejectedAt  *time.Time        `json:"rejected_at"`
	ReviewedBy  *uint             `json:"reviewed_by"`
	Comments    string            `json:"comments"`
	Files       []SubmissionFile  `json:"files,omitempty"`
	Validation  *ValidationResult `json:"validation,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type SubmissionFile struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SubmissionID uint      `json:"submission_id" gorm:"not null;index"`
	FileName     string    `json:"file_name" gorm:"not null"`
	StoragePath  string    `json:"-" gorm:"not null"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum"`
	UploadedAt   time.Time `json:"uploaded_at" gorm:"not null"`
}
