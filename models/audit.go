package models

import (
	"time"
)

type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       *uint     `json:"user_id"`
	SubmissionID uint      `json:"submission_id" gorm:"index"`
	Action       string    `json:"action" gorm:"not null"`
	Resource     string    `json:"resource" gorm:"not null"`
	Details      string    `json:"details"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
}
