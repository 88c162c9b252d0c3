package models

import (
	"time"
)

const (
	RoleBank      = "bank"
	RoleRegulator = "regulator"
)

// Bank and User are reference records maintained elsewhere; submissions only
// join their labels in.
type Bank struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BankID    *uint     `json:"bank_id"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName  string    `json:"full_name" gorm:"not null"`
	Role      string    `json:"role" gorm:"default:bank"` // bank, regulator
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
