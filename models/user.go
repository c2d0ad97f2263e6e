package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an operator allowed to upload and edit invoices. ChatID is the
// identifier drafts and sessions are keyed by.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ChatID    int64          `gorm:"uniqueIndex;not null" json:"chat_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"` // admin, user
	IsActive  bool           `gorm:"default:true" json:"is_active"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}
