package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Nickname     string    `gorm:"size:100" json:"nickname"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	MailAccounts []MailAccount    `gorm:"foreignKey:UserID" json:"mail_accounts,omitempty"`
	Settings     *GeneralSettings `gorm:"foreignKey:UserID" json:"settings,omitempty"`
}
