package models

import (
	"time"
)

// SenderPath maps a normalized correspondent email to the folder chosen for
// their mail. The email is the sole identity; the display name is cosmetic.
type SenderPath struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderEmail string    `gorm:"uniqueIndex;size:255;not null" json:"sender_email"`
	SenderName  string    `gorm:"size:255" json:"sender_name,omitempty"`
	FolderPath  string    `gorm:"size:500;not null" json:"folder_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
