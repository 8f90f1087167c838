package models

import (
	"time"
)

// Direction of a cached message relative to the account owner
const (
	DirectionReceived = "received"
	DirectionSent     = "sent"
)

// Message represents a mail message cached from the provider
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AccountID      uint      `gorm:"index;not null" json:"account_id"`
	MessageID      string    `gorm:"uniqueIndex;size:255;not null" json:"message_id"`
	Subject        string    `gorm:"size:500" json:"subject"`
	FromName       string    `gorm:"size:255" json:"from_name"`
	FromAddr       string    `gorm:"size:255" json:"from_addr"`
	ToAddrs        string    `gorm:"type:text" json:"to"` // JSON array of {name,address} pairs
	Direction      string    `gorm:"size:10;index;default:'received'" json:"direction"`
	SentAt         time.Time `json:"sent_at"`
	ReceivedAt     time.Time `gorm:"index" json:"received_at"`
	Importance     string    `gorm:"size:10;default:'normal'" json:"importance"` // low, normal, high
	HasAttachments bool      `gorm:"default:false" json:"has_attachments"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
	Body           string    `gorm:"type:text" json:"body"`
	HTMLBody       string    `gorm:"type:text" json:"html_body"`
	RawContent     []byte    `gorm:"type:blob" json:"-"`
	FiledPath      string    `gorm:"size:500" json:"filed_path,omitempty"`
	FiledAt        time.Time `json:"filed_at,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
