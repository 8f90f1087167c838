package models

import (
	"time"
)

// AuthType selects how an account authenticates against its provider
type AuthType string

const (
	// AuthTypePassword uses traditional IMAP LOGIN
	AuthTypePassword AuthType = "password"
	// AuthTypeOAuth2 uses XOAUTH2 with a refresh token
	AuthTypeOAuth2 AuthType = "oauth2"
)

// MailAccount represents a mail provider account configured by a user
type MailAccount struct {
	ID                uint     `gorm:"primaryKey" json:"id"`
	UserID            uint     `gorm:"index;not null" json:"user_id"`
	Email             string   `gorm:"size:255;not null" json:"email"`
	DisplayName       string   `gorm:"size:100" json:"display_name"`
	IMAPHost          string   `gorm:"size:255;not null" json:"imap_host"`
	IMAPPort          int      `gorm:"not null" json:"imap_port"`
	Username          string   `gorm:"size:255;not null" json:"username"`
	PasswordEncrypted string   `gorm:"size:500" json:"-"`
	UseSSL            bool     `gorm:"default:true" json:"use_ssl"`
	Enabled           bool     `gorm:"default:true" json:"enabled"`
	SentMailbox       string   `gorm:"size:255;default:'Sent'" json:"sent_mailbox"`
	SyncDays          int      `gorm:"default:30" json:"sync_days"` // Days to sync: -1=all, 0=incremental, >0=specific days
	AuthType          AuthType `gorm:"column:auth_type;size:20;default:'password'" json:"auth_type"`

	// OAuth2 credentials, encrypted like the password
	OAuthProvider     string    `gorm:"column:oauth_provider;size:50" json:"oauth_provider,omitempty"`
	OAuthAccessToken  string    `gorm:"column:oauth_access_token;type:text" json:"-"`
	OAuthRefreshToken string    `gorm:"column:oauth_refresh_token;type:text" json:"-"`
	OAuthTokenExpiry  time.Time `gorm:"column:oauth_token_expiry" json:"oauth_token_expiry,omitempty"`

	LastSyncAt time.Time `json:"last_sync_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Messages []Message `gorm:"foreignKey:AccountID" json:"messages,omitempty"`
}
