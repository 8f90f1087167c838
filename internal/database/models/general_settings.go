package models

import (
	"time"
)

// Default filename patterns applied when a user has never configured any
const (
	DefaultFilenamePattern     = "{date}_{time}_{subject}"
	DefaultFilenamePatternSent = "{type_prefix}_{date}_{time}_{subject}"
)

// GeneralSettings stores the per-user filing configuration. FolderStructure
// and CharacterCleaning are JSON blobs (the tree and the cleaning policy);
// everything else maps to plain columns.
//
// EmailDepositFolder is the legacy single deposit-folder setting from before
// received and sent mail could be routed separately. It is migrated into
// ReceivedEmailDepositFolder once, at load time.
type GeneralSettings struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	RootFolder      string `gorm:"size:500" json:"root_folder"`
	FolderStructure string `gorm:"type:text" json:"folder_structure"`

	ReceivedEmailDepositFolder string `gorm:"size:255" json:"received_email_deposit_folder"`
	SentEmailDepositFolder     string `gorm:"size:255" json:"sent_email_deposit_folder"`
	EmailDepositFolder         string `gorm:"size:255" json:"email_deposit_folder,omitempty"`

	FileFormat          string `gorm:"size:10;default:'json'" json:"file_format"`
	FilenamePattern     string `gorm:"size:500" json:"filename_pattern"`
	FilenamePatternSent string `gorm:"size:500" json:"filename_pattern_sent"`

	CharacterCleaning string `gorm:"type:text" json:"character_cleaning"`

	UpdatedAt time.Time `json:"updated_at"`
}
