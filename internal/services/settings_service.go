package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/classeur/core/internal/database/models"
	"github.com/classeur/core/internal/filing"
	"github.com/classeur/core/internal/foldertree"
	"gorm.io/gorm"
)

var (
	// ErrSettingsNotFound indicates no settings row exists for the user
	ErrSettingsNotFound = errors.New("settings not found")
	// ErrInvalidSettings indicates a rejected settings value
	ErrInvalidSettings = errors.New("invalid settings")
)

// SettingsService manages the per-user filing configuration
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsService instance
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// GetGeneralSettings loads the user's settings, creating a default row on
// first access. The legacy single deposit-folder value is migrated into the
// received-mail slot here, once, then cleared.
func (s *SettingsService) GetGeneralSettings(userID uint) (*models.GeneralSettings, error) {
	var settings models.GeneralSettings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = defaultSettings(userID)
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}

	if settings.EmailDepositFolder != "" && settings.ReceivedEmailDepositFolder == "" {
		settings.ReceivedEmailDepositFolder = settings.EmailDepositFolder
		settings.EmailDepositFolder = ""
		if err := s.db.Save(&settings).Error; err != nil {
			log.Printf("[Settings] legacy deposit folder migration failed for user %d: %v", userID, err)
		} else {
			log.Printf("[Settings] migrated legacy deposit folder for user %d", userID)
		}
	}

	return &settings, nil
}

// UpdateGeneralSettingsInput carries partial settings updates. Nil fields
// are left untouched.
type UpdateGeneralSettingsInput struct {
	RootFolder                 *string `json:"root_folder"`
	ReceivedEmailDepositFolder *string `json:"received_email_deposit_folder"`
	SentEmailDepositFolder     *string `json:"sent_email_deposit_folder"`
	FileFormat                 *string `json:"file_format"`
	FilenamePattern            *string `json:"filename_pattern"`
	FilenamePatternSent        *string `json:"filename_pattern_sent"`
	CharacterCleaning          *string `json:"character_cleaning"`
}

// UpdateGeneralSettings applies a partial update to the user's settings
func (s *SettingsService) UpdateGeneralSettings(userID uint, input UpdateGeneralSettingsInput) (*models.GeneralSettings, error) {
	settings, err := s.GetGeneralSettings(userID)
	if err != nil {
		return nil, err
	}

	if input.RootFolder != nil {
		settings.RootFolder = *input.RootFolder
	}
	if input.ReceivedEmailDepositFolder != nil {
		settings.ReceivedEmailDepositFolder = *input.ReceivedEmailDepositFolder
	}
	if input.SentEmailDepositFolder != nil {
		settings.SentEmailDepositFolder = *input.SentEmailDepositFolder
	}
	if input.FileFormat != nil {
		if !filing.FileFormat(*input.FileFormat).IsValid() {
			return nil, fmt.Errorf("%w: unknown file format %q", ErrInvalidSettings, *input.FileFormat)
		}
		settings.FileFormat = *input.FileFormat
	}
	if input.FilenamePattern != nil {
		settings.FilenamePattern = *input.FilenamePattern
	}
	if input.FilenamePatternSent != nil {
		settings.FilenamePatternSent = *input.FilenamePatternSent
	}
	if input.CharacterCleaning != nil {
		var policy filing.CleaningPolicy
		if err := json.Unmarshal([]byte(*input.CharacterCleaning), &policy); err != nil {
			return nil, fmt.Errorf("%w: character cleaning policy: %v", ErrInvalidSettings, err)
		}
		settings.CharacterCleaning = *input.CharacterCleaning
	}

	if err := s.db.Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// GetFolderTree decodes the user's folder structure. An empty or missing
// structure yields an empty tree.
func (s *SettingsService) GetFolderTree(userID uint) (*foldertree.Tree, error) {
	settings, err := s.GetGeneralSettings(userID)
	if err != nil {
		return nil, err
	}
	if settings.FolderStructure == "" {
		return foldertree.New(), nil
	}
	return foldertree.FromJSON([]byte(settings.FolderStructure))
}

// SaveFolderTree encodes and stores the user's folder structure
func (s *SettingsService) SaveFolderTree(userID uint, tree *foldertree.Tree) error {
	settings, err := s.GetGeneralSettings(userID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	settings.FolderStructure = string(data)
	return s.db.Save(settings).Error
}

// Snapshot converts the stored settings row into the value types the
// filing engine consumes. A malformed cleaning policy falls back to the
// default rather than blocking filing.
func (s *SettingsService) Snapshot(userID uint) (filing.Settings, error) {
	settings, err := s.GetGeneralSettings(userID)
	if err != nil {
		return filing.Settings{}, err
	}

	policy := filing.DefaultCleaningPolicy()
	if settings.CharacterCleaning != "" {
		if err := json.Unmarshal([]byte(settings.CharacterCleaning), &policy); err != nil {
			log.Printf("[Settings] malformed cleaning policy for user %d, using defaults: %v", userID, err)
			policy = filing.DefaultCleaningPolicy()
		}
	}

	pattern := settings.FilenamePattern
	if pattern == "" {
		pattern = models.DefaultFilenamePattern
	}
	patternSent := settings.FilenamePatternSent
	if patternSent == "" {
		patternSent = models.DefaultFilenamePatternSent
	}

	return filing.Settings{
		RootFolder:            settings.RootFolder,
		ReceivedDepositFolder: settings.ReceivedEmailDepositFolder,
		SentDepositFolder:     settings.SentEmailDepositFolder,
		LegacyDepositFolder:   settings.EmailDepositFolder,
		FileFormat:            filing.FileFormat(settings.FileFormat),
		FilenamePattern:       pattern,
		FilenamePatternSent:   patternSent,
		Cleaning:              policy,
	}, nil
}

func defaultSettings(userID uint) models.GeneralSettings {
	policy := filing.DefaultCleaningPolicy()
	policyJSON, _ := json.Marshal(policy)

	return models.GeneralSettings{
		UserID:              userID,
		FileFormat:          string(filing.FormatJSON),
		FilenamePattern:     models.DefaultFilenamePattern,
		FilenamePatternSent: models.DefaultFilenamePatternSent,
		CharacterCleaning:   string(policyJSON),
	}
}
