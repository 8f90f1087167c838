package services

import (
	"errors"
	"time"

	"github.com/classeur/core/internal/database/models"
	"github.com/classeur/core/internal/filing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSenderPathNotFound indicates no folder association exists for a sender
var ErrSenderPathNotFound = errors.New("sender path not found")

// SenderService persists correspondent-to-folder associations. It
// implements filing.SenderStore, keyed by normalized email address.
type SenderService struct {
	db *gorm.DB
}

// NewSenderService creates a new SenderService instance
func NewSenderService(db *gorm.DB) *SenderService {
	return &SenderService{db: db}
}

// Get returns the entry for an email address, or nil when unknown.
// Lookup is case-insensitive on the address.
func (s *SenderService) Get(email string) (*filing.SenderEntry, error) {
	key := filing.NormalizeEmail(email)
	if key == "" {
		return nil, nil
	}

	var row models.SenderPath
	if err := s.db.Where("sender_email = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return entryFromRow(&row), nil
}

// Upsert records or overwrites the folder for a sender. The address is
// normalized before storage so Jane@X.com and jane@x.com share one row.
func (s *SenderService) Upsert(entry filing.SenderEntry) error {
	key := filing.NormalizeEmail(entry.Email)
	if key == "" {
		return ErrSenderPathNotFound
	}

	updatedAt := entry.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	row := models.SenderPath{
		SenderEmail: key,
		SenderName:  entry.Name,
		FolderPath:  entry.FolderPath,
		UpdatedAt:   updatedAt,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sender_email"}},
		DoUpdates: clause.AssignmentColumns([]string{"sender_name", "folder_path", "updated_at"}),
	}).Create(&row).Error
}

// Delete removes the association for a sender
func (s *SenderService) Delete(email string) error {
	key := filing.NormalizeEmail(email)
	result := s.db.Where("sender_email = ?", key).Delete(&models.SenderPath{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSenderPathNotFound
	}
	return nil
}

// ListAll returns every association ordered by email address
func (s *SenderService) ListAll() ([]filing.SenderEntry, error) {
	var rows []models.SenderPath
	if err := s.db.Order("sender_email asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]filing.SenderEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, *entryFromRow(&rows[i]))
	}
	return entries, nil
}

// DeleteByFolderPaths removes every association whose folder path matches
// one of the given logical paths or lives beneath one of them. Used when
// folders are removed from the folder structure.
func (s *SenderService) DeleteByFolderPaths(paths []string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	var removed int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		result := s.db.Where("folder_path = ? OR folder_path LIKE ?", p, p+"/%").
			Delete(&models.SenderPath{})
		if result.Error != nil {
			return removed, result.Error
		}
		removed += result.RowsAffected
	}
	return removed, nil
}

func entryFromRow(row *models.SenderPath) *filing.SenderEntry {
	return &filing.SenderEntry{
		Email:      row.SenderEmail,
		Name:       row.SenderName,
		FolderPath: row.FolderPath,
		UpdatedAt:  row.UpdatedAt,
	}
}
