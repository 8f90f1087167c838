package database

import (
	"os"
	"path/filepath"

	"github.com/classeur/core/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize creates and returns a database connection
func Initialize(dbPath string) (*gorm.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// runMigrations runs all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.GeneralSettings{},
		&models.MailAccount{},
		&models.Message{},
		&models.SenderPath{},
		&models.Log{},
	); err != nil {
		return err
	}

	// Messages cached before directions existed are received mail
	db.Model(&models.Message{}).Where("direction = '' OR direction IS NULL").Update("direction", models.DirectionReceived)

	// The split deposit-folder columns may post-date existing settings rows;
	// AutoMigrate adds the columns, the settings service performs the
	// one-time value migration at load.
	if db.Migrator().HasTable(&models.GeneralSettings{}) {
		if !db.Migrator().HasColumn(&models.GeneralSettings{}, "received_email_deposit_folder") {
			db.Migrator().AddColumn(&models.GeneralSettings{}, "received_email_deposit_folder")
		}
		if !db.Migrator().HasColumn(&models.GeneralSettings{}, "sent_email_deposit_folder") {
			db.Migrator().AddColumn(&models.GeneralSettings{}, "sent_email_deposit_folder")
		}
	}

	return nil
}
