package services

import (
	"testing"

	"github.com/classeur/core/internal/database/models"
	"github.com/classeur/core/internal/filing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGeneralSettingsCreatesDefaults(t *testing.T) {
	db := newTestDB(t)
	settingsService := NewSettingsService(db)

	settings, err := settingsService.GetGeneralSettings(1)
	require.NoError(t, err)

	assert.Equal(t, "json", settings.FileFormat)
	assert.Equal(t, models.DefaultFilenamePattern, settings.FilenamePattern)
	assert.Equal(t, models.DefaultFilenamePatternSent, settings.FilenamePatternSent)
	assert.NotEmpty(t, settings.CharacterCleaning)

	// second call returns the stored row, not a fresh one
	again, err := settingsService.GetGeneralSettings(1)
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)
}

func TestLegacyDepositFolderMigration(t *testing.T) {
	db := newTestDB(t)
	settingsService := NewSettingsService(db)

	row := models.GeneralSettings{
		UserID:             7,
		EmailDepositFolder: "Courriers",
		FileFormat:         "json",
	}
	require.NoError(t, db.Create(&row).Error)

	settings, err := settingsService.GetGeneralSettings(7)
	require.NoError(t, err)
	assert.Equal(t, "Courriers", settings.ReceivedEmailDepositFolder)
	assert.Empty(t, settings.EmailDepositFolder)

	// the migration runs once; later loads leave the values alone
	newValue := "Autre"
	_, err = settingsService.UpdateGeneralSettings(7, UpdateGeneralSettingsInput{
		ReceivedEmailDepositFolder: &newValue,
	})
	require.NoError(t, err)

	settings, err = settingsService.GetGeneralSettings(7)
	require.NoError(t, err)
	assert.Equal(t, "Autre", settings.ReceivedEmailDepositFolder)
	assert.Empty(t, settings.EmailDepositFolder)
}

func TestLegacyMigrationSkippedWhenReceivedSet(t *testing.T) {
	db := newTestDB(t)
	settingsService := NewSettingsService(db)

	row := models.GeneralSettings{
		UserID:                     9,
		EmailDepositFolder:         "Ancien",
		ReceivedEmailDepositFolder: "Nouveau",
		FileFormat:                 "json",
	}
	require.NoError(t, db.Create(&row).Error)

	settings, err := settingsService.GetGeneralSettings(9)
	require.NoError(t, err)
	assert.Equal(t, "Nouveau", settings.ReceivedEmailDepositFolder)
	assert.Equal(t, "Ancien", settings.EmailDepositFolder)
}

func TestSnapshotMalformedPolicyFallsBack(t *testing.T) {
	db := newTestDB(t)
	settingsService := NewSettingsService(db)

	row := models.GeneralSettings{
		UserID:            3,
		FileFormat:        "txt",
		CharacterCleaning: "{not json",
	}
	require.NoError(t, db.Create(&row).Error)

	snapshot, err := settingsService.Snapshot(3)
	require.NoError(t, err)

	assert.Equal(t, filing.FormatTXT, snapshot.FileFormat)
	assert.Equal(t, filing.DefaultCleaningPolicy(), snapshot.Cleaning)
	// empty stored patterns resolve to the defaults
	assert.Equal(t, models.DefaultFilenamePattern, snapshot.FilenamePattern)
	assert.Equal(t, models.DefaultFilenamePatternSent, snapshot.FilenamePatternSent)
}

func TestSnapshotCarriesDepositFolders(t *testing.T) {
	db := newTestDB(t)
	settingsService := NewSettingsService(db)

	row := models.GeneralSettings{
		UserID:                     4,
		RootFolder:                 "/srv/classeur",
		ReceivedEmailDepositFolder: "Reçus",
		SentEmailDepositFolder:     "Envoyés",
		FileFormat:                 "eml",
	}
	require.NoError(t, db.Create(&row).Error)

	snapshot, err := settingsService.Snapshot(4)
	require.NoError(t, err)

	assert.Equal(t, "/srv/classeur", snapshot.RootFolder)
	assert.Equal(t, "Reçus", snapshot.ReceivedDepositFolder)
	assert.Equal(t, "Envoyés", snapshot.SentDepositFolder)
	assert.Equal(t, filing.FormatEML, snapshot.FileFormat)
}

func TestFolderTreeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	settingsService := NewSettingsService(db)

	tree, err := settingsService.GetFolderTree(5)
	require.NoError(t, err)
	assert.Empty(t, tree.Roots())

	node, err := tree.Add("", "Clients", "folder", "")
	require.NoError(t, err)
	require.NoError(t, settingsService.SaveFolderTree(5, tree))

	loaded, err := settingsService.GetFolderTree(5)
	require.NoError(t, err)
	got, ok := loaded.Node(node.ID)
	require.True(t, ok)
	assert.Equal(t, "Clients", got.Name)
}
