package filing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 15, 14, 30, 45, 0, time.UTC)
}

func orchestratorSettings() Settings {
	return Settings{
		FileFormat:          FormatJSON,
		FilenamePattern:     "{date}_{time}_{subject}",
		FilenamePatternSent: "{type_prefix}_{date}_{time}_{subject}",
		Cleaning:            DefaultCleaningPolicy(),
	}
}

func TestOrchestratorFileReceived(t *testing.T) {
	senders := &fakeDirectory{}
	o := NewOrchestrator(senders).WithClock(fixedClock)

	msg := receivedFrom("Jane Doe", "jane@acme.com")
	msg.Subject = "Devis signé"

	base := t.TempDir()
	result, err := o.File(msg, base, orchestratorSettings(), false)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15_14-30-45_Devis signé.json", result.FileName)
	assert.Equal(t, filepath.Join(base, result.FileName), result.AbsolutePath)
	assert.False(t, result.DepositFolderUsed)
}

func TestOrchestratorSentUsesSentPatternAndDeposit(t *testing.T) {
	senders := &fakeDirectory{}
	o := NewOrchestrator(senders).WithClock(fixedClock)

	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "Envoyés"), 0755))

	msg := &Message{
		ID:        "id-7",
		Subject:   "Relance",
		From:      Party{Address: "me@mine.com"},
		To:        []Party{{Name: "Paul", Address: "paul@client.fr"}},
		Direction: DirectionSent,
	}
	settings := orchestratorSettings()
	settings.SentDepositFolder = "Envoyés"
	settings.ReceivedDepositFolder = "Reçus" // must not apply to sent mail

	result, err := o.File(msg, base, settings, false)
	require.NoError(t, err)

	assert.Equal(t, "SENT_2024-03-15_14-30-45_Relance.json", result.FileName)
	assert.Equal(t, filepath.Join(base, "Envoyés", result.FileName), result.AbsolutePath)
	assert.True(t, result.DepositFolderUsed)
}

func TestOrchestratorLegacyDepositFallback(t *testing.T) {
	senders := &fakeDirectory{}
	o := NewOrchestrator(senders).WithClock(fixedClock)

	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "Courriers"), 0755))

	settings := orchestratorSettings()
	settings.LegacyDepositFolder = "Courriers"

	result, err := o.File(receivedFrom("Jane", "jane@acme.com"), base, settings, false)
	require.NoError(t, err)
	assert.True(t, result.DepositFolderUsed)
	assert.Equal(t, filepath.Join(base, "Courriers", result.FileName), result.AbsolutePath)
}

func TestOrchestratorPersistsChosenPathNotDepositPath(t *testing.T) {
	senders := &fakeDirectory{}
	o := NewOrchestrator(senders).WithClock(fixedClock)

	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "Reçus"), 0755))

	settings := orchestratorSettings()
	settings.ReceivedDepositFolder = "Reçus"

	_, err := o.File(receivedFrom("Jane Doe", "Jane@Acme.com"), base, settings, true)
	require.NoError(t, err)

	entry, err := senders.Get("jane@acme.com")
	require.NoError(t, err)
	require.NotNil(t, entry)
	// the deposit resolution is re-applied on every save
	assert.Equal(t, base, entry.FolderPath)
	assert.Equal(t, "Jane Doe", entry.Name)
}

func TestOrchestratorNoPersistWithoutFlag(t *testing.T) {
	senders := &fakeDirectory{}
	o := NewOrchestrator(senders).WithClock(fixedClock)

	_, err := o.File(receivedFrom("Jane", "jane@acme.com"), t.TempDir(), orchestratorSettings(), false)
	require.NoError(t, err)

	entry, err := senders.Get("jane@acme.com")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestOrchestratorEmptyPatternFallsBackToMessageID(t *testing.T) {
	o := NewOrchestrator(&fakeDirectory{}).WithClock(fixedClock)

	msg := receivedFrom("Jane", "jane@acme.com")
	msg.ID = "abc<def"

	settings := orchestratorSettings()
	settings.FilenamePattern = ""

	result, err := o.File(msg, t.TempDir(), settings, false)
	require.NoError(t, err)
	assert.Equal(t, "abc_def.json", result.FileName)
}

func TestOrchestratorInvalidFormatDefaultsToJSON(t *testing.T) {
	o := NewOrchestrator(&fakeDirectory{}).WithClock(fixedClock)

	settings := orchestratorSettings()
	settings.FileFormat = FileFormat("pdf")

	result, err := o.File(receivedFrom("Jane", "jane@acme.com"), t.TempDir(), settings, false)
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(result.FileName))
}

func TestOrchestratorRejectsMessageWithoutContact(t *testing.T) {
	o := NewOrchestrator(&fakeDirectory{}).WithClock(fixedClock)

	msg := &Message{ID: "id-9", Direction: DirectionReceived}
	_, err := o.File(msg, t.TempDir(), orchestratorSettings(), true)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestOrchestratorRejectsBlankPath(t *testing.T) {
	o := NewOrchestrator(&fakeDirectory{}).WithClock(fixedClock)

	_, err := o.File(receivedFrom("Jane", "jane@acme.com"), "   ", orchestratorSettings(), true)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

type failingStore struct {
	fakeDirectory
}

func (f *failingStore) Upsert(SenderEntry) error {
	return errors.New("disk full")
}

func TestOrchestratorUpsertFailureSurfaces(t *testing.T) {
	o := NewOrchestrator(&failingStore{}).WithClock(fixedClock)

	_, err := o.File(receivedFrom("Jane", "jane@acme.com"), t.TempDir(), orchestratorSettings(), true)
	assert.EqualError(t, err, "disk full")
}
