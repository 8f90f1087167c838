package filing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDepositFolderEmptyName(t *testing.T) {
	base := t.TempDir()

	res := ResolveDepositFolder(base, "")
	assert.Equal(t, base, res.FinalPath)
	assert.False(t, res.Used)
}

func TestResolveDepositFolderExisting(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Courriers", "Reçus"), 0755))

	res := ResolveDepositFolder(base, "Courriers/Reçus")
	assert.Equal(t, filepath.Join(base, "Courriers", "Reçus"), res.FinalPath)
	assert.True(t, res.Used)
}

func TestResolveDepositFolderDotSeparators(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Mails", "Archive"), 0755))

	res := ResolveDepositFolder(base, "Mails.Archive")
	assert.Equal(t, filepath.Join(base, "Mails", "Archive"), res.FinalPath)
	assert.True(t, res.Used)
}

func TestResolveDepositFolderMissingFallsBack(t *testing.T) {
	base := t.TempDir()

	res := ResolveDepositFolder(base, "Courriers")
	assert.Equal(t, base, res.FinalPath)
	assert.False(t, res.Used)

	// the probe never creates anything
	_, err := os.Stat(filepath.Join(base, "Courriers"))
	assert.True(t, os.IsNotExist(err))
}

func TestResolveDepositFolderFileIsNotADirectory(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "Courriers"), []byte("x"), 0644))

	res := ResolveDepositFolder(base, "Courriers")
	assert.Equal(t, base, res.FinalPath)
	assert.False(t, res.Used)
}

func TestResolveDepositFolderCreatedLaterIsPickedUp(t *testing.T) {
	base := t.TempDir()

	first := ResolveDepositFolder(base, "Reçus")
	assert.False(t, first.Used)

	require.NoError(t, os.Mkdir(filepath.Join(base, "Reçus"), 0755))

	second := ResolveDepositFolder(base, "Reçus")
	assert.True(t, second.Used)
	assert.Equal(t, filepath.Join(base, "Reçus"), second.FinalPath)
}
