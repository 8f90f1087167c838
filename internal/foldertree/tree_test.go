package foldertree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleTree(t *testing.T) (*Tree, *Node, *Node, *Node) {
	t.Helper()
	tree := New()

	client, err := tree.Add("", "Dossier client", TypeFolder, "")
	require.NoError(t, err)
	mails, err := tree.Add(client.ID, "Courriers", TypeFolder, "")
	require.NoError(t, err)
	readme, err := tree.Add(client.ID, "notes.txt", TypeFile, "suivi du dossier")
	require.NoError(t, err)

	return tree, client, mails, readme
}

func TestTreeAddAndLookup(t *testing.T) {
	tree, client, mails, readme := buildSampleTree(t)

	assert.Len(t, tree.Roots(), 1)

	got, ok := tree.Node(mails.ID)
	require.True(t, ok)
	assert.Equal(t, "Courriers", got.Name)

	path, err := tree.LogicalPath(mails.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dossier client/Courriers", path)

	_, ok = tree.Node("missing")
	assert.False(t, ok)

	_ = client
	_ = readme
}

func TestTreeAddValidation(t *testing.T) {
	tree, _, _, readme := buildSampleTree(t)

	_, err := tree.Add("", "", TypeFolder, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = tree.Add("", "a/b", TypeFolder, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = tree.Add("unknown-parent", "x", TypeFolder, "")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = tree.Add(readme.ID, "x", TypeFolder, "")
	assert.ErrorIs(t, err, ErrNotAFolder)
}

func TestTreeRenameKeepsID(t *testing.T) {
	tree, client, mails, _ := buildSampleTree(t)

	require.NoError(t, tree.Rename(mails.ID, "Correspondance"))

	got, ok := tree.Node(mails.ID)
	require.True(t, ok)
	assert.Equal(t, "Correspondance", got.Name)

	path, err := tree.LogicalPath(mails.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dossier client/Correspondance", path)

	assert.ErrorIs(t, tree.Rename(mails.ID, "bad/name"), ErrInvalidName)
	assert.ErrorIs(t, tree.Rename("missing", "ok"), ErrNodeNotFound)

	_ = client
}

func TestTreeRemoveReturnsFolderPaths(t *testing.T) {
	tree, client, mails, readme := buildSampleTree(t)

	removed, err := tree.Remove(client.ID)
	require.NoError(t, err)
	// files never appear in the removed paths
	assert.ElementsMatch(t, []string{"Dossier client", "Dossier client/Courriers"}, removed)

	assert.Empty(t, tree.Roots())
	_, ok := tree.Node(mails.ID)
	assert.False(t, ok)
	_, ok = tree.Node(readme.ID)
	assert.False(t, ok)
}

func TestTreeRemoveSubtreeOnly(t *testing.T) {
	tree, client, mails, _ := buildSampleTree(t)

	removed, err := tree.Remove(mails.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dossier client/Courriers"}, removed)

	got, ok := tree.Node(client.ID)
	require.True(t, ok)
	assert.Len(t, got.Children, 1) // notes.txt survives
}

func TestTreeFolderPaths(t *testing.T) {
	tree, _, _, _ := buildSampleTree(t)

	assert.ElementsMatch(t,
		[]string{"Dossier client", "Dossier client/Courriers"},
		tree.FolderPaths())
}

func TestTreeJSONRoundTrip(t *testing.T) {
	tree, _, mails, _ := buildSampleTree(t)

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)

	got, ok := decoded.Node(mails.ID)
	require.True(t, ok)
	assert.Equal(t, "Courriers", got.Name)

	path, err := decoded.LogicalPath(mails.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dossier client/Courriers", path)
}

func TestFromJSONAssignsMissingIDs(t *testing.T) {
	raw := []byte(`[{"name":"Clients","type":"folder","children":[{"name":"modele.txt","type":"file"}]}]`)

	tree, err := FromJSON(raw)
	require.NoError(t, err)

	roots := tree.Roots()
	require.Len(t, roots, 1)
	assert.NotEmpty(t, roots[0].ID)
	require.Len(t, roots[0].Children, 1)
	assert.NotEmpty(t, roots[0].Children[0].ID)
}

func TestFromJSONEmpty(t *testing.T) {
	tree, err := FromJSON(nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Roots())
}
