package cdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "users.txt")
	cdbPath := filepath.Join(dir, "users.cdb")

	err := os.WriteFile(textPath, []byte(
		"alice p1 100 100 0 0 0 0 0\n"+
			"bob p2 200 200 0 0 0 0 0\n",
	), 0644)
	require.NoError(t, err)

	require.NoError(t, Import(cdbPath, textPath))

	value, err := Get(cdbPath, []byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, "p1 100 100 0 0 0 0 0", string(value))

	exportedPath := filepath.Join(dir, "exported.txt")
	require.NoError(t, Export(cdbPath, exportedPath))

	exported, err := os.ReadFile(exportedPath)
	require.NoError(t, err)
	assert.Contains(t, string(exported), "alice p1 100 100 0 0 0 0 0")
	assert.Contains(t, string(exported), "bob p2 200 200 0 0 0 0 0")
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "users.txt")
	cdbPath := filepath.Join(dir, "users.cdb")

	require.NoError(t, os.WriteFile(textPath, []byte("alice p1 0 0 0 0 0 0 0\n"), 0644))
	require.NoError(t, Import(cdbPath, textPath))

	_, err := Get(cdbPath, []byte("nobody"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportLastDuplicateWins(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "users.txt")
	cdbPath := filepath.Join(dir, "users.cdb")

	require.NoError(t, os.WriteFile(textPath, []byte(
		"alice old 0 0 0 0 0 0 0\n"+
			"alice new 0 0 0 0 0 0 0\n",
	), 0644))
	require.NoError(t, Import(cdbPath, textPath))

	value, err := Get(cdbPath, []byte("alice"))
	require.NoError(t, err)
	assert.Contains(t, string(value), "new")
}

func TestGetOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Get(filepath.Join(dir, "nonexistent.cdb"), []byte("alice"))
	assert.Error(t, err)
}
