package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budget-monitor/internal/fileutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "ledger.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("x"), 0600))

	assert.True(t, fileutils.FileExists(testFile))
	assert.False(t, fileutils.FileExists(filepath.Join(tmpDir, "nonexistent.csv")))
	assert.False(t, fileutils.FileExists(tmpDir), "a directory is not a file")
}

func TestDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(filepath.Join(tmpDir, "nonexistent")))

	testFile := filepath.Join(tmpDir, "ledger.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("x"), 0600))
	assert.False(t, fileutils.DirectoryExists(testFile))
}

func TestEnsureDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	newDir := filepath.Join(tmpDir, "out", "2024", "q1")
	require.NoError(t, fileutils.EnsureDirectoryExists(newDir))
	assert.True(t, fileutils.DirectoryExists(newDir))

	assert.NoError(t, fileutils.EnsureDirectoryExists(tmpDir))
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "lookups.yaml")
	content := []byte("orders: []\n")
	require.NoError(t, os.WriteFile(testFile, content, 0600))

	data, err := fileutils.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	_, err = fileutils.ReadFile(filepath.Join(tmpDir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestWriteFile_CreatesParents(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("{}")

	nested := filepath.Join(tmpDir, "a", "b", "summary.json")
	require.NoError(t, fileutils.WriteFile(nested, content, 0600))

	data, err := os.ReadFile(nested)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestOpenFile(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "budget.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("year;month;amount\n"), 0600))

	file, err := fileutils.OpenFile(testFile)
	require.NoError(t, err)
	assert.NoError(t, file.Close())

	_, err = fileutils.OpenFile(filepath.Join(tmpDir, "missing.csv"))
	assert.Error(t, err)
}

func TestHasExtension(t *testing.T) {
	assert.True(t, fileutils.HasExtension("lookups.YAML", ".yaml", ".yml"))
	assert.True(t, fileutils.HasExtension("/tmp/l.yml", ".yaml", ".yml"))
	assert.False(t, fileutils.HasExtension("orders.csv", ".yaml", ".yml"))
	assert.False(t, fileutils.HasExtension("noext"))
}
