package filestore_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentdesk/placement-engine/filestore"
)

func TestSave_WritesUUIDNamedFile(t *testing.T) {
	fs, err := filestore.New(t.TempDir(), "/files")
	require.NoError(t, err)

	url, err := fs.Save(strings.NewReader("resume body"), "Priya Resume.PDF")
	require.NoError(t, err)

	// Caller-supplied name never reaches the disk; only the extension
	// survives, lowercased.
	assert.True(t, strings.HasPrefix(url, "/files/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))
	assert.NotContains(t, url, "Priya")

	name := strings.TrimPrefix(url, "/files/")
	data, err := os.ReadFile(filepath.Join(fs.Root(), name))
	require.NoError(t, err)
	assert.Equal(t, "resume body", string(data))
}

func TestRemove_DeletesSavedFile(t *testing.T) {
	fs, err := filestore.New(t.TempDir(), "/files")
	require.NoError(t, err)

	url, err := fs.Save(strings.NewReader("x"), "photo.jpg")
	require.NoError(t, err)
	require.NoError(t, fs.Remove(url))

	name := strings.TrimPrefix(url, "/files/")
	_, statErr := os.Stat(filepath.Join(fs.Root(), name))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemove_IgnoresForeignAndMissingURLs(t *testing.T) {
	fs, err := filestore.New(t.TempDir(), "/files")
	require.NoError(t, err)

	assert.NoError(t, fs.Remove("https://elsewhere.example/doc.pdf"))
	assert.NoError(t, fs.Remove("/files/never-saved.pdf"))
	assert.NoError(t, fs.Remove("/files/../../etc/passwd"))
}
