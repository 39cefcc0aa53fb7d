package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_more.sql", "001_init.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700))

	files, err := SortedFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001_init.sql"),
		filepath.Join(dir, "002_more.sql"),
	}, files)
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", versionOf("migrations/001_init.sql"))
	assert.Equal(t, "010", versionOf("010_add_index_on_comments.sql"))
}

func TestSortedFiles_MissingDirectory(t *testing.T) {
	_, err := SortedFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
