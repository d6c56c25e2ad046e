package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gita-search-api/internal/models"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	original := models.Verse{
		Chapter:     2,
		Verse:       47,
		Translation: "You have the right to perform your prescribed duties, but you are not entitled to the fruits of your actions.",
		Commentary:  "A long traditional commentary with \"quotes\" and unicode: कर्म.",
	}
	require.NoError(t, WriteVerse(dir, original))

	verses, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, verses, 1)
	assert.Equal(t, original, verses[0])
}

func TestLoadDirOrdersNumerically(t *testing.T) {
	dir := t.TempDir()

	// Written out of order, and with two-digit numbers that would sort
	// wrong lexicographically.
	for _, ref := range [][2]int{{10, 3}, {2, 12}, {2, 2}, {10, 1}, {1, 1}} {
		require.NoError(t, WriteVerse(dir, models.Verse{
			Chapter:     ref[0],
			Verse:       ref[1],
			Translation: "text",
		}))
	}

	verses, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, verses, 5)

	var got [][2]int
	for _, v := range verses {
		got = append(got, [2]int{v.Chapter, v.Verse})
	}
	assert.Equal(t, [][2]int{{1, 1}, {2, 2}, {2, 12}, {10, 1}, {10, 3}}, got)
}

func TestLoadDirIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteVerse(dir, models.Verse{Chapter: 1, Verse: 1, Translation: "text"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "archive"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1", "notes.txt"), []byte("scratch"), 0o644))

	verses, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, verses, 1)
}

func TestLoadDirRejectsMissingTranslation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1", "1.json"), []byte(`{"chapter":1,"verse":1}`), 0o644))

	_, err := LoadDir(dir)
	assert.Error(t, err)
}
