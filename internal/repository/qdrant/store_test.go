package qdrant

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gita-search-api/internal/models"
	"github.com/gita-search-api/internal/repository"
)

func TestPointID(t *testing.T) {
	uuidPattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	id1 := pointID("ch2_v47")
	id2 := pointID("ch2_v47")
	id3 := pointID("ch2_v48")

	assert.Regexp(t, uuidPattern, id1)
	assert.Equal(t, id1, id2, "point IDs must be deterministic")
	assert.NotEqual(t, id1, id3)
}

func TestBuildFilter(t *testing.T) {
	assert.Nil(t, buildFilter(nil))
	assert.Nil(t, buildFilter(&repository.Filter{}))

	chapter, verse := 2, 47
	f := buildFilter(&repository.Filter{Chapter: &chapter, Verse: &verse})
	require.NotNil(t, f)
	require.Len(t, f.Must, 2)

	assert.Equal(t, "chapter", f.Must[0].GetField().GetKey())
	assert.Equal(t, int64(2), f.Must[0].GetField().GetMatch().GetInteger())
	assert.Equal(t, "verse", f.Must[1].GetField().GetKey())
	assert.Equal(t, int64(47), f.Must[1].GetField().GetMatch().GetInteger())

	chapterOnly := buildFilter(&repository.Filter{Chapter: &chapter})
	require.NotNil(t, chapterOnly)
	assert.Len(t, chapterOnly.Must, 1)
}

func TestPayloadRoundTrip(t *testing.T) {
	verse := models.Verse{
		Chapter:     2,
		Verse:       47,
		Translation: "You have the right to perform your prescribed duties...",
		Commentary:  "traditional commentary",
		Summary:     "short summary",
	}

	got, err := verseFromPayload(payloadFromVerse(verse))
	require.NoError(t, err)
	assert.Equal(t, verse, got)
}

func TestPayloadTruncatesLongText(t *testing.T) {
	verse := models.Verse{
		Chapter:     1,
		Verse:       1,
		Translation: "text",
		Commentary:  strings.Repeat("x", metadataTextLimit+500),
	}

	got, err := verseFromPayload(payloadFromVerse(verse))
	require.NoError(t, err)
	assert.Len(t, got.Commentary, metadataTextLimit)
}

func TestVerseFromPayloadMissingKey(t *testing.T) {
	_, err := verseFromPayload(nil)
	assert.Error(t, err)
}
