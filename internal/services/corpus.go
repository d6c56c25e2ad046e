package services

import (
	"sort"

	"github.com/gita-search-api/internal/models"
)

// listingSummaryLimit truncates summaries in the corpus listing; the
// listing backs client-side search, not display.
const listingSummaryLimit = 200

// CorpusCache is a read-only, process-lifetime snapshot of the corpus
// used by GET /all-verses. Built once at startup; safe for concurrent
// reads.
type CorpusCache struct {
	listings []models.VerseListing
}

// NewCorpusCache builds the listing from the loaded corpus, ordered by
// chapter then verse. Verses without a precomputed summary fall back
// to their truncated commentary.
func NewCorpusCache(verses []models.Verse) *CorpusCache {
	listings := make([]models.VerseListing, len(verses))
	for i, v := range verses {
		summary := v.Summary
		if summary == "" {
			summary = v.Commentary
		}
		if len(summary) > listingSummaryLimit {
			summary = summary[:listingSummaryLimit]
		}
		listings[i] = models.VerseListing{
			Chapter:     v.Chapter,
			Verse:       v.Verse,
			Translation: v.Translation,
			Summary:     summary,
		}
	}
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].Chapter != listings[j].Chapter {
			return listings[i].Chapter < listings[j].Chapter
		}
		return listings[i].Verse < listings[j].Verse
	})
	return &CorpusCache{listings: listings}
}

// Listings returns the cached corpus listing. Callers must not mutate
// the returned slice.
func (c *CorpusCache) Listings() []models.VerseListing {
	return c.listings
}

// Len reports the number of cached verses.
func (c *CorpusCache) Len() int {
	return len(c.listings)
}
