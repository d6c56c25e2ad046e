// Package corpus reads and writes the flat-file corpus: one JSON file
// per verse under a per-chapter directory, e.g. data/2/47.json.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gita-search-api/internal/models"
)

// LoadDir loads every verse file under dir, ordered by chapter then
// verse. Non-numeric directories and non-JSON files are ignored.
func LoadDir(dir string) ([]models.Verse, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	var chapters []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		chapter, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		chapters = append(chapters, chapter)
	}
	sort.Ints(chapters)

	var verses []models.Verse
	for _, chapter := range chapters {
		chapterVerses, err := loadChapter(filepath.Join(dir, strconv.Itoa(chapter)))
		if err != nil {
			return nil, fmt.Errorf("chapter %d: %w", chapter, err)
		}
		verses = append(verses, chapterVerses...)
	}
	return verses, nil
}

func loadChapter(dir string) ([]models.Verse, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var nums []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	sort.Ints(nums)

	verses := make([]models.Verse, 0, len(nums))
	for _, n := range nums {
		path := filepath.Join(dir, strconv.Itoa(n)+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var v models.Verse
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if v.Translation == "" {
			return nil, fmt.Errorf("%s: missing translation", path)
		}
		verses = append(verses, v)
	}
	return verses, nil
}

// WriteVerse writes one verse to its flat-file location under dir,
// creating the chapter directory as needed. Loading the file back
// reproduces chapter, verse, translation, and commentary exactly.
func WriteVerse(dir string, v models.Verse) error {
	chapterDir := filepath.Join(dir, strconv.Itoa(v.Chapter))
	if err := os.MkdirAll(chapterDir, 0o755); err != nil {
		return fmt.Errorf("create chapter dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal verse %s: %w", v.ID(), err)
	}

	path := filepath.Join(chapterDir, strconv.Itoa(v.Verse)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
