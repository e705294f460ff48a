package journal

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lifeos/lifeos-api/internal/models"
)

// EntryByDate finds the entry whose date matches the given day, or nil.
// Entry dates are ISO strings; matching is by date prefix.
func EntryByDate(entries []models.JournalEntry, date time.Time) *models.JournalEntry {
	prefix := date.Format("2006-01-02")
	for i := range entries {
		if entries[i].Date != "" && strings.HasPrefix(entries[i].Date, prefix) {
			return &entries[i]
		}
	}
	return nil
}

// WeekEntries returns entries falling within the 7 days starting at weekStart.
// Entries without a parseable date are skipped.
func WeekEntries(entries []models.JournalEntry, weekStart time.Time) []models.JournalEntry {
	weekEnd := weekStart.AddDate(0, 0, 7)

	var out []models.JournalEntry
	for _, e := range entries {
		if e.Date == "" {
			continue
		}
		entryDate, err := parseEntryDate(e.Date)
		if err != nil {
			continue
		}
		if !entryDate.Before(weekStart) && entryDate.Before(weekEnd) {
			out = append(out, e)
		}
	}
	return out
}

// EntriesByMood returns entries with the exact mood value
func EntriesByMood(entries []models.JournalEntry, mood int) []models.JournalEntry {
	var out []models.JournalEntry
	for _, e := range entries {
		if e.Mood != nil && *e.Mood == mood {
			out = append(out, e)
		}
	}
	return out
}

// Search returns entries whose title or any content block contains the
// query, case-insensitively
func Search(entries []models.JournalEntry, query string) []models.JournalEntry {
	q := strings.ToLower(query)

	var out []models.JournalEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), q) {
			out = append(out, e)
			continue
		}
		for _, block := range e.Content {
			if block.Text != "" && strings.Contains(strings.ToLower(block.Text), q) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// MoodStats aggregates mood values across entries
type MoodStats struct {
	Average      float64     `json:"average"`
	Highest      int         `json:"highest"`
	Lowest       int         `json:"lowest"`
	Distribution map[int]int `json:"distribution"`
}

// ComputeMoodStats ignores entries without a mood. The average is rounded
// to one decimal place.
func ComputeMoodStats(entries []models.JournalEntry) MoodStats {
	stats := MoodStats{Distribution: map[int]int{}}

	var sum, count int
	for _, e := range entries {
		if e.Mood == nil {
			continue
		}
		mood := *e.Mood
		if count == 0 {
			stats.Highest = mood
			stats.Lowest = mood
		} else {
			if mood > stats.Highest {
				stats.Highest = mood
			}
			if mood < stats.Lowest {
				stats.Lowest = mood
			}
		}
		sum += mood
		count++
		stats.Distribution[mood]++
	}

	if count == 0 {
		return stats
	}
	stats.Average = math.Round(float64(sum)/float64(count)*10) / 10
	return stats
}

func parseEntryDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if len(value) > 10 {
		return time.Parse("2006-01-02", value[:10])
	}
	return time.Time{}, fmt.Errorf("unrecognized entry date %q", value)
}
