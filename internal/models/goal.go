package models

import (
	"strings"
	"time"
)

// GoalStatus represents the lifecycle state of a goal
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusArchived  GoalStatus = "archived"
)

// LifeAreaCategory classifies a goal into one of six fixed life areas
type LifeAreaCategory string

const (
	CategoryHealth        LifeAreaCategory = "health"
	CategoryCareer        LifeAreaCategory = "career"
	CategoryFinance       LifeAreaCategory = "finance"
	CategoryMind          LifeAreaCategory = "mind"
	CategoryRelationships LifeAreaCategory = "relationships"
	CategoryContribution  LifeAreaCategory = "contribution"
)

// LifeAreaCategories lists all valid categories in display order
var LifeAreaCategories = []LifeAreaCategory{
	CategoryHealth,
	CategoryCareer,
	CategoryFinance,
	CategoryMind,
	CategoryRelationships,
	CategoryContribution,
}

// Goal represents a user-defined aspiration on the vision board.
// Category is optional - an empty value means the goal is uncategorized.
// RelatedHabits holds weak references to habit IDs; a referenced habit may
// have been deleted, in which case the id is skipped at resolution time.
type Goal struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Why           string           `json:"why"`
	ImageURL      string           `json:"image_url"`
	ImagePrompt   string           `json:"image_prompt,omitempty"`
	Category      LifeAreaCategory `json:"category,omitempty"`
	Progress      int              `json:"progress"`
	Status        GoalStatus       `json:"status"`
	RelatedHabits []int64          `json:"related_habits,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	TargetDate    *time.Time       `json:"target_date,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
}

// HasRelatedHabit reports whether the goal references the given habit id
func (g *Goal) HasRelatedHabit(habitID int64) bool {
	for _, id := range g.RelatedHabits {
		if id == habitID {
			return true
		}
	}
	return false
}

// MatchesSearch reports whether the goal matches a free-text query.
// The match is a case-insensitive substring check OR'd across title,
// why, and tags. An empty query matches everything.
func (g *Goal) MatchesSearch(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(g.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(g.Why), query) {
		return true
	}
	for _, tag := range g.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// ParseTags parses comma-separated tag input into a deduplicated slice.
// Entries are trimmed and empty entries dropped; first occurrence wins.
func ParseTags(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	seen := make(map[string]bool)
	var tags []string
	for _, raw := range strings.Split(input, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}

// DedupeHabitIDs removes duplicate habit ids preserving order
func DedupeHabitIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	var out []int64
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
