package kv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lifeos/lifeos-api/internal/models"
)

// ExportGoals serializes the goal array as indented JSON to w.
// The output round-trips through ImportGoals to a value-equal array.
func ExportGoals(w io.Writer, goals []models.Goal) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(goals); err != nil {
		return fmt.Errorf("failed to encode goals: %w", err)
	}
	return nil
}

// ImportGoals parses a goal array from r. The only validation performed
// is JSON parse success: the import replaces the collection wholesale.
func ImportGoals(r io.Reader) ([]models.Goal, error) {
	var goals []models.Goal
	dec := json.NewDecoder(r)
	if err := dec.Decode(&goals); err != nil {
		return nil, fmt.Errorf("failed to parse goals file: %w", err)
	}
	return goals, nil
}

// ExportGoalsFile writes the goal array to the named file
func ExportGoalsFile(path string, goals []models.Goal) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	return ExportGoals(f, goals)
}

// ImportGoalsFile reads a goal array from the named file
func ImportGoalsFile(path string) ([]models.Goal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()
	return ImportGoals(f)
}
