package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/lifeos/lifeos-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but panic loudly if they do
	if err := Validate.RegisterValidation("goal_status", validateGoalStatus); err != nil {
		panic(fmt.Sprintf("failed to register goal_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("life_area", validateLifeArea); err != nil {
		panic(fmt.Sprintf("failed to register life_area validator: %v", err))
	}
	if err := Validate.RegisterValidation("event_color", validateEventColor); err != nil {
		panic(fmt.Sprintf("failed to register event_color validator: %v", err))
	}
	if err := Validate.RegisterValidation("hhmm", validateHHMM); err != nil {
		panic(fmt.Sprintf("failed to register hhmm validator: %v", err))
	}
}

func validateGoalStatus(fl validator.FieldLevel) bool {
	return ValidateGoalStatus(fl.Field().String()) == nil
}

func validateLifeArea(fl validator.FieldLevel) bool {
	return ValidateLifeArea(fl.Field().String()) == nil
}

func validateEventColor(fl validator.FieldLevel) bool {
	switch models.EventColor(fl.Field().String()) {
	case models.EventColorCyan, models.EventColorIndigo, models.EventColorTeal, models.EventColorRose:
		return true
	default:
		return false
	}
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, _, err := models.ParseEventTime(fl.Field().String())
	return err == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateGoalStatus validates a GoalStatus string value
func ValidateGoalStatus(value string) error {
	switch models.GoalStatus(value) {
	case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusArchived:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'active', 'completed', or 'archived')", value)
	}
}

// ValidateLifeArea validates a life area category string value. An empty
// value is accepted: goals may be uncategorized.
func ValidateLifeArea(value string) error {
	if value == "" {
		return nil
	}
	for _, c := range models.LifeAreaCategories {
		if models.LifeAreaCategory(value) == c {
			return nil
		}
	}
	return fmt.Errorf("invalid category: %s", value)
}
