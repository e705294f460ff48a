package templates

import (
	"testing"

	"github.com/lifeos/lifeos-api/internal/models"
)

func TestAll(t *testing.T) {
	t.Parallel()

	all, err := All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Expected 5 templates, got %d", len(all))
	}

	for _, tpl := range all {
		if tpl.ID == "" || tpl.Name == "" || tpl.Description == "" {
			t.Errorf("Template %q missing metadata", tpl.ID)
		}
		if len(tpl.Goals) == 0 {
			t.Errorf("Template %q has no goals", tpl.ID)
		}
		for _, draft := range tpl.Goals {
			if draft.Title == "" || draft.Why == "" {
				t.Errorf("Template %q has a draft missing title or why", tpl.ID)
			}
			if draft.ImagePrompt == "" {
				t.Errorf("Template %q draft %q has no image prompt", tpl.ID, draft.Title)
			}
		}
	}
}

func TestByID(t *testing.T) {
	t.Parallel()

	tpl, err := ByID("balanced-life")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if len(tpl.Goals) != 6 {
		t.Fatalf("Expected 6 goals in balanced-life, got %d", len(tpl.Goals))
	}

	// One goal per life area
	seen := make(map[models.LifeAreaCategory]bool)
	for _, draft := range tpl.Goals {
		if seen[draft.Category] {
			t.Errorf("Duplicate category %q", draft.Category)
		}
		seen[draft.Category] = true
	}
	for _, cat := range models.LifeAreaCategories {
		if !seen[cat] {
			t.Errorf("Missing category %q", cat)
		}
	}

	if _, err := ByID("no-such-template"); err == nil {
		t.Error("Expected error for unknown template id")
	}
}
