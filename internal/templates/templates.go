// Package templates carries the predefined vision-board templates:
// partially-specified goal bundles a user can apply in bulk. Drafts have
// no id, image, or creation timestamp; the goal store fills those in at
// application time.
package templates

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/lifeos/lifeos-api/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// GoalDraft is one partially-specified goal inside a template
type GoalDraft struct {
	Title         string                  `yaml:"title" json:"title"`
	Why           string                  `yaml:"why" json:"why"`
	Category      models.LifeAreaCategory `yaml:"category" json:"category,omitempty"`
	ImagePrompt   string                  `yaml:"image_prompt" json:"image_prompt"`
	Tags          []string                `yaml:"tags" json:"tags,omitempty"`
	RelatedHabits []int64                 `yaml:"related_habits" json:"related_habits,omitempty"`
}

// Template is a predefined bundle of goal drafts
type Template struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Emoji       string      `yaml:"emoji" json:"emoji"`
	Goals       []GoalDraft `yaml:"goals" json:"goals"`
}

var (
	loadOnce sync.Once
	loaded   []Template
	loadErr  error
)

// All returns the built-in templates in definition order
func All() ([]Template, error) {
	loadOnce.Do(func() {
		var doc struct {
			Templates []Template `yaml:"templates"`
		}
		if err := yaml.Unmarshal(templatesYAML, &doc); err != nil {
			loadErr = fmt.Errorf("failed to parse embedded templates: %w", err)
			return
		}
		loaded = doc.Templates
	})
	return loaded, loadErr
}

// ByID looks up a template by its id
func ByID(id string) (Template, error) {
	all, err := All()
	if err != nil {
		return Template{}, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("template not found: %s", id)
}
