package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hfujita/taskpilot/internal/domain"
)

// DefaultVocabulary returns the built-in closed tag vocabulary.
func DefaultVocabulary() []string {
	return []string{
		"work",
		"personal",
		"urgent",
		"home",
		"finance",
		"health",
		"learning",
		"errand",
	}
}

// vocabularyFile mirrors the optional YAML override file.
type vocabularyFile struct {
	Tags []string `yaml:"tags"`
}

// LoadVocabulary reads a tag vocabulary from a YAML file of the form:
//
//	tags:
//	  - work
//	  - urgent
//
// Names are normalized and deduplicated.
func LoadVocabulary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary file %s: %w", path, err)
	}

	var tags []string
	seen := make(map[string]bool)
	for _, name := range file.Tags {
		normalized := domain.NormalizeTagName(name)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		tags = append(tags, normalized)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("vocabulary file %s lists no tags", path)
	}
	return tags, nil
}
