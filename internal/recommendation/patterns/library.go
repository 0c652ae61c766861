// Package patterns holds the static workflow pattern catalog and the
// matcher that ranks catalog entries for a profile.
package patterns

import (
	_ "embed"
	"fmt"
	"sync"

	"automation-advisor/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Version  string                   `yaml:"version"`
	Patterns []models.WorkflowPattern `yaml:"patterns"`
}

// Library is an immutable, validated pattern catalog. Accessors return
// copies.
type Library struct {
	version  string
	patterns []models.WorkflowPattern
	byID     map[string]int
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the embedded catalog, parsed on first use.
func Default() *Library {
	defaultOnce.Do(func() {
		lib, err := Load(catalogYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded pattern catalog is invalid: %v", err))
		}
		defaultLib = lib
	})
	return defaultLib
}

// Load parses and validates a YAML catalog.
func Load(data []byte) (*Library, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Patterns) == 0 {
		return nil, fmt.Errorf("catalog has no patterns")
	}

	lib := &Library{
		version:  file.Version,
		patterns: file.Patterns,
		byID:     make(map[string]int, len(file.Patterns)),
	}
	for i, p := range file.Patterns {
		if err := validatePattern(p); err != nil {
			return nil, err
		}
		if _, dup := lib.byID[p.ID]; dup {
			return nil, fmt.Errorf("pattern %s: duplicate id", p.ID)
		}
		lib.byID[p.ID] = i
	}
	return lib, nil
}

func validatePattern(p models.WorkflowPattern) error {
	if p.ID == "" {
		return fmt.Errorf("pattern %q: missing id", p.Name)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("pattern %s: unknown category %q", p.ID, p.Category)
	}
	if p.ComplexityScore < 1 || p.ComplexityScore > 10 {
		return fmt.Errorf("pattern %s: complexity %d outside 1-10", p.ID, p.ComplexityScore)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("pattern %s: no steps", p.ID)
	}
	if len(p.IndustryFit) == 0 {
		return fmt.Errorf("pattern %s: empty industry fit", p.ID)
	}
	return nil
}

func (l *Library) Version() string { return l.version }

func (l *Library) Len() int { return len(l.patterns) }

// All returns copies of every pattern in catalog order.
func (l *Library) All() []models.WorkflowPattern {
	out := make([]models.WorkflowPattern, len(l.patterns))
	for i, p := range l.patterns {
		out[i] = p.Clone()
	}
	return out
}

// Get returns a copy of the pattern with the given id.
func (l *Library) Get(id string) (models.WorkflowPattern, bool) {
	i, ok := l.byID[id]
	if !ok {
		return models.WorkflowPattern{}, false
	}
	return l.patterns[i].Clone(), true
}
