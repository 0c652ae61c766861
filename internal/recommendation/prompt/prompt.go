// Package prompt renders the system and user prompts sent to generation
// providers. Rendering is deterministic for identical input.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/features"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"list": func(items []string) string {
		if len(items) == 0 {
			return "None listed"
		}
		return strings.Join(items, "; ")
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

// Prompt is a rendered system/user prompt pair.
type Prompt struct {
	Kind     models.CacheKind       `json:"kind"`
	System   string                 `json:"system"`
	User     string                 `json:"user"`
	Scenario *models.ScenarioConfig `json:"scenario,omitempty"`
}

type templateData struct {
	Features   *features.Features
	Scenario   models.ScenarioConfig
	References []models.WorkflowPattern
}

// ComposeWorkflows renders the workflows prompt. References are catalog
// patterns the generator may build on; their ids are listed so generated
// workflows can name them.
func ComposeWorkflows(f *features.Features, references ...models.WorkflowPattern) (Prompt, error) {
	data := templateData{Features: f, References: references}
	system, err := render("workflows_system.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := render("workflows_user.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Kind: models.KindWorkflows, System: system, User: user}, nil
}

// ComposeTimeline renders the timeline prompt for one scenario.
func ComposeTimeline(f *features.Features, cfg models.ScenarioConfig) (Prompt, error) {
	data := templateData{Features: f, Scenario: cfg}
	system, err := render("timeline_system.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := render("timeline_user.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Kind: models.KindTimeline, System: system, User: user, Scenario: &cfg}, nil
}

// GuidanceBlock renders the scenario guidance exactly as it appears in
// timeline prompts.
func GuidanceBlock(cfg models.ScenarioConfig) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "guidance", cfg); err != nil {
		return ""
	}
	return buf.String()
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var placeholderPattern = regexp.MustCompile(`(?i)\b(undefined|null)\b`)

// Validate self-checks a rendered prompt against the profile it was built
// from and returns human-readable warnings. An empty result means the
// prompt is safe to send.
func Validate(p Prompt, profile *models.Profile) []string {
	var warnings []string

	if strings.TrimSpace(p.User) == "" {
		warnings = append(warnings, "user prompt is empty")
	}

	if profile != nil {
		if name := strings.TrimSpace(profile.Company.Name); name != "" && !placeholderPattern.MatchString(name) &&
			!strings.Contains(p.User, name) {
			warnings = append(warnings, "prompt does not contain the company name")
		}
		if industry := strings.TrimSpace(profile.Company.Industry); industry != "" && !placeholderPattern.MatchString(industry) &&
			!strings.Contains(p.User, industry) {
			warnings = append(warnings, "prompt does not contain the industry")
		}
	}

	if p.Kind == models.KindTimeline {
		if p.Scenario == nil || !strings.Contains(p.User, GuidanceBlock(*p.Scenario)) {
			warnings = append(warnings, "prompt does not contain the scenario guidance")
		}
	}

	if placeholderPattern.MatchString(p.System) || placeholderPattern.MatchString(p.User) {
		warnings = append(warnings, "prompt contains a literal undefined or null placeholder")
	}

	return warnings
}
