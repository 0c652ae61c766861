// Package features turns a business profile into the normalized feature
// bag that prompts, pattern personalization and analysis are built from.
package features

import (
	"sort"
	"strings"

	"automation-advisor/internal/models"
)

// Unknown replaces absent scalar values in rendered text.
const Unknown = "Unknown"

// MaxKeyPainPoints caps the derived pain point list.
const MaxKeyPainPoints = 5

const uncategorized = "Uncategorized"

// Features is the flattened, render-safe view of a profile.
type Features struct {
	Completeness      models.CompletenessSummary `json:"completeness"`
	Company           Company                    `json:"company"`
	Initiatives       []InitiativeBlock          `json:"initiatives"`
	BusinessProblems  []string                   `json:"businessProblems"`
	SystemsByCategory map[string][]string        `json:"systemsByCategory"`
	KeyPainPoints     []string                   `json:"keyPainPoints"`
	Themes            []string                   `json:"themes"`
}

type Company struct {
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	EmployeeCount string `json:"employeeCount"`
	Revenue       string `json:"revenue"`
	Location      string `json:"location"`
}

type InitiativeBlock struct {
	Name             string   `json:"name"`
	Priority         string   `json:"priority"`
	Status           string   `json:"status"`
	BusinessProblems []string `json:"businessProblems"`
	ExpectedOutcomes []string `json:"expectedOutcomes"`
	SuccessMetrics   []string `json:"successMetrics"`
	Contact          string   `json:"contact"`
	Budget           string   `json:"budget"`
	Timeline         string   `json:"timeline"`
}

// SystemCategories returns the system categories in sorted order.
func (f *Features) SystemCategories() []string {
	cats := make([]string, 0, len(f.SystemsByCategory))
	for c := range f.SystemsByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Extract builds the feature bag. It is pure and tolerates any missing data.
func Extract(p *models.Profile) *Features {
	if p == nil {
		p = &models.Profile{}
	}

	f := &Features{
		Company: Company{
			Name:          Text(p.Company.Name),
			Industry:      Text(p.Company.Industry),
			EmployeeCount: Text(p.Company.EmployeeCount),
			Revenue:       Text(p.Company.AnnualRevenue),
			Location:      Text(p.Company.Location),
		},
		Initiatives:       make([]InitiativeBlock, 0, len(p.Initiatives)),
		BusinessProblems:  []string{},
		SystemsByCategory: map[string][]string{},
	}

	var priorityProblems []string
	for _, ini := range p.Initiatives {
		block := InitiativeBlock{
			Name:             Text(ini.Name),
			Priority:         Text(ini.Priority),
			Status:           Text(ini.Status),
			BusinessProblems: List(ini.BusinessProblems),
			ExpectedOutcomes: List(ini.ExpectedOutcomes),
			SuccessMetrics:   List(ini.SuccessMetrics),
			Contact:          renderContact(ini.Contact),
			Budget:           Text(ini.Budget),
			Timeline:         Text(ini.Timeline),
		}
		f.Initiatives = append(f.Initiatives, block)
		f.BusinessProblems = append(f.BusinessProblems, block.BusinessProblems...)
		if ini.IsHighPriority() {
			priorityProblems = append(priorityProblems, block.BusinessProblems...)
		}
	}

	for _, sys := range p.Systems {
		name := Text(sys.Name)
		if name == Unknown {
			continue
		}
		cat := Text(sys.Category)
		if cat == Unknown {
			cat = uncategorized
		}
		f.SystemsByCategory[cat] = append(f.SystemsByCategory[cat], name)
	}

	f.Themes = DetectThemes(f.BusinessProblems)
	f.KeyPainPoints = keyPainPoints(priorityProblems, f.Themes)
	f.Completeness = Completeness(p)
	return f
}

// Text returns s trimmed, or Unknown when s is empty or a literal
// "undefined"/"null" placeholder.
func Text(s string) string {
	if isBlank(s) {
		return Unknown
	}
	return strings.TrimSpace(s)
}

// List returns the non-blank trimmed items of in, never nil.
func List(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if isBlank(s) {
			continue
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func isBlank(s string) bool {
	t := strings.ToLower(strings.TrimSpace(s))
	return t == "" || t == "undefined" || t == "null"
}

func renderContact(c *models.Contact) string {
	if c.Empty() {
		return "Not specified"
	}
	parts := make([]string, 0, 3)
	if !isBlank(c.Name) {
		parts = append(parts, strings.TrimSpace(c.Name))
	}
	if !isBlank(c.Role) {
		parts = append(parts, "("+strings.TrimSpace(c.Role)+")")
	}
	if !isBlank(c.Email) {
		parts = append(parts, "<"+strings.TrimSpace(c.Email)+">")
	}
	if len(parts) == 0 {
		return "Not specified"
	}
	return strings.Join(parts, " ")
}

// keyPainPoints lists high-priority problems, then themes, de-duplicated
// case-insensitively and capped.
func keyPainPoints(priorityProblems, themes []string) []string {
	out := make([]string, 0, MaxKeyPainPoints)
	seen := make(map[string]bool)
	for _, group := range [][]string{priorityProblems, themes} {
		for _, s := range group {
			k := strings.ToLower(s)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, s)
			if len(out) == MaxKeyPainPoints {
				return out
			}
		}
	}
	return out
}
