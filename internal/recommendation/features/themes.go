package features

import "strings"

type themeCluster struct {
	keywords []string
	theme    string
}

// themeClusters is checked in order; a theme applies when at least
// minThemeMatches pooled problems mention one of its keywords.
var themeClusters = []themeCluster{
	{keywords: []string{"manual", "automation", "process"}, theme: "Manual processes need automation"},
	{keywords: []string{"slow", "delay", "bottleneck", "backlog"}, theme: "Process bottlenecks slow down delivery"},
	{keywords: []string{"data", "report", "visibility", "insight"}, theme: "Limited data visibility and reporting"},
	{keywords: []string{"customer", "response", "service", "support"}, theme: "Customer response times need improvement"},
	{keywords: []string{"cost", "expense", "budget", "spend"}, theme: "Operational costs are too high"},
	{keywords: []string{"error", "mistake", "accuracy", "quality"}, theme: "Error rates affect quality"},
	{keywords: []string{"integration", "silo", "disconnected", "legacy"}, theme: "Disconnected systems and data silos"},
	{keywords: []string{"compliance", "audit", "regulation", "risk"}, theme: "Compliance workload is growing"},
}

const minThemeMatches = 2

// DetectThemes returns the themes supported by the pooled problems.
func DetectThemes(problems []string) []string {
	lowered := make([]string, len(problems))
	for i, p := range problems {
		lowered[i] = strings.ToLower(p)
	}

	themes := []string{}
	for _, c := range themeClusters {
		matches := 0
		for _, p := range lowered {
			if containsAny(p, c.keywords) {
				matches++
			}
		}
		if matches >= minThemeMatches {
			themes = append(themes, c.theme)
		}
	}
	return themes
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
