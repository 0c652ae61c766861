package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/models"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// errorText renders err with its code and details when it is a StandardError.
func errorText(err error) string {
	if stdErr, ok := apperrors.As(err); ok {
		msg := fmt.Sprintf("%s %s: %s", red("error"), stdErr.Code, stdErr.Message)
		if stdErr.Details != "" {
			msg += " (" + stdErr.Details + ")"
		}
		return msg
	}
	return fmt.Sprintf("%s %v", red("error"), err)
}

func sourceLabel(cached bool, provider string, at time.Time) string {
	label := green("generated")
	if cached {
		label = cyan("cached")
	}
	if provider != "" {
		label += " via " + provider
	}
	if !at.IsZero() {
		label += " at " + at.Format(time.RFC3339)
	}
	return label
}

func printWorkflows(w io.Writer, workflows []models.PersonalizedWorkflow, analysis models.WorkflowAnalysis) {
	for i, wf := range workflows {
		fmt.Fprintf(w, "%d. %s  [%s, priority %s, complexity %d]\n",
			i+1, bold(wf.Name), wf.Category, wf.Priority, wf.ComplexityScore)
		if wf.SpecificUseCase != "" {
			fmt.Fprintf(w, "   %s\n", wf.SpecificUseCase)
		}
		fmt.Fprintf(w, "   ROI 3y %.0f%%, payback %s, saves %.0f h/week, cost %.0f-%.0f\n",
			wf.ROIMetrics.ROI3Year,
			wf.ROIMetrics.PaybackPeriod,
			wf.ROIMetrics.TimeSavedHoursPerWeek,
			wf.ROIMetrics.ImplementationCost.Low,
			wf.ROIMetrics.ImplementationCost.High,
		)
	}
	if analysis.Summary != "" {
		fmt.Fprintf(w, "\n%s %s\n", bold("Summary:"), analysis.Summary)
	}
}

func printTimeline(w io.Writer, t *models.Timeline) {
	fmt.Fprintf(w, "%s %s, %d months\n", bold("Timeline:"), t.ScenarioType, t.TotalDurationMonths)
	if t.Summary != "" {
		fmt.Fprintln(w, t.Summary)
	}
	for _, ph := range t.Phases {
		fmt.Fprintf(w, "  %s months %d-%d\n", bold(ph.Name), ph.StartMonth, ph.EndMonth)
		if len(ph.Milestones) > 0 {
			fmt.Fprintf(w, "    milestones: %s\n", strings.Join(ph.Milestones, "; "))
		}
	}
	if len(t.KeyMetrics) > 0 {
		fmt.Fprintf(w, "%s %s\n", bold("Key metrics:"), strings.Join(t.KeyMetrics, ", "))
	}
}
