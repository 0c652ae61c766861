package merger

import (
	"fmt"
	"math"

	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/features"

	"github.com/tidwall/gjson"
)

// MaxTimelineMonths bounds generated timeline durations.
const MaxTimelineMonths = 60

var defaultKeyMetrics = []string{
	"Hours saved per week",
	"Process cycle time",
	"Automation adoption rate",
	"ROI against plan",
}

type phaseTemplate struct {
	name        string
	description string
	share       float64
	milestone   string
	activities  []string
	risks       []string
	criteria    []string
}

var defaultPhaseTemplates = []phaseTemplate{
	{
		name:        "Foundation",
		description: "Assess readiness, prepare data and select the first use cases",
		share:       0.2,
		milestone:   "Use cases and success metrics approved",
		activities:  []string{"Current-state process assessment", "Data readiness review", "Governance framework setup"},
		risks:       []string{"Incomplete or low-quality data"},
		criteria:    []string{"Prioritized use case backlog"},
	},
	{
		name:        "Pilot",
		description: "Deliver the first AI workflows to a limited audience",
		share:       0.5,
		milestone:   "Pilot results reviewed",
		activities:  []string{"Build pilot workflows", "Train pilot users", "Measure baseline against targets"},
		risks:       []string{"Low user adoption"},
		criteria:    []string{"Pilot meets agreed success metrics"},
	},
	{
		name:        "Scale",
		description: "Roll successful workflows out across teams and systems",
		share:       0.8,
		milestone:   "Workflows live across target teams",
		activities:  []string{"Integrate with core systems", "Expand to additional teams", "Change management"},
		risks:       []string{"Integration delays"},
		criteria:    []string{"Adoption across target teams"},
	},
	{
		name:        "Optimize",
		description: "Tune models and processes and plan the next wave",
		share:       1.0,
		milestone:   "Next-wave roadmap agreed",
		activities:  []string{"Performance tuning", "ROI review", "Next-wave planning"},
		risks:       []string{"Model drift"},
		criteria:    []string{"ROI targets met"},
	},
}

// DefaultPhases splits the scenario duration into four contiguous phases.
func DefaultPhases(totalMonths int) []models.TimelinePhase {
	if totalMonths < len(defaultPhaseTemplates) {
		totalMonths = len(defaultPhaseTemplates)
	}
	phases := make([]models.TimelinePhase, 0, len(defaultPhaseTemplates))
	start := 1
	for i, t := range defaultPhaseTemplates {
		end := int(math.Round(float64(totalMonths) * t.share))
		if i == len(defaultPhaseTemplates)-1 {
			end = totalMonths
		}
		if end < start {
			end = start
		}
		phases = append(phases, models.TimelinePhase{
			Name:            t.name,
			Description:     t.description,
			StartMonth:      start,
			EndMonth:        end,
			Milestones:      []string{t.milestone},
			KeyActivities:   append([]string{}, t.activities...),
			Risks:           append([]string{}, t.risks...),
			SuccessCriteria: append([]string{}, t.criteria...),
		})
		start = end + 1
	}
	return phases
}

// TimelineResult is a complete timeline plus the fallbacks applied.
type TimelineResult struct {
	Timeline models.Timeline
	Warnings []*apperrors.StandardError
}

// MergeTimeline builds a complete timeline for the scenario from raw
// generator output. GeneratedAt is left for the caller to stamp.
func MergeTimeline(raw string, cfg models.ScenarioConfig, f *features.Features) TimelineResult {
	if f == nil {
		f = features.Extract(nil)
	}
	w := &warnings{}
	doc, ok := ExtractJSON(raw)
	if !ok {
		w.add("timeline", "no JSON object in generator output")
	}
	root := gjson.Parse(doc)

	t := models.Timeline{ScenarioType: cfg.Type}

	if n, ok := intIn(root.Get("totalDurationMonths"), 1, MaxTimelineMonths); ok {
		t.TotalDurationMonths = n
	} else {
		t.TotalDurationMonths = cfg.TotalMonths
		w.add("totalDurationMonths", "used scenario duration")
	}

	t.Phases = mergePhases(root.Get("phases"), w)
	if len(t.Phases) == 0 {
		t.Phases = DefaultPhases(t.TotalDurationMonths)
		w.add("phases", "used default phases")
	}
	if last := t.Phases[len(t.Phases)-1].EndMonth; last > t.TotalDurationMonths {
		t.TotalDurationMonths = last
		w.add("totalDurationMonths", "extended to cover last phase")
	}

	if s, ok := str(root.Get("summary")); ok {
		t.Summary = s
	} else {
		t.Summary = fmt.Sprintf("A %s %d-month AI transformation roadmap for %s. %s",
			cfg.Label, t.TotalDurationMonths, f.Company.Name, cfg.DurationGuidance)
		w.add("summary", "used default")
	}

	if list, ok := strList(root.Get("keyMetrics")); ok {
		t.KeyMetrics = list
	} else {
		t.KeyMetrics = profileMetrics(f)
		w.add("keyMetrics", "derived from profile")
	}

	res := TimelineResult{Timeline: t, Warnings: w.list}
	res.Warnings = append(res.Warnings, schemaViolations(timelineSchema, res.Timeline)...)
	return res
}

// mergePhases keeps named phase objects and repairs their month ranges so
// phases are ordered, never end before they start and stay within
// MaxTimelineMonths.
func mergePhases(r gjson.Result, w *warnings) []models.TimelinePhase {
	var phases []models.TimelinePhase
	prevEnd := 0
	for i, item := range usableObjects(r) {
		name, ok := str(item.Get("name"))
		if !ok {
			w.add(fmt.Sprintf("phases[%d]", i), "dropped phase without a name")
			continue
		}
		field := fmt.Sprintf("phases[%d]", i)

		start, ok := intIn(item.Get("startMonth"), 1, MaxTimelineMonths)
		if !ok || start <= prevEnd {
			if ok {
				w.add(field+".startMonth", "moved after previous phase")
			} else {
				w.add(field+".startMonth", "derived from previous phase")
			}
			start = prevEnd + 1
		}
		if start > MaxTimelineMonths {
			w.add(field, "dropped phase past the month limit")
			continue
		}
		end, ok := intIn(item.Get("endMonth"), 1, MaxTimelineMonths)
		if !ok || end < start {
			w.add(field+".endMonth", "set to start month")
			end = start
		}

		phase := models.TimelinePhase{Name: name, StartMonth: start, EndMonth: end}
		phase.Description, _ = str(item.Get("description"))
		phase.Milestones = listOrEmpty(item.Get("milestones"))
		phase.KeyActivities = listOrEmpty(item.Get("keyActivities"))
		phase.Risks = listOrEmpty(item.Get("risks"))
		phase.SuccessCriteria = listOrEmpty(item.Get("successCriteria"))

		phases = append(phases, phase)
		prevEnd = end
	}
	return phases
}

func listOrEmpty(r gjson.Result) []string {
	list, ok := strList(r)
	if !ok {
		return []string{}
	}
	return list
}

// profileMetrics collects the initiatives' success metrics, falling back
// to generic transformation metrics.
func profileMetrics(f *features.Features) []string {
	seen := map[string]bool{}
	var out []string
	for _, ini := range f.Initiatives {
		for _, m := range ini.SuccessMetrics {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	if len(out) == 0 {
		return append([]string{}, defaultKeyMetrics...)
	}
	return out
}
