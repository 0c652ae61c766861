package patterns

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"automation-advisor/internal/models"
)

// Candidate is a pattern admitted for a profile with its ranking score.
type Candidate struct {
	Pattern models.WorkflowPattern `json:"pattern"`
	Score   float64                `json:"score"`
}

var (
	enterpriseMarkers = []string{"enterprise", "1000+", "1,000+", "1001", "1,001", "5000", "5,000", "10000", "10,000"}
	midMarketMarkers  = []string{"mid-market", "mid market", "51-200", "51-250", "201-500", "201-1000", "201-1,000", "501-1000", "501-1,000"}
	smbMarkers        = []string{"smb", "small", "startup", "1-10", "2-10", "11-50", "1-50"}

	// "51-100", "251 to 500", "1,000+" with optional trailing text.
	rangePattern = regexp.MustCompile(`^(\d[\d,]*)\s*(\+|(?:-|–|to)\s*\d[\d,]*)`)
)

// SizeBucket classifies free-text employee counts. Unrecognized text is
// SizeUnknown, which disables size filtering.
func SizeBucket(employeeCount string) string {
	s := strings.ToLower(strings.TrimSpace(employeeCount))
	if s == "" {
		return models.SizeUnknown
	}

	// Plain head counts such as "350" or "1,200".
	if n, err := strconv.Atoi(strings.ReplaceAll(s, ",", "")); err == nil {
		return bucketFor(n)
	}

	// Ranges go by their lower bound; "N+" means more than N.
	if m := rangePattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			if m[2] == "+" {
				n++
			}
			return bucketFor(n)
		}
	}

	// Order matters: "mid-market" must win over "small".
	switch {
	case containsAny(s, enterpriseMarkers):
		return models.SizeEnterprise
	case containsAny(s, midMarketMarkers):
		return models.SizeMidMarket
	case containsAny(s, smbMarkers):
		return models.SizeSMB
	}
	return models.SizeUnknown
}

func bucketFor(n int) string {
	switch {
	case n <= 0:
		return models.SizeUnknown
	case n <= 50:
		return models.SizeSMB
	case n <= 1000:
		return models.SizeMidMarket
	default:
		return models.SizeEnterprise
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Fits reports whether p admits the given industry and size bucket.
func Fits(p models.WorkflowPattern, industry, bucket string) bool {
	return industryFits(p, industry) && sizeFits(p, bucket)
}

func industryFits(p models.WorkflowPattern, industry string) bool {
	industry = strings.TrimSpace(industry)
	for _, fit := range p.IndustryFit {
		if strings.EqualFold(fit, models.AllIndustries) {
			return true
		}
		if industry != "" && strings.EqualFold(fit, industry) {
			return true
		}
	}
	return false
}

func sizeFits(p models.WorkflowPattern, bucket string) bool {
	if bucket == models.SizeUnknown {
		return true
	}
	for _, fit := range p.CompanySizeFit {
		if strings.EqualFold(fit, bucket) {
			return true
		}
	}
	return false
}

// ScoreOf is the ranking heuristic: three-year ROI per unit of complexity.
func ScoreOf(p models.WorkflowPattern) float64 {
	complexity := p.ComplexityScore
	if complexity < 1 {
		complexity = 1
	}
	return p.ROIMetrics.ROI3Year / float64(complexity)
}

// Match returns the candidates for the profile, best first. Equal scores
// are ordered by pattern id.
func Match(profile *models.Profile, lib *Library) []Candidate {
	var industry, employees string
	if profile != nil {
		industry = profile.Company.Industry
		employees = profile.Company.EmployeeCount
	}
	bucket := SizeBucket(employees)

	var out []Candidate
	for _, p := range lib.All() {
		if Fits(p, industry, bucket) {
			out = append(out, Candidate{Pattern: p, Score: ScoreOf(p)})
		}
	}
	Rank(out)
	return out
}

// Rank sorts candidates by descending score, then ascending id.
func Rank(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].Pattern.ID < cs[j].Pattern.ID
	})
}

// Top returns at most n candidates.
func Top(cs []Candidate, n int) []Candidate {
	if len(cs) <= n {
		return cs
	}
	return cs[:n]
}
