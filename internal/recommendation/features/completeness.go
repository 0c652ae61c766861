package features

import "automation-advisor/internal/models"

// Rubric weights. The maximum attainable score is exactly 100.
const (
	weightName     = 10
	weightIndustry = 10
	weightSize     = 5
	weightRevenue  = 5
	weightLocation = 5

	weightInitiative = 15
	weightProblems   = 10
	weightOutcomes   = 5
	weightMetrics    = 5
	weightContacts   = 5

	weightSystems = 15

	bonusVolume     = 5
	volumeThreshold = 3
)

// Completeness scores how much usable data the profile carries.
func Completeness(p *models.Profile) models.CompletenessSummary {
	s := models.CompletenessSummary{CompanyFieldsPresent: []string{}}
	if p == nil {
		return s
	}

	company := []struct {
		field  string
		value  string
		weight int
	}{
		{"name", p.Company.Name, weightName},
		{"industry", p.Company.Industry, weightIndustry},
		{"employeeCount", p.Company.EmployeeCount, weightSize},
		{"annualRevenue", p.Company.AnnualRevenue, weightRevenue},
		{"location", p.Company.Location, weightLocation},
	}
	for _, c := range company {
		if !isBlank(c.value) {
			s.CompanyFieldsPresent = append(s.CompanyFieldsPresent, c.field)
			s.Score += c.weight
		}
	}

	s.InitiativeCount = len(p.Initiatives)
	for _, ini := range p.Initiatives {
		s.ProblemCount += len(List(ini.BusinessProblems))
		if len(List(ini.ExpectedOutcomes)) > 0 {
			s.HasOutcomes = true
		}
		if len(List(ini.SuccessMetrics)) > 0 {
			s.HasMetrics = true
		}
		if !ini.Contact.Empty() {
			s.HasContacts = true
		}
	}
	if s.InitiativeCount > 0 {
		s.Score += weightInitiative
	}
	if s.ProblemCount > 0 {
		s.Score += weightProblems
	}
	if s.HasOutcomes {
		s.Score += weightOutcomes
	}
	if s.HasMetrics {
		s.Score += weightMetrics
	}
	if s.HasContacts {
		s.Score += weightContacts
	}

	s.SystemsCount = len(p.Systems)
	if s.SystemsCount > 0 {
		s.Score += weightSystems
	}

	if s.InitiativeCount >= volumeThreshold {
		s.Score += bonusVolume
	}
	if s.SystemsCount >= volumeThreshold {
		s.Score += bonusVolume
	}
	if s.Score > 100 {
		s.Score = 100
	}
	return s
}
