package patterns

import (
	"fmt"

	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/features"

	"github.com/google/uuid"
)

var workflowNamespace = uuid.MustParse("b3a9d1f4-5e2c-4f7a-8c61-0d9e4a7b2c38")

// WorkflowID derives a stable workflow id for an entity and a pattern or
// generated workflow name.
func WorkflowID(entityID, name string) string {
	return uuid.NewSHA1(workflowNamespace, []byte(entityID+"/"+name)).String()
}

// PriorityFor maps complexity to a delivery priority: simpler patterns are
// quicker wins.
func PriorityFor(complexity int) string {
	switch {
	case complexity <= 4:
		return models.PriorityHigh
	case complexity <= 6:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// Personalize specializes a pattern for one profile.
func Personalize(p models.WorkflowPattern, profile *models.Profile, f *features.Features) models.PersonalizedWorkflow {
	if f == nil {
		f = features.Extract(profile)
	}
	entityID := ""
	if profile != nil {
		entityID = profile.EntityID()
	}

	return models.PersonalizedWorkflow{
		WorkflowPattern: p.Clone(),
		ID:              WorkflowID(entityID, p.ID),
		PatternID:       p.ID,
		ProfileID:       entityID,
		CompanyName:     f.Company.Name,
		SpecificUseCase: UseCase(p, f),
		Priority:        PriorityFor(p.ComplexityScore),
		Status:          models.StatusDraft,
		Source:          models.SourcePattern,
	}
}

// UseCase phrases how the pattern applies to the profile's top pain point.
func UseCase(p models.WorkflowPattern, f *features.Features) string {
	if len(f.KeyPainPoints) > 0 {
		return fmt.Sprintf("Apply %s at %s to address: %s", p.Name, f.Company.Name, f.KeyPainPoints[0])
	}
	return fmt.Sprintf("Apply %s to %s operations at %s", p.Name, f.Company.Industry, f.Company.Name)
}
