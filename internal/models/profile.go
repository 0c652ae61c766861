package models

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	apperrors "automation-advisor/internal/common/errors"

	"github.com/google/uuid"
)

// Initiative priorities. Matching is case-insensitive.
const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"
)

// entityNamespace scopes derived entity ids for profiles without an ID.
var entityNamespace = uuid.MustParse("6f1c2f0e-8d4b-4c35-9a57-2b8f0c6d4e11")

// Profile is the business profile recommendations are generated for.
type Profile struct {
	ID          string                `json:"id,omitempty"`
	Company     CompanyInfo           `json:"company"`
	Initiatives []StrategicInitiative `json:"strategicInitiatives"`
	Systems     []SystemApplication   `json:"systems"`
}

type CompanyInfo struct {
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	EmployeeCount string `json:"employeeCount"`
	AnnualRevenue string `json:"annualRevenue"`
	Location      string `json:"location"`
}

type StrategicInitiative struct {
	Name             string   `json:"name"`
	Priority         string   `json:"priority"`
	Status           string   `json:"status"`
	BusinessProblems []string `json:"businessProblems"`
	ExpectedOutcomes []string `json:"expectedOutcomes"`
	SuccessMetrics   []string `json:"successMetrics"`
	Contact          *Contact `json:"contact,omitempty"`
	Budget           string   `json:"budget"`
	Timeline         string   `json:"timeline"`
}

// IsHighPriority reports whether problems of this initiative must surface
// as key pain points.
func (i StrategicInitiative) IsHighPriority() bool {
	p := strings.TrimSpace(i.Priority)
	return strings.EqualFold(p, PriorityHigh) || strings.EqualFold(p, PriorityCritical)
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Empty reports whether the contact carries no usable data.
func (c *Contact) Empty() bool {
	return c == nil || (strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Email) == "" && strings.TrimSpace(c.Role) == "")
}

type SystemApplication struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Vendor      string `json:"vendor"`
	Criticality string `json:"criticality"`
}

// DecodeProfile reads a JSON profile and rejects keys the Profile type
// does not declare.
func DecodeProfile(r io.Reader) (*Profile, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("decode profile: %v", err), err)
	}
	return &p, nil
}

// DecodeProfileMap converts an already-decoded variables map (as delivered
// by a job) into a Profile with the same strictness as DecodeProfile.
func DecodeProfileMap(m map[string]interface{}) (*Profile, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("encode profile: %v", err), err)
	}
	return DecodeProfile(strings.NewReader(string(raw)))
}

// Validate returns a PROFILE_VALIDATION_FAILED error listing every missing
// required field, or nil.
func (p *Profile) Validate() error {
	if p == nil {
		return apperrors.NewProfileValidationError([]string{"company.name", "company.industry", "strategicInitiatives"})
	}
	var missing []string
	if strings.TrimSpace(p.Company.Name) == "" {
		missing = append(missing, "company.name")
	}
	if strings.TrimSpace(p.Company.Industry) == "" {
		missing = append(missing, "company.industry")
	}
	if len(p.Initiatives) == 0 {
		missing = append(missing, "strategicInitiatives")
	}
	if len(missing) > 0 {
		return apperrors.NewProfileValidationError(missing)
	}
	return nil
}

// EntityID returns the profile ID, or a stable id derived from the
// lower-cased company name.
func (p *Profile) EntityID() string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	name := strings.ToLower(strings.TrimSpace(p.Company.Name))
	return uuid.NewSHA1(entityNamespace, []byte(name)).String()
}

// CompletenessSummary describes how much usable data a profile carries.
// It is derived on every extraction and never stored.
type CompletenessSummary struct {
	CompanyFieldsPresent []string `json:"companyFieldsPresent"`
	InitiativeCount      int      `json:"initiativeCount"`
	ProblemCount         int      `json:"problemCount"`
	HasOutcomes          bool     `json:"hasOutcomes"`
	HasMetrics           bool     `json:"hasMetrics"`
	HasContacts          bool     `json:"hasContacts"`
	SystemsCount         int      `json:"systemsCount"`
	Score                int      `json:"score"`
}
