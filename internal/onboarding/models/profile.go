package models

import (
	"strings"
	"time"

	"onboarding/internal/onboarding/jurisdiction"
	dErrors "onboarding/pkg/domain-errors"
)

const (
	DateLayout = "2006-01-02"
	MinimumAge = 18
)

// ExperienceLevel is the self-declared trading experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

func (e ExperienceLevel) IsValid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Profile holds the identity fields captured by the profile step.
type Profile struct {
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	DateOfBirth  string          `json:"dob"`
	Country      string          `json:"country"`
	TaxResidency string          `json:"tax_residency"`
	Address      Address         `json:"address"`
	Phone        string          `json:"phone"`
	Experience   ExperienceLevel `json:"experience"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ProfileRequest is the profile step payload.
type ProfileRequest struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	DateOfBirth  string  `json:"dob"`
	Country      string  `json:"country"`
	TaxResidency string  `json:"tax_residency"`
	Address      Address `json:"address"`
	Phone        string  `json:"phone"`
	Experience   string  `json:"experience"`
	Jurisdiction string  `json:"jurisdiction,omitempty"`
}

// Normalize trims whitespace and upper-cases country codes.
func (r *ProfileRequest) Normalize() {
	if r == nil {
		return
	}
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.Country = strings.ToUpper(strings.TrimSpace(r.Country))
	r.TaxResidency = strings.ToUpper(strings.TrimSpace(r.TaxResidency))
	r.Address.Line1 = strings.TrimSpace(r.Address.Line1)
	r.Address.Line2 = strings.TrimSpace(r.Address.Line2)
	r.Address.City = strings.TrimSpace(r.Address.City)
	r.Address.PostalCode = strings.TrimSpace(r.Address.PostalCode)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Experience = strings.ToLower(strings.TrimSpace(r.Experience))
	r.Jurisdiction = strings.TrimSpace(r.Jurisdiction)
}

// Validate checks required fields, enums, date of birth and minimum age
// relative to now.
func (r *ProfileRequest) Validate(now time.Time) error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	required := []struct {
		name, value string
	}{
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"dob", r.DateOfBirth},
		{"country", r.Country},
		{"tax_residency", r.TaxResidency},
		{"address.line1", r.Address.Line1},
		{"address.city", r.Address.City},
		{"address.postal_code", r.Address.PostalCode},
		{"phone", r.Phone},
		{"experience", r.Experience},
	}
	for _, f := range required {
		if f.value == "" {
			return dErrors.New(dErrors.CodeValidation, f.name+" is required")
		}
	}
	if len(r.Country) != 2 {
		return dErrors.New(dErrors.CodeValidation, "country must be an ISO 3166-1 alpha-2 code")
	}
	if len(r.TaxResidency) != 2 {
		return dErrors.New(dErrors.CodeValidation, "tax_residency must be an ISO 3166-1 alpha-2 code")
	}
	if !ExperienceLevel(r.Experience).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "experience must be one of beginner, intermediate, advanced")
	}
	if r.Jurisdiction != "" {
		if _, ok := jurisdiction.Parse(r.Jurisdiction); !ok {
			return dErrors.New(dErrors.CodeValidation, "jurisdiction must be one of DE, EU, US, Other")
		}
	}
	dob, err := time.Parse(DateLayout, r.DateOfBirth)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "dob must be a valid date in YYYY-MM-DD format")
	}
	if AgeOn(dob, now) < MinimumAge {
		return dErrors.New(dErrors.CodeValidation, "user must be at least 18 years old")
	}
	return nil
}

// ResolveJurisdiction returns the explicit jurisdiction when supplied,
// otherwise derives it from the country of residence.
func (r *ProfileRequest) ResolveJurisdiction() jurisdiction.Jurisdiction {
	if j, ok := jurisdiction.Parse(r.Jurisdiction); ok {
		return j
	}
	return jurisdiction.Resolve(r.Country)
}

// ToProfile converts a validated request.
func (r *ProfileRequest) ToProfile(now time.Time) *Profile {
	return &Profile{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		DateOfBirth:  r.DateOfBirth,
		Country:      r.Country,
		TaxResidency: r.TaxResidency,
		Address:      r.Address,
		Phone:        r.Phone,
		Experience:   ExperienceLevel(r.Experience),
		SubmittedAt:  now,
	}
}

// AgeOn returns completed years between dob and now: the calendar-year
// difference, minus one if the birthday has not yet occurred this year.
// Both dates are compared in UTC.
func AgeOn(dob, now time.Time) int {
	dob, now = dob.UTC(), now.UTC()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
