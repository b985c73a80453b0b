package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"resumebuilder/internal/apperrors"
)

var (
	phoneRe = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

type PersonalInfo struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type WorkExperience struct {
	JobTitle string `json:"jobTitle"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Year   int    `json:"year"`
}

type Resume struct {
	ID             uuid.UUID        `json:"id"`
	OwnerID        uuid.UUID        `json:"user"`
	TemplateID     uuid.UUID        `json:"template"`
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Skills         []string         `json:"skills"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Validate enforces the field constraints before a resume is persisted.
// Re-run on partial updates as well.
func (r *Resume) Validate() error {
	if r.TemplateID == uuid.Nil {
		return apperrors.Validation("Template ID is required")
	}
	if len(strings.TrimSpace(r.PersonalInfo.Name)) < 3 {
		return apperrors.Validation("Name must be at least 3 characters long")
	}
	if len(r.PersonalInfo.Address) > 200 {
		return apperrors.Validation("Address must be less than 200 characters long")
	}
	if r.PersonalInfo.Phone != "" && !phoneRe.MatchString(r.PersonalInfo.Phone) {
		return apperrors.Validation("Invalid phone number format")
	}
	if r.PersonalInfo.Email != "" && !emailRe.MatchString(r.PersonalInfo.Email) {
		return apperrors.Validation("Invalid email format")
	}
	for _, w := range r.WorkExperience {
		if w.JobTitle == "" {
			return apperrors.Validation("Job title is required")
		}
		if w.Company == "" {
			return apperrors.Validation("Company is required")
		}
		if w.Duration == "" {
			return apperrors.Validation("Duration is required")
		}
	}
	maxYear := time.Now().Year()
	for _, e := range r.Education {
		if e.School == "" {
			return apperrors.Validation("School name is required")
		}
		if e.Degree == "" {
			return apperrors.Validation("Degree is required")
		}
		if e.Year < 1900 {
			return apperrors.Validation("Year cannot be earlier than 1900")
		}
		if e.Year > maxYear {
			return apperrors.Validation(fmt.Sprintf("Year cannot be later than %d", maxYear))
		}
	}
	if len(r.Skills) == 0 {
		return apperrors.Validation("At least one skill is required")
	}
	return nil
}
