package dtos

import (
	"github.com/justsurfingit/placement-portal/internal/eligibility"
	"github.com/justsurfingit/placement-portal/internal/models"
)

// Either Description or URL must be set. Description wins when both are.
type JobExtractionRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Description string `json:"description"`
	URL         string `json:"url" binding:"omitempty,url"`
}

type EligibleStudent struct {
	Email      string  `json:"email"`
	FullName   string  `json:"full_name"`
	RollNumber string  `json:"roll_number"`
	Branch     string  `json:"branch"`
	CGPA       float64 `json:"cgpa"`
	Backlogs   int     `json:"backlogs"`
	YearGap    int     `json:"year_gap"`
}

type JobExtractionResponse struct {
	CompanyName     string               `json:"company_name"`
	Description     string               `json:"description"`
	Criteria        eligibility.Criteria `json:"criteria"`
	Diagnostic      string               `json:"diagnostic"`
	DroppedBranches []string             `json:"dropped_branches"`
	EligibleCount   int                  `json:"eligible_count"`
	Eligible        []EligibleStudent    `json:"eligible"`
}

// JobCreationRequest is sent when the admin confirms a preview. Criteria may have been
// edited by hand, so the server normalizes and re-matches it.
type JobCreationRequest struct {
	CompanyName string               `json:"company_name" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Criteria    eligibility.Criteria `json:"criteria"`
	SourceURL   string               `json:"source_url"`
}

type JobCreationResponse struct {
	Job             *models.Job `json:"job"`
	EligibleCount   int         `json:"eligible_count"`
	DroppedBranches []string    `json:"dropped_branches,omitempty"`
}

func ToEligibleStudents(students []models.StudentProfile) []EligibleStudent {
	out := make([]EligibleStudent, len(students))
	for i, s := range students {
		out[i] = EligibleStudent{
			Email:      s.Email,
			FullName:   s.FullName,
			RollNumber: s.RollNumber,
			Branch:     string(s.Branch),
			CGPA:       s.CGPA,
			Backlogs:   s.Backlogs,
			YearGap:    s.YearGap,
		}
	}
	return out
}
