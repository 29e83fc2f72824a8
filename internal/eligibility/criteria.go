// Package eligibility holds job criteria and the rule that decides which students
// satisfy them.
//
// A student is eligible iff every present clause holds:
//
//	cgpa      >= MinCGPA
//	backlogs  <= MaxBacklogs
//	year_gap  <= MaxYearGap
//	branch    in Branches   (empty Branches = every branch allowed)
//
// Criteria with no clauses at all match nobody.
package eligibility

import (
	"github.com/justsurfingit/placement-portal/internal/branch"
	"github.com/justsurfingit/placement-portal/internal/models"
)

// Criteria is the structured form of a job description's eligibility rules. The JSON
// keys are the ones the extraction prompt asks the model for.
type Criteria struct {
	MinCGPA     *float64      `json:"cgpa"`
	Branches    []branch.Code `json:"branches"`
	MaxBacklogs *int          `json:"backlogs"`
	MaxYearGap  *int          `json:"year_gap"`

	CTC                *string `json:"ctc"`
	Stipend            *string `json:"stipend"`
	LastDate           *string `json:"last_date"`
	CompanyDescription *string `json:"company_description"`
}

// HasClauses reports whether at least one matching clause is set.
func (c Criteria) HasClauses() bool {
	return c.MinCGPA != nil || c.MaxBacklogs != nil || c.MaxYearGap != nil || len(c.Branches) > 0
}

// Eligible applies the clauses to one student. It does not apply the empty-criteria
// guard; Match does.
func (c Criteria) Eligible(s models.StudentProfile) bool {
	if c.MinCGPA != nil && s.CGPA < *c.MinCGPA {
		return false
	}
	if c.MaxBacklogs != nil && s.Backlogs > *c.MaxBacklogs {
		return false
	}
	if c.MaxYearGap != nil && s.YearGap > *c.MaxYearGap {
		return false
	}
	if len(c.Branches) > 0 && !c.allowsBranch(s.Branch) {
		return false
	}
	return true
}

func (c Criteria) allowsBranch(b branch.Code) bool {
	for _, allowed := range c.Branches {
		if allowed == b {
			return true
		}
	}
	return false
}

// Normalized returns a copy whose branch list has been passed through
// branch.NormalizeList, along with any entries that did not resolve. Use it on
// criteria that did not come from the extractor, such as admin edits.
func (c Criteria) Normalized() (Criteria, []string) {
	raw := make([]string, len(c.Branches))
	for i, b := range c.Branches {
		raw[i] = string(b)
	}
	codes, dropped := branch.NormalizeListReport(raw)
	out := c
	out.Branches = codes
	return out, dropped
}

// BranchStrings returns the allowed branches as plain strings for query arguments.
func (c Criteria) BranchStrings() []string {
	out := make([]string, len(c.Branches))
	for i, b := range c.Branches {
		out[i] = string(b)
	}
	return out
}
