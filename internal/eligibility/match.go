package eligibility

import "github.com/justsurfingit/placement-portal/internal/models"

// Match returns the students in roster that satisfy c, in roster order. Criteria
// without clauses yield an empty result, never the whole roster.
func Match(c Criteria, roster []models.StudentProfile) []models.StudentProfile {
	out := make([]models.StudentProfile, 0)
	if !c.HasClauses() {
		return out
	}
	for _, s := range roster {
		if c.Eligible(s) {
			out = append(out, s)
		}
	}
	return out
}

// Emails returns the email of every student, in order.
func Emails(students []models.StudentProfile) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.Email
	}
	return out
}
