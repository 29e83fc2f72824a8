package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/justsurfingit/placement-portal/internal/branch"
	"github.com/justsurfingit/placement-portal/internal/eligibility"
)

// ParseCriteriaReply pulls the first JSON object out of a model reply and turns it
// into criteria. Prose or code fences around the object are ignored. Missing keys
// mean "no constraint"; keys with the wrong type fail with ErrCriteriaShape.
func ParseCriteriaReply(reply string) (*Extraction, error) {
	obj, ok := findJSONObject(reply)
	if !ok {
		return nil, fmt.Errorf("%w; reply was: %s", ErrNoJSONObject, abbreviate(reply, 300))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCriteriaShape, err)
	}

	var (
		c   eligibility.Criteria
		err error
	)
	if c.MinCGPA, err = optFloat(fields, "cgpa"); err != nil {
		return nil, err
	}
	if c.MaxBacklogs, err = optCount(fields, "backlogs"); err != nil {
		return nil, err
	}
	if c.MaxYearGap, err = optCount(fields, "year_gap"); err != nil {
		return nil, err
	}
	rawBranches, err := optStringList(fields, "branches")
	if err != nil {
		return nil, err
	}
	for key, dst := range map[string]**string{
		"ctc":                 &c.CTC,
		"stipend":             &c.Stipend,
		"last_date":           &c.LastDate,
		"company_description": &c.CompanyDescription,
	} {
		if *dst, err = optString(fields, key); err != nil {
			return nil, err
		}
	}

	if err := checkCriteriaRanges(c); err != nil {
		return nil, err
	}

	var dropped []string
	c.Branches, dropped = branch.NormalizeListReport(rawBranches)

	diag := "Successfully parsed criteria."
	if len(dropped) > 0 {
		diag += fmt.Sprintf(" Ignored unrecognized branches: %s.", strings.Join(dropped, ", "))
	}
	if !c.HasClauses() {
		diag += " No eligibility rules were found, so no students will match."
	}

	return &Extraction{Criteria: c, Diagnostic: diag, DroppedBranches: dropped}, nil
}

// findJSONObject returns the first balanced {...} span that is valid JSON. Braces
// inside string literals are skipped.
// checkCriteriaRanges applies the numeric bounds to criteria from any source,
// including ones edited by hand before publishing.
func checkCriteriaRanges(c eligibility.Criteria) error {
	if c.MinCGPA != nil && (math.IsNaN(*c.MinCGPA) || *c.MinCGPA < 0 || *c.MinCGPA > 10) {
		return fmt.Errorf("%w: \"cgpa\" must be between 0 and 10, got %v", ErrCriteriaShape, *c.MinCGPA)
	}
	if c.MaxBacklogs != nil && *c.MaxBacklogs < 0 {
		return fmt.Errorf("%w: \"backlogs\" must be >= 0, got %d", ErrCriteriaShape, *c.MaxBacklogs)
	}
	if c.MaxYearGap != nil && *c.MaxYearGap < 0 {
		return fmt.Errorf("%w: \"year_gap\" must be >= 0, got %d", ErrCriteriaShape, *c.MaxYearGap)
	}
	return nil
}

func findJSONObject(s string) (string, bool) {
	for start := 0; start < len(s); {
		i := strings.IndexByte(s[start:], '{')
		if i < 0 {
			return "", false
		}
		i += start
		if end, ok := balancedEnd(s, i); ok {
			candidate := s[i : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		start = i + 1
	}
	return "", false
}

func balancedEnd(s string, open int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for j := open; j < len(s); j++ {
		ch := s[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return -1, false
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func optFloat(fields map[string]json.RawMessage, key string) (*float64, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %q must be a number or null, got %s", ErrCriteriaShape, key, raw)
	}
	return &v, nil
}

// optCount accepts whole non-negative numbers, including ones written as 1.0.
func optCount(fields map[string]json.RawMessage, key string) (*int, error) {
	f, err := optFloat(fields, key)
	if err != nil || f == nil {
		return nil, err
	}
	if *f < 0 || *f != math.Trunc(*f) || *f > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %q must be a whole number >= 0, got %v", ErrCriteriaShape, key, *f)
	}
	n := int(*f)
	return &n, nil
}

func optString(fields map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %q must be a string or null, got %s", ErrCriteriaShape, key, raw)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	return &v, nil
}

func optStringList(fields map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return []string{}, nil
	}
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %q must be a list of strings, got %s", ErrCriteriaShape, key, raw)
	}
	return v, nil
}

func abbreviate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
