// Package branch maps free-text academic branch names to canonical branch codes.
//
// Lookup order for Normalize, first match wins:
//
//	1. exact alias        "computer science" -> CSE
//	2. exact code         "bds" -> CSE, "mech" -> MECH
//	3. substring          "b.tech mechanical engineering" -> MECH
//	4. regex fallback     "computer   science" -> CSE
//
// Everything here is read-only after package init.
package branch

import (
	"regexp"
	"sort"
	"strings"
)

// Code is a canonical branch code as stored in student_profiles.branch.
type Code string

const (
	CSE   Code = "CSE"
	ECE   Code = "ECE"
	IT    Code = "IT"
	EEE   Code = "EEE"
	MECH  Code = "MECH"
	CIVIL Code = "CIVIL"
	AERO  Code = "AERO"
	BIO   Code = "BIO"
	CHEM  Code = "CHEM"
	AUTO  Code = "AUTO"
)

// Branch pairs a canonical code with its display name.
type Branch struct {
	Code        Code   `json:"code"`
	DisplayName string `json:"display_name"`
}

var all = []Branch{
	{CSE, "Computer Science Engineering"},
	{ECE, "Electronics and Communication Engineering"},
	{IT, "Information Technology"},
	{EEE, "Electrical and Electronics Engineering"},
	{MECH, "Mechanical Engineering"},
	{CIVIL, "Civil Engineering"},
	{AERO, "Aerospace Engineering"},
	{BIO, "Biotechnology"},
	{CHEM, "Chemical Engineering"},
	{AUTO, "Automobile Engineering"},
}

// codes holds canonical codes plus institution sub-codes that roll up to a parent.
var codes = map[string]Code{
	"CSE": CSE, "ECE": ECE, "IT": IT, "EEE": EEE, "MECH": MECH,
	"CIVIL": CIVIL, "AERO": AERO, "BIO": BIO, "CHEM": CHEM, "AUTO": AUTO,

	"BCE": CSE, // core
	"BCI": CSE, // information security
	"BCT": CSE, // IoT
	"BDS": CSE, // data science
	"BBS": CSE, // business systems
	"BKT": CSE, // blockchain
	"BIT": IT,
	"BEC": ECE,
	"BEE": EEE,
}

var aliases = map[string]Code{
	"computer science":                 CSE,
	"computer science engineering":     CSE,
	"computer science and engineering": CSE,
	"cse":                              CSE,
	"cs":                               CSE,
	"bce":                              CSE,
	"bci":                              CSE,
	"bct":                              CSE,
	"bds":                              CSE,
	"bbs":                              CSE,
	"bkt":                              CSE,

	"electronics and communication":             ECE,
	"electronics and communication engineering": ECE,
	"electronics & communication":               ECE,
	"ece":         ECE,
	"ec":          ECE,
	"electronics": ECE,
	"bec":         ECE,

	"information technology": IT,
	"information tech":       IT,
	"it":                     IT,
	"bit":                    IT,

	"electrical and electronics":             EEE,
	"electrical and electronics engineering": EEE,
	"electrical & electronics":               EEE,
	"electrical engineering":                 EEE,
	"electrical":                             EEE,
	"eee":                                    EEE,
	"ee":                                     EEE,
	"bee":                                    EEE,

	"mechanical engineering": MECH,
	"mechanical":             MECH,
	"mech":                   MECH,
	"me":                     MECH,

	"civil engineering": CIVIL,
	"civil":             CIVIL,

	"aerospace engineering": AERO,
	"aerospace":             AERO,
	"aero":                  AERO,

	"biotechnology": BIO,
	"biotech":       BIO,
	"bio":           BIO,

	"chemical engineering": CHEM,
	"chemical":             CHEM,
	"chem":                 CHEM,

	"automobile engineering": AUTO,
	"automobile":             AUTO,
	"auto":                   AUTO,
}

// minSubstringLen keeps two-letter aliases like "it" or "me" out of the substring pass,
// otherwise "marketing" would resolve to IT.
const minSubstringLen = 3

type aliasEntry struct {
	key  string
	code Code
}

// substringKeys is the alias table ordered longest key first, then alphabetically.
var substringKeys = func() []aliasEntry {
	entries := make([]aliasEntry, 0, len(aliases))
	for k, c := range aliases {
		if len(k) >= minSubstringLen {
			entries = append(entries, aliasEntry{k, c})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].key) != len(entries[j].key) {
			return len(entries[i].key) > len(entries[j].key)
		}
		return entries[i].key < entries[j].key
	})
	return entries
}()

// patterns are tried in order; more specific phrases come before general ones.
var patterns = []struct {
	re   *regexp.Regexp
	code Code
}{
	{regexp.MustCompile(`computer\s*science`), CSE},
	{regexp.MustCompile(`information\s*tech`), IT},
	{regexp.MustCompile(`electrical\s*(?:and\s*|&\s*)?electronics`), EEE},
	{regexp.MustCompile(`electronics\s*(?:and\s*|&\s*)?communication`), ECE},
	{regexp.MustCompile(`mechanical`), MECH},
	{regexp.MustCompile(`civil`), CIVIL},
	{regexp.MustCompile(`aero(?:space|nautical)`), AERO},
	{regexp.MustCompile(`biotech`), BIO},
	{regexp.MustCompile(`chemical`), CHEM},
	{regexp.MustCompile(`auto(?:mobile|motive)`), AUTO},
}

// Normalize resolves raw to a canonical code. The bool is false when nothing matched;
// callers must drop such entries rather than treat them as a wildcard.
func Normalize(raw string) (Code, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	if c, ok := aliases[s]; ok {
		return c, true
	}
	if c, ok := codes[strings.ToUpper(s)]; ok {
		return c, true
	}

	for _, e := range substringKeys {
		if strings.Contains(s, e.key) {
			return e.code, true
		}
		if len(s) >= minSubstringLen && strings.Contains(e.key, s) {
			return e.code, true
		}
	}

	for _, p := range patterns {
		if p.re.MatchString(s) {
			return p.code, true
		}
	}
	return "", false
}

// NormalizeList normalizes every entry, drops misses and removes duplicates while
// keeping first-seen order.
func NormalizeList(raw []string) []Code {
	out, _ := NormalizeListReport(raw)
	return out
}

// NormalizeListReport is NormalizeList that also returns the raw entries it dropped.
func NormalizeListReport(raw []string) ([]Code, []string) {
	out := make([]Code, 0, len(raw))
	var dropped []string
	seen := make(map[Code]bool, len(raw))
	for _, r := range raw {
		c, ok := Normalize(r)
		if !ok {
			dropped = append(dropped, r)
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, dropped
}

// DisplayName returns the long name for c, or c itself when unknown.
func DisplayName(c Code) string {
	for _, b := range all {
		if b.Code == c {
			return b.DisplayName
		}
	}
	return string(c)
}

// All returns the canonical branches in display order.
func All() []Branch {
	out := make([]Branch, len(all))
	copy(out, all)
	return out
}
