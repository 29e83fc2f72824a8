package branch

import (
	"reflect"
	"strings"
	"testing"
)

// ── Normalize ──────────────────────────────────────────────────────────────

func TestNormalize_EveryAliasResolvesToParent(t *testing.T) {
	for alias, want := range aliases {
		for _, in := range []string{alias, strings.ToUpper(alias), "  " + alias + "\t"} {
			got, ok := Normalize(in)
			if !ok {
				t.Errorf("Normalize(%q) returned no match, want %s", in, want)
				continue
			}
			if got != want {
				t.Errorf("Normalize(%q) = %s, want %s", in, got, want)
			}
		}
	}
}

func TestNormalize_SubCodesRollUp(t *testing.T) {
	cases := map[string]Code{
		"BCE": CSE, "BCI": CSE, "BCT": CSE, "BDS": CSE, "BBS": CSE, "BKT": CSE,
		"BIT": IT, "BEC": ECE, "BEE": EEE,
		"mech": MECH, "Civil": CIVIL, "AUTO": AUTO,
	}
	for in, want := range cases {
		if got, ok := Normalize(in); !ok || got != want {
			t.Errorf("Normalize(%q) = (%s, %v), want (%s, true)", in, got, ok, want)
		}
	}
}

func TestNormalize_SubstringMatches(t *testing.T) {
	cases := []struct {
		in   string
		want Code
	}{
		{"B.Tech Mechanical Engineering", MECH},
		{"Computer Science & Engineering", CSE},
		{"Electronics & Communication Engineering", ECE},
		{"EEE (Electrical and Electronics)", EEE},
		{"Aeronautical Engineering", AERO},
		{"Automotive", AUTO},
		{"civ", CIVIL},
	}
	for _, c := range cases {
		if got, ok := Normalize(c.in); !ok || got != c.want {
			t.Errorf("Normalize(%q) = (%s, %v), want (%s, true)", c.in, got, ok, c.want)
		}
	}
}

func TestNormalize_RegexFallback(t *testing.T) {
	cases := []struct {
		in   string
		want Code
	}{
		{"ComputerScience", CSE},
		{"computer   science", CSE},
		{"InformationTechnology", IT},
	}
	for _, c := range cases {
		if got, ok := Normalize(c.in); !ok || got != c.want {
			t.Errorf("Normalize(%q) = (%s, %v), want (%s, true)", c.in, got, ok, c.want)
		}
	}
}

func TestNormalize_UnknownIsAbsent(t *testing.T) {
	for _, in := range []string{"", "   ", "Marketing", "History", "Philosophy", "xyz", "Commerce"} {
		if got, ok := Normalize(in); ok {
			t.Errorf("Normalize(%q) = %s, want no match", in, got)
		}
	}
}

// Two-letter aliases must not leak into the substring pass.
func TestNormalize_ShortAliasesNeedExactMatch(t *testing.T) {
	if got, ok := Normalize("it"); !ok || got != IT {
		t.Errorf("Normalize(\"it\") = (%s, %v), want (IT, true)", got, ok)
	}
	if got, ok := Normalize("marketing"); ok {
		t.Errorf("Normalize(\"marketing\") = %s, want no match", got)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	inputs := []string{"B.Tech Mechanical Engineering", "computer   science", "electro", "Marketing"}
	for _, in := range inputs {
		first, firstOK := Normalize(in)
		for i := 0; i < 50; i++ {
			got, ok := Normalize(in)
			if got != first || ok != firstOK {
				t.Fatalf("Normalize(%q) not deterministic: (%s, %v) then (%s, %v)", in, first, firstOK, got, ok)
			}
		}
	}
}

// ── NormalizeList ──────────────────────────────────────────────────────────

func TestNormalizeList_DedupesPreservingOrder(t *testing.T) {
	got := NormalizeList([]string{"CSE", "cse", "Computer Science"})
	if want := []Code{CSE}; !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList = %v, want %v", got, want)
	}

	got = NormalizeList([]string{"Mechanical", "IT", "mech", "bds", "Information Technology", "ECE"})
	if want := []Code{MECH, IT, CSE, ECE}; !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList = %v, want %v", got, want)
	}
}

func TestNormalizeList_DropsMisses(t *testing.T) {
	got, dropped := NormalizeListReport([]string{"Marketing", "CSE", "", "History"})
	if want := []Code{CSE}; !reflect.DeepEqual(got, want) {
		t.Errorf("codes = %v, want %v", got, want)
	}
	if want := []string{"Marketing", "", "History"}; !reflect.DeepEqual(dropped, want) {
		t.Errorf("dropped = %v, want %v", dropped, want)
	}
}

func TestNormalizeList_EmptyInput(t *testing.T) {
	got := NormalizeList(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("NormalizeList(nil) = %#v, want empty non-nil slice", got)
	}
}

// ── Display helpers ────────────────────────────────────────────────────────

func TestDisplayName(t *testing.T) {
	if got := DisplayName(CSE); got != "Computer Science Engineering" {
		t.Errorf("DisplayName(CSE) = %q", got)
	}
	if got := DisplayName("XYZ"); got != "XYZ" {
		t.Errorf("DisplayName(XYZ) = %q, want passthrough", got)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	list := All()
	if len(list) != 10 {
		t.Fatalf("All() returned %d branches, want 10", len(list))
	}
	list[0].Code = "MUTATED"
	if All()[0].Code != CSE {
		t.Error("All() must not expose the package table")
	}
	for _, b := range list[1:] {
		if DisplayName(b.Code) == string(b.Code) {
			t.Errorf("DisplayName(%s) has no long name", b.Code)
		}
	}
	if DisplayName("BCE") != "BCE" {
		t.Error("DisplayName(BCE) resolved a sub-code, want it returned unchanged")
	}
}
