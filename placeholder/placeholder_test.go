package placeholder

import (
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"OFFICER_DESIGNATION", "officer_designation"},
		{"Case  Number", "case_number"},
		{"HEARING-DATE", "hearingdate"},
		{"officer's name", "officers_name"},
		{"  PLACE OF ISSUE  ", "place_of_issue"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Canonicalize(c.in); got != c.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTypeOf(t *testing.T) {
	cases := []struct {
		name string
		want Type
	}{
		{"hearing_date", TypeDate},
		{"issue_date", TypeDate},
		{"date_of_birth", TypeDate},
		// "update" contains "date"; substring semantics are intentional.
		{"update", TypeDate},
		{"officer_designation", TypeText},
		{"case_number", TypeText},
	}
	for _, c := range cases {
		if got := TypeOf(c.name); got != c.want {
			t.Errorf("TypeOf(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestExtract(t *testing.T) {
	paras := []string{
		"To <OFFICER_DESIGNATION (e.g., SHO)>,",
		"Case <CASE_NUMBER> listed on <HEARING_DATE>.",
		"Reminder for <CASE_NUMBER>.",
	}
	got := Extract(paras)
	want := []Field{
		{Name: "officer_designation", Token: "<OFFICER_DESIGNATION>", Type: TypeText, Example: "SHO"},
		{Name: "case_number", Token: "<CASE_NUMBER>", Type: TypeText},
		{Name: "hearing_date", Token: "<HEARING_DATE>", Type: TypeDate},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %+v, want %+v", got, want)
	}
}

func TestExtractAnnotationVariants(t *testing.T) {
	// WHAT: both "e.g.," and "eg:" spellings, case-insensitively.
	got := Extract([]string{"<NAME (E.G., John Doe)> and <RANK (eg: Constable)>"})
	if len(got) != 2 {
		t.Fatalf("expected 2 fields, got %d: %+v", len(got), got)
	}
	if got[0].Example != "John Doe" || got[1].Example != "Constable" {
		t.Errorf("examples = %q, %q", got[0].Example, got[1].Example)
	}
	// The stored token never carries the annotation.
	if got[0].Token != "<NAME>" || got[1].Token != "<RANK>" {
		t.Errorf("tokens = %q, %q", got[0].Token, got[1].Token)
	}
}

func TestExtractDedupeAcrossAnnotation(t *testing.T) {
	// An annotated and a bare occurrence of the same name collapse to one
	// field because the annotated form carries an example.
	got := Extract([]string{"<CASE_NUMBER (e.g., 42/2024)>", "<CASE_NUMBER>"})
	if len(got) != 2 {
		// Distinct Example values mean distinct fields; they still share
		// a canonical name, which is what the fill form keys on.
		t.Fatalf("expected 2 fields, got %d", len(got))
	}
	if got[0].Name != got[1].Name {
		t.Errorf("names differ: %q vs %q", got[0].Name, got[1].Name)
	}
}

func TestExtractNone(t *testing.T) {
	if got := Extract([]string{"no markers here", "< not closed"}); len(got) != 0 {
		t.Fatalf("expected no fields, got %+v", got)
	}
}
