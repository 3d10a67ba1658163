package placeholder

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"<OFFICER_DESIGNATION (e.g., SHO)>", "<OFFICER_DESIGNATION>"},
		{"<ISSUING_AUTHORITY (e.g., Sub Divisional Magistrate)>", "<ISSUING_AUTHORITY>"},
		{"<CASE_NUMBER>", "<CASE_NUMBER>"},
		{"<OFFENCE_SECTION (e.g., U/s 126/129 BNSS)>", "<OFFENCE_SECTION>"},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSubstituterApply(t *testing.T) {
	sub := NewSubstituter(map[string]string{
		"<OFFICER_DESIGNATION>": "officer_designation",
		"<CASE_NUMBER>":         "case_number",
		"<HEARING_DATE>":        "hearing_date",
	}, map[string]string{
		"officer_designation": "Inspector",
		"case_number":         "42/2024",
		"hearing_date":        "",
	})

	cases := []struct {
		name, in, want string
		changed        bool
	}{
		{
			name:    "plain token",
			in:      "Dear <OFFICER_DESIGNATION>,",
			want:    "Dear Inspector,",
			changed: true,
		},
		{
			name:    "annotated token in body",
			in:      "Dear <OFFICER_DESIGNATION (e.g., SHO)>,",
			want:    "Dear Inspector,",
			changed: true,
		},
		{
			name:    "multiple tokens",
			in:      "Case <CASE_NUMBER> before <OFFICER_DESIGNATION>",
			want:    "Case 42/2024 before Inspector",
			changed: true,
		},
		{
			name:    "blank value leaves token",
			in:      "On <HEARING_DATE>",
			want:    "On <HEARING_DATE>",
			changed: false,
		},
		{
			name:    "unknown token untouched",
			in:      "Ref <FILE_NUMBER>",
			want:    "Ref <FILE_NUMBER>",
			changed: false,
		},
		{
			// Document scanning is case-sensitive; lowercase markers are
			// not placeholders.
			name:    "lowercase not matched",
			in:      "Dear <officer_designation>,",
			want:    "Dear <officer_designation>,",
			changed: false,
		},
		{
			name:    "no tokens",
			in:      "no markers",
			want:    "no markers",
			changed: false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, changed := sub.Apply(c.in)
			if got != c.want {
				t.Errorf("Apply(%q) = %q, want %q", c.in, got, c.want)
			}
			if changed != c.changed {
				t.Errorf("Apply(%q) changed = %v, want %v", c.in, changed, c.changed)
			}
		})
	}
}

func TestSubstituterRepeatedToken(t *testing.T) {
	sub := NewSubstituter(
		map[string]string{"<CASE_NUMBER>": "case_number"},
		map[string]string{"case_number": "7/2025"})
	got, changed := sub.Apply("Case <CASE_NUMBER>; see also <CASE_NUMBER>.")
	if !changed || got != "Case 7/2025; see also 7/2025." {
		t.Fatalf("got %q (changed=%v)", got, changed)
	}
}

func TestSubstituterUncatalogedToken(t *testing.T) {
	// WHAT: a well-formed token the catalog never recorded stays verbatim,
	// even when the caller supplies a value under the matching name.
	// WHY: replacement is gated on catalog membership, not on the shape of
	// the token; otherwise posted values could rewrite arbitrary uppercase
	// markers in the document.
	sub := NewSubstituter(
		map[string]string{"<CASE_NUMBER>": "case_number"},
		map[string]string{"case_number": "7/2025", "internal_ref": "LEAKED"})
	got, changed := sub.Apply("Ref <INTERNAL_REF> for case <CASE_NUMBER>")
	if changed != true || got != "Ref <INTERNAL_REF> for case 7/2025" {
		t.Fatalf("got %q (changed=%v)", got, changed)
	}

	got, changed = sub.Apply("Ref <INTERNAL_REF> only")
	if changed || got != "Ref <INTERNAL_REF> only" {
		t.Fatalf("got %q (changed=%v)", got, changed)
	}
}

func TestSubstituterTrimsValues(t *testing.T) {
	// WHAT: the inserted value is whitespace-trimmed, matching the
	// non-blank check that admits it.
	sub := NewSubstituter(
		map[string]string{"<CASE_NUMBER>": "case_number"},
		map[string]string{"case_number": "  7/2025  "})
	got, changed := sub.Apply("Case <CASE_NUMBER>.")
	if !changed || got != "Case 7/2025." {
		t.Fatalf("got %q (changed=%v)", got, changed)
	}
}
