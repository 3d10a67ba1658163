// Package placeholder extracts bracketed field markers from template text
// and substitutes caller-supplied values into document bodies.
//
// A placeholder looks like <CASE_NUMBER> and may carry an inline example
// annotation: <OFFICER_DESIGNATION (e.g., SHO)>. Extraction derives a
// canonical field name and a type from the token; the stored token never
// keeps the annotation, so that document-side matching works against the
// cleaned form.
//
// Two grammars coexist on purpose: extraction is broad and case-insensitive,
// document scanning accepts uppercase names only. Both are kept bit-exact
// for compatibility with the template corpus already in circulation.
package placeholder

import (
	"regexp"
	"strings"
)

// Type classifies the input a placeholder expects on the fill-in form.
type Type string

const (
	TypeText Type = "text"
	TypeDate Type = "date"
)

// Field is one placeholder extracted from a template.
type Field struct {
	Name    string `json:"name"`    // canonical form, e.g. "officer_designation"
	Token   string `json:"token"`   // stored token, e.g. "<OFFICER_DESIGNATION>"
	Type    Type   `json:"type"`
	Example string `json:"example"` // from an inline annotation, or ""
}

// extractRe matches <inner> with an optional trailing "(e.g., X)" or
// "(eg: X)" annotation, capturing inner and X separately.
var extractRe = regexp.MustCompile(`(?i)<(.*?)(?:\s*\((?:e\.g\.|eg:)\s*(.*?)\))?>`)

var (
	nonWordRe = regexp.MustCompile(`[^\w\s]`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// dateKeywords are matched as substrings of the canonical name.
var dateKeywords = []string{"date", "issue_date", "hearing_date"}

// Canonicalize derives the form-field key from a token's inner text:
// lowercase, punctuation stripped, whitespace runs joined with "_".
func Canonicalize(inner string) string {
	name := strings.ToLower(strings.TrimSpace(inner))
	name = nonWordRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	return spaceRe.ReplaceAllString(name, "_")
}

// TypeOf infers the field type from its canonical name. This is a plain
// substring test, so a name like "update" resolves to date; that behavior
// is load-bearing for existing templates and must not change.
func TypeOf(name string) Type {
	for _, kw := range dateKeywords {
		if strings.Contains(name, kw) {
			return TypeDate
		}
	}
	return TypeText
}

// trimExample normalizes a captured annotation. The "e.g.," spelling
// leaves its comma inside the capture group, so strip it along with
// surrounding whitespace.
func trimExample(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ","))
}

// Extract scans paragraph texts for placeholder tokens and returns the
// distinct fields in order of first appearance. The stored token is the
// trimmed inner text re-bracketed, without the example annotation.
func Extract(paragraphs []string) []Field {
	seen := make(map[Field]bool)
	var fields []Field
	for _, text := range paragraphs {
		for _, m := range extractRe.FindAllStringSubmatch(text, -1) {
			inner := strings.TrimSpace(m[1])
			name := Canonicalize(inner)
			f := Field{
				Name:    name,
				Token:   "<" + inner + ">",
				Type:    TypeOf(name),
				Example: trimExample(m[2]),
			}
			if seen[f] {
				continue
			}
			seen[f] = true
			fields = append(fields, f)
		}
	}
	return fields
}
