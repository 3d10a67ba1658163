package placeholder

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoReplacements is returned by Substituter.Sub when no token in the
// document matched a supplied value. Generating a document that is
// byte-identical to the template is always a caller mistake.
var ErrNoReplacements = errors.New("placeholder: no placeholders were replaced")

// scanRe is the document-side grammar: uppercase names only, with an
// optional annotation carried inside the brackets. Deliberately stricter
// and case-sensitive, unlike extraction.
var scanRe = regexp.MustCompile(`<[A-Z_'-]+(?:\s*\(.*?\))?>`)

// cleanRe drops an annotation from a scanned token: "<X (e.g., Y)>" -> "<X>".
var cleanRe = regexp.MustCompile(`(<[A-Z_]+)\s*\(.*?\)>`)

// Clean strips the example annotation from a raw scanned token.
func Clean(token string) string {
	return cleanRe.ReplaceAllString(token, `$1>`)
}

// Substituter replaces placeholder tokens in node text with field values.
// Matching goes raw token -> cleaned token -> catalog entry -> value, so
// annotated occurrences in the body resolve to the same field as bare
// ones. Tokens the catalog never recorded are left verbatim even when a
// value under the same name is supplied.
type Substituter struct {
	catalog map[string]string // cleaned token -> canonical name
	values  map[string]string // canonical name -> value
}

// NewSubstituter builds a Substituter over a template's stored catalog
// (original token -> canonical name) and canonical-name keyed values.
func NewSubstituter(catalog, values map[string]string) *Substituter {
	return &Substituter{catalog: catalog, values: values}
}

// Apply rewrites every cataloged token in text whose field has a
// non-blank value. The second return reports whether text changed.
func (s *Substituter) Apply(text string) (string, bool) {
	tokens := scanRe.FindAllString(text, -1)
	if len(tokens) == 0 {
		return text, false
	}
	out := text
	changed := false
	seen := make(map[string]bool, len(tokens))
	for _, raw := range tokens {
		if seen[raw] {
			continue
		}
		seen[raw] = true
		name, ok := s.catalog[Clean(raw)]
		if !ok {
			continue
		}
		val := strings.TrimSpace(s.values[name])
		if val == "" {
			continue
		}
		out = strings.ReplaceAll(out, raw, val)
		changed = true
	}
	return out, changed
}
