package sign

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Read-only PDF inspection helpers. Apply uses them to validate its input
// and output; the review workflow uses them to sanity-check conversions.

func readContext(pdf []byte) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := pdfapi.ReadValidateAndOptimize(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

// PageCount returns the number of pages in pdf.
func PageCount(pdf []byte) (int, error) {
	ctx, err := readContext(pdf)
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// PageText extracts the visible text of one page (1-based). Layout is
// collapsed to single-spaced text; good enough for containment checks,
// not for rendering.
func PageText(pdf []byte, pageNr int) (string, error) {
	ctx, err := readContext(pdf)
	if err != nil {
		return "", err
	}
	if pageNr < 1 || pageNr > ctx.PageCount {
		return "", fmt.Errorf("page %d out of range (1..%d)", pageNr, ctx.PageCount)
	}
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", pageNr, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read page %d content: %w", pageNr, err)
	}
	return textFromStream(data), nil
}

// PageHasImage reports whether the page references an image XObject.
func PageHasImage(pdf []byte, pageNr int) (bool, error) {
	ctx, err := readContext(pdf)
	if err != nil {
		return false, err
	}
	if pageNr < 1 || pageNr > ctx.PageCount {
		return false, fmt.Errorf("page %d out of range (1..%d)", pageNr, ctx.PageCount)
	}
	return len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0, nil
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromStream parses a page content stream's text-showing operators.
func textFromStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Tj / TJ operators: (text) Tj   [(text) -100 (more)] TJ
		if bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		}

		// ' operator (next line and show text).
		if bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodePDFString(m[1]))
			}
		}

		// Positioning operators contribute whitespace.
		if bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")) {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		}
		if bytes.Equal(line, []byte("T*")) {
			sb.WriteByte('\n')
		}
	}

	return cleanText(sb.String())
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// Octal escape, e.g. \040 for space.
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// cleanText collapses whitespace runs and drops non-printable runes.
func cleanText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
