package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const docHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`

// buildDocx assembles a minimal .docx archive around the given body XML.
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   docHeader + "<w:body>" + body + "</w:body></w:document>",
	}
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func para(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func TestOpenParagraphsAndCells(t *testing.T) {
	body := para("Dear &lt;OFFICER_DESIGNATION&gt;,") +
		para("Case &lt;CASE_NUMBER&gt; refers.") +
		`<w:tbl><w:tr>` +
		`<w:tc><w:tcPr><w:tcW w:w="100"/></w:tcPr>` + para("Accused") + para("&lt;ACCUSED_NAME&gt;") + `</w:tc>` +
		`<w:tc>` + para("Date") + `</w:tc>` +
		`</w:tr></w:tbl>` +
		para("Regards")

	d, err := Open(buildDocx(t, body))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	wantParas := []string{
		"Dear <OFFICER_DESIGNATION>,",
		"Case <CASE_NUMBER> refers.",
		"Regards",
	}
	if got := d.Paragraphs(); !reflect.DeepEqual(got, wantParas) {
		t.Errorf("Paragraphs = %q, want %q", got, wantParas)
	}

	nodes := d.Nodes()
	if len(nodes) != 5 {
		t.Fatalf("got %d nodes, want 5", len(nodes))
	}
	if nodes[2].Kind != NodeTableCell || nodes[2].Text != "Accused\n<ACCUSED_NAME>" {
		t.Errorf("cell node = kind %d text %q", nodes[2].Kind, nodes[2].Text)
	}
	if nodes[3].Text != "Date" {
		t.Errorf("second cell text = %q", nodes[3].Text)
	}
}

func TestRewrite(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>NOTICE &lt;CASE_NUMBER&gt;</w:t></w:r></w:p>` +
		para("Dear &lt;NAME&gt;,") +
		`<w:tbl><w:tr><w:tc>` + para("&lt;NAME&gt;") + `</w:tc></w:tr></w:tbl>` +
		para("unchanged tail")

	d, err := Open(buildDocx(t, body))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	n, err := d.Rewrite(func(s string) string {
		s = strings.ReplaceAll(s, "<CASE_NUMBER>", "42/2024")
		return strings.ReplaceAll(s, "<NAME>", "A. Kumar")
	})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if n != 3 {
		t.Errorf("rewrote %d nodes, want 3", n)
	}

	// Paragraph properties survive the rewrite.
	if !bytes.Contains(d.docXML, []byte(`<w:pStyle w:val="Heading1"/>`)) {
		t.Errorf("pStyle dropped from rewritten paragraph:\n%s", d.docXML)
	}

	// Round-trip through Bytes and reopen.
	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	d2, err := Open(out)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	wantParas := []string{"NOTICE 42/2024", "Dear A. Kumar,", "unchanged tail"}
	if got := d2.Paragraphs(); !reflect.DeepEqual(got, wantParas) {
		t.Errorf("Paragraphs after rewrite = %q, want %q", got, wantParas)
	}
	if nodes := d2.Nodes(); nodes[2].Text != "A. Kumar" {
		t.Errorf("cell after rewrite = %q", nodes[2].Text)
	}
}

func TestRewriteNoChanges(t *testing.T) {
	src := buildDocx(t, para("nothing to do"))
	d, err := Open(src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	before := string(d.docXML)
	n, err := d.Rewrite(func(s string) string { return s })
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if n != 0 {
		t.Errorf("rewrote %d nodes, want 0", n)
	}
	if string(d.docXML) != before {
		t.Error("document.xml modified despite no changes")
	}
}

func TestRewriteEscapesText(t *testing.T) {
	d, err := Open(buildDocx(t, para("&lt;V&gt;")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := d.Rewrite(func(s string) string {
		return strings.ReplaceAll(s, "<V>", `R&D <section> "q"`)
	}); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	d2, err := Open(out)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := d2.Paragraphs()[0]; got != `R&D <section> "q"` {
		t.Errorf("round-tripped text = %q", got)
	}
}

func TestOpenNotZip(t *testing.T) {
	_, err := Open([]byte("this is not a docx"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestOpenMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	w.Write([]byte("<styles/>"))
	zw.Close()

	_, err := Open(buf.Bytes())
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestOpenNestingBomb(t *testing.T) {
	// WHAT: a document.xml with pathological element nesting is rejected
	// instead of being walked to completion.
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("<w:p>")
	}
	for i := 0; i < 300; i++ {
		b.WriteString("</w:p>")
	}
	_, err := Open(buildDocx(t, b.String()))
	if err == nil || !strings.Contains(err.Error(), "nesting depth") {
		t.Fatalf("err = %v, want nesting depth error", err)
	}
}
