package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Rewrite applies fn to the text of every body paragraph and table cell
// and splices the changed nodes back into document.xml. Unchanged nodes
// keep their original bytes, so runs, styling and revision marks survive
// wherever no substitution happened. A rewritten node keeps its paragraph
// or cell properties but collapses its runs into a single plain run.
//
// Returns the number of nodes whose text changed.
func (d *Document) Rewrite(fn func(string) string) (int, error) {
	var out bytes.Buffer
	var last int64
	changed := 0

	for _, n := range d.nodes {
		text := fn(n.Text)
		if text == n.Text {
			continue
		}
		out.Write(d.docXML[last:n.start])
		writeNode(&out, n, text)
		last = n.end
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	out.Write(d.docXML[last:])

	docXML := out.Bytes()
	nodes, err := parseNodes(docXML)
	if err != nil {
		return 0, fmt.Errorf("docx: rewrite produced invalid xml: %w", err)
	}
	d.docXML = docXML
	d.nodes = nodes
	return changed, nil
}

func writeNode(out *bytes.Buffer, n Node, text string) {
	switch n.Kind {
	case NodeParagraph:
		writePara(out, n.props, text)
	case NodeTableCell:
		out.WriteString("<w:tc>")
		out.Write(n.props)
		for _, line := range strings.Split(text, "\n") {
			writePara(out, nil, line)
		}
		out.WriteString("</w:tc>")
	}
}

func writePara(out *bytes.Buffer, props []byte, text string) {
	out.WriteString("<w:p>")
	out.Write(props)
	out.WriteString(`<w:r><w:t xml:space="preserve">`)
	_ = xml.EscapeText(out, []byte(text)) // cannot fail on a bytes.Buffer
	out.WriteString("</w:t></w:r></w:p>")
}
