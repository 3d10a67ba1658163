// Package docx reads and rewrites Word documents (OOXML .docx archives).
//
// It keeps the archive intact and only ever touches word/document.xml, and
// inside that file it only touches the body paragraphs and table cells whose
// text actually changes. Everything else (styles, numbering, headers,
// images, relationships) passes through byte for byte, which is what keeps
// generated documents looking like the template they came from.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrParse marks input that is not a readable .docx archive.
var ErrParse = errors.New("docx: parse error")

// maxDepth bounds XML element nesting while parsing document.xml.
const maxDepth = 256

// NodeKind distinguishes the text-bearing node types the rewriter handles.
type NodeKind int

const (
	NodeParagraph NodeKind = iota // body-level w:p
	NodeTableCell                 // outermost w:tc
)

// Node is one text-bearing region of the document body. A paragraph node
// holds its paragraph text; a table-cell node holds the cell's paragraphs
// joined with newlines.
type Node struct {
	Kind NodeKind
	Text string

	start, end int64  // byte span within document.xml
	props      []byte // raw w:pPr / w:tcPr bytes, nil if absent
}

type part struct {
	name string
	data []byte
}

// Document is an opened .docx file.
type Document struct {
	parts  []part
	docXML []byte
	nodes  []Node
}

// Open parses a .docx archive from memory.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open zip: %v", ErrParse, err)
	}

	d := &Document{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrParse, f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrParse, f.Name, err)
		}
		d.parts = append(d.parts, part{name: f.Name, data: b})
		if f.Name == "word/document.xml" {
			d.docXML = b
		}
	}
	if d.docXML == nil {
		return nil, fmt.Errorf("%w: word/document.xml not found in archive", ErrParse)
	}

	nodes, err := parseNodes(d.docXML)
	if err != nil {
		return nil, err
	}
	d.nodes = nodes
	return d, nil
}

// Nodes returns the body's text-bearing nodes in document order.
func (d *Document) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Paragraphs returns the text of the body-level paragraphs, excluding
// table content. This is the surface placeholder extraction reads.
func (d *Document) Paragraphs() []string {
	var out []string
	for _, n := range d.nodes {
		if n.Kind == NodeParagraph {
			out = append(out, n.Text)
		}
	}
	return out
}

// Bytes serializes the document back to a .docx archive. Parts keep their
// original order; only word/document.xml reflects rewrites.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range d.parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", p.name, err)
		}
		data := p.data
		if p.name == "word/document.xml" {
			data = d.docXML
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// parseNodes walks document.xml once, recording the byte span, text and
// formatting-properties span of every body paragraph and outermost table
// cell. Paragraphs inside tables are folded into their cell node.
func parseNodes(docXML []byte) ([]Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var (
		nodes []Node
		depth int

		tblDepth int // w:tbl nesting
		tcDepth  int // w:tc nesting

		cur      *Node // node being assembled
		curDepth int   // element depth at cur's start tag

		inT   bool // inside a w:t run
		text  strings.Builder
		lines []string // completed paragraphs of the current cell

		propsName  string // "pPr" or "tcPr" expected for cur
		propsStart int64
		inProps    bool
	)

	flushPara := func() {
		if cur != nil && cur.Kind == NodeTableCell {
			lines = append(lines, text.String())
			text.Reset()
		}
	}

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: document.xml: %v", ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxDepth {
				return nil, fmt.Errorf("%w: nesting depth exceeds %d", ErrParse, maxDepth)
			}
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tc":
				tcDepth++
				if tcDepth == 1 && cur == nil {
					cur = &Node{Kind: NodeTableCell, start: off}
					curDepth = depth
					propsName = "tcPr"
					lines = lines[:0]
					text.Reset()
				}
			case "p":
				if tblDepth == 0 && cur == nil {
					cur = &Node{Kind: NodeParagraph, start: off}
					curDepth = depth
					propsName = "pPr"
					text.Reset()
				}
			case "pPr", "tcPr":
				if cur != nil && t.Name.Local == propsName && depth == curDepth+1 && cur.props == nil {
					inProps = true
					propsStart = off
				}
			case "t":
				if cur != nil {
					inT = true
				}
			}

		case xml.CharData:
			if inT {
				text.Write(t)
			}

		case xml.EndElement:
			end := dec.InputOffset()
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "tc":
				if cur != nil && cur.Kind == NodeTableCell && depth == curDepth {
					cur.Text = strings.Join(lines, "\n")
					cur.end = end
					nodes = append(nodes, *cur)
					cur = nil
				}
				tcDepth--
			case "p":
				if cur != nil && cur.Kind == NodeParagraph && depth == curDepth {
					cur.Text = text.String()
					cur.end = end
					nodes = append(nodes, *cur)
					cur = nil
				} else {
					flushPara()
				}
			case "pPr", "tcPr":
				if inProps && t.Name.Local == propsName && depth == curDepth+1 {
					cur.props = docXML[propsStart:end]
					inProps = false
				}
			case "t":
				inT = false
			}
			depth--
		}
	}
	return nodes, nil
}
