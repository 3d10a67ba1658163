package documents

import (
	"context"
	"fmt"
	"strings"
)

// Format selects the output format of a generated document.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// ParseFormat normalizes a client-supplied format string. Empty means
// DOCX, the editable format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "docx":
		return FormatDOCX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrInvalidInput, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}

// Artifact is a downloadable file produced by the service.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Action is a review verdict kind.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Decision is a reviewer's verdict on a submission. Reject requires a
// Reason; Approve ignores it.
type Decision struct {
	Action Action `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// EntitySubmission tags notifications that reference a submission.
const EntitySubmission = "submission"

// Converter renders DOCX bytes to PDF bytes. *convert.Engine satisfies
// it; tests substitute a fake.
type Converter interface {
	Convert(ctx context.Context, docxData []byte) ([]byte, error)
}
