// Package documents orchestrates the fill-and-approve workflow: template
// upload and placeholder cataloging, document generation, submission for
// review, and the approve/reject verdicts with signature overlay.
package documents

import (
	"database/sql"
	"log/slog"

	"github.com/fillmate/fillmate/audit"
	"github.com/fillmate/fillmate/blob"
	"github.com/fillmate/fillmate/convert"
	"github.com/fillmate/fillmate/documents/internal/store"
	"github.com/fillmate/fillmate/idgen"
	"github.com/fillmate/fillmate/sign"
)

// Config configures the documents service.
type Config struct {
	// DataDir is the artifact store root.
	DataDir string
	// Placement positions the signature stamp on approved PDFs.
	Placement sign.Placement
	// Logger receives service diagnostics. Default slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Service is the workflow orchestrator.
type Service struct {
	cfg    Config
	logger *slog.Logger
	store  *store.Store
	blobs  *blob.Store
	conv   Converter
	audit  *audit.Logger // optional
	signFn func(pdf, sigImg []byte, pl sign.Placement) ([]byte, error)

	newTemplateID     idgen.Generator
	newUserID         idgen.Generator
	newDocumentID     idgen.Generator
	newSubmissionID   idgen.Generator
	newApprovedID     idgen.Generator
	newNotificationID idgen.Generator
}

// Option customises a Service.
type Option func(*Service)

// WithConverter overrides the DOCX to PDF converter.
func WithConverter(c Converter) Option {
	return func(s *Service) { s.conv = c }
}

// WithAudit attaches an audit trail for data-modifying operations.
func WithAudit(l *audit.Logger) Option {
	return func(s *Service) { s.audit = l }
}

// WithSignFunc overrides the signature stamping function (default
// sign.Apply).
func WithSignFunc(fn func(pdf, sigImg []byte, pl sign.Placement) ([]byte, error)) Option {
	return func(s *Service) { s.signFn = fn }
}

// New creates a documents Service over an opened database, applying the
// workflow schema.
func New(db *sql.DB, cfg Config, opts ...Option) (*Service, error) {
	cfg.defaults()
	s := &Service{
		cfg:    cfg,
		logger: cfg.Logger,
		store:  store.New(db),
		blobs:  blob.NewStore(cfg.DataDir),
		signFn: sign.Apply,

		newTemplateID:     idgen.Prefixed("tpl_", idgen.Default),
		newUserID:         idgen.Prefixed("usr_", idgen.Default),
		newDocumentID:     idgen.Prefixed("doc_", idgen.Default),
		newSubmissionID:   idgen.Prefixed("sub_", idgen.Default),
		newApprovedID:     idgen.Prefixed("apv_", idgen.Default),
		newNotificationID: idgen.Prefixed("ntf_", idgen.Default),
	}
	for _, o := range opts {
		o(s)
	}
	if s.conv == nil {
		s.conv = convert.New(convert.Config{Logger: cfg.Logger})
	}
	if err := s.store.ApplySchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// record writes an audit entry if a trail is attached.
func (s *Service) record(actor, action, entity, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.LogAsync(&audit.Entry{Actor: actor, Action: action, Entity: entity, Detail: detail})
}
