package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fillmate/fillmate/blob"
	"github.com/fillmate/fillmate/docx"
	"github.com/fillmate/fillmate/documents/internal/store"
	"github.com/fillmate/fillmate/placeholder"
)

// UploadTemplate stores a DOCX template, extracts its placeholders and
// writes the catalog. Returns the template and its catalog rows.
func (s *Service) UploadTemplate(ctx context.Context, uploaderID, name string, docxData []byte) (*store.Template, []*store.Placeholder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: template name required", ErrInvalidInput)
	}
	if len(docxData) == 0 {
		return nil, nil, fmt.Errorf("%w: empty template file", ErrInvalidInput)
	}

	doc, err := docx.Open(docxData)
	if err != nil {
		if errors.Is(err, docx.ErrParse) {
			return nil, nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
		}
		return nil, nil, err
	}

	path, err := s.blobs.Save(blob.KindTemplate, name+".docx", docxData)
	if err != nil {
		return nil, nil, err
	}

	tpl := &store.Template{
		ID:         s.newTemplateID(),
		Name:       name,
		FilePath:   path,
		UploadedBy: uploaderID,
	}
	if err := s.store.InsertTemplate(ctx, tpl); err != nil {
		return nil, nil, err
	}

	fields := placeholder.Extract(doc.Paragraphs())
	for _, f := range fields {
		p := &store.Placeholder{
			TemplateID: tpl.ID,
			Name:       f.Name,
			Token:      f.Token,
			Type:       string(f.Type),
			Example:    f.Example,
		}
		if err := s.store.UpsertPlaceholder(ctx, p); err != nil {
			return nil, nil, err
		}
	}

	catalog, err := s.store.ListPlaceholders(ctx, tpl.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("template uploaded",
		"template_id", tpl.ID, "name", name, "placeholders", len(catalog))
	s.record(uploaderID, "template.upload", tpl.ID, name)
	return tpl, catalog, nil
}

// Templates lists all templates, newest first.
func (s *Service) Templates(ctx context.Context) ([]*store.Template, error) {
	return s.store.ListTemplates(ctx)
}

// Template retrieves one template.
func (s *Service) Template(ctx context.Context, id string) (*store.Template, error) {
	tpl, err := s.store.GetTemplate(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
	}
	return tpl, err
}

// Placeholders returns a template's catalog.
func (s *Service) Placeholders(ctx context.Context, templateID string) ([]*store.Placeholder, error) {
	if _, err := s.Template(ctx, templateID); err != nil {
		return nil, err
	}
	return s.store.ListPlaceholders(ctx, templateID)
}

// DeleteTemplate removes a template and, by cascade, its catalog.
func (s *Service) DeleteTemplate(ctx context.Context, actorID, id string) error {
	err := s.store.DeleteTemplate(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: template %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	s.record(actorID, "template.delete", id, "")
	return nil
}

// Preview renders the unfilled template to PDF.
func (s *Service) Preview(ctx context.Context, templateID string) (*Artifact, error) {
	tpl, err := s.Template(ctx, templateID)
	if err != nil {
		return nil, err
	}
	docxData, err := s.blobs.Read(tpl.FilePath)
	if err != nil {
		return nil, err
	}
	pdf, err := s.conv.Convert(ctx, docxData)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Name:        tpl.Name + ".pdf",
		ContentType: FormatPDF.ContentType(),
		Data:        pdf,
	}, nil
}
