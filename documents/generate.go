package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fillmate/fillmate/blob"
	"github.com/fillmate/fillmate/docx"
	"github.com/fillmate/fillmate/documents/internal/store"
	"github.com/fillmate/fillmate/placeholder"
)

// render loads the template, substitutes values into every paragraph and
// table cell, and returns the filled DOCX bytes.
func (s *Service) render(ctx context.Context, tpl *store.Template, values map[string]string) ([]byte, error) {
	docxData, err := s.blobs.Read(tpl.FilePath)
	if err != nil {
		return nil, err
	}
	doc, err := docx.Open(docxData)
	if err != nil {
		if errors.Is(err, docx.ErrParse) {
			return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
		}
		return nil, err
	}

	fields, err := s.store.ListPlaceholders(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]string, len(fields))
	for _, p := range fields {
		catalog[p.Token] = p.Name
	}

	sub := placeholder.NewSubstituter(catalog, values)
	n, err := doc.Rewrite(func(text string) string {
		out, _ := sub.Apply(text)
		return out
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, placeholder.ErrNoReplacements
	}
	return doc.Bytes()
}

// finish converts a rendered document to the requested format.
func (s *Service) finish(ctx context.Context, rendered []byte, format Format) ([]byte, error) {
	if format == FormatDOCX {
		return rendered, nil
	}
	return s.conv.Convert(ctx, rendered)
}

// Generate fills a template with values and returns the document in the
// requested format, recording it against the user.
func (s *Service) Generate(ctx context.Context, userID, templateID string, values map[string]string, format Format) (*store.GeneratedDocument, *Artifact, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	tpl, err := s.Template(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}

	rendered, err := s.render(ctx, tpl, values)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.finish(ctx, rendered, format)
	if err != nil {
		return nil, nil, err
	}

	name := tpl.Name + "." + string(format)
	path, err := s.blobs.Save(blob.KindGenerated, name, data)
	if err != nil {
		return nil, nil, err
	}

	valuesJSON, _ := json.Marshal(values)
	gen := &store.GeneratedDocument{
		ID:         s.newDocumentID(),
		TemplateID: tpl.ID,
		CreatedBy:  user.ID,
		Format:     string(format),
		FilePath:   path,
		ValuesJSON: string(valuesJSON),
	}
	if err := s.store.InsertGenerated(ctx, gen); err != nil {
		return nil, nil, err
	}

	s.logger.Info("document generated",
		"document_id", gen.ID, "template_id", tpl.ID, "user_id", user.ID, "format", format)
	s.record(user.ID, "document.generate", gen.ID, tpl.ID)
	return gen, &Artifact{Name: name, ContentType: format.ContentType(), Data: data}, nil
}

// Submit runs the generation pipeline and files the result as a pending
// submission, notifying every HOD.
func (s *Service) Submit(ctx context.Context, userID, templateID string, values map[string]string, format Format) (*store.Submission, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.Template(ctx, templateID)
	if err != nil {
		return nil, err
	}

	rendered, err := s.render(ctx, tpl, values)
	if err != nil {
		return nil, err
	}
	data, err := s.finish(ctx, rendered, format)
	if err != nil {
		return nil, err
	}

	path, err := s.blobs.Save(blob.KindSubmitted, tpl.Name+"."+string(format), data)
	if err != nil {
		return nil, err
	}

	sub := &store.Submission{
		ID:          s.newSubmissionID(),
		TemplateID:  tpl.ID,
		SubmittedBy: user.ID,
		FilePath:    path,
	}
	if err := s.store.InsertSubmission(ctx, sub); err != nil {
		return nil, err
	}

	hods, err := s.store.ListHODs(ctx)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("New submission %q from %s awaiting review.", tpl.Name, user.Username)
	for _, hod := range hods {
		n := &store.Notification{
			ID:         s.newNotificationID(),
			UserID:     hod.ID,
			Sender:     user.ID,
			Message:    msg,
			EntityKind: EntitySubmission,
			EntityID:   sub.ID,
		}
		if err := s.store.InsertNotification(ctx, nil, n); err != nil {
			s.logger.Error("notify hod", "hod_id", hod.ID, "submission_id", sub.ID, "error", err)
		}
	}

	s.logger.Info("submission created",
		"submission_id", sub.ID, "template_id", tpl.ID, "user_id", user.ID, "hods_notified", len(hods))
	s.record(user.ID, "submission.create", sub.ID, tpl.ID)
	return sub, nil
}

// Submission retrieves one submission.
func (s *Service) Submission(ctx context.Context, id string) (*store.Submission, error) {
	sub, err := s.store.GetSubmission(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: submission %s", ErrNotFound, id)
	}
	return sub, err
}

// MySubmissions lists a user's submissions, newest first.
func (s *Service) MySubmissions(ctx context.Context, userID string) ([]*store.Submission, error) {
	return s.store.ListSubmissionsByUser(ctx, userID)
}

// PendingSubmissions lists the review queue, oldest first.
func (s *Service) PendingSubmissions(ctx context.Context) ([]*store.Submission, error) {
	return s.store.ListSubmissionsByStatus(ctx, store.StatusPending)
}

// SubmissionFile returns a submission's stored document, converted to PDF
// when it was submitted as DOCX so reviewers always see the fixed layout.
func (s *Service) SubmissionFile(ctx context.Context, id string) (*Artifact, error) {
	sub, err := s.Submission(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.blobs.Read(sub.FilePath)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(sub.FilePath, ".docx") {
		if data, err = s.conv.Convert(ctx, data); err != nil {
			return nil, err
		}
	}
	return &Artifact{
		Name:        sub.ID + ".pdf",
		ContentType: FormatPDF.ContentType(),
		Data:        data,
	}, nil
}
