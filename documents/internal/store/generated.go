package store

import (
	"context"
	"time"
)

// InsertGenerated records a generated document.
func (s *Store) InsertGenerated(ctx context.Context, g *GeneratedDocument) error {
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().UnixMilli()
	}
	if g.ValuesJSON == "" {
		g.ValuesJSON = "{}"
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO generated_documents (id, template_id, created_by, format, file_path, values_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.TemplateID, g.CreatedBy, g.Format, g.FilePath, g.ValuesJSON, g.CreatedAt)
	return err
}

// GetGenerated retrieves a generated document by ID.
func (s *Store) GetGenerated(ctx context.Context, id string) (*GeneratedDocument, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, template_id, created_by, format, file_path, values_json, created_at
		 FROM generated_documents WHERE id = ?`, id)
	var g GeneratedDocument
	if err := row.Scan(&g.ID, &g.TemplateID, &g.CreatedBy, &g.Format, &g.FilePath, &g.ValuesJSON, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGeneratedByUser returns a user's generated documents, newest first.
func (s *Store) ListGeneratedByUser(ctx context.Context, userID string) ([]*GeneratedDocument, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, template_id, created_by, format, file_path, values_json, created_at
		 FROM generated_documents WHERE created_by = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*GeneratedDocument
	for rows.Next() {
		var g GeneratedDocument
		if err := rows.Scan(&g.ID, &g.TemplateID, &g.CreatedBy, &g.Format, &g.FilePath, &g.ValuesJSON, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}
