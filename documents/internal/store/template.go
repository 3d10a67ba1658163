package store

import (
	"context"
	"database/sql"
	"time"
)

// InsertTemplate adds an uploaded template.
func (s *Store) InsertTemplate(ctx context.Context, t *Template) error {
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO templates (id, name, file_path, uploaded_by, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.FilePath, t.UploadedBy, t.CreatedAt)
	return err
}

// GetTemplate retrieves a template by ID.
func (s *Store) GetTemplate(ctx context.Context, id string) (*Template, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, file_path, uploaded_by, created_at
		 FROM templates WHERE id = ?`, id)
	var t Template
	if err := row.Scan(&t.ID, &t.Name, &t.FilePath, &t.UploadedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates returns all templates, newest first.
func (s *Store) ListTemplates(ctx context.Context) ([]*Template, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, file_path, uploaded_by, created_at
		 FROM templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.FilePath, &t.UploadedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// DeleteTemplate removes a template; its placeholders cascade.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
