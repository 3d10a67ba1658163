package store

import "context"

// UpsertPlaceholder inserts a catalog row if the exact tuple is not
// already present. Re-running extraction on an unchanged template is a
// no-op.
func (s *Store) UpsertPlaceholder(ctx context.Context, p *Placeholder) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO placeholders (template_id, name, token, type, example)
		 VALUES (?, ?, ?, ?, ?)`,
		p.TemplateID, p.Name, p.Token, p.Type, p.Example)
	return err
}

// ListPlaceholders returns the catalog for a template in insertion order.
func (s *Store) ListPlaceholders(ctx context.Context, templateID string) ([]*Placeholder, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT template_id, name, token, type, example
		 FROM placeholders WHERE template_id = ? ORDER BY id`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Placeholder
	for rows.Next() {
		var p Placeholder
		if err := rows.Scan(&p.TemplateID, &p.Name, &p.Token, &p.Type, &p.Example); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
