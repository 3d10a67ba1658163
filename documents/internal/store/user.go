package store

import (
	"context"
	"time"
)

// InsertUser adds a workflow participant.
func (s *Store) InsertUser(ctx context.Context, u *User) error {
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (id, username, display_name, is_hod, signature_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.DisplayName, u.IsHOD, u.SignaturePath, u.CreatedAt)
	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, username, display_name, is_hod, signature_path, created_at
		 FROM users WHERE id = ?`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.IsHOD, &u.SignaturePath, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListHODs returns every user with review authority.
func (s *Store) ListHODs(ctx context.Context) ([]*User, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, username, display_name, is_hod, signature_path, created_at
		 FROM users WHERE is_hod = 1 ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.IsHOD, &u.SignaturePath, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// SetSignaturePath records where a user's signature image is stored.
func (s *Store) SetSignaturePath(ctx context.Context, userID, path string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET signature_path = ? WHERE id = ?`, path, userID)
	return err
}
