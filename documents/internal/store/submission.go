package store

import (
	"context"
	"database/sql"
	"time"
)

// InsertSubmission records a PDF submitted for review.
func (s *Store) InsertSubmission(ctx context.Context, sub *Submission) error {
	if sub.SubmittedAt == 0 {
		sub.SubmittedAt = time.Now().UnixMilli()
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO submissions (id, template_id, submitted_by, file_path, status, rejection_reason, reviewed_by, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.TemplateID, sub.SubmittedBy, sub.FilePath, sub.Status,
		sub.RejectionReason, sub.ReviewedBy, sub.SubmittedAt)
	return err
}

// GetSubmission retrieves a submission by ID.
func (s *Store) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, template_id, submitted_by, file_path, status, rejection_reason, reviewed_by, submitted_at, COALESCE(reviewed_at, 0)
		 FROM submissions WHERE id = ?`, id)
	return scanSubmission(row)
}

// ListSubmissionsByUser returns a user's submissions, newest first.
func (s *Store) ListSubmissionsByUser(ctx context.Context, userID string) ([]*Submission, error) {
	return s.listSubmissions(ctx,
		`SELECT id, template_id, submitted_by, file_path, status, rejection_reason, reviewed_by, submitted_at, COALESCE(reviewed_at, 0)
		 FROM submissions WHERE submitted_by = ? ORDER BY submitted_at DESC`, userID)
}

// ListSubmissionsByStatus returns submissions in a given status, oldest
// first so reviewers see the longest-waiting ones on top.
func (s *Store) ListSubmissionsByStatus(ctx context.Context, status string) ([]*Submission, error) {
	return s.listSubmissions(ctx,
		`SELECT id, template_id, submitted_by, file_path, status, rejection_reason, reviewed_by, submitted_at, COALESCE(reviewed_at, 0)
		 FROM submissions WHERE status = ? ORDER BY submitted_at`, status)
}

// ReviewSubmission transitions a pending submission to approved or
// rejected. Returns false when the submission was not pending (already
// reviewed, or absent).
func (s *Store) ReviewSubmission(ctx context.Context, tx *sql.Tx, id, status, reason, reviewer string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE submissions SET status = ?, rejection_reason = ?, reviewed_by = ?, reviewed_at = ?
		 WHERE id = ? AND status = ?`,
		status, reason, reviewer, time.Now().UnixMilli(), id, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) listSubmissions(ctx context.Context, query string, args ...any) ([]*Submission, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var sub Submission
	if err := row.Scan(&sub.ID, &sub.TemplateID, &sub.SubmittedBy, &sub.FilePath,
		&sub.Status, &sub.RejectionReason, &sub.ReviewedBy, &sub.SubmittedAt, &sub.ReviewedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

// InsertApproved records the signed PDF for an approved submission.
func (s *Store) InsertApproved(ctx context.Context, tx *sql.Tx, a *ApprovedDocument) error {
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().UnixMilli()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO approved_documents (id, submission_id, file_path, signed_by, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.SubmissionID, a.FilePath, a.SignedBy, a.CreatedAt)
	return err
}

// GetApprovedBySubmission retrieves the signed PDF record for a submission.
func (s *Store) GetApprovedBySubmission(ctx context.Context, submissionID string) (*ApprovedDocument, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, submission_id, file_path, signed_by, created_at
		 FROM approved_documents WHERE submission_id = ?`, submissionID)
	var a ApprovedDocument
	if err := row.Scan(&a.ID, &a.SubmissionID, &a.FilePath, &a.SignedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
