package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fillmate/fillmate/blob"
	"github.com/fillmate/fillmate/dbopen"
	"github.com/fillmate/fillmate/documents/internal/store"
)

// Review applies a reviewer's verdict to a pending submission.
//
// Approve: the submission file (converted to PDF if needed) is stamped
// with the reviewer's signature on its last page, stored as the approved
// document, and the submitter is notified. Reject: requires a reason,
// which is recorded and sent to the submitter (truncated in the
// notification message).
func (s *Service) Review(ctx context.Context, reviewerID, submissionID string, d Decision) (*store.Submission, error) {
	reviewer, err := s.User(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	if !reviewer.IsHOD {
		return nil, fmt.Errorf("%w: reviewer %s lacks review authority", ErrInvalidInput, reviewerID)
	}

	sub, err := s.Submission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != store.StatusPending {
		return nil, fmt.Errorf("%w: submission %s is %s", ErrAlreadyReviewed, sub.ID, sub.Status)
	}

	tpl, err := s.Template(ctx, sub.TemplateID)
	if err != nil {
		return nil, err
	}

	switch d.Action {
	case ActionApprove:
		err = s.approve(ctx, reviewer, sub, tpl)
	case ActionReject:
		err = s.reject(ctx, reviewer, sub, tpl, d.Reason)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, d.Action)
	}
	if err != nil {
		return nil, err
	}
	return s.Submission(ctx, submissionID)
}

func (s *Service) approve(ctx context.Context, reviewer *store.User, sub *store.Submission, tpl *store.Template) error {
	if reviewer.SignaturePath == "" {
		return fmt.Errorf("%w: user %s", ErrSignatureMissing, reviewer.ID)
	}
	sigImg, err := s.blobs.Read(reviewer.SignaturePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureMissing, err)
	}

	pdf, err := s.blobs.Read(sub.FilePath)
	if err != nil {
		return err
	}
	if strings.HasSuffix(sub.FilePath, ".docx") {
		if pdf, err = s.conv.Convert(ctx, pdf); err != nil {
			return err
		}
	}

	signed, err := s.signFn(pdf, sigImg, s.cfg.Placement)
	if err != nil {
		return err
	}
	path, err := s.blobs.Save(blob.KindApproved, tpl.Name+".pdf", signed)
	if err != nil {
		return err
	}

	approvedID := s.newApprovedID()
	notifID := s.newNotificationID()
	err = dbopen.RunTx(ctx, s.store.DB, func(tx *sql.Tx) error {
		ok, err := s.store.ReviewSubmission(ctx, tx, sub.ID, store.StatusApproved, "", reviewer.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: submission %s", ErrAlreadyReviewed, sub.ID)
		}
		if err := s.store.InsertApproved(ctx, tx, &store.ApprovedDocument{
			ID:           approvedID,
			SubmissionID: sub.ID,
			FilePath:     path,
			SignedBy:     reviewer.ID,
		}); err != nil {
			return err
		}
		return s.store.InsertNotification(ctx, tx, &store.Notification{
			ID:         notifID,
			UserID:     sub.SubmittedBy,
			Sender:     reviewer.ID,
			Message:    fmt.Sprintf("Your submission '%s' (ID: %s) has been approved.", tpl.Name, sub.ID),
			EntityKind: EntitySubmission,
			EntityID:   sub.ID,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("submission approved",
		"submission_id", sub.ID, "reviewer_id", reviewer.ID, "approved_id", approvedID)
	s.record(reviewer.ID, "submission.approve", sub.ID, approvedID)
	return nil
}

func (s *Service) reject(ctx context.Context, reviewer *store.User, sub *store.Submission, tpl *store.Template, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: submission %s", ErrReasonRequired, sub.ID)
	}

	notifID := s.newNotificationID()
	err := dbopen.RunTx(ctx, s.store.DB, func(tx *sql.Tx) error {
		ok, err := s.store.ReviewSubmission(ctx, tx, sub.ID, store.StatusRejected, reason, reviewer.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: submission %s", ErrAlreadyReviewed, sub.ID)
		}
		return s.store.InsertNotification(ctx, tx, &store.Notification{
			ID:         notifID,
			UserID:     sub.SubmittedBy,
			Sender:     reviewer.ID,
			Message: fmt.Sprintf("Your submission '%s' (ID: %s) was rejected. Reason: %s",
				tpl.Name, sub.ID, truncateReason(reason)),
			EntityKind: EntitySubmission,
			EntityID:   sub.ID,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("submission rejected",
		"submission_id", sub.ID, "reviewer_id", reviewer.ID, "reason", reason)
	s.record(reviewer.ID, "submission.reject", sub.ID, reason)
	return nil
}

// truncateReason bounds the reason embedded in a notification message.
// The full reason stays on the submission record.
func truncateReason(reason string) string {
	const limit = 75
	if len(reason) <= limit {
		return reason
	}
	return reason[:limit] + "..."
}

// ApprovedFile returns the signed PDF for an approved submission.
func (s *Service) ApprovedFile(ctx context.Context, submissionID string) (*Artifact, error) {
	apv, err := s.store.GetApprovedBySubmission(ctx, submissionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no approved document for submission %s", ErrNotFound, submissionID)
	}
	if err != nil {
		return nil, err
	}
	data, err := s.blobs.Read(apv.FilePath)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Name:        apv.ID + ".pdf",
		ContentType: FormatPDF.ContentType(),
		Data:        data,
	}, nil
}

// Notifications lists a user's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]*store.Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly)
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, id string) error {
	err := s.store.MarkNotificationRead(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	return err
}
