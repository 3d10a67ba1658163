package documents

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fillmate/fillmate/blob"
	"github.com/fillmate/fillmate/documents/internal/store"
)

// CreateUser registers a workflow participant.
func (s *Service) CreateUser(ctx context.Context, username, displayName string, isHOD bool) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	u := &store.User{
		ID:          s.newUserID(),
		Username:    username,
		DisplayName: strings.TrimSpace(displayName),
		IsHOD:       isHOD,
	}
	if err := s.store.InsertUser(ctx, u); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: username %q taken", ErrInvalidInput, username)
		}
		return nil, err
	}
	s.record(u.ID, "user.create", u.ID, username)
	return u, nil
}

// User retrieves a participant by ID.
func (s *Service) User(ctx context.Context, id string) (*store.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return u, err
}

// UploadSignature stores a user's signature image (PNG or JPEG) for use
// on approved documents.
func (s *Service) UploadSignature(ctx context.Context, userID, filename string, img []byte) error {
	if _, err := s.User(ctx, userID); err != nil {
		return err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(img)); err != nil {
		return fmt.Errorf("%w: signature must be a PNG or JPEG image", ErrInvalidInput)
	}
	path, err := s.blobs.Save(blob.KindSignature, filename, img)
	if err != nil {
		return err
	}
	if err := s.store.SetSignaturePath(ctx, userID, path); err != nil {
		return err
	}
	s.record(userID, "user.signature", userID, path)
	return nil
}
