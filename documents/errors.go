package documents

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("documents: not found")

// ErrInvalidInput is returned when a request fails validation.
var ErrInvalidInput = errors.New("documents: invalid input")

// ErrTemplateParse is returned when an upload is not a readable DOCX.
var ErrTemplateParse = errors.New("documents: template parse failed")

// ErrSignatureMissing is returned on approval when the reviewer has no
// signature image on file.
var ErrSignatureMissing = errors.New("documents: reviewer has no signature on file")

// ErrReasonRequired is returned when a rejection carries no reason.
var ErrReasonRequired = errors.New("documents: rejection reason required")

// ErrAlreadyReviewed is returned when a verdict targets a submission that
// is no longer pending.
var ErrAlreadyReviewed = errors.New("documents: submission already reviewed")
