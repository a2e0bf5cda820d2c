package domain

import "errors"

// Domain errors
var (
	// Validation errors, rejected before any side effect.
	ErrEmptyUpload     = errors.New("no documents in submission")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrUnsupportedType = errors.New("unsupported media type")

	// Per-document counting failures. Any of these aborts the whole
	// submission and triggers cleanup of its staged files.
	ErrDocumentEmpty   = errors.New("document has no pages")
	ErrDocumentCorrupt = errors.New("document could not be read")

	// ErrDuplicateTicket means the store saw a ticket number twice. The
	// submission is safe to retry as a whole.
	ErrDuplicateTicket = errors.New("ticket number already exists")

	ErrInvalidStatus = errors.New("invalid job status")
	ErrForbidden     = errors.New("forbidden")
	ErrJobNotFound   = errors.New("job not found")
	ErrFileNotFound  = errors.New("file not found")
	ErrInvalidToken  = errors.New("invalid token")
)
