package domain

import (
	"context"
	"io"
	"time"
)

// CountingStrategy determines the page count of one staged document.
// Implementations map their own failure modes onto ErrDocumentEmpty and
// ErrDocumentCorrupt; nothing else leaks past this interface.
type CountingStrategy interface {
	Count(ctx context.Context, path string) (int, error)
}

// StrategySelector picks the counting strategy for a declared media type.
// An unknown type returns ErrUnsupportedType; "unsupported" is the
// no-match case, not a strategy.
type StrategySelector interface {
	StrategyFor(mediaType string) (CountingStrategy, error)
}

// TicketSequencer issues globally unique, strictly increasing ticket
// numbers. Implementations must be safe for concurrent use and must not
// reissue numbers across process restarts.
type TicketSequencer interface {
	Next(ctx context.Context) (int64, error)
}

// JobRepository defines persistence operations for jobs. Create enforces
// ticket-number uniqueness independently of the sequencer.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*Job, error)
	GetAll(ctx context.Context) ([]*Job, error)
	SetStatus(ctx context.Context, id string, status JobStatus) (*Job, error)
	// Delete exists only to compensate a failed relocation. Committed
	// jobs are otherwise never removed.
	Delete(ctx context.Context, id string) error
}

// Storage stages uploads per owner and relocates them into permanent
// ticket-keyed locations once a job commits.
type Storage interface {
	Stage(ownerID, filename string, r io.Reader) (string, error)
	DiscardStaging(ownerID string, filenames []string)
	Relocate(ownerID string, ticketNumber int64, filenames []string) error
	Open(ownerID string, ticketNumber int64, filename string) (io.ReadCloser, error)
}

// JobService defines the use-case operations for print jobs.
type JobService interface {
	Submit(ctx context.Context, caller Identity, uploads []Upload) (*Job, error)
	List(ctx context.Context, caller Identity) ([]*Job, error)
	Get(ctx context.Context, caller Identity, jobID string) (*Job, error)
	SetStatus(ctx context.Context, caller Identity, jobID string, status string) (*Job, error)
	OpenDocument(ctx context.Context, caller Identity, jobID, filename string) (io.ReadCloser, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetDataPath() string
	GetStoragePath() string
	GetMaxFileSize() int64
	GetUnitRate() int64
	GetOfficeCounterBin() string
	GetOfficeCountTimeout() time.Duration
	GetPostgresDSN() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetLogLevel() string
}
