package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"print-ticket-server/internal/domain"
	"print-ticket-server/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type jobService struct {
	repo      domain.JobRepository
	sequencer domain.TicketSequencer
	storage   domain.Storage
	selector  domain.StrategySelector
	unitRate  int64
	logger    domain.Logger
}

// NewJobService wires the intake pipeline and lifecycle operations.
func NewJobService(
	repo domain.JobRepository,
	sequencer domain.TicketSequencer,
	storage domain.Storage,
	selector domain.StrategySelector,
	unitRate int64,
	logger domain.Logger,
) domain.JobService {
	return &jobService{
		repo:      repo,
		sequencer: sequencer,
		storage:   storage,
		selector:  selector,
		unitRate:  unitRate,
		logger:    logger,
	}
}

// pendingUpload is a validated upload waiting to be staged and counted.
type pendingUpload struct {
	filename  string
	mediaType string
	strategy  domain.CountingStrategy
	content   io.Reader
}

// Submit runs the full intake pipeline: validate, stage, count, price,
// ticket, persist, relocate. The stage is all-or-nothing: any failing
// document fails the submission, consumes no ticket, and removes every
// file staged for it.
func (s *jobService) Submit(ctx context.Context, caller domain.Identity, uploads []domain.Upload) (*domain.Job, error) {
	if len(uploads) == 0 {
		return nil, s.reject(domain.ErrEmptyUpload)
	}

	// Validation happens before any side effect.
	seen := make(map[string]bool, len(uploads))
	pendings := make([]pendingUpload, 0, len(uploads))
	for _, up := range uploads {
		filename, err := SanitizeFilename(up.Filename)
		if err != nil {
			return nil, s.reject(err)
		}
		if seen[filename] {
			return nil, s.reject(fmt.Errorf("%w: duplicate %q", domain.ErrInvalidFilename, filename))
		}
		seen[filename] = true

		mediaType, content, err := sniffMediaType(up.MediaType, up.Content)
		if err != nil {
			return nil, s.reject(err)
		}
		strategy, err := s.selector.StrategyFor(mediaType)
		if err != nil {
			return nil, s.reject(err)
		}
		pendings = append(pendings, pendingUpload{
			filename:  filename,
			mediaType: mediaType,
			strategy:  strategy,
			content:   content,
		})
	}

	staged := make([]string, 0, len(pendings))
	paths := make([]string, len(pendings))
	for i, p := range pendings {
		path, err := s.storage.Stage(caller.ID, p.filename, p.content)
		if err != nil {
			s.storage.DiscardStaging(caller.ID, staged)
			return nil, s.reject(fmt.Errorf("failed to stage %s: %w", p.filename, err))
		}
		staged = append(staged, p.filename)
		paths[i] = path
	}

	// Count every document concurrently. Results are written into the
	// slot matching submission order, so the output order is fixed no
	// matter which counts finish first. The first failure cancels the
	// rest of the group.
	documents := make([]domain.Document, len(pendings))
	eg, gctx := errgroup.WithContext(ctx)
	for i, p := range pendings {
		i, p := i, p
		eg.Go(func() error {
			pages, err := p.strategy.Count(gctx, paths[i])
			if err != nil {
				return fmt.Errorf("%s: %w", p.filename, err)
			}
			documents[i] = domain.Document{
				Filename:  p.filename,
				MediaType: p.mediaType,
				Pages:     pages,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.storage.DiscardStaging(caller.ID, staged)
		return nil, s.reject(err)
	}

	price := Price(documents, s.unitRate)

	ticketNumber, err := s.sequencer.Next(ctx)
	if err != nil {
		s.storage.DiscardStaging(caller.ID, staged)
		return nil, s.reject(fmt.Errorf("failed to issue ticket number: %w", err))
	}

	job := &domain.Job{
		ID:           uuid.NewString(),
		OwnerID:      caller.ID,
		TicketNumber: ticketNumber,
		Documents:    documents,
		Price:        price,
		Status:       domain.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, job); err != nil {
		s.storage.DiscardStaging(caller.ID, staged)
		return nil, s.reject(err)
	}

	// Record and files commit together. If the files cannot reach their
	// permanent location the record is rolled back, so a committed job
	// pointing at missing files is never observable.
	if err := s.storage.Relocate(caller.ID, ticketNumber, staged); err != nil {
		if delErr := s.repo.Delete(ctx, job.ID); delErr != nil {
			s.logger.Error("Failed to roll back job after relocation failure", delErr, "job_id", job.ID, "ticket", ticketNumber)
		}
		s.storage.DiscardStaging(caller.ID, staged)
		return nil, s.reject(fmt.Errorf("failed to relocate documents: %w", err))
	}

	var totalPages int
	for _, doc := range documents {
		totalPages += doc.Pages
	}
	metrics.SubmissionsTotal.Inc()
	metrics.TicketsIssued.Inc()
	metrics.PagesCounted.Add(float64(totalPages))
	s.logger.Info("Job committed", "ticket", ticketNumber, "owner", caller.ID, "documents", len(documents), "price", price)
	return job, nil
}

// List returns the caller's own jobs, or every job for admins.
func (s *jobService) List(ctx context.Context, caller domain.Identity) ([]*domain.Job, error) {
	if caller.IsAdmin {
		return s.repo.GetAll(ctx)
	}
	return s.repo.GetByOwner(ctx, caller.ID)
}

// Get returns one job. Non-admin callers only see their own jobs; a
// foreign job reads as not found rather than leaking its existence.
func (s *jobService) Get(ctx context.Context, caller domain.Identity, jobID string) (*domain.Job, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin && job.OwnerID != caller.ID {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

// SetStatus toggles a job between the permitted statuses. Admin only.
func (s *jobService) SetStatus(ctx context.Context, caller domain.Identity, jobID string, status string) (*domain.Job, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	newStatus := domain.JobStatus(status)
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	job, err := s.repo.SetStatus(ctx, jobID, newStatus)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Job status changed", "job_id", jobID, "status", status, "admin", caller.ID)
	return job, nil
}

// OpenDocument serves a stored file. The storage path is always resolved
// from the job's recorded owner, never from the caller, so cross-tenant
// access cannot happen regardless of caller role.
func (s *jobService) OpenDocument(ctx context.Context, caller domain.Identity, jobID, filename string) (io.ReadCloser, error) {
	job, err := s.Get(ctx, caller, jobID)
	if err != nil {
		return nil, err
	}
	for _, doc := range job.Documents {
		if doc.Filename == filename {
			return s.storage.Open(job.OwnerID, job.TicketNumber, filename)
		}
	}
	return nil, domain.ErrFileNotFound
}

// reject records a failed submission and passes the error through.
func (s *jobService) reject(err error) error {
	metrics.SubmissionFailures.WithLabelValues(failureReason(err)).Inc()
	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyUpload):
		return "empty_upload"
	case errors.Is(err, domain.ErrInvalidFilename):
		return "invalid_filename"
	case errors.Is(err, domain.ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, domain.ErrDocumentEmpty):
		return "document_empty"
	case errors.Is(err, domain.ErrDocumentCorrupt):
		return "document_corrupt"
	case errors.Is(err, domain.ErrDuplicateTicket):
		return "duplicate_ticket"
	default:
		return "internal"
	}
}
