// Package repository provides the durable job store and ticket sequencer
// implementations.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"print-ticket-server/internal/domain"
)

const (
	jobsSubdir        = "jobs"
	ticketCounterName = "ticket_counter"
)

// FileJobRepository keeps jobs in memory behind a RWMutex and persists
// each one as a JSON file under the data directory, reloaded at startup.
type FileJobRepository struct {
	mu       sync.RWMutex
	jobs     map[string]*domain.Job
	byTicket map[int64]string
	dir      string
}

// NewFileJobRepository opens (or creates) the store directory and loads
// every persisted job.
func NewFileJobRepository(dataDir string) (*FileJobRepository, error) {
	dir := filepath.Join(dataDir, jobsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create jobs directory: %w", err)
	}

	r := &FileJobRepository{
		jobs:     make(map[string]*domain.Job),
		byTicket: make(map[int64]string),
		dir:      dir,
	}
	if err := r.loadPersistedJobs(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileJobRepository) loadPersistedJobs() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("failed to read jobs directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read persisted job %s: %w", entry.Name(), err)
		}
		var job domain.Job
		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("failed to parse persisted job %s: %w", entry.Name(), err)
		}
		r.jobs[job.ID] = &job
		r.byTicket[job.TicketNumber] = job.ID
	}
	return nil
}

// Create persists a new job. The ticket-number index is a defense-in-depth
// uniqueness check independent of the sequencer.
func (r *FileJobRepository) Create(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byTicket[job.TicketNumber]; exists {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateTicket, job.TicketNumber)
	}

	stored := cloneJob(job)
	if err := r.persistJob(stored); err != nil {
		return err
	}
	r.jobs[stored.ID] = stored
	r.byTicket[stored.TicketNumber] = stored.ID
	return nil
}

// GetByID returns a copy of one job.
func (r *FileJobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return cloneJob(job), nil
}

// GetByOwner returns copies of the owner's jobs, oldest ticket first.
func (r *FileJobRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var jobs []*domain.Job
	for _, job := range r.jobs {
		if job.OwnerID == ownerID {
			jobs = append(jobs, cloneJob(job))
		}
	}
	sortByTicket(jobs)
	return jobs, nil
}

// GetAll returns copies of every job, oldest ticket first. Authorization
// is enforced by the caller.
func (r *FileJobRepository) GetAll(ctx context.Context) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, cloneJob(job))
	}
	sortByTicket(jobs)
	return jobs, nil
}

// SetStatus updates a job's status. Setting the current status again is
// not an error.
func (r *FileJobRepository) SetStatus(ctx context.Context, id string, status domain.JobStatus) (*domain.Job, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	job.Status = status
	if err := r.persistJob(job); err != nil {
		return nil, err
	}
	return cloneJob(job), nil
}

// Delete removes a job record and its persisted file.
func (r *FileJobRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	delete(r.jobs, id)
	delete(r.byTicket, job.TicketNumber)
	if err := os.Remove(r.jobPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove persisted job: %w", err)
	}
	return nil
}

func (r *FileJobRepository) persistJob(job *domain.Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	path := r.jobPath(job.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to persist job: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to persist job: %w", err)
	}
	return nil
}

func (r *FileJobRepository) jobPath(id string) string {
	return filepath.Join(r.dir, id+".json")
}

func cloneJob(job *domain.Job) *domain.Job {
	copied := *job
	copied.Documents = append([]domain.Document(nil), job.Documents...)
	return &copied
}

func sortByTicket(jobs []*domain.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].TicketNumber < jobs[j].TicketNumber
	})
}

// FileTicketSequencer issues strictly increasing ticket numbers from a
// mutex-guarded counter persisted on disk. The counter is written and
// synced before a number is handed out, so a restarted process can never
// reissue one.
type FileTicketSequencer struct {
	mu   sync.Mutex
	last int64
	path string
}

// NewFileTicketSequencer loads the persisted counter, starting at zero
// when none exists yet.
func NewFileTicketSequencer(dataDir string) (*FileTicketSequencer, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dataDir, ticketCounterName)

	last := int64(0)
	data, err := os.ReadFile(path)
	if err == nil {
		last, err = strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt ticket counter %q: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read ticket counter: %w", err)
	}

	return &FileTicketSequencer{last: last, path: path}, nil
}

// Next returns the next ticket number. The new value hits the disk before
// it is returned; a persistence failure hands out nothing.
func (s *FileTicketSequencer) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.last + 1
	if err := s.persist(next); err != nil {
		return 0, err
	}
	s.last = next
	return next, nil
}

func (s *FileTicketSequencer) persist(value int64) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to persist ticket counter: %w", err)
	}
	if _, err := f.WriteString(strconv.FormatInt(value, 10)); err != nil {
		f.Close()
		return fmt.Errorf("failed to persist ticket counter: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to persist ticket counter: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to persist ticket counter: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to persist ticket counter: %w", err)
	}
	return nil
}
