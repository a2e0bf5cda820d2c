package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"print-ticket-server/internal/domain"

	"github.com/gorilla/mux"
)

// MockJobService records calls and returns canned results.
type MockJobService struct {
	submitJob     *domain.Job
	submitErr     error
	submitUploads []domain.Upload

	jobs    []*domain.Job
	listErr error

	getJob *domain.Job
	getErr error

	statusJob    *domain.Job
	statusErr    error
	statusCalled string

	document    string
	documentErr error
}

func (m *MockJobService) Submit(ctx context.Context, caller domain.Identity, uploads []domain.Upload) (*domain.Job, error) {
	m.submitUploads = uploads
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.submitJob, nil
}

func (m *MockJobService) List(ctx context.Context, caller domain.Identity) ([]*domain.Job, error) {
	return m.jobs, m.listErr
}

func (m *MockJobService) Get(ctx context.Context, caller domain.Identity, jobID string) (*domain.Job, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getJob, nil
}

func (m *MockJobService) SetStatus(ctx context.Context, caller domain.Identity, jobID string, status string) (*domain.Job, error) {
	m.statusCalled = status
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.statusJob, nil
}

func (m *MockJobService) OpenDocument(ctx context.Context, caller domain.Identity, jobID, filename string) (io.ReadCloser, error) {
	if m.documentErr != nil {
		return nil, m.documentErr
	}
	return io.NopCloser(strings.NewReader(m.document)), nil
}

func withIdentity(req *http.Request, identity *domain.Identity) *http.Request {
	ctx := context.WithValue(req.Context(), identityContextKey, identity)
	return req.WithContext(ctx)
}

func sampleJob() *domain.Job {
	return &domain.Job{
		ID:           "job-1",
		OwnerID:      "user-1",
		TicketNumber: 42,
		Documents: []domain.Document{
			{Filename: "report.pdf", MediaType: domain.MediaTypePDF, Pages: 3},
		},
		Price:     6,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func multipartRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := writer.CreateFormFile(uploadField, name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestJobHandler_CreateJob(t *testing.T) {
	service := &MockJobService{submitJob: sampleJob()}
	h := NewJobHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withIdentity(multipartRequest(t, map[string]string{"report.pdf": "pdf bytes"}), &domain.Identity{ID: "user-1"})
	rr := httptest.NewRecorder()

	h.CreateJob(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	if len(service.submitUploads) != 1 || service.submitUploads[0].Filename != "report.pdf" {
		t.Fatalf("unexpected uploads passed to service: %+v", service.submitUploads)
	}

	var got domain.Job
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.TicketNumber != 42 || got.Price != 6 {
		t.Fatalf("unexpected job in response: %+v", got)
	}
}

func TestJobHandler_CreateJob_NoIdentity(t *testing.T) {
	h := NewJobHandler(&MockJobService{}, NewMockHandlerLogger(), 1<<20)

	req := multipartRequest(t, map[string]string{"report.pdf": "x"})
	rr := httptest.NewRecorder()

	h.CreateJob(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestJobHandler_CreateJob_NotMultipart(t *testing.T) {
	h := NewJobHandler(&MockJobService{}, NewMockHandlerLogger(), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.CreateJob(rr, withIdentity(req, &domain.Identity{ID: "user-1"}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestJobHandler_CreateJob_DomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty upload", domain.ErrEmptyUpload, http.StatusBadRequest},
		{"unsupported type", domain.ErrUnsupportedType, http.StatusBadRequest},
		{"corrupt document", domain.ErrDocumentCorrupt, http.StatusUnprocessableEntity},
		{"empty document", domain.ErrDocumentEmpty, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &MockJobService{submitErr: tc.err}
			h := NewJobHandler(service, NewMockHandlerLogger(), 1<<20)

			req := withIdentity(multipartRequest(t, map[string]string{"doc": "x"}), &domain.Identity{ID: "user-1"})
			rr := httptest.NewRecorder()

			h.CreateJob(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestJobHandler_ListJobs_EmptyIsArray(t *testing.T) {
	h := NewJobHandler(&MockJobService{}, NewMockHandlerLogger(), 1<<20)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil), &domain.Identity{ID: "user-1"})
	rr := httptest.NewRecorder()

	h.ListJobs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestJobHandler_GetJob(t *testing.T) {
	service := &MockJobService{getJob: sampleJob()}
	h := NewJobHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1", nil), &domain.Identity{ID: "user-1"})
	req = mux.SetURLVars(req, map[string]string{"id": "job-1"})
	rr := httptest.NewRecorder()

	h.GetJob(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestJobHandler_GetJob_NotFound(t *testing.T) {
	service := &MockJobService{getErr: domain.ErrJobNotFound}
	h := NewJobHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/ghost", nil), &domain.Identity{ID: "user-1"})
	req = mux.SetURLVars(req, map[string]string{"id": "ghost"})
	rr := httptest.NewRecorder()

	h.GetJob(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestJobHandler_DownloadDocument(t *testing.T) {
	service := &MockJobService{document: "stored pdf bytes"}
	h := NewJobHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/documents/report.pdf", nil), &domain.Identity{ID: "user-1"})
	req = mux.SetURLVars(req, map[string]string{"id": "job-1", "filename": "report.pdf"})
	rr := httptest.NewRecorder()

	h.DownloadDocument(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != "stored pdf bytes" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "application/pdf") {
		t.Fatalf("expected pdf content type, got %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "report.pdf") {
		t.Fatalf("expected attachment disposition, got %s", cd)
	}
}

func TestJobHandler_DownloadDocument_Missing(t *testing.T) {
	service := &MockJobService{documentErr: domain.ErrFileNotFound}
	h := NewJobHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/documents/ghost.pdf", nil), &domain.Identity{ID: "user-1"})
	req = mux.SetURLVars(req, map[string]string{"id": "job-1", "filename": "ghost.pdf"})
	rr := httptest.NewRecorder()

	h.DownloadDocument(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestAdminHandler_ListAllJobs_RequiresAdmin(t *testing.T) {
	h := NewAdminHandler(&MockJobService{jobs: []*domain.Job{sampleJob()}}, NewMockHandlerLogger())

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/admin/jobs", nil), &domain.Identity{ID: "user-1"})
	rr := httptest.NewRecorder()

	h.ListAllJobs(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
}

func TestAdminHandler_ListAllJobs(t *testing.T) {
	h := NewAdminHandler(&MockJobService{jobs: []*domain.Job{sampleJob()}}, NewMockHandlerLogger())

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/admin/jobs", nil), &domain.Identity{ID: "admin-1", IsAdmin: true})
	rr := httptest.NewRecorder()

	h.ListAllJobs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var jobs []*domain.Job
	if err := json.NewDecoder(rr.Body).Decode(&jobs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(jobs) != 1 || jobs[0].TicketNumber != 42 {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestAdminHandler_SetJobStatus(t *testing.T) {
	completed := sampleJob()
	completed.Status = domain.StatusCompleted
	service := &MockJobService{statusJob: completed}
	h := NewAdminHandler(service, NewMockHandlerLogger())

	body := strings.NewReader(`{"status":"Completed"}`)
	req := withIdentity(httptest.NewRequest(http.MethodPut, "/api/v1/admin/jobs/job-1/status", body), &domain.Identity{ID: "admin-1", IsAdmin: true})
	req = mux.SetURLVars(req, map[string]string{"id": "job-1"})
	rr := httptest.NewRecorder()

	h.SetJobStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if service.statusCalled != "Completed" {
		t.Fatalf("expected status passed through, got %q", service.statusCalled)
	}
}

func TestAdminHandler_SetJobStatus_Errors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"invalid status", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"not found", domain.ErrJobNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAdminHandler(&MockJobService{statusErr: tc.err}, NewMockHandlerLogger())

			body := strings.NewReader(`{"status":"Completed"}`)
			req := withIdentity(httptest.NewRequest(http.MethodPut, "/api/v1/admin/jobs/job-1/status", body), &domain.Identity{ID: "user-1"})
			req = mux.SetURLVars(req, map[string]string{"id": "job-1"})
			rr := httptest.NewRecorder()

			h.SetJobStatus(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAdminHandler_SetJobStatus_BadBody(t *testing.T) {
	h := NewAdminHandler(&MockJobService{}, NewMockHandlerLogger())

	req := withIdentity(httptest.NewRequest(http.MethodPut, "/api/v1/admin/jobs/job-1/status", strings.NewReader("{")), &domain.Identity{ID: "admin-1", IsAdmin: true})
	req = mux.SetURLVars(req, map[string]string{"id": "job-1"})
	rr := httptest.NewRecorder()

	h.SetJobStatus(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}
