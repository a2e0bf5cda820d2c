// Package handler provides HTTP handlers for the API.
package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"print-ticket-server/internal/domain"

	"github.com/gorilla/mux"
)

// multipart field carrying the submitted documents.
const uploadField = "documents"

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	jobService  domain.JobService
	logger      domain.Logger
	maxFileSize int64
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService domain.JobService, logger domain.Logger, maxFileSize int64) *JobHandler {
	return &JobHandler{
		jobService:  jobService,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// CreateJob accepts a multipart submission and returns the committed job
// snapshot, or one structured error with no partial state left behind.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := GetIdentityFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Identity not found in context")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File[uploadField]
	uploads := make([]domain.Upload, 0, len(headers))
	var open []io.Closer
	defer func() {
		for _, f := range open {
			_ = f.Close()
		}
	}()

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		open = append(open, file)
		uploads = append(uploads, domain.Upload{
			Filename:  header.Filename,
			MediaType: header.Header.Get("Content-Type"),
			Content:   file,
		})
	}

	job, err := h.jobService.Submit(r.Context(), *caller, uploads)
	if err != nil {
		h.logger.Warn("Submission rejected", "owner", caller.ID, "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// ListJobs returns the caller's jobs; admins see every job.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	caller, ok := GetIdentityFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Identity not found in context")
		return
	}

	jobs, err := h.jobService.List(r.Context(), *caller)
	if err != nil {
		h.logger.Error("Failed to list jobs", err, "owner", caller.ID)
		writeDomainError(w, err)
		return
	}

	// Ensure JSON is [] not null when there are no jobs.
	if jobs == nil {
		jobs = make([]*domain.Job, 0)
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetJob returns one job owned by the caller (or any job for admins).
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := GetIdentityFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Identity not found in context")
		return
	}

	jobID := mux.Vars(r)["id"]
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.jobService.Get(r.Context(), *caller, jobID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// DownloadDocument streams one stored document of a job.
func (h *JobHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	caller, ok := GetIdentityFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Identity not found in context")
		return
	}

	vars := mux.Vars(r)
	jobID := vars["id"]
	filename := vars["filename"]
	if jobID == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "Job ID and filename are required")
		return
	}

	rc, err := h.jobService.OpenDocument(r.Context(), *caller, jobID, filename)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("Failed to stream document", err, "job_id", jobID, "filename", filename)
	}
}
