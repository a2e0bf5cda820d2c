package handler

import (
	"encoding/json"
	"net/http"

	"print-ticket-server/internal/domain"

	"github.com/gorilla/mux"
)

// AdminHandler exposes admin-only endpoints. Authorization is the admin
// flag on the verified caller identity; the service layer enforces it
// again for status changes.
type AdminHandler struct {
	jobService domain.JobService
	logger     domain.Logger
}

func NewAdminHandler(jobService domain.JobService, logger domain.Logger) *AdminHandler {
	return &AdminHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// ListAllJobs returns every job in the store.
func (h *AdminHandler) ListAllJobs(w http.ResponseWriter, r *http.Request) {
	caller, ok := GetIdentityFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Identity not found in context")
		return
	}
	if !caller.IsAdmin {
		writeDomainError(w, domain.ErrForbidden)
		return
	}

	jobs, err := h.jobService.List(r.Context(), *caller)
	if err != nil {
		h.logger.Error("Failed to list all jobs", err, "admin", caller.ID)
		writeDomainError(w, err)
		return
	}
	if jobs == nil {
		jobs = make([]*domain.Job, 0)
	}
	writeJSON(w, http.StatusOK, jobs)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetJobStatus toggles a job between Pending and Completed.
func (h *AdminHandler) SetJobStatus(w http.ResponseWriter, r *http.Request) {
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

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.jobService.SetStatus(r.Context(), *caller, jobID, req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
