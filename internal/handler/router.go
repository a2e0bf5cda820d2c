package handler

import (
	"net/http"

	"print-ticket-server/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	jobHandler *JobHandler,
	adminHandler *AdminHandler,
	authMiddleware func(http.Handler) http.Handler,
) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"print-ticket-server"}`))
	}).Methods("GET")

	// Prometheus scrape endpoint (no auth required)
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	// Job routes
	protected.HandleFunc("/jobs", jobHandler.CreateJob).Methods("POST")
	protected.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")
	protected.HandleFunc("/jobs/{id}", jobHandler.GetJob).Methods("GET")
	protected.HandleFunc("/jobs/{id}/documents/{filename}", jobHandler.DownloadDocument).Methods("GET")

	// Admin routes
	protected.HandleFunc("/admin/jobs", adminHandler.ListAllJobs).Methods("GET")
	protected.HandleFunc("/admin/jobs/{id}/status", adminHandler.SetJobStatus).Methods("PUT")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler(router)
}
