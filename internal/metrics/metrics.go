// Package metrics exposes Prometheus counters for the intake pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printjob_submissions_total",
		Help: "Number of job submissions accepted.",
	})

	SubmissionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printjob_submission_failures_total",
		Help: "Number of failed job submissions by reason.",
	}, []string{"reason"})

	TicketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printjob_tickets_issued_total",
		Help: "Number of ticket numbers consumed by committed jobs.",
	})

	PagesCounted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printjob_pages_counted_total",
		Help: "Total pages counted across committed jobs.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
