package domain

import (
	"strings"
	"time"
)

// Media types with a dedicated counting strategy. Anything under image/
// is billed at a flat rate; every other type is rejected.
const (
	MediaTypePDF    = "application/pdf"
	MediaTypeOffice = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mediaTypeImage  = "image/"
)

// IsImageMediaType reports whether the declared type belongs to the
// flat-rate image family.
func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(mediaType, mediaTypeImage)
}

// JobStatus is the closed set of job states. Transitions may go in both
// directions; there is no terminal state.
type JobStatus string

const (
	StatusPending   JobStatus = "Pending"
	StatusCompleted JobStatus = "Completed"
)

// Valid reports whether s is one of the permitted statuses.
func (s JobStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Document is a single counted file inside a job. Pages is always >= 1;
// a document never exists with a zero page count.
type Document struct {
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Pages     int    `json:"pages"`
}

// Job is a priced, uniquely numbered print ticket. Documents keep their
// submission order. Price is derived once at creation and never recomputed.
type Job struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	TicketNumber int64      `json:"ticket_number"`
	Documents    []Document `json:"documents"`
	Price        int64      `json:"price"`
	Status       JobStatus  `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}
