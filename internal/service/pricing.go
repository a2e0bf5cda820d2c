package service

import "print-ticket-server/internal/domain"

// Price derives the cost of a counted document set: total pages times the
// configured unit rate. Pure; the result is fixed at job creation and
// never recomputed.
func Price(documents []domain.Document, unitRate int64) int64 {
	var totalPages int64
	for _, doc := range documents {
		totalPages += int64(doc.Pages)
	}
	return totalPages * unitRate
}
