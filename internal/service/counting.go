// Package service implements the job intake pipeline and its collaborators.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"print-ticket-server/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFCounter reads the page count out of a PDF container.
type PDFCounter struct{}

func (c *PDFCounter) Count(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pages, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrDocumentCorrupt, err)
	}
	if pages == 0 {
		return 0, domain.ErrDocumentEmpty
	}
	return pages, nil
}

// OfficeCounter delegates counting to an external helper process invoked
// as `<bin> <file>`, expecting a decimal page count on stdout.
type OfficeCounter struct {
	bin     string
	timeout time.Duration
}

func NewOfficeCounter(bin string, timeout time.Duration) *OfficeCounter {
	return &OfficeCounter{bin: bin, timeout: timeout}
}

func (c *OfficeCounter) Count(ctx context.Context, path string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, c.bin, path).Output()
	if err != nil {
		// Timeouts and non-zero exits are normal failures, not crashes.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: page counter timed out", domain.ErrDocumentCorrupt)
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrDocumentCorrupt, err)
	}

	pages, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("%w: page counter returned %q", domain.ErrDocumentCorrupt, strings.TrimSpace(string(out)))
	}
	if pages == 0 {
		return 0, domain.ErrDocumentEmpty
	}
	if pages < 0 {
		return 0, fmt.Errorf("%w: page counter returned %d", domain.ErrDocumentCorrupt, pages)
	}
	return pages, nil
}

// ImageCounter bills every image at a flat rate of one page. The content
// is never inspected.
type ImageCounter struct{}

func (c *ImageCounter) Count(ctx context.Context, path string) (int, error) {
	return 1, nil
}

// strategySelector routes declared media types to counting strategies.
type strategySelector struct {
	byType map[string]domain.CountingStrategy
	image  domain.CountingStrategy
}

// NewStrategySelector builds the selector with one strategy per supported
// document family.
func NewStrategySelector(config domain.Config) domain.StrategySelector {
	return &strategySelector{
		byType: map[string]domain.CountingStrategy{
			domain.MediaTypePDF:    &PDFCounter{},
			domain.MediaTypeOffice: NewOfficeCounter(config.GetOfficeCounterBin(), config.GetOfficeCountTimeout()),
		},
		image: &ImageCounter{},
	}
}

// StrategyFor returns the strategy for a declared media type, or
// ErrUnsupportedType when no strategy matches.
func (s *strategySelector) StrategyFor(mediaType string) (domain.CountingStrategy, error) {
	normalized := normalizeMediaType(mediaType)
	if strategy, ok := s.byType[normalized]; ok {
		return strategy, nil
	}
	if domain.IsImageMediaType(normalized) {
		return s.image, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mediaType)
}

// normalizeMediaType lowercases the type and drops parameters like
// "; charset=utf-8".
func normalizeMediaType(mediaType string) string {
	normalized := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(normalized, ";"); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	return normalized
}

// sniffMediaType detects the media type from content when the declared one
// is missing or generic. The bytes consumed by detection are stitched back
// in front of the reader.
func sniffMediaType(declared string, r io.Reader) (string, io.Reader, error) {
	normalized := normalizeMediaType(declared)
	if normalized != "" && normalized != "application/octet-stream" {
		return normalized, r, nil
	}

	header := new(bytes.Buffer)
	mtype, err := mimetype.DetectReader(io.TeeReader(r, header))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedType, err)
	}
	return normalizeMediaType(mtype.String()), io.MultiReader(header, r), nil
}
