package service

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"print-ticket-server/internal/domain"
)

const (
	stagingDir = "staging"
	ticketsDir = "tickets"
)

// LocalStorage keeps staged and committed documents on the local disk.
// Layout:
//
//	<root>/staging/<owner>/<filename>
//	<root>/tickets/<owner>/<ticket>/<filename>
type LocalStorage struct {
	root string
}

// NewLocalStorage creates the storage root if absent.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// SanitizeFilename strips any path components from a declared filename.
// Names that would escape their directory are rejected.
func SanitizeFilename(name string) (string, error) {
	cleaned := strings.TrimSpace(name)
	if cleaned != filepath.Base(cleaned) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFilename, name)
	}
	cleaned = filepath.Base(cleaned)
	if cleaned == "" || cleaned == "." || cleaned == ".." || cleaned == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFilename, name)
	}
	if strings.ContainsAny(cleaned, "/\\") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFilename, name)
	}
	return cleaned, nil
}

// Stage writes one upload into the caller's staging area, creating it if
// absent. Staged files are candidates only, not yet part of any job.
func (s *LocalStorage) Stage(ownerID, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(s.root, stagingDir, ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging area: %w", err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to stage file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to stage file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to stage file: %w", err)
	}
	return path, nil
}

// DiscardStaging removes staged files after a failed submission. Removal
// is best effort; a missing file is already the desired state.
func (s *LocalStorage) DiscardStaging(ownerID string, filenames []string) {
	for _, name := range filenames {
		_ = os.Remove(filepath.Join(s.root, stagingDir, ownerID, name))
	}
}

// Relocate moves staged files into their permanent ticket-keyed location.
// Rename is attempted first; a copy fallback covers cross-device roots.
func (s *LocalStorage) Relocate(ownerID string, ticketNumber int64, filenames []string) error {
	dest := s.ticketDir(ownerID, ticketNumber)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create ticket directory: %w", err)
	}

	for i, name := range filenames {
		src := filepath.Join(s.root, stagingDir, ownerID, name)
		dst := filepath.Join(dest, name)
		if err := moveFile(src, dst); err != nil {
			// Put already-moved files back so the staged set stays
			// complete for cleanup or retry.
			for _, moved := range filenames[:i] {
				_ = moveFile(filepath.Join(dest, moved), filepath.Join(s.root, stagingDir, ownerID, moved))
			}
			_ = os.Remove(dest)
			return fmt.Errorf("failed to relocate %s: %w", name, err)
		}
	}
	return nil
}

// Open returns a read handle on a committed document. The owner is always
// the job's recorded owner, never the caller.
func (s *LocalStorage) Open(ownerID string, ticketNumber int64, filename string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.ticketDir(ownerID, ticketNumber), filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) ticketDir(ownerID string, ticketNumber int64) string {
	return filepath.Join(s.root, ticketsDir, ownerID, strconv.FormatInt(ticketNumber, 10))
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Cross-device rename fails with EXDEV; fall back to copy+remove.
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
