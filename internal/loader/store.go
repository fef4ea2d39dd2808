package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/edrs/internal/common"
)

// SavedName is the base name of the persisted upload; the source suffix is
// appended.
const SavedName = "latest_data"

// SamplePaths are tried, relative to the working directory, when neither an
// explicit file nor a saved upload exists.
var SamplePaths = []string{
	filepath.Join("data", "UCI_Credit_Card.csv"),
	"UCI_Credit_Card.csv",
	filepath.Join("data", "default of credit card clients.xlsx"),
	"default of credit card clients.xlsx",
}

// Store keeps the last uploaded snapshot in a data directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save copies src into the store as latest_data.<ext>, replacing any
// previous upload, and returns the new path.
func (s *Store) Save(src string) (string, error) {
	if !Supported(src) {
		return "", common.NewSchemaError("", fmt.Sprintf("unsupported file type %q", filepath.Ext(src)))
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	in, err := os.Open(src) //nolint:gosec // path is chosen by the operator
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	dst := filepath.Join(s.dir, SavedName+strings.ToLower(filepath.Ext(src)))
	tmp, err := os.CreateTemp(s.dir, SavedName+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	if err := s.removeSaved(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	slog.Info("Saved upload", "source", src, "path", dst)
	return dst, nil
}

// Saved returns the path of the persisted upload, if any.
func (s *Store) Saved() (string, bool) {
	for _, ext := range []string{ExtCSV, ExtXLSX} {
		p := filepath.Join(s.dir, SavedName+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Resolve picks the input file: the explicit path when given, then the
// saved upload, then the first sample path that exists.
func (s *Store) Resolve(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("input file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if p, ok := s.Saved(); ok {
		return p, nil
	}
	for _, p := range SamplePaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no saved upload and no sample dataset: %w", common.ErrNotFound)
}

func (s *Store) removeSaved() error {
	for _, ext := range []string{ExtCSV, ExtXLSX} {
		err := os.Remove(filepath.Join(s.dir, SavedName+ext))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove previous upload: %w", err)
		}
	}
	return nil
}
