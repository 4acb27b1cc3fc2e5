package notice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	domain "noticeboard/internal/domain/notice"
)

// TempFilePrefix is the prefix used for temporary atomic write files.
const TempFilePrefix = ".noticeboard-tmp-"

// JSONFileStore implements Store as one pretty-printed JSON array on disk.
type JSONFileStore struct {
	path string
	perm os.FileMode
}

// NewJSONFileStore creates a store backed by the file at path.
// The file does not need to exist yet.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path, perm: 0o644}
}

// Path returns the document location.
func (s *JSONFileStore) Path() string {
	return s.path
}

// Load reads and decodes the document.
// PRE: none
// POST: Returns the collection; empty when the file is absent; ErrStorage on any other failure
func (s *JSONFileStore) Load(ctx context.Context) ([]domain.Notice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Notice{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStorage, s.path, err)
	}
	return decodeCollection(raw, s.path)
}

// Save encodes notices and atomically replaces the document.
// PRE: notices satisfy the collection invariants
// POST: Document holds exactly notices, or the previous document is untouched on error
func (s *JSONFileStore) Save(ctx context.Context, notices []domain.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if notices == nil {
		notices = []domain.Notice{}
	}
	data, err := json.MarshalIndent(notices, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrStorage, err)
	}
	if err := writeFileAtomic(s.path, data, s.perm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// decodeCollection requires the document to be a JSON array of notices.
// An empty file or a non-array value (including null) is malformed.
func decodeCollection(raw []byte, source string) ([]domain.Notice, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s is not a JSON array", domain.ErrStorage, source)
	}
	notices := []domain.Notice{}
	if err := json.Unmarshal(trimmed, &notices); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrStorage, source, err)
	}
	return notices, nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs it
// and renames it over filename, so readers see either the old or the new document.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // no-op after a successful rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", filename, err)
	}
	return nil
}
