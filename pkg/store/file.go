package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/canopyhq/canopy/pkg/errors"
)

// FileStore persists diagrams as JSON files in a directory, one file per
// diagram. Suited to CLI usage where diagrams live next to other local
// state.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store in the given directory.
// The directory is created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Get retrieves a diagram by ID.
func (s *FileStore) Get(ctx context.Context, id string) (*Diagram, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode diagram %s: %w", id, err)
	}
	return &d, nil
}

// Put saves a diagram.
func (s *FileStore) Put(ctx context.Context, d *Diagram) error {
	if d == nil || d.ID == "" {
		return ErrInvalidID
	}
	path, err := s.path(d.ID)
	if err != nil {
		return err
	}
	d.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode diagram %s: %w", d.ID, err)
	}
	return os.WriteFile(path, data, 0644)
}

// Delete removes a diagram.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// List returns all stored diagram IDs, sorted.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close(ctx context.Context) error { return nil }

// path maps a diagram ID to its file, rejecting IDs that would escape the
// store directory.
func (s *FileStore) path(id string) (string, error) {
	if id == "" {
		return "", ErrInvalidID
	}
	if err := errors.ValidateElementID(id); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	if strings.ContainsRune(id, os.PathSeparator) {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
