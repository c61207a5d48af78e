// Package store provides persistence for diagram documents.
//
// A diagram bundles a serialized scene graph with its measured chrome and a
// display name. Only this raw input state is persisted: derived values
// (absolute offsets, z-indexes) are recomputed per pass and never stored.
//
// Implementations for different deployments:
//   - memory: in-memory storage for development/testing
//   - file: JSON files under a directory for CLI usage
//   - mongo: MongoDB-backed storage for server deployments
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/canopyhq/canopy/pkg/scene"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a diagram does not exist.
	ErrNotFound = errors.New("diagram not found")

	// ErrInvalidID is returned for empty or malformed diagram IDs.
	ErrInvalidID = errors.New("invalid diagram ID")
)

// Diagram is a stored diagram document.
type Diagram struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name,omitempty" bson:"name,omitempty"`
	Document  scene.Document  `json:"document" bson:"document"`
	Chrome    scene.ChromeMap `json:"chrome,omitempty" bson:"chrome,omitempty"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// New creates a diagram with a fresh ID and creation timestamps.
func New(name string, doc scene.Document, chrome scene.ChromeMap) *Diagram {
	now := time.Now().UTC()
	return &Diagram{
		ID:        uuid.NewString(),
		Name:      name,
		Document:  doc,
		Chrome:    chrome,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store persists diagrams.
// Implementations must return ErrNotFound for unknown IDs and are expected
// to be safe for concurrent use.
type Store interface {
	// Get retrieves a diagram by ID.
	Get(ctx context.Context, id string) (*Diagram, error)

	// Put saves a diagram, overwriting any existing one with the same ID.
	// UpdatedAt is refreshed on every save.
	Put(ctx context.Context, d *Diagram) error

	// Delete removes a diagram. Deleting an absent diagram returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns all stored diagram IDs, sorted.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}
