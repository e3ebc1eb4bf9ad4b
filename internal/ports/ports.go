package ports

import (
	"context"
	"errors"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// DocumentRepository persists parsed BRQ documents and the pipeline runs
// executed against them.
type DocumentRepository interface {
	SaveDocument(ctx context.Context, d *domain.StoredDocument) error
	GetDocument(ctx context.Context, id int64) (*domain.StoredDocument, error)
	ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error)

	SaveRun(ctx context.Context, r *domain.Run) error
	ListRuns(ctx context.Context, documentID int64) ([]domain.Run, error)
}

// ArtifactStore holds pipeline outputs by key. Put overwrites.
type ArtifactStore interface {
	PutArtifact(ctx context.Context, key, contentType string, body []byte) error
	GetArtifact(ctx context.Context, key string) (*domain.Artifact, error)
	// ListArtifacts returns artifacts whose key starts with prefix, bodies
	// omitted, ordered by key.
	ListArtifacts(ctx context.Context, prefix string) ([]domain.Artifact, error)
}

// SalesAreaSource supplies the station to sales-area reference rows.
type SalesAreaSource interface {
	SalesAreas(ctx context.Context) ([]domain.SalesArea, error)
}

// Gateway is the opaque downstream booking system. name selects the
// operation; payload and response are JSON.
type Gateway interface {
	Invoke(ctx context.Context, name string, payload []byte) ([]byte, error)
}

// ErrNotFound is wrapped by adapters when a requested record does not exist.
var ErrNotFound = errors.New("not found")
