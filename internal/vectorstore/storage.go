package vectorstore

import (
	"context"
	"errors"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// Storage persists vectors and supports similarity search.
// The question-answering core only needs Search (domain.VectorIndex);
// the rest is used by ingestion and health checks.
type Storage interface {
	domain.VectorIndex
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// ErrCollectionNotFound is returned by Count when the backing collection does not exist.
var ErrCollectionNotFound = errors.New("collection not found")
