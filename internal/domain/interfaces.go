package domain

import "context"

// Document represents a single text file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a semantically meaningful part of a document used for indexing.
// SourceFile and Page are carried through the index unchanged so answers can cite them.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
	SourceFile string
	Page       int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorIndex returns the k nearest chunks to a query vector, best first.
type VectorIndex interface {
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
}

// LanguageModel is the single text-completion capability shared by every
// prompting role (routing, grading, rewriting, generation).
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}
