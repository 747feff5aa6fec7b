package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// Retriever embeds a query and returns its nearest passages, best first.
type Retriever struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	topK     int
}

func NewRetriever(embedder domain.Embedder, index domain.VectorIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

// Retrieve returns at most topK passages for query. An empty index yields an
// empty slice and no error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.Passage, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, wrapAs(domain.ErrEmbeddingUnavailable, err)
	}
	results, err := r.index.Search(ctx, vec, r.topK)
	if err != nil {
		return nil, wrapAs(domain.ErrIndexUnavailable, err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > r.topK {
		results = results[:r.topK]
	}
	passages := make([]domain.Passage, 0, len(results))
	for _, res := range results {
		passages = append(passages, domain.Passage{
			Text:       res.Chunk.Text,
			SourceFile: res.Chunk.SourceFile,
			Page:       res.Chunk.Page,
			Score:      res.Score,
		})
	}
	return passages, nil
}

func wrapAs(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
