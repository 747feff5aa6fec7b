package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/elsayed85/quick-rag/internal/domain"
	"github.com/elsayed85/quick-rag/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// ErrCollectionNotFound is returned by Count when the collection does not exist.
var ErrCollectionNotFound = vectorstore.ErrCollectionNotFound

// Storage is a minimal REST client to Qdrant.
// It creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	distance   string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Distance   string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	distance := cfg.Distance
	if distance == "" {
		distance = "Cosine"
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		distance:   distance,
		client:     &http.Client{Timeout: timeout},
	}
}

// Collection returns the configured collection name.
func (s *Storage) Collection() string { return s.collection }

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	if _, err := s.Count(ctx); err == nil {
		return nil
	} else if !errors.Is(err, ErrCollectionNotFound) {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": s.distance,
		},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		points[i] = map[string]any{
			// Qdrant only accepts unsigned ints or UUIDs as point ids.
			"id":     uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunks[i].ChunkID)).String(),
			"vector": vectors[i],
			"payload": map[string]any{
				"document_id": chunks[i].DocumentID,
				"chunk_id":    chunks[i].ChunkID,
				"index":       chunks[i].Index,
				"text":        chunks[i].Text,
				"source_file": chunks[i].SourceFile,
				"page":        chunks[i].Page,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil)
}

// Search queries the collection. Any transport or server failure is reported
// as domain.ErrIndexUnavailable; a missing collection is an empty index.
func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		if errors.Is(err, ErrCollectionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{Chunk: chunkFromPayload(r.Payload), Score: r.Score})
	}
	return results, nil
}

func chunkFromPayload(p map[string]any) domain.Chunk {
	chunk := domain.Chunk{}
	if v, ok := p["document_id"].(string); ok {
		chunk.DocumentID = v
	}
	if v, ok := p["chunk_id"].(string); ok {
		chunk.ChunkID = v
	}
	if v, ok := p["index"].(float64); ok {
		chunk.Index = int(v)
	}
	if v, ok := p["text"].(string); ok {
		chunk.Text = v
	}
	if v, ok := p["source_file"].(string); ok {
		chunk.SourceFile = v
	}
	if v, ok := p["page"].(float64); ok {
		chunk.Page = int(v)
	}
	return chunk
}

// Clear drops the collection.
func (s *Storage) Clear(ctx context.Context) error {
	err := s.do(ctx, http.MethodDelete, s.collectionURL(""), nil, nil)
	if errors.Is(err, ErrCollectionNotFound) {
		return nil
	}
	return err
}

// Count returns the exact number of points in the collection.
func (s *Storage) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Storage) do(ctx context.Context, method, url string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrCollectionNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
