// Package service connects ingestion, the question answering engine and the
// health check behind one API used by the CLI, TUI and HTTP server.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/elsayed85/quick-rag/internal/agent"
	"github.com/elsayed85/quick-rag/internal/domain"
	"github.com/elsayed85/quick-rag/internal/embedding"
	"github.com/elsayed85/quick-rag/internal/summarizer"
	"github.com/elsayed85/quick-rag/internal/vectorstore"
)

const previewLen = 200

// AskRequest is a caller's question.
type AskRequest struct {
	Question       string `json:"question" validate:"required"`
	IncludeSources bool   `json:"include_sources"`
}

// Source is a cited passage.
type Source struct {
	SourceFile     string `json:"source_file"`
	Page           int    `json:"page"`
	ContentPreview string `json:"content_preview"`
}

// AskResponse is the answer to an AskRequest. Trace and the counters are
// for local front ends and are not serialized.
type AskResponse struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Sources  []Source           `json:"sources"`
	RunID    string             `json:"-"`
	Route    domain.Route       `json:"-"`
	Rewrites int                `json:"-"`
	Trace    []agent.TraceEntry `json:"-"`
}

// HealthReport describes the vector index.
type HealthReport struct {
	Status           string `json:"status"`
	IndexConnected   bool   `json:"qdrant_connected"`
	CollectionExists bool   `json:"collection_exists"`
	DocumentsCount   int    `json:"documents_count"`
}

// Healthy reports whether the index answered.
func (h HealthReport) Healthy() bool { return h.Status == "healthy" }

type Service struct {
	chunker    domain.Chunker
	embedder   embedding.Embedder
	store      vectorstore.Storage
	engine     *agent.Engine
	summarizer *summarizer.Frequency
	log        *zap.Logger
}

func New(chunker domain.Chunker, embedder embedding.Embedder, store vectorstore.Storage, engine *agent.Engine, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		engine:     engine,
		summarizer: summarizer.New(),
		log:        log.Named("service"),
	}
}

// Ask runs the engine for req. Sources are attached only when requested and
// the run actually retrieved passages; otherwise they serialize as null.
func (s *Service) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	trace := &agent.Trace{}
	state, err := s.engine.Run(ctx, req.Question, trace)
	if err != nil {
		return nil, err
	}

	resp := &AskResponse{
		Question: state.OriginalQuestion,
		Answer:   state.FinalAnswer,
		RunID:    state.ID,
		Route:    state.Route,
		Rewrites: state.RewriteCount,
		Trace:    trace.Entries(),
	}
	if req.IncludeSources && state.Retrieved() && len(state.Passages) > 0 {
		resp.Sources = make([]Source, 0, len(state.Passages))
		for _, p := range state.Passages {
			resp.Sources = append(resp.Sources, Source{
				SourceFile:     p.SourceFile,
				Page:           p.Page,
				ContentPreview: preview(p.Text),
			})
		}
	}
	return resp, nil
}

// Health checks the vector index and counts stored chunks.
func (s *Service) Health(ctx context.Context) HealthReport {
	n, err := s.store.Count(ctx)
	switch {
	case err == nil:
		return HealthReport{Status: "healthy", IndexConnected: true, CollectionExists: true, DocumentsCount: n}
	case errors.Is(err, vectorstore.ErrCollectionNotFound):
		return HealthReport{Status: "unhealthy", IndexConnected: true}
	default:
		s.log.Warn("health check failed", zap.Error(err))
		return HealthReport{Status: "unhealthy"}
	}
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLen {
		return text
	}
	return string(r[:previewLen]) + "..."
}
