package main

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/elsayed85/quick-rag/internal/agent"
	"github.com/elsayed85/quick-rag/internal/chunker"
	"github.com/elsayed85/quick-rag/internal/config"
	"github.com/elsayed85/quick-rag/internal/domain"
	"github.com/elsayed85/quick-rag/internal/embedding"
	"github.com/elsayed85/quick-rag/internal/embedding/openai"
	"github.com/elsayed85/quick-rag/internal/embedding/tfidf"
	"github.com/elsayed85/quick-rag/internal/llm"
	"github.com/elsayed85/quick-rag/internal/metrics"
	"github.com/elsayed85/quick-rag/internal/service"
	"github.com/elsayed85/quick-rag/internal/vectorstore"
	"github.com/elsayed85/quick-rag/internal/vectorstore/memory"
	"github.com/elsayed85/quick-rag/internal/vectorstore/qdrant"
)

type application struct {
	svc        *service.Service
	log        *zap.Logger
	collection string
}

// build assembles the components selected by cfg. rec may be nil.
func build(cfg *config.AppConfig, log *zap.Logger, rec *metrics.Recorder) (*application, error) {
	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Embedder.OpenAI.APIKeyEnv,
			Model:      cfg.Embedder.OpenAI.Model,
			Timeout:    time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Embedder.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		emb = client
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var st vectorstore.Storage
	collection := "memory"
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		store := qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Distance:   q.Distance,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
		st = store
		collection = store.Collection()
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	model, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	engine := agent.New(model, emb, st, func(o *agent.Options) {
		o.MaxRewrites = cfg.Agent.MaxRewrites
		o.TopK = cfg.Agent.TopK
		o.CallTimeout = time.Duration(cfg.Agent.CallTimeoutSecs) * time.Second
		o.Logger = log
		if rec != nil {
			o.Observer = rec
		}
	})

	log.Info("components ready",
		zap.String("embedder", emb.Name()),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("llm", cfg.LLM.Provider),
		zap.Int("max_rewrites", engine.MaxRewrites()),
	)
	return &application{
		svc:        service.New(ch, emb, st, engine, log),
		log:        log,
		collection: collection,
	}, nil
}

func formatReport(r *service.IngestReport, collection string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Indexed %d chunks from %d books into %s (dimension %d).\n", r.Chunks, len(r.Books), collection, r.Dimension)
	for _, book := range r.Books {
		fmt.Fprintf(&b, "\n%s: %d pages, %d chunks\n", book.SourceFile, book.Pages, book.Chunks)
		if len(book.Overview.Keywords) > 0 {
			fmt.Fprintf(&b, "  keywords: %s\n", strings.Join(book.Overview.Keywords, ", "))
		}
		for _, s := range book.Overview.Sentences {
			fmt.Fprintf(&b, "  > %s\n", s)
		}
	}
	return b.String()
}

func formatSummary(r *service.IngestReport) string {
	names := make([]string, 0, len(r.Books))
	for _, b := range r.Books {
		names = append(names, b.SourceFile)
	}
	return fmt.Sprintf("%d chunks from %s", r.Chunks, strings.Join(names, ", "))
}
