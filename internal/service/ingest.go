package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/elsayed85/quick-rag/internal/domain"
	"github.com/elsayed85/quick-rag/internal/summarizer"
)

const upsertBatch = 64

// BookReport summarizes one ingested file.
type BookReport struct {
	SourceFile string
	Pages      int
	Chunks     int
	Overview   summarizer.Overview
}

// IngestReport is the result of an ingestion.
type IngestReport struct {
	Chunks    int
	Dimension int
	Books     []BookReport
}

// Ingest loads .txt files from paths (files, directories or glob patterns),
// chunks them and replaces the index contents with their embeddings.
// A form feed in a file starts a new page.
func (s *Service) Ingest(ctx context.Context, paths []string) (*IngestReport, error) {
	files, err := collectTextFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .txt documents found", domain.ErrInvalidInput)
	}

	report := &IngestReport{}
	var chunks []domain.Chunk
	var texts []string
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		doc := domain.Document{ID: hashString(path), Path: path, Content: string(data)}
		docChunks, err := s.chunker.Chunk(doc)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", path, err)
		}
		for _, ch := range docChunks {
			chunks = append(chunks, ch)
			texts = append(texts, ch.Text)
		}
		report.Books = append(report.Books, BookReport{
			SourceFile: filepath.Base(path),
			Pages:      strings.Count(doc.Content, "\f") + 1,
			Chunks:     len(docChunks),
			Overview:   s.summarizer.Summarize(doc.Content, 2, 5),
		})
		s.log.Debug("document chunked", zap.String("path", path), zap.Int("chunks", len(docChunks)))
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: documents contain no text", domain.ErrInvalidInput)
	}

	if err := s.embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", s.embedder.Name(), err)
	}
	vectors := make([][]float64, 0, len(chunks))
	for _, ch := range chunks {
		vec, err := s.embedder.Embed(ctx, ch.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %s: %w", ch.ChunkID, err)
		}
		vectors = append(vectors, vec)
	}
	// Remote embedders only know their dimension after the first call.
	report.Dimension = len(vectors[0])

	if err := s.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear index: %w", err)
	}
	if err := s.store.Init(ctx, report.Dimension); err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	for start := 0; start < len(chunks); start += upsertBatch {
		end := min(start+upsertBatch, len(chunks))
		if err := s.store.Upsert(ctx, chunks[start:end], vectors[start:end]); err != nil {
			return nil, fmt.Errorf("upsert: %w", err)
		}
	}

	report.Chunks = len(chunks)
	s.log.Info("ingestion finished",
		zap.Int("documents", len(report.Books)),
		zap.Int("chunks", report.Chunks),
		zap.String("embedder", s.embedder.Name()),
	)
	return report, nil
}

// WarnIfEmpty logs a warning when the index holds no chunks yet.
func (s *Service) WarnIfEmpty(ctx context.Context) HealthReport {
	h := s.Health(ctx)
	switch {
	case !h.IndexConnected:
		s.log.Warn("vector index is unreachable")
	case !h.CollectionExists || h.DocumentsCount == 0:
		s.log.Warn("collection is empty, ingest documents before asking questions")
	default:
		s.log.Info("collection ready", zap.Int("documents", h.DocumentsCount))
	}
	return h
}

func collectTextFiles(paths []string) ([]string, error) {
	seen := map[string]struct{}{}
	var files []string
	add := func(p string) {
		if !strings.EqualFold(filepath.Ext(p), ".txt") {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, err
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(m)
				continue
			}
			err = filepath.WalkDir(m, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
