package chunker

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// pageBreak separates pages in text extracted from PDFs (pdftotext emits form feeds).
const pageBreak = "\f"

// SentenceChunker splits text into sentence-based chunks with overlap.
// Chunks never span a page break so each one cites a single page.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	source := filepath.Base(document.Path)
	var chunks []domain.Chunk
	for pageIdx, page := range strings.Split(document.Content, pageBreak) {
		for _, text := range c.window(c.sentences(page)) {
			idx := len(chunks)
			chunks = append(chunks, domain.Chunk{
				DocumentID: document.ID,
				ChunkID:    document.ID + ":" + strconv.Itoa(idx),
				Text:       text,
				Index:      idx,
				SourceFile: source,
				Page:       pageIdx + 1,
			})
		}
	}
	return chunks, nil
}

func (c *SentenceChunker) sentences(text string) []string {
	found := c.splitter.FindAllString(text, -1)
	var out []string
	for _, s := range found {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	// Trailing text without terminal punctuation is still content.
	if tail := strings.TrimSpace(c.splitter.ReplaceAllString(text, "")); tail != "" {
		out = append(out, tail)
	}
	return out
}

func (c *SentenceChunker) window(sentences []string) []string {
	var out []string
	for i := 0; i < len(sentences); {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		out = append(out, strings.Join(sentences[i:end], " "))
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return out
}
