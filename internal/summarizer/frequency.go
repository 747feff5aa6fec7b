// Package summarizer picks representative sentences and keywords from an
// ingested book so ingestion can report what a collection covers.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`[^.!?\f\n]+[.!?]`)
)

// Frequency ranks sentences by the normalized frequency of their content words.
type Frequency struct {
	stopwords map[string]struct{}
}

func New() *Frequency {
	return &Frequency{stopwords: defaultStopwords()}
}

// Overview is the summary of one ingested text.
type Overview struct {
	Sentences []string
	Keywords  []string
}

// Summarize returns up to maxSentences key sentences in document order and
// the maxKeywords most frequent content words.
func (f *Frequency) Summarize(text string, maxSentences, maxKeywords int) Overview {
	freq := f.frequencies(text)
	return Overview{
		Sentences: f.keySentences(text, freq, maxSentences),
		Keywords:  topKeywords(freq, maxKeywords),
	}
}

func (f *Frequency) frequencies(text string) map[string]float64 {
	freq := map[string]float64{}
	for _, tok := range tokens(text) {
		if _, ok := f.stopwords[tok]; ok || len([]rune(tok)) < 3 {
			continue
		}
		freq[tok]++
	}
	return freq
}

func (f *Frequency) keySentences(text string, freq map[string]float64, n int) []string {
	if n <= 0 {
		return nil
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}

	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		if maxF > 0 && len(toks) > 0 {
			score /= maxF * math.Sqrt(float64(len(toks)))
		}
		ranked[i] = scored{i, score}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })
	if n > len(ranked) {
		n = len(ranked)
	}

	picked := make([]int, n)
	for i := range picked {
		picked[i] = ranked[i].idx
	}
	sort.Ints(picked)
	out := make([]string, 0, n)
	for _, idx := range picked {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return out
}

func topKeywords(freq map[string]float64, n int) []string {
	if n <= 0 {
		return nil
	}
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(a, b int) bool {
		if freq[words[a]] != freq[words[b]] {
			return freq[words[a]] > freq[words[b]]
		}
		return words[a] < words[b]
	})
	if n > len(words) {
		n = len(words)
	}
	return words[:n]
}

func tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "should", "now", "also", "which", "when", "where", "what", "how", "they", "their", "there", "has", "have", "had", "not", "all", "each", "other", "more", "most", "some", "one", "two",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
