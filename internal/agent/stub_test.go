package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/elsayed85/quick-rag/internal/domain"
)

type role string

const (
	roleRoute    role = "route"
	roleGrade    role = "grade"
	roleRewrite  role = "rewrite"
	roleGenerate role = "generate"
)

func roleOf(prompt string) role {
	switch {
	case strings.Contains(prompt, "You are the router"):
		return roleRoute
	case strings.Contains(prompt, "You are a grader"):
		return roleGrade
	case strings.Contains(prompt, "improve a student's question"):
		return roleRewrite
	default:
		return roleGenerate
	}
}

type reply struct {
	text string
	err  error
}

// scriptedModel answers each role from a queue; the last entry repeats.
type scriptedModel struct {
	mu      sync.Mutex
	script  map[role][]reply
	prompts map[role][]string
}

func newScriptedModel() *scriptedModel {
	return &scriptedModel{script: map[role][]reply{}, prompts: map[role][]string{}}
}

func (m *scriptedModel) on(r role, replies ...reply) *scriptedModel {
	m.script[r] = replies
	return m
}

func (m *scriptedModel) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := roleOf(prompt)
	m.prompts[r] = append(m.prompts[r], prompt)
	q := m.script[r]
	if len(q) == 0 {
		return "ok", nil
	}
	next := q[0]
	if len(q) > 1 {
		m.script[r] = q[1:]
	}
	return next.text, next.err
}

func (m *scriptedModel) calls(r role) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts[r])
}

func (m *scriptedModel) lastPrompt(r role) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.prompts[r]
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

type stubEmbedder struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries = append(e.queries, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float64{1, 0}, nil
}

type stubIndex struct {
	mu      sync.Mutex
	results []domain.SearchResult
	err     error
	calls   int
}

func (i *stubIndex) Search(_ context.Context, _ []float64, topK int) ([]domain.SearchResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	if i.err != nil {
		return nil, i.err
	}
	return append([]domain.SearchResult(nil), i.results...), nil
}

func fixedID() string { return "run-1" }
