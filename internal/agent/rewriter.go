package agent

import (
	"context"
	"errors"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// rewrite returns a reformulated search query. A refused or empty rewrite
// keeps the current query.
func (e *Engine) rewrite(ctx context.Context, s *domain.SessionState) (string, error) {
	out, err := e.complete(ctx, buildRewritePrompt(s))
	if errors.Is(err, domain.ErrModelRefused) {
		return s.CurrentQuery, nil
	}
	if err != nil {
		return "", err
	}
	if q := parseRewrite(out); q != "" {
		return q, nil
	}
	return s.CurrentQuery, nil
}
