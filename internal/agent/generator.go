package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// generate answers the original question. When the model refuses it falls
// back to a fixed answer so a run never ends empty.
func (e *Engine) generate(ctx context.Context, s *domain.SessionState) (string, error) {
	out, err := e.complete(ctx, buildGeneratePrompt(s))
	if errors.Is(err, domain.ErrModelRefused) {
		return fallbackAnswer, nil
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return fallbackAnswer, nil
	}
	return out, nil
}
