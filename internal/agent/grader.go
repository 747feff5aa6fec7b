package agent

import (
	"context"
	"errors"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// Grade judges all passages against query in a single model call.
// It keeps no state between calls.
func (e *Engine) Grade(ctx context.Context, query string, passages []domain.Passage) (domain.Verdict, error) {
	if len(passages) == 0 {
		return domain.VerdictNotRelevant, nil
	}
	out, err := e.complete(ctx, buildGradePrompt(query, passages))
	if errors.Is(err, domain.ErrModelRefused) {
		return domain.VerdictNotRelevant, nil
	}
	if err != nil {
		return domain.VerdictPending, err
	}
	if parseLabel(out, gradeYesWords, gradeNoWords) == outcomeA {
		return domain.VerdictRelevant, nil
	}
	return domain.VerdictNotRelevant, nil
}
