package agent

import (
	"context"
	"errors"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// route asks the model whether question needs the books. Anything other than
// a clear direct answer goes to retrieval.
func (e *Engine) route(ctx context.Context, question string) (domain.Route, error) {
	out, err := e.complete(ctx, buildRoutePrompt(question))
	if errors.Is(err, domain.ErrModelRefused) {
		return domain.RouteRetrieve, nil
	}
	if err != nil {
		return domain.RouteUnknown, err
	}
	if parseLabel(out, routeRetrieveWords, routeDirectWords) == outcomeB {
		return domain.RouteDirect, nil
	}
	return domain.RouteRetrieve, nil
}
