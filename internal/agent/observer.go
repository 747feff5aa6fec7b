package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// Observer receives every transition of a run and its outcome.
// Implementations must be safe for concurrent runs.
type Observer interface {
	OnTransition(s *domain.SessionState, from, to State, elapsed time.Duration)
	OnFinish(s *domain.SessionState, err error, elapsed time.Duration)
}

// TraceEntry is one recorded transition.
type TraceEntry struct {
	From    State
	To      State
	Detail  string
	Elapsed time.Duration
}

func (e TraceEntry) String() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s → %s", e.From, e.To)
	}
	return fmt.Sprintf("%s → %s (%s)", e.From, e.To, e.Detail)
}

// Trace collects the transitions of a single run.
type Trace struct {
	mu      sync.Mutex
	entries []TraceEntry
	err     error
}

func (t *Trace) OnTransition(s *domain.SessionState, from, to State, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TraceEntry{From: from, To: to, Detail: describe(s, to), Elapsed: elapsed})
}

func (t *Trace) OnFinish(_ *domain.SessionState, err error, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Entries returns a copy of the recorded transitions.
func (t *Trace) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TraceEntry(nil), t.entries...)
}

// Err returns the error the run finished with, if any.
func (t *Trace) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func describe(s *domain.SessionState, to State) string {
	switch to {
	case StateRouted:
		return s.Route.String()
	case StateRetrieved:
		return fmt.Sprintf("%d passages", len(s.Passages))
	case StateGraded:
		return s.Verdict.String()
	case StateRewritten:
		return fmt.Sprintf("#%d %q", s.RewriteCount, s.CurrentQuery)
	default:
		return ""
	}
}
