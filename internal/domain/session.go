package domain

// Passage is one retrieved chunk plus its provenance.
type Passage struct {
	Text       string
	SourceFile string
	Page       int
	Score      float64
}

// Verdict is the grader's tri-state relevance flag.
type Verdict int

const (
	VerdictPending Verdict = iota
	VerdictRelevant
	VerdictNotRelevant
)

func (v Verdict) String() string {
	switch v {
	case VerdictRelevant:
		return "relevant"
	case VerdictNotRelevant:
		return "not-relevant"
	default:
		return "pending"
	}
}

// Route is the router's decision for a run.
type Route int

const (
	RouteUnknown Route = iota
	RouteRetrieve
	RouteDirect
)

func (r Route) String() string {
	switch r {
	case RouteRetrieve:
		return "needs-retrieval"
	case RouteDirect:
		return "direct-answer"
	default:
		return "unrouted"
	}
}

// SessionState is threaded through every transition of one run.
// It is owned by exactly one run and never shared.
type SessionState struct {
	ID               string
	OriginalQuestion string
	CurrentQuery     string
	Route            Route
	Passages         []Passage
	Verdict          Verdict
	RewriteCount     int
	Retrievals       int
	FinalAnswer      string
	Answered         bool
}

// NewSessionState starts a run for question.
func NewSessionState(id, question string) *SessionState {
	return &SessionState{
		ID:               id,
		OriginalQuestion: question,
		CurrentQuery:     question,
	}
}

// Retrieved reports whether at least one retrieval happened in this run.
func (s *SessionState) Retrieved() bool {
	return s.Route == RouteRetrieve && s.Retrievals > 0
}
