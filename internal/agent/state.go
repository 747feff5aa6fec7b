package agent

// State is the tag of the workflow state machine.
type State int

const (
	StateStart State = iota
	StateRouted
	StateRetrieved
	StateGraded
	StateRewritten
	StateGenerated
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateRouted:
		return "routed"
	case StateRetrieved:
		return "retrieved"
	case StateGraded:
		return "graded"
	case StateRewritten:
		return "rewritten"
	case StateGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition exists from s.
func (s State) Terminal() bool { return s == StateGenerated }

// step names used in StepError and logs
const (
	stepRoute    = "route"
	stepRetrieve = "retrieve"
	stepGrade    = "grade"
	stepRewrite  = "rewrite"
	stepGenerate = "generate"
)
