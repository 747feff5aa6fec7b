package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for an empty or malformed question.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrievalUnavailable is matched by both embedding and index failures.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	ErrEmbeddingUnavailable = &unavailableError{name: "embedding provider unavailable", parent: ErrRetrievalUnavailable}
	ErrIndexUnavailable     = &unavailableError{name: "vector index unavailable", parent: ErrRetrievalUnavailable}

	// ErrModelUnavailable signals a transport or provider failure of the language model.
	ErrModelUnavailable = errors.New("language model unavailable")

	// ErrModelRefused signals a content-policy refusal or an empty completion.
	// It never leaves the agent package; each role maps it to a safe default.
	ErrModelRefused = errors.New("language model refused")
)

type unavailableError struct {
	name   string
	parent error
}

func (e *unavailableError) Error() string { return e.name }

func (e *unavailableError) Unwrap() error { return e.parent }

// IsUnavailable reports whether err is an external dependency outage.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrRetrievalUnavailable) || errors.Is(err, ErrModelUnavailable)
}

// StepError records which workflow step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }
