// Package agent runs the question-answering workflow as an explicit state
// machine: route, retrieve, grade, then rewrite and retry or generate.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elsayed85/quick-rag/internal/domain"
)

const (
	DefaultMaxRewrites = 2
	DefaultTopK        = 4
	DefaultCallTimeout = 60 * time.Second
)

// Options configures an Engine.
type Options struct {
	// MaxRewrites bounds the rewrite loop. Zero disables rewriting.
	MaxRewrites int
	TopK        int
	// CallTimeout limits every external call. Zero means no limit.
	CallTimeout time.Duration
	Logger      *zap.Logger
	Observer    Observer
	NewID       func() string
}

// Engine drives runs. It holds no per-run state and is safe for concurrent
// use as long as its collaborators are.
type Engine struct {
	model     domain.LanguageModel
	retriever *Retriever
	opts      Options
	log       *zap.Logger
}

func New(model domain.LanguageModel, embedder domain.Embedder, index domain.VectorIndex, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxRewrites: DefaultMaxRewrites,
		TopK:        DefaultTopK,
		CallTimeout: DefaultCallTimeout,
		NewID:       uuid.NewString,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRewrites < 0 {
		opts.MaxRewrites = 0
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		model:     model,
		retriever: NewRetriever(embedder, index, opts.TopK),
		opts:      opts,
		log:       log.Named("agent"),
	}
}

// MaxRewrites returns the configured rewrite bound.
func (e *Engine) MaxRewrites() int { return e.opts.MaxRewrites }

// Run answers question. It returns the final session state, or an error when
// the question is invalid, a dependency is unavailable, or ctx is done.
// Extra observers receive this run only.
func (e *Engine) Run(ctx context.Context, question string, observers ...Observer) (*domain.SessionState, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	s := domain.NewSessionState(e.opts.NewID(), question)
	obs := observers
	if e.opts.Observer != nil {
		obs = append([]Observer{e.opts.Observer}, observers...)
	}
	log := e.log.With(zap.String("run_id", s.ID))
	log.Info("run started", zap.String("question", question))

	started := time.Now()
	finish := func(err error) (*domain.SessionState, error) {
		elapsed := time.Since(started)
		for _, o := range obs {
			o.OnFinish(s, err, elapsed)
		}
		if err != nil {
			log.Warn("run failed", zap.Error(err), zap.Duration("elapsed", elapsed))
			return s, err
		}
		log.Info("run finished",
			zap.Stringer("route", s.Route),
			zap.Int("retrievals", s.Retrievals),
			zap.Int("rewrites", s.RewriteCount),
			zap.Stringer("verdict", s.Verdict),
			zap.Duration("elapsed", elapsed),
		)
		return s, nil
	}

	state := StateStart
	for !state.Terminal() {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		stepStarted := time.Now()
		next, err := e.Step(ctx, state, s)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return finish(ctxErr)
			}
			return finish(err)
		}
		elapsed := time.Since(stepStarted)
		log.Debug("transition",
			zap.Stringer("from", state),
			zap.Stringer("to", next),
			zap.String("detail", describe(s, next)),
			zap.Duration("elapsed", elapsed),
		)
		for _, o := range obs {
			o.OnTransition(s, state, next, elapsed)
		}
		state = next
	}
	return finish(nil)
}

// Step performs the transition out of state, updating s in place.
// Failures are returned as *domain.StepError.
func (e *Engine) Step(ctx context.Context, state State, s *domain.SessionState) (State, error) {
	switch state {
	case StateStart:
		route, err := e.route(ctx, s.OriginalQuestion)
		if err != nil {
			return state, &domain.StepError{Step: stepRoute, Err: err}
		}
		s.Route = route
		return StateRouted, nil

	case StateRouted:
		if s.Route == domain.RouteDirect {
			return e.finalize(ctx, state, s)
		}
		return e.retrieve(ctx, state, s)

	case StateRetrieved:
		verdict, err := e.Grade(ctx, s.CurrentQuery, s.Passages)
		if err != nil {
			return state, &domain.StepError{Step: stepGrade, Err: err}
		}
		s.Verdict = verdict
		return StateGraded, nil

	case StateGraded:
		if s.Verdict == domain.VerdictNotRelevant && s.RewriteCount < e.opts.MaxRewrites {
			query, err := e.rewrite(ctx, s)
			if err != nil {
				return state, &domain.StepError{Step: stepRewrite, Err: err}
			}
			s.CurrentQuery = query
			s.RewriteCount++
			return StateRewritten, nil
		}
		return e.finalize(ctx, state, s)

	case StateRewritten:
		return e.retrieve(ctx, state, s)

	case StateGenerated:
		return state, nil

	default:
		return state, fmt.Errorf("unknown state %d", int(state))
	}
}

func (e *Engine) retrieve(ctx context.Context, state State, s *domain.SessionState) (State, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	passages, err := e.retriever.Retrieve(callCtx, s.CurrentQuery)
	if err != nil {
		return state, &domain.StepError{Step: stepRetrieve, Err: err}
	}
	s.Passages = passages
	s.Verdict = domain.VerdictPending
	s.Retrievals++
	return StateRetrieved, nil
}

func (e *Engine) finalize(ctx context.Context, state State, s *domain.SessionState) (State, error) {
	answer, err := e.generate(ctx, s)
	if err != nil {
		return state, &domain.StepError{Step: stepGenerate, Err: err}
	}
	s.FinalAnswer = answer
	s.Answered = true
	return StateGenerated, nil
}

func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	return e.model.Complete(callCtx, prompt)
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.CallTimeout)
}
